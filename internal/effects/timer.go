package effects

import "time"

// Timer tracks a ready-at timestamp for cooldown-style mechanics.
type Timer struct {
	Name     string
	Duration time.Duration

	readyAt time.Duration
}

// Ready returns true if the timer is ready at the provided time.
func (t *Timer) Ready(now time.Duration) bool {
	return t == nil || now >= t.readyAt
}

// Remaining returns the remaining duration until the timer is ready.
func (t *Timer) Remaining(now time.Duration) time.Duration {
	if t == nil || now >= t.readyAt {
		return 0
	}
	return t.readyAt - now
}

// Start puts the timer on its configured duration.
func (t *Timer) Start(now time.Duration) {
	t.Reset(now, t.Duration)
}

// Reset sets the timer to become ready after the provided cooldown duration.
func (t *Timer) Reset(now time.Duration, cooldown time.Duration) {
	t.readyAt = now + cooldown
}

// Adjust shifts the ready time by delta, never into the past of now.
func (t *Timer) Adjust(now, delta time.Duration) {
	t.readyAt += delta
	if t.readyAt < now {
		t.readyAt = now
	}
}

// ForceReady immediately marks the timer ready at the supplied time.
func (t *Timer) ForceReady(now time.Duration) {
	t.readyAt = now
}

// ReadyAt returns the current ready timestamp.
func (t *Timer) ReadyAt() time.Duration {
	return t.readyAt
}

// Clear forgets any running cooldown.
func (t *Timer) Clear() {
	t.readyAt = 0
}
