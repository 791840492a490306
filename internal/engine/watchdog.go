package engine

import (
	"fmt"
	"time"
)

// DefaultWatchdogThreshold is used when no threshold is configured.
const DefaultWatchdogThreshold = 1000

// Watchdog aborts an iteration once an actor keeps making decisions without
// simulated time moving forward.
type Watchdog struct {
	Threshold int

	last  map[string]time.Duration
	count map[string]int
}

// NewWatchdog returns a watchdog with the given threshold.
func NewWatchdog(threshold int) *Watchdog {
	if threshold <= 0 {
		threshold = DefaultWatchdogThreshold
	}
	return &Watchdog{
		Threshold: threshold,
		last:      make(map[string]time.Duration),
		count:     make(map[string]int),
	}
}

// Observe records a decision point for actor at now.
func (w *Watchdog) Observe(actor string, now time.Duration) error {
	last, seen := w.last[actor]
	if seen && last == now {
		w.count[actor]++
	} else {
		w.last[actor] = now
		w.count[actor] = 0
	}
	if w.count[actor] >= w.Threshold {
		return Abort(actor, "watchdog", fmt.Errorf("%d consecutive decisions at %.3fs: %w",
			w.count[actor], now.Seconds(), ErrNoProgress))
	}
	return nil
}

// Reset forgets all observations.
func (w *Watchdog) Reset() {
	clear(w.last)
	clear(w.count)
}
