package effects

import (
	"math"
	"time"

	"wod-mage-sim/internal/engine"
)

// Infinite is reported as the remaining time of auras without a duration.
const Infinite = time.Duration(math.MaxInt64)

// Clock is the part of the event scheduler auras need.
type Clock interface {
	Now() time.Duration
	Schedule(delay time.Duration, name string, action func()) (*engine.Event, error)
}

// Roller resolves chance-gated triggers.
type Roller interface {
	Roll(p float64) bool
}

// RefreshPolicy decides what re-triggering an active aura does to its duration.
type RefreshPolicy int

const (
	// RefreshDuration resets the remaining time to the full duration.
	RefreshDuration RefreshPolicy = iota
	// ExtendDuration adds the trigger duration to the remaining time.
	ExtendDuration
	// KeepDuration leaves the remaining time untouched.
	KeepDuration
)

// TriggerOpts overrides the defaults of a single trigger. Zero fields fall
// back to the aura's configuration.
type TriggerOpts struct {
	Stacks   int
	Value    float64
	HasValue bool
	Chance   float64
	Duration time.Duration
}

// Aura represents a timed buff/debuff with optional stacking behavior.
type Aura struct {
	Label        string
	Duration     time.Duration
	MaxStacks    int
	Chance       float64
	Policy       RefreshPolicy
	DefaultValue float64

	// Reverse makes the aura climb to MaxStacks and back down to one instead
	// of expiring. Periodic auras step once per Period in their current direction.
	Reverse bool
	Period  time.Duration

	OnGain         func(a *Aura, now time.Duration)
	OnExpire       func(a *Aura, now time.Duration)
	OnStacksChange func(a *Aura, now time.Duration, oldStacks, newStacks int)
	OnTick         func(a *Aura, now time.Duration)

	clock Clock
	rng   Roller

	stacks    int
	value     float64
	reversing bool
	expiresAt time.Duration
	expireEv  *engine.Event
	delayEv   *engine.Event
	tickEv    *engine.Event

	startedAt time.Duration
	uptime    time.Duration
	triggers  int
	upChecks  int
	upHits    int
}

// NewAura returns a ready-to-use aura instance.
func NewAura(clock Clock, rng Roller, label string, duration time.Duration, maxStacks int) *Aura {
	if maxStacks <= 0 {
		maxStacks = 1
	}
	return &Aura{
		Label:     label,
		Duration:  duration,
		MaxStacks: maxStacks,
		Chance:    1,
		clock:     clock,
		rng:       rng,
	}
}

// Trigger adds one stack with the default options.
func (a *Aura) Trigger() bool {
	return a.TriggerWith(TriggerOpts{})
}

// TriggerStacks adds n stacks with the default options.
func (a *Aura) TriggerStacks(n int) bool {
	return a.TriggerWith(TriggerOpts{Stacks: n})
}

// TriggerWith rolls the trigger chance and, on success, adds stacks and
// applies the refresh policy. A failed roll changes nothing.
func (a *Aura) TriggerWith(o TriggerOpts) bool {
	if a == nil {
		return false
	}
	chance := o.Chance
	if chance == 0 {
		chance = a.Chance
	}
	if chance < 1 && (a.rng == nil || !a.rng.Roll(chance)) {
		return false
	}
	stacks := o.Stacks
	if stacks <= 0 {
		stacks = 1
	}
	duration := o.Duration
	if duration <= 0 {
		duration = a.Duration
	}
	now := a.clock.Now()
	a.triggers++

	if a.stacks == 0 {
		a.startedAt = now
		a.value = a.DefaultValue
		if o.HasValue {
			a.value = o.Value
		}
		if a.OnGain != nil {
			a.OnGain(a, now)
		}
		a.setStacks(now, stacks)
		if duration > 0 {
			a.setExpiry(now, now+duration)
		}
		a.scheduleTick()
		return true
	}

	if o.HasValue {
		a.value = o.Value
	}
	if a.Reverse {
		a.bump(now, stacks)
	} else {
		a.setStacks(now, a.stacks+stacks)
	}
	switch a.Policy {
	case RefreshDuration:
		if duration > 0 {
			a.setExpiry(now, now+duration)
		}
	case ExtendDuration:
		if duration > 0 && a.expireEv.Pending() {
			a.setExpiry(now, a.expiresAt+duration)
		}
	case KeepDuration:
	}
	return true
}

// Decrement removes stacks. Reaching zero expires the aura; reverse auras at
// one stack turn around instead.
func (a *Aura) Decrement(n int) {
	if a == nil || a.stacks == 0 {
		return
	}
	if n <= 0 {
		n = 1
	}
	now := a.clock.Now()
	if a.Reverse && a.stacks <= 1 {
		a.reversing = false
		return
	}
	remaining := a.stacks - n
	if remaining <= 0 {
		if a.Reverse {
			a.setStacks(now, 1)
			a.reversing = false
			return
		}
		a.deactivate(now)
		return
	}
	a.setStacks(now, remaining)
}

// Expire removes the aura after delay, immediately when delay is zero. A
// delayed expire never outlives the natural expiry, and a pending one is not
// pushed back by later calls.
func (a *Aura) Expire(delay time.Duration) {
	if a == nil || a.stacks == 0 {
		return
	}
	now := a.clock.Now()
	if delay <= 0 {
		a.deactivate(now)
		return
	}
	if a.delayEv.Pending() {
		return
	}
	if a.expireEv.Pending() && a.expiresAt <= now+delay {
		return
	}
	a.delayEv, _ = a.clock.Schedule(delay, "delayed expire "+a.Label, func() {
		a.delayEv = nil
		a.deactivate(a.clock.Now())
	})
}

// ExtendDuration moves the expiry by d. Shrinking past now expires the aura.
func (a *Aura) ExtendDuration(d time.Duration) {
	if a == nil || a.stacks == 0 || !a.expireEv.Pending() {
		return
	}
	now := a.clock.Now()
	at := a.expiresAt + d
	if at <= now {
		a.deactivate(now)
		return
	}
	a.setExpiry(now, at)
}

// Refresh resets the remaining time to the full duration.
func (a *Aura) Refresh() {
	if a == nil || a.stacks == 0 || a.Duration <= 0 {
		return
	}
	now := a.clock.Now()
	a.setExpiry(now, now+a.Duration)
}

// Check returns the current stack count without side effects.
func (a *Aura) Check() int {
	if a == nil {
		return 0
	}
	return a.stacks
}

// Stacks is an alias of Check.
func (a *Aura) Stacks() int {
	return a.Check()
}

// Up reports whether the aura is active and records the query for benefit
// accounting.
func (a *Aura) Up() bool {
	if a == nil {
		return false
	}
	a.upChecks++
	if a.stacks > 0 {
		a.upHits++
		return true
	}
	return false
}

// Active reports whether the aura is active.
func (a *Aura) Active() bool {
	return a.Check() > 0
}

// Reversing reports the current direction of a reverse aura.
func (a *Aura) Reversing() bool {
	return a != nil && a.reversing
}

// Value returns the value the aura was triggered with.
func (a *Aura) Value() float64 {
	if a == nil || a.stacks == 0 {
		return 0
	}
	return a.value
}

// ExpiresAt returns the timestamp when the aura will expire.
func (a *Aura) ExpiresAt() time.Duration {
	if a == nil || !a.expireEv.Pending() {
		return 0
	}
	return a.expiresAt
}

// Remaining returns remaining duration if active, zero otherwise.
func (a *Aura) Remaining() time.Duration {
	if a == nil || a.stacks == 0 {
		return 0
	}
	if !a.expireEv.Pending() {
		return Infinite
	}
	return a.expiresAt - a.clock.Now()
}

// Uptime returns how long the aura has been active since the last reset.
func (a *Aura) Uptime() time.Duration {
	if a == nil {
		return 0
	}
	if a.stacks > 0 {
		return a.uptime + a.clock.Now() - a.startedAt
	}
	return a.uptime
}

// Triggers returns how many successful triggers happened since the last reset.
func (a *Aura) Triggers() int {
	if a == nil {
		return 0
	}
	return a.triggers
}

// Benefit returns the share of Up queries that found the aura active.
func (a *Aura) Benefit() float64 {
	if a == nil || a.upChecks == 0 {
		return 0
	}
	return float64(a.upHits) / float64(a.upChecks)
}

// Reset silently returns the aura to its initial state.
func (a *Aura) Reset() {
	if a == nil {
		return
	}
	a.expireEv.Cancel()
	a.delayEv.Cancel()
	a.tickEv.Cancel()
	a.expireEv = nil
	a.delayEv = nil
	a.tickEv = nil
	a.stacks = 0
	a.value = 0
	a.reversing = false
	a.expiresAt = 0
	a.startedAt = 0
	a.uptime = 0
	a.triggers = 0
	a.upChecks = 0
	a.upHits = 0
}

func (a *Aura) bump(now time.Duration, n int) {
	before := a.stacks
	a.setStacks(now, a.stacks+n)
	if before == a.stacks {
		a.reversing = true
	}
}

func (a *Aura) setStacks(now time.Duration, stacks int) {
	if stacks > a.MaxStacks {
		stacks = a.MaxStacks
	}
	old := a.stacks
	a.stacks = stacks
	if a.OnStacksChange != nil && old != stacks {
		a.OnStacksChange(a, now, old, stacks)
	}
}

func (a *Aura) setExpiry(now, at time.Duration) {
	a.expireEv.Cancel()
	a.expiresAt = at
	a.expireEv, _ = a.clock.Schedule(at-now, "expire "+a.Label, func() {
		a.expireEv = nil
		a.deactivate(a.clock.Now())
	})
}

func (a *Aura) scheduleTick() {
	if a.Period <= 0 {
		return
	}
	a.tickEv, _ = a.clock.Schedule(a.Period, "tick "+a.Label, func() {
		a.tickEv = nil
		if a.stacks == 0 {
			return
		}
		now := a.clock.Now()
		if a.Reverse {
			if a.reversing {
				a.Decrement(1)
			} else {
				a.bump(now, 1)
			}
		}
		if a.OnTick != nil {
			a.OnTick(a, now)
		}
		if a.stacks > 0 {
			a.scheduleTick()
		}
	})
}

func (a *Aura) deactivate(now time.Duration) {
	if a.stacks == 0 {
		return
	}
	a.expireEv.Cancel()
	a.delayEv.Cancel()
	a.tickEv.Cancel()
	a.expireEv = nil
	a.delayEv = nil
	a.tickEv = nil
	old := a.stacks
	a.stacks = 0
	a.reversing = false
	a.expiresAt = 0
	a.uptime += now - a.startedAt
	if a.OnExpire != nil {
		a.OnExpire(a, now)
	}
	if a.OnStacksChange != nil {
		a.OnStacksChange(a, now, old, 0)
	}
}
