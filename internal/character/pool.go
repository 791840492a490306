package character

import (
	"maps"
	"time"
)

// Pool is a numeric resource such as mana or health. A pool with a zero
// maximum is unbounded and never runs dry.
type Pool struct {
	Name string

	current float64
	max     float64

	regenPerSecond float64
	lastRegen      time.Duration

	gains  map[string]float64
	losses map[string]float64
}

// NewPool returns a full pool.
func NewPool(name string, max float64) *Pool {
	p := &Pool{
		Name:   name,
		max:    max,
		gains:  make(map[string]float64),
		losses: make(map[string]float64),
	}
	p.Reset()
	return p
}

// Current returns the current amount.
func (p *Pool) Current() float64 {
	return p.current
}

// Max returns the maximum amount.
func (p *Pool) Max() float64 {
	return p.max
}

// Unbounded reports whether the pool has no maximum.
func (p *Pool) Unbounded() bool {
	return p.max <= 0
}

// Pct returns the fill level in percent.
func (p *Pool) Pct() float64 {
	if p.Unbounded() {
		return 100
	}
	return p.current / p.max * 100
}

// Gain adds amount, capped at the maximum, and returns what was actually added.
func (p *Pool) Gain(amount float64, source string) float64 {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if !p.Unbounded() && p.current+amount > p.max {
		actual = p.max - p.current
	}
	p.current += actual
	p.gains[source] += actual
	return actual
}

// CanSpend reports whether amount is available.
func (p *Pool) CanSpend(amount float64) bool {
	return p.Unbounded() || amount <= p.current
}

// Spend consumes amount. It fails without changing anything when the pool
// holds less than amount.
func (p *Pool) Spend(amount float64, source string) bool {
	if amount <= 0 {
		return true
	}
	if !p.CanSpend(amount) {
		return false
	}
	if !p.Unbounded() {
		p.current -= amount
	}
	p.losses[source] += amount
	return true
}

// Drain removes up to amount and returns what was removed.
func (p *Pool) Drain(amount float64, source string) float64 {
	if amount <= 0 {
		return 0
	}
	actual := amount
	if !p.Unbounded() && actual > p.current {
		actual = p.current
	}
	if !p.Unbounded() {
		p.current -= actual
	}
	p.losses[source] += actual
	return actual
}

// Empty reports whether a bounded pool has run out.
func (p *Pool) Empty() bool {
	return !p.Unbounded() && p.current <= 0
}

// SetRegen sets the passive regeneration rate.
func (p *Pool) SetRegen(perSecond float64) {
	p.regenPerSecond = perSecond
}

// RegenTo applies passive regeneration from the last update up to now.
// multiplier scales the rate, e.g. for haste.
func (p *Pool) RegenTo(now time.Duration, multiplier float64) float64 {
	if now <= p.lastRegen {
		return 0
	}
	elapsed := now - p.lastRegen
	p.lastRegen = now
	if p.regenPerSecond <= 0 {
		return 0
	}
	return p.Gain(p.regenPerSecond*multiplier*elapsed.Seconds(), "regen")
}

// Gains returns a copy of the per-source gain ledger.
func (p *Pool) Gains() map[string]float64 {
	return maps.Clone(p.gains)
}

// Losses returns a copy of the per-source loss ledger.
func (p *Pool) Losses() map[string]float64 {
	return maps.Clone(p.losses)
}

// Reset refills the pool and clears the ledgers.
func (p *Pool) Reset() {
	p.current = p.max
	p.lastRegen = 0
	clear(p.gains)
	clear(p.losses)
}
