package spells

import (
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/talents"
)

// State flags set when a cast is scheduled and read when it executes.
const (
	flagPresenceOfMind uint64 = 1 << iota
	flagHotStreak
	flagFingersOfFrost
)

func (m *Mage) spellData(name string) config.SpellData {
	d, ok := m.Config.Spell(name)
	if !ok {
		m.missing = append(m.missing, name)
	}
	return d
}

func applySpellData(a *actor.Action, d config.SpellData) {
	a.BaseCost = d.ManaCost
	a.CastTime = config.Seconds(d.CastTime)
	a.Cooldown.Duration = config.Seconds(d.Cooldown)
	a.TravelTime = config.Seconds(d.TravelTime)
	a.AOE = d.AOE
	a.BaseMin = d.BaseDamageMin
	a.BaseMax = d.BaseDamageMax
	a.SPCoefficient = d.SPCoefficient
	a.DotDuration = config.Seconds(d.DotDuration)
	a.TickTime = config.Seconds(d.TickTime)
	a.TickBase = d.TickDamage
	a.TickCoefficient = d.TickCoefficient
	a.HastedTicks = d.HastedTicks
	if d.OffGCD {
		a.GCDTime = 0
	}
}

// newSpell registers a foreground spell built from its data row with the
// mage-wide hooks installed.
func (m *Mage) newSpell(name string, school actor.School) *actor.Action {
	a := actor.NewAction(m.Actor, name, school)
	applySpellData(a, m.spellData(name))
	a.Hooks = actor.Hooks{
		Cost:        m.cost,
		ExecuteTime: m.executeTime,
		Multiplier:  m.multiplier,
		OnSchedule:  m.onSchedule,
		OnExecute:   m.onExecute,
	}
	return m.AddAction(a)
}

// newBackground registers an action other spells execute directly.
func (m *Mage) newBackground(name, data string, school actor.School) *actor.Action {
	a := actor.NewAction(m.Actor, name, school)
	applySpellData(a, m.spellData(data))
	a.Background = true
	a.GCDTime = 0
	a.Hooks.Multiplier = m.multiplier
	return m.AddAction(a)
}

// utility marks a as a helpful action that costs no GCD.
func utility(a *actor.Action) *actor.Action {
	a.Harmful = false
	a.MayCrit = false
	a.GCDTime = 0
	return a
}

// then chains two state hooks.
func then(first, next func(*actor.Action, *actor.State)) func(*actor.Action, *actor.State) {
	if first == nil {
		return next
	}
	if next == nil {
		return first
	}
	return func(a *actor.Action, s *actor.State) {
		first(a, s)
		next(a, s)
	}
}

func thenMul(first, next func(*actor.Action, *actor.State) float64) func(*actor.Action, *actor.State) float64 {
	if first == nil {
		return next
	}
	return func(a *actor.Action, s *actor.State) float64 {
		return first(a, s) * next(a, s)
	}
}

func (m *Mage) cost(_ *actor.Action, c float64) float64 {
	if m.ArcanePower.Active() {
		if d, ok := m.Config.Spell("arcane_power"); ok && d.CostMultiplier > 0 {
			c *= d.CostMultiplier
		}
	}
	return c
}

func (m *Mage) executeTime(a *actor.Action, t time.Duration) time.Duration {
	if t > 0 && !a.Channeled && m.PresenceOfMind.Active() {
		return 0
	}
	return t
}

func (m *Mage) onSchedule(_ *actor.Action, s *actor.State) {
	if s.InstantCast && !s.Has(flagHotStreak) && m.PresenceOfMind.Up() {
		s.Flags |= flagPresenceOfMind
	}
}

func (m *Mage) onExecute(a *actor.Action, s *actor.State) {
	if s.Has(flagPresenceOfMind) {
		m.PresenceOfMind.Expire(0)
	}
	if m.Spec == config.SpecArcane && a.School == actor.SchoolArcane && a.Harmful &&
		!a.Channeled && s.Landed() {
		m.ArcaneMissiles.Trigger()
	}
}

func (m *Mage) multiplier(_ *actor.Action, _ *actor.State) float64 {
	mul := 1.0
	if m.ArcanePower.Up() {
		mul *= 1 + m.ArcanePower.Value()
	}
	mul *= talents.IncantersFlowMultiplier(m.IncantersFlow.Stacks())
	if m.Spec == config.SpecArcane {
		m.RegenMana()
		mul *= 1 + m.Attr.Mastery()*m.Mana.Pct()/100
	}
	return mul
}
