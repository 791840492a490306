package spells

import (
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/talents"
)

func (m *Mage) chargeDamage() float64 {
	d, _ := m.Config.Spell("arcane_charge")
	return 1 + d.Value*float64(m.ArcaneCharge.Stacks())
}

func (m *Mage) arcaneBlast() {
	ab := m.newSpell("arcane_blast", actor.SchoolArcane)
	charge, _ := m.Config.Spell("arcane_charge")
	shared := ab.Hooks.Cost
	ab.Hooks.Cost = func(a *actor.Action, c float64) float64 {
		c *= 1 + charge.CostMultiplier*float64(m.ArcaneCharge.Stacks())
		return shared(a, c)
	}
	ab.Hooks.Multiplier = thenMul(ab.Hooks.Multiplier, func(*actor.Action, *actor.State) float64 {
		return m.chargeDamage()
	})
	ab.Hooks.OnExecute = then(ab.Hooks.OnExecute, func(_ *actor.Action, s *actor.State) {
		if s.Landed() {
			m.ArcaneCharge.Trigger()
		}
	})
}

func (m *Mage) arcaneMissiles() {
	tick := m.newBackground("arcane_missiles_tick", "arcane_missiles_tick", actor.SchoolArcane)
	tick.Hooks.Multiplier = thenMul(tick.Hooks.Multiplier, func(*actor.Action, *actor.State) float64 {
		return m.chargeDamage()
	})

	am := m.newSpell("arcane_missiles", actor.SchoolArcane)
	am.Channeled = true
	am.MayCrit = false
	am.TickAction = tick
	am.Hooks.Ready = func(*actor.Action, *actor.Actor) bool {
		return m.ArcaneMissiles.Active()
	}
	am.Hooks.OnExecute = then(am.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.ArcaneMissiles.Decrement(1)
	})
	am.Hooks.OnLastTick = func(*actor.Action, *actor.Dot) {
		m.ArcaneCharge.Trigger()
	}
}

func (m *Mage) arcaneBarrage() {
	ab := m.newSpell("arcane_barrage", actor.SchoolArcane)
	d, _ := m.Config.Spell("arcane_barrage")
	ab.Hooks.PreExecute = func(_ *actor.Action, s *actor.State) {
		if n := m.ArcaneCharge.Stacks(); n > 0 {
			s.AOE = n + 1
		}
	}
	ab.Hooks.Multiplier = thenMul(ab.Hooks.Multiplier, func(_ *actor.Action, s *actor.State) float64 {
		mul := m.chargeDamage()
		if s.Chain > 0 {
			mul *= d.Value
		}
		return mul
	})
	ab.Hooks.OnExecute = then(ab.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.ArcaneCharge.Expire(0)
	})
}

func (m *Mage) arcanePower() {
	ap := utility(m.newSpell("arcane_power", actor.SchoolArcane))
	if m.HasTalent(talents.GlyphOfArcanePower) {
		ap.Cooldown.Duration = time.Duration(float64(ap.Cooldown.Duration) * talents.ArcanePowerGlyphCooldownMultiplier)
	}
	ap.Hooks.OnExecute = then(ap.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.ArcanePower.Trigger()
	})
}

func (m *Mage) presenceOfMind() {
	pom := utility(m.newSpell("presence_of_mind", actor.SchoolArcane))
	pom.Hooks.OnExecute = then(pom.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.PresenceOfMind.Trigger()
	})
}

func (m *Mage) evocation() {
	evo := m.newSpell("evocation", actor.SchoolArcane)
	evo.Harmful = false
	evo.MayCrit = false
	evo.Channeled = true
	d, _ := m.Config.Spell("evocation")
	evo.Hooks.OnTick = func(*actor.Action, *actor.Dot) {
		m.RegenMana()
		m.Mana.Gain(d.Value*m.Mana.Max(), "evocation")
	}
}
