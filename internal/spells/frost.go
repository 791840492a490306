package spells

import (
	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/config"
)

func (m *Mage) frostbolt() {
	fb := m.newSpell("frostbolt", actor.SchoolFrost)
	fb.Hooks.OnExecute = then(fb.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		if m.Spec == config.SpecFrost {
			m.FingersOfFrost.Trigger()
		}
	})
	fb.Hooks.OnImpact = func(_ *actor.Action, s *actor.State) {
		if m.Spec == config.SpecFrost && s.Landed() && s.Amount > 0 {
			m.gainIcicle(s.Target, s.Amount*m.Attr.Mastery())
		}
	}
}

func (m *Mage) iceLance() {
	il := m.newSpell("ice_lance", actor.SchoolFrost)
	d, _ := m.Config.Spell("ice_lance")
	il.Hooks.PreExecute = func(_ *actor.Action, s *actor.State) {
		if m.FingersOfFrost.Up() {
			s.Flags |= flagFingersOfFrost
		}
	}
	il.Hooks.Multiplier = thenMul(il.Hooks.Multiplier, func(_ *actor.Action, s *actor.State) float64 {
		if s.Has(flagFingersOfFrost) {
			return d.Value
		}
		return 1
	})
	il.Hooks.OnExecute = then(il.Hooks.OnExecute, func(_ *actor.Action, s *actor.State) {
		if s.Has(flagFingersOfFrost) {
			m.FingersOfFrost.Decrement(1)
		}
		if m.Spec == config.SpecFrost {
			m.startIcicleVolley(s.Target)
		}
	})
}

func (m *Mage) icyVeins() {
	iv := utility(m.newSpell("icy_veins", actor.SchoolFrost))
	iv.Hooks.OnExecute = then(iv.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.IcyVeins.Trigger()
	})
}
