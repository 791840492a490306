package spells

import (
	"fmt"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/effects"
	"wod-mage-sim/internal/engine"
)

// chooseTarget resolves the target a choose_target entry points at. Entries
// without an explicit target pick the first living enemy.
func (m *Mage) chooseTarget() {
	ct := utility(actor.NewAction(m.Actor, "choose_target", actor.SchoolPhysical))
	m.AddAction(ct)
	chosen := func(t *actor.Actor) *actor.Actor {
		if t == nil || t == m.Actor {
			return m.firstEnemy()
		}
		return t
	}
	ct.Hooks.Ready = func(_ *actor.Action, t *actor.Actor) bool {
		next := chosen(t)
		return next != nil && !next.Sleeping() && next != m.CurrentTarget()
	}
	ct.Hooks.OnSchedule = func(a *actor.Action, s *actor.State) {
		if a.LastExecute() == m.Now() {
			err := fmt.Errorf("target switched twice at %s: %w", m.Now(), effects.ErrSwitchLoop)
			m.Sim.Abort(engine.Abort(m.Name, a.Name, err))
		}
	}
	ct.Hooks.OnExecute = func(_ *actor.Action, s *actor.State) {
		if m.Sim.Aborted() != nil {
			return
		}
		next := chosen(s.Target)
		m.Logf("TARGET", "%s -> %s", actorName(m.CurrentTarget()), next.Name)
		m.SetTarget(next)
	}
}

// phaseActions registers start_<name> and stop_<name>, which flip sw.
// Flipping a switch twice at the same timestamp aborts the iteration.
func (m *Mage) phaseActions(name string, sw *effects.StateSwitch) {
	toggle := func(action string, on bool) {
		a := utility(actor.NewAction(m.Actor, action, actor.SchoolPhysical))
		m.AddAction(a)
		a.Hooks.Ready = func(*actor.Action, *actor.Actor) bool {
			return sw.On() != on
		}
		a.Hooks.OnExecute = func(*actor.Action, *actor.State) {
			now := m.Now()
			var ok bool
			if on {
				ok = sw.Enable(now)
			} else {
				ok = sw.Disable(now)
			}
			if !ok {
				err := fmt.Errorf("%s at %s: %w", name, now, effects.ErrSwitchLoop)
				m.Sim.Abort(engine.Abort(m.Name, action, err))
				return
			}
			m.Logf("PHASE", "%s %t", name, on)
		}
	}
	toggle("start_"+name, true)
	toggle("stop_"+name, false)
}

func actorName(a *actor.Actor) string {
	if a == nil {
		return "none"
	}
	return a.Name
}
