package actor

import (
	"fmt"
	"time"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/engine"
)

// ActionList is an ordered priority list bound to an actor's abilities.
type ActionList struct {
	Name    string
	Bit     uint64
	Entries []*ListEntry
}

// ListEntry is either an ability or a call into another list.
type ListEntry struct {
	Action    *Action
	Call      *ActionList
	Condition apl.Condition
	// Target overrides the current target for this entry. NoID keeps it.
	Target ID
}

// Use returns an entry using act when cond holds. A nil cond always holds.
func Use(act *Action, cond apl.Condition) *ListEntry {
	return &ListEntry{Action: act, Condition: cond, Target: NoID}
}

// CallList returns an entry descending into l when cond holds.
func CallList(l *ActionList, cond apl.Condition) *ListEntry {
	return &ListEntry{Call: l, Condition: cond, Target: NoID}
}

// On overrides the entry's target.
func (e *ListEntry) On(t *Actor) *ListEntry {
	e.Target = t.ID
	return e
}

// Selection is the outcome of one decision.
type Selection struct {
	Action *Action
	Target *Actor
}

// BindRotation resolves a compiled rotation against the actor's abilities.
// The list named apl.DefaultList is where every decision starts.
func (a *Actor) BindRotation(rot *apl.CompiledRotation) error {
	if rot == nil || rot.Default() == nil {
		return fmt.Errorf("%s: rotation has no %s list", a.Name, apl.DefaultList)
	}
	if len(rot.Lists) > apl.MaxLists {
		return fmt.Errorf("%s: %d action lists, at most %d supported", a.Name, len(rot.Lists), apl.MaxLists)
	}
	byName := make(map[string]*ActionList, len(rot.Lists))
	lists := make([]*ActionList, 0, len(rot.Lists))
	for i, l := range rot.Lists {
		al := &ActionList{Name: l.Name, Bit: 1 << uint(i)}
		byName[l.Name] = al
		lists = append(lists, al)
	}
	offGCD := false
	for i, l := range rot.Lists {
		al := lists[i]
		for _, def := range l.Actions {
			e := &ListEntry{Condition: def.Condition, Target: NoID}
			if def.Target != "" {
				t := a.registry.Find(def.Target)
				if t == nil {
					return fmt.Errorf("%s: list %s: unknown target %q", a.Name, l.Name, def.Target)
				}
				e.Target = t.ID
			}
			switch def.Type {
			case apl.ActionCallList:
				e.Call = byName[def.List]
				if e.Call == nil {
					return fmt.Errorf("%s: list %s calls unknown list %q", a.Name, l.Name, def.List)
				}
			case apl.ActionWait:
				e.Action = a.waitAction(def.Duration)
			default:
				e.Action = a.Action(def.Spell)
				if e.Action == nil {
					return fmt.Errorf("%s: list %s: %q: %w", a.Name, l.Name, def.Spell, ErrUnknownAction)
				}
				if !e.Action.Background && e.Action.GCDTime == 0 && e.Action.CastTime == 0 && !e.Action.Channeled {
					offGCD = true
				}
			}
			al.Entries = append(al.Entries, e)
		}
	}
	// the default list is always evaluated first
	for i, l := range lists {
		if l.Name == apl.DefaultList {
			lists[0], lists[i] = lists[i], lists[0]
			break
		}
	}
	a.lists = lists
	a.offGCD = offGCD
	return nil
}

// SetLists installs hand-built lists. The first list is the entry point.
func (a *Actor) SetLists(lists ...*ActionList) {
	a.lists = lists
	a.offGCD = false
	for i, l := range lists {
		if l.Bit == 0 {
			l.Bit = 1 << uint(i)
		}
		for _, e := range l.Entries {
			if e.Action != nil && e.Action.GCDTime == 0 && e.Action.CastTime == 0 && !e.Action.Channeled {
				a.offGCD = true
			}
		}
	}
}

// Lists returns the bound action lists, entry point first.
func (a *Actor) Lists() []*ActionList {
	return a.lists
}

// waitAction idles for d without triggering the global cooldown.
func (a *Actor) waitAction(d time.Duration) *Action {
	w := NewAction(a, "wait", SchoolPhysical)
	w.Harmful = false
	w.GCDTime = 0
	w.CastTime = d
	w.Hooks.ExecuteTime = func(*Action, time.Duration) time.Duration { return d }
	return w
}

// SelectAction walks the action lists and returns the first usable entry.
// Re-entering a list that is already on the current call path aborts the
// iteration with ErrActionListLoop.
func (a *Actor) SelectAction() (Selection, error) {
	return a.selectAction(false)
}

func (a *Actor) selectAction(offGCD bool) (Selection, error) {
	if len(a.lists) == 0 {
		return Selection{}, nil
	}
	return a.evalList(a.lists[0], 0, offGCD)
}

func (a *Actor) evalList(l *ActionList, visited uint64, offGCD bool) (Selection, error) {
	visited |= l.Bit
	for _, e := range l.Entries {
		target := a.CurrentTarget()
		if e.Target != NoID {
			target = a.registry.Get(e.Target)
		}
		if e.Call != nil {
			if !a.eval(e.Condition, target) {
				continue
			}
			if visited&e.Call.Bit != 0 {
				err := fmt.Errorf("list %s re-entered from %s: %w", e.Call.Name, l.Name, ErrActionListLoop)
				return Selection{}, engine.Abort(a.Name, e.Call.Name, err)
			}
			sel, err := a.evalList(e.Call, visited, offGCD)
			if err != nil || sel.Action != nil {
				return sel, err
			}
			continue
		}
		act := e.Action
		if act == nil || act.Background {
			continue
		}
		// helpful actions land on the actor itself; conditions still see the target
		on := target
		if !act.Harmful && e.Target == NoID {
			on = a
		}
		if offGCD && (act.GCD() > 0 || act.ExecuteTime() > 0 || act.Channeled) {
			continue
		}
		if !act.Ready(on) {
			continue
		}
		if !a.eval(e.Condition, target) {
			continue
		}
		return Selection{Action: act, Target: on}, nil
	}
	return Selection{}, nil
}

func (a *Actor) eval(c apl.Condition, target *Actor) bool {
	if c == nil {
		return true
	}
	var ctx apl.EvaluationContext
	if a.ContextFunc != nil {
		ctx = a.ContextFunc(a, target)
	}
	return c.Eval(ctx)
}
