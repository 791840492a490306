package actor

import "time"

// State is the snapshot an action carries from schedule to impact. Each
// target of an area action gets its own clone.
type State struct {
	Action *Action
	Target *Actor
	Time   time.Duration
	Chain  int

	SpellPower float64
	Haste      float64
	CritChance float64
	Multiplier float64

	BaseExecuteTime time.Duration
	ExecuteTime     time.Duration
	// InstantCast marks a cast whose base cast time was reduced to zero.
	InstantCast bool

	// Fixed replaces the rolled base damage when positive.
	Fixed float64
	// Scale is an extra per-state damage factor, e.g. for chained targets.
	Scale float64
	// Flags carries class-defined markers from schedule to impact.
	Flags uint64
	// AOE overrides the action's target count for this cast when non-zero.
	AOE int

	Result Result
	Amount float64
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Crit reports whether the state resolved as a critical strike.
func (s *State) Crit() bool {
	return s.Result == ResultCrit
}

// Landed reports whether the state hit.
func (s *State) Landed() bool {
	return s.Result == ResultHit || s.Result == ResultCrit
}

func (s *State) scale() float64 {
	if s.Scale == 0 {
		return 1
	}
	return s.Scale
}

// Has reports whether every bit of flag is set.
func (s *State) Has(flag uint64) bool {
	return s.Flags&flag == flag
}
