package actor

import (
	"time"

	"wod-mage-sim/internal/effects"
)

// School is the damage school of an action.
type School int

const (
	SchoolPhysical School = iota
	SchoolArcane
	SchoolFire
	SchoolFrost
	SchoolFrostfire
)

func (s School) String() string {
	switch s {
	case SchoolArcane:
		return "arcane"
	case SchoolFire:
		return "fire"
	case SchoolFrost:
		return "frost"
	case SchoolFrostfire:
		return "frostfire"
	default:
		return "physical"
	}
}

const multistrikeFactor = 0.3

// Hooks are the optional customisation points of an action. Nil hooks keep
// the default behaviour.
type Hooks struct {
	Ready       func(a *Action, target *Actor) bool
	Cost        func(a *Action, cost float64) float64
	ExecuteTime func(a *Action, base time.Duration) time.Duration
	Multiplier  func(a *Action, s *State) float64
	CritChance  func(a *Action, s *State, chance float64) float64

	// OnSchedule runs when the cast starts, before any cast time elapses.
	OnSchedule func(a *Action, s *State)
	// PreExecute runs before cost and resolution.
	PreExecute func(a *Action, s *State)
	// OnExecute runs once per execute with the primary state, after every
	// target has been resolved and impacts have been queued.
	OnExecute func(a *Action, s *State)
	// OnImpact runs per target when the action lands.
	OnImpact func(a *Action, s *State)

	OnTick     func(a *Action, d *Dot)
	OnLastTick func(a *Action, d *Dot)
	// OnRefresh runs when a ticking dot is triggered again.
	OnRefresh func(a *Action, d *Dot)
}

// Action is an ability. Its data fields describe the defaults; Hooks adjust
// the parts a class needs to customise.
type Action struct {
	Name   string
	School School
	Owner  *Actor

	Background bool
	Harmful    bool
	Channeled  bool

	BaseCost   float64
	CastTime   time.Duration
	GCDTime    time.Duration
	Cooldown   effects.Timer
	TravelTime time.Duration
	// AOE is 0 for single target, -1 for every enemy and n for up to n.
	AOE int

	BaseMin           float64
	BaseMax           float64
	SPCoefficient     float64
	MayCrit           bool
	IgnoreMultipliers bool

	DotDuration     time.Duration
	TickTime        time.Duration
	TickBase        float64
	TickCoefficient float64
	HastedTicks     bool
	TickMayCrit     bool
	// Residual dots tick a banked amount instead of a formula.
	Residual bool
	// TickAction executes on every tick instead of dealing tick damage.
	TickAction *Action

	Hooks Hooks

	executes    int
	lastExecute time.Duration
}

// NewAction returns a harmful, critable action on the owner's base GCD.
func NewAction(owner *Actor, name string, school School) *Action {
	return &Action{
		Name:        name,
		School:      school,
		Owner:       owner,
		Harmful:     true,
		GCDTime:     owner.GCDBase,
		MayCrit:     true,
		TickMayCrit: true,
		Cooldown:    effects.Timer{Name: name},
		lastExecute: -1,
	}
}

// Executes returns how often the action executed this iteration.
func (a *Action) Executes() int {
	return a.executes
}

// LastExecute returns the time of the last execute or -1.
func (a *Action) LastExecute() time.Duration {
	return a.lastExecute
}

func (a *Action) reset() {
	a.Cooldown.Clear()
	a.executes = 0
	a.lastExecute = -1
}

// Cost returns the current mana cost.
func (a *Action) Cost() float64 {
	c := a.BaseCost
	if a.Hooks.Cost != nil {
		c = a.Hooks.Cost(a, c)
	}
	if c < 0 {
		return 0
	}
	return c
}

// BaseExecuteTime returns the hasted cast time before hooks.
func (a *Action) BaseExecuteTime() time.Duration {
	if a.CastTime <= 0 {
		return 0
	}
	return time.Duration(float64(a.CastTime) * a.Owner.Attr.SpellSpeed())
}

// ExecuteTime returns the cast time after hooks.
func (a *Action) ExecuteTime() time.Duration {
	t := a.BaseExecuteTime()
	if a.Hooks.ExecuteTime != nil {
		t = a.Hooks.ExecuteTime(a, t)
	}
	if t < 0 {
		return 0
	}
	return t
}

// GCD returns the hasted global cooldown the action triggers.
func (a *Action) GCD() time.Duration {
	if a.GCDTime <= 0 {
		return 0
	}
	g := time.Duration(float64(a.GCDTime) * a.Owner.Attr.SpellSpeed())
	if g < a.Owner.GCDMin {
		g = a.Owner.GCDMin
	}
	return g
}

// Ready reports whether the action could be used on target right now.
func (a *Action) Ready(target *Actor) bool {
	owner := a.Owner
	if owner.sleeping {
		return false
	}
	if !a.Cooldown.Ready(owner.Now()) {
		return false
	}
	if a.Harmful && (target == nil || target.sleeping) {
		return false
	}
	if cost := a.Cost(); cost > 0 {
		owner.RegenMana()
		if !owner.Mana.CanSpend(cost) {
			return false
		}
	}
	if a.Hooks.Ready != nil && !a.Hooks.Ready(a, target) {
		return false
	}
	return true
}

// NewState returns a fresh state aimed at target.
func (a *Action) NewState(target *Actor) *State {
	return &State{Action: a, Target: target, Time: a.Owner.Now(), Scale: 1}
}

// Snapshot captures the owner's current stats into s.
func (a *Action) Snapshot(s *State) {
	attr := a.Owner.Attr
	s.SpellPower = attr.SpellPower()
	s.Haste = attr.Haste()
	s.CritChance = a.critChance(s)
	s.Multiplier = a.multiplier(s)
}

func (a *Action) multiplier(s *State) float64 {
	if a.IgnoreMultipliers {
		return 1
	}
	attr := a.Owner.Attr
	m := attr.DamageMultiplier() * (1 + attr.Versatility())
	if a.Hooks.Multiplier != nil {
		m *= a.Hooks.Multiplier(a, s)
	}
	return m
}

func (a *Action) critChance(s *State) float64 {
	c := a.Owner.Attr.SpellCrit()
	if a.Hooks.CritChance != nil {
		c = a.Hooks.CritChance(a, s, c)
	}
	return min(max(c, 0), 1)
}

func (a *Action) directDamage() bool {
	return a.BaseMax > 0 || a.SPCoefficient > 0
}

// ScheduleExecute starts using the action on target as the owner's
// foreground action.
func (a *Action) ScheduleExecute(target *Actor) {
	owner := a.Owner
	s := a.NewState(target)
	s.BaseExecuteTime = a.BaseExecuteTime()
	s.ExecuteTime = a.ExecuteTime()
	s.InstantCast = !a.Channeled && s.BaseExecuteTime > 0 && s.ExecuteTime == 0
	if a.Hooks.OnSchedule != nil {
		a.Hooks.OnSchedule(a, s)
	}
	if g := a.GCD(); g > 0 {
		owner.gcd.Reset(owner.Now(), g)
	}
	if s.ExecuteTime > 0 {
		owner.executing = s
		owner.Logf("CAST_START", "%s -> %s (%.3fs)", a.Name, targetName(target), s.ExecuteTime.Seconds())
		owner.castEvent = owner.Schedule(s.ExecuteTime, "cast "+a.Name, func() {
			owner.castEvent = nil
			owner.executing = nil
			a.complete(s)
		})
		return
	}
	a.complete(s)
}

// complete finishes a foreground cast. A harmful cast whose target died in
// the meantime fails without effect.
func (a *Action) complete(s *State) {
	owner := a.Owner
	if a.Harmful && (s.Target == nil || s.Target.sleeping) {
		owner.Logf("CAST_FAIL", "%s target gone", a.Name)
		owner.actionFinished()
		return
	}
	a.Execute(s)
	owner.actionFinished()
}

// Execute pays for the action, resolves it against every target and queues
// the impacts. Background actions are executed directly by their parents.
func (a *Action) Execute(s *State) {
	owner := a.Owner
	now := owner.Now()
	a.executes++
	a.lastExecute = now
	if a.Hooks.PreExecute != nil {
		a.Hooks.PreExecute(a, s)
	}
	if cost := a.Cost(); cost > 0 {
		owner.RegenMana()
		owner.Mana.Spend(cost, a.Name)
	}
	if a.Cooldown.Duration > 0 {
		a.Cooldown.Start(now)
	}

	aoe := a.AOE
	if s.AOE != 0 {
		aoe = s.AOE
	}
	targets := a.targetsUpTo(s.Target, aoe)
	states := make([]*State, 0, len(targets))
	for i, t := range targets {
		st := s
		if i > 0 {
			st = s.Clone()
		}
		st.Target = t
		st.Chain = i
		a.Snapshot(st)
		a.resolve(st)
		states = append(states, st)
	}
	if len(states) == 0 {
		a.Snapshot(s)
		s.Result = ResultHit
	}

	owner.Stats.Record(Record{
		Time:   now,
		Actor:  owner.Name,
		Action: a.Name,
		Target: targetName(s.Target),
		Kind:   RecordExecute,
		Result: s.Result,
	})
	if a.Background {
		owner.Logf("EXECUTE", "%s -> %s", a.Name, targetName(s.Target))
	} else {
		owner.Logf("CAST_SUCCESS", "%s -> %s", a.Name, targetName(s.Target))
	}

	for _, st := range states {
		if a.TravelTime > 0 {
			owner.Schedule(a.TravelTime, "impact "+a.Name, func() { a.Impact(st) })
			continue
		}
		a.Impact(st)
	}
	if a.Hooks.OnExecute != nil {
		a.Hooks.OnExecute(a, s)
	}
}

// TargetList returns the targets of one execute, primary first.
func (a *Action) TargetList(primary *Actor) []*Actor {
	return a.targetsUpTo(primary, a.AOE)
}

func (a *Action) targetsUpTo(primary *Actor, aoe int) []*Actor {
	if aoe == 0 || a.Owner.registry == nil {
		if primary == nil {
			return nil
		}
		return []*Actor{primary}
	}
	var out []*Actor
	if primary != nil && !primary.sleeping {
		out = append(out, primary)
	}
	for _, e := range a.Owner.registry.Enemies() {
		if e == primary {
			continue
		}
		if aoe > 0 && len(out) >= aoe {
			break
		}
		out = append(out, e)
	}
	return out
}

func (a *Action) resolve(s *State) {
	owner := a.Owner
	if !a.Harmful {
		s.Result = ResultHit
		return
	}
	if owner.MissChance > 0 && owner.RNG.Roll(owner.MissChance) {
		s.Result = ResultMiss
		s.Amount = 0
		return
	}
	s.Result = ResultHit
	if !a.directDamage() && s.Fixed <= 0 {
		return
	}
	base := s.Fixed
	if base <= 0 {
		base = owner.RNG.Range(a.BaseMin, a.BaseMax) + s.SpellPower*a.SPCoefficient
	}
	s.Amount = base * s.Multiplier * s.scale()
	if a.MayCrit && owner.RNG.Roll(s.CritChance) {
		s.Result = ResultCrit
		s.Amount *= owner.CritMultiplier
	}
}

// Impact applies a resolved state to its target. Landing on a target that
// has gone to sleep does nothing.
func (a *Action) Impact(s *State) {
	owner := a.Owner
	if s.Target == nil || s.Target.sleeping {
		return
	}
	if s.Result == ResultMiss {
		owner.Stats.Record(Record{Time: owner.Now(), Actor: owner.Name, Action: a.Name, Target: s.Target.Name, Kind: RecordImpact, Result: ResultMiss})
		owner.Logf("MISS", "%s -> %s", a.Name, s.Target.Name)
		return
	}
	if s.Amount > 0 {
		a.dealDamage(s.Target, s.Amount, s.Result, RecordImpact)
		a.multistrike(s.Target, s.Amount, RecordImpact)
	}
	if a.Channeled {
		a.startChannel(s)
	} else if a.DotDuration > 0 && !a.Residual {
		a.Dot(s.Target).Trigger(s)
	}
	if a.Hooks.OnImpact != nil {
		a.Hooks.OnImpact(a, s)
	}
}

func (a *Action) startChannel(s *State) {
	if s.Target == nil || s.Target.sleeping {
		return
	}
	d := a.Dot(s.Target)
	d.Trigger(s)
	if d.IsTicking() {
		a.Owner.channel = d
	}
}

func (a *Action) dealDamage(target *Actor, amount float64, result Result, kind RecordKind) {
	owner := a.Owner
	owner.Stats.Record(Record{
		Time:   owner.Now(),
		Actor:  owner.Name,
		Action: a.Name,
		Target: target.Name,
		Kind:   kind,
		Result: result,
		Amount: amount,
	})
	event := "DAMAGE"
	if kind == RecordTick {
		event = "TICK"
	}
	owner.Logf(event, "%s -> %s %s %.0f", a.Name, target.Name, result, amount)
	target.TakeDamage(amount, owner.Name+"/"+a.Name)
}

// multistrike rolls the two extra strikes granted by the multistrike stat.
func (a *Action) multistrike(target *Actor, amount float64, kind RecordKind) {
	chance := a.Owner.Attr.Multistrike()
	if chance <= 0 {
		return
	}
	for range 2 {
		if target.sleeping {
			return
		}
		if a.Owner.RNG.Roll(chance) {
			a.dealDamage(target, amount*multistrikeFactor, ResultHit, kind)
		}
	}
}

// Dot returns the owner's dot of this action on target.
func (a *Action) Dot(target *Actor) *Dot {
	return a.Owner.TargetData(target).Dot(a)
}

// FindDot returns the dot on target without creating it.
func (a *Action) FindDot(target *Actor) *Dot {
	return a.Owner.FindTargetData(target).FindDot(a.Name)
}

func targetName(t *Actor) string {
	if t == nil {
		return "none"
	}
	return t.Name
}
