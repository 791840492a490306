package actor

import (
	"time"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/effects"
	"wod-mage-sim/internal/engine"
)

const (
	defaultGCD    = 1500 * time.Millisecond
	defaultGCDMin = time.Second
)

// TargetRemovedFunc is called on every other actor when removed demises.
type TargetRemovedFunc func(self, removed *Actor)

// LifecycleHooks let a class layer react to the actor's lifecycle.
type LifecycleHooks struct {
	OnReset  func(a *Actor)
	OnArise  func(a *Actor)
	OnDemise func(a *Actor)
}

// Actor is a participant of the fight: the player, a pet or an enemy.
type Actor struct {
	ID      ID
	Name    string
	Kind    Kind
	OwnerID ID

	Sim    *engine.Sim
	Attr   *character.Attributes
	Mana   *character.Pool
	Health *character.Pool
	RNG    *engine.RNG
	Stats  StatsSink

	GCDBase        time.Duration
	GCDMin         time.Duration
	CritMultiplier float64
	MissChance     float64

	// ContextFunc builds the condition context for a candidate target.
	ContextFunc func(self, target *Actor) apl.EvaluationContext
	Hooks       LifecycleHooks

	registry      *Registry
	target        ID
	defaultTarget ID

	actions    []*Action
	byName     map[string]*Action
	buffs      []*effects.Aura
	buffByName map[string]*effects.Aura
	lists      []*ActionList
	offGCD     bool

	targetData     map[ID]*TargetData
	targetDataInit []func(td *TargetData)
	removed        []TargetRemovedFunc
	events         map[*engine.Event]struct{}

	gcd         effects.Timer
	executing   *State
	castEvent   *engine.Event
	channel     *Dot
	readyEvent  *engine.Event
	offGCDEvent *engine.Event
	lastWait    time.Duration
	sleeping    bool
	arisenAt    time.Duration
}

// New returns a sleeping actor bound to sim. Pools are sized from the base
// stats of attr.
func New(sim *engine.Sim, name string, kind Kind, attr *character.Attributes) *Actor {
	base := attr.Base()
	a := &Actor{
		ID:             NoID,
		Name:           name,
		Kind:           kind,
		OwnerID:        NoID,
		Sim:            sim,
		Attr:           attr,
		Mana:           character.NewPool("mana", base.MaxMana),
		Health:         character.NewPool("health", base.MaxHealth),
		RNG:            engine.NewRNG(sim.Config.Seed, sim.StreamLabel(name)),
		Stats:          discardSink{},
		GCDBase:        defaultGCD,
		GCDMin:         defaultGCDMin,
		CritMultiplier: 2,
		target:         NoID,
		defaultTarget:  NoID,
		byName:         make(map[string]*Action),
		buffByName:     make(map[string]*effects.Aura),
		targetData:     make(map[ID]*TargetData),
		events:         make(map[*engine.Event]struct{}),
		lastWait:       -1,
		sleeping:       true,
	}
	a.Mana.SetRegen(base.ManaRegenPerSecond)
	return a
}

// Now returns the current simulated time.
func (a *Actor) Now() time.Duration {
	return a.Sim.Now()
}

// Registry returns the registry the actor belongs to.
func (a *Actor) Registry() *Registry {
	return a.registry
}

// Owner returns the owning actor of a pet.
func (a *Actor) Owner() *Actor {
	return a.registry.Get(a.OwnerID)
}

// Sleeping reports whether the actor is out of the fight.
func (a *Actor) Sleeping() bool {
	return a.sleeping
}

// ArisenAt returns when the actor last arose.
func (a *Actor) ArisenAt() time.Duration {
	return a.arisenAt
}

// Logf writes a combat log line for the actor.
func (a *Actor) Logf(event, format string, args ...any) {
	a.Sim.Logf(a.Name, event, format, args...)
}

// Schedule queues fn after delay. The event is tracked so Reset and Demise
// can cancel everything the actor still has pending. Scheduling into the
// past aborts the iteration and returns nil.
func (a *Actor) Schedule(delay time.Duration, name string, fn func()) *engine.Event {
	var ev *engine.Event
	ev, err := a.Sim.Schedule(delay, a.Name+" "+name, func() {
		delete(a.events, ev)
		fn()
	})
	if err != nil {
		a.Sim.Abort(engine.Abort(a.Name, name, err))
		return nil
	}
	a.events[ev] = struct{}{}
	return ev
}

// CancelEvents cancels every pending event the actor scheduled.
func (a *Actor) CancelEvents() {
	for ev := range a.events {
		ev.Cancel()
	}
	clear(a.events)
}

// NewBuff creates an aura on the actor's clock and registers it.
func (a *Actor) NewBuff(label string, duration time.Duration, maxStacks int) *effects.Aura {
	return a.RegisterBuff(effects.NewAura(a.Sim, a.RNG, label, duration, maxStacks))
}

// RegisterBuff makes b visible to Buff, Reset and Demise.
func (a *Actor) RegisterBuff(b *effects.Aura) *effects.Aura {
	if _, ok := a.buffByName[b.Label]; !ok {
		a.buffs = append(a.buffs, b)
	}
	a.buffByName[b.Label] = b
	return b
}

// Buff returns the named aura or nil.
func (a *Actor) Buff(name string) *effects.Aura {
	return a.buffByName[name]
}

// Buffs returns every registered aura in registration order.
func (a *Actor) Buffs() []*effects.Aura {
	return a.buffs
}

// AddAction registers act under its name and makes a its owner.
func (a *Actor) AddAction(act *Action) *Action {
	act.Owner = a
	if _, ok := a.byName[act.Name]; !ok {
		a.actions = append(a.actions, act)
	}
	a.byName[act.Name] = act
	return act
}

// Action returns the named ability or nil.
func (a *Actor) Action(name string) *Action {
	return a.byName[name]
}

// Actions returns the registered abilities in registration order.
func (a *Actor) Actions() []*Action {
	return a.actions
}

// OnTargetRemoved registers fn to run whenever another actor demises.
func (a *Actor) OnTargetRemoved(fn TargetRemovedFunc) {
	a.removed = append(a.removed, fn)
}

// OnTargetData registers an initializer run when target data is created.
func (a *Actor) OnTargetData(fn func(td *TargetData)) {
	a.targetDataInit = append(a.targetDataInit, fn)
}

// TargetData returns the per-target state the actor keeps for t, creating it
// on first use.
func (a *Actor) TargetData(t *Actor) *TargetData {
	if t == nil {
		return nil
	}
	if td, ok := a.targetData[t.ID]; ok {
		return td
	}
	td := newTargetData(a, t)
	a.targetData[t.ID] = td
	for _, fn := range a.targetDataInit {
		fn(td)
	}
	return td
}

// FindTargetData returns existing target data without creating it.
func (a *Actor) FindTargetData(t *Actor) *TargetData {
	if t == nil {
		return nil
	}
	return a.targetData[t.ID]
}

// CurrentTarget returns the actor's current target.
func (a *Actor) CurrentTarget() *Actor {
	return a.registry.Get(a.target)
}

// SetTarget changes the current target.
func (a *Actor) SetTarget(t *Actor) {
	if t == nil {
		a.target = NoID
		return
	}
	a.target = t.ID
}

// SetDefaultTarget sets the target restored on every reset.
func (a *Actor) SetDefaultTarget(t *Actor) {
	a.SetTarget(t)
	a.defaultTarget = a.target
}

// Executing returns the state of the cast in progress.
func (a *Actor) Executing() *State {
	return a.executing
}

// Channeling returns the channel in progress.
func (a *Actor) Channeling() *Dot {
	return a.channel
}

// GCDRemaining returns the time left on the global cooldown.
func (a *Actor) GCDRemaining() time.Duration {
	return a.gcd.Remaining(a.Now())
}

// RegenMana applies passive mana regeneration up to now.
func (a *Actor) RegenMana() {
	a.Mana.RegenTo(a.Now(), 1+a.Attr.Haste())
}

// TakeDamage removes amount from the actor's health and demises it when the
// pool runs dry. Unbounded health never runs dry.
func (a *Actor) TakeDamage(amount float64, source string) float64 {
	if a.sleeping {
		return 0
	}
	dealt := a.Health.Drain(amount, source)
	if a.Health.Empty() {
		a.Demise()
	}
	return dealt
}

// Reset returns the actor to its pre-fight state for a new iteration.
func (a *Actor) Reset() {
	a.CancelEvents()
	a.readyEvent = nil
	a.offGCDEvent = nil
	a.castEvent = nil
	a.executing = nil
	a.channel = nil
	a.lastWait = -1
	a.gcd.Clear()
	for _, b := range a.buffs {
		b.Reset()
	}
	for _, act := range a.actions {
		act.reset()
	}
	clear(a.targetData)
	a.Attr.ClearModifiers()
	a.Mana.Reset()
	a.Health.Reset()
	a.RNG.Reseed(a.Sim.Config.Seed, a.Sim.StreamLabel(a.Name))
	a.sleeping = true
	a.arisenAt = 0
	a.target = a.defaultTarget
	if a.Hooks.OnReset != nil {
		a.Hooks.OnReset(a)
	}
}

// Arise brings the actor into the fight and starts its decision loop.
func (a *Actor) Arise() {
	if !a.sleeping {
		return
	}
	a.sleeping = false
	a.arisenAt = a.Now()
	a.Logf("ARISE", "%s", a.Kind)
	if a.Hooks.OnArise != nil {
		a.Hooks.OnArise(a)
	}
	if len(a.lists) > 0 {
		a.scheduleReady(0)
	}
}

// Demise takes the actor out of the fight. Pending events are cancelled,
// buffs expire, dots stop and every other actor is notified.
func (a *Actor) Demise() {
	if a.sleeping {
		return
	}
	a.sleeping = true
	a.Logf("DEMISE", "%s", a.Kind)
	a.CancelEvents()
	a.readyEvent = nil
	a.offGCDEvent = nil
	a.castEvent = nil
	a.executing = nil
	a.channel = nil
	for _, td := range a.sortedTargetData() {
		td.cancelDots()
	}
	for _, b := range a.buffs {
		b.Expire(0)
	}
	if a.Hooks.OnDemise != nil {
		a.Hooks.OnDemise(a)
	}
	if a.registry != nil {
		a.registry.notifyRemoved(a)
	}
}

// InterruptCast abandons the cast in progress without executing it.
func (a *Actor) InterruptCast() {
	if a.executing == nil {
		return
	}
	a.castEvent.Cancel()
	a.castEvent = nil
	a.Logf("INTERRUPT", "%s", a.executing.Action.Name)
	a.executing = nil
	a.actionFinished()
}

func (a *Actor) sortedTargetData() []*TargetData {
	out := make([]*TargetData, 0, len(a.targetData))
	for _, r := range a.registry.All() {
		if td, ok := a.targetData[r.ID]; ok {
			out = append(out, td)
		}
	}
	return out
}

func (a *Actor) scheduleReady(delay time.Duration) {
	if a.sleeping {
		return
	}
	a.readyEvent.Cancel()
	a.readyEvent = a.Schedule(delay, "ready", a.onReady)
}

func (a *Actor) scheduleOffGCD() {
	a.offGCDEvent.Cancel()
	a.offGCDEvent = a.Schedule(0, "off_gcd", a.onOffGCD)
}

func (a *Actor) busy() bool {
	return a.sleeping || a.executing != nil || a.channel != nil || a.Sim.Aborted() != nil
}

func (a *Actor) onReady() {
	a.readyEvent = nil
	if a.busy() {
		return
	}
	now := a.Now()
	if rem := a.gcd.Remaining(now); rem > 0 {
		a.scheduleReady(rem)
		return
	}
	if err := a.Sim.Watchdog.Observe(a.Name, now); err != nil {
		a.Sim.Abort(err)
		return
	}
	sel, err := a.selectAction(false)
	if err != nil {
		a.Sim.Abort(err)
		return
	}
	if sel.Action == nil {
		a.waitForEvent()
		return
	}
	sel.Action.ScheduleExecute(sel.Target)
}

func (a *Actor) onOffGCD() {
	a.offGCDEvent = nil
	if a.busy() || a.gcd.Ready(a.Now()) {
		return
	}
	if err := a.Sim.Watchdog.Observe(a.Name, a.Now()); err != nil {
		a.Sim.Abort(err)
		return
	}
	sel, err := a.selectAction(true)
	if err != nil {
		a.Sim.Abort(err)
		return
	}
	if sel.Action != nil {
		sel.Action.ScheduleExecute(sel.Target)
	}
}

// waitForEvent sleeps until the next queued event or one wait quantum. An
// event due right now is waited for once; a second idle decision at the same
// timestamp falls back to the quantum so idle actors cannot wake each other
// forever.
func (a *Actor) waitForEvent() {
	now := a.Now()
	delay := a.Sim.Config.WaitQuantum
	if next, ok := a.Sim.NextAt(); ok {
		if d := next - now; d < delay && (d > 0 || a.lastWait != now) {
			delay = d
		}
	}
	a.lastWait = now
	a.scheduleReady(delay)
}

// actionFinished resumes the decision loop after a foreground action.
func (a *Actor) actionFinished() {
	if a.busy() {
		return
	}
	if rem := a.gcd.Remaining(a.Now()); rem > 0 {
		a.scheduleReady(rem)
		if a.offGCD {
			a.scheduleOffGCD()
		}
		return
	}
	a.scheduleReady(0)
}

func (a *Actor) channelFinished(d *Dot) {
	if a.channel != d {
		return
	}
	a.channel = nil
	a.actionFinished()
}
