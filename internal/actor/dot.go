package actor

import (
	"math"
	"time"

	"wod-mage-sim/internal/engine"
)

// CopyMode selects how Dot.Copy transfers a dot to another target.
type CopyMode int

const (
	// CopyClone keeps the remaining ticks and the tick phase.
	CopyClone CopyMode = iota
	// CopyStart starts a full-length dot from the source snapshot.
	CopyStart
)

// Dot is a periodic effect of one action on one target.
type Dot struct {
	Action *Action
	Target *Actor
	State  *State

	ticking    bool
	tickTime   time.Duration
	numTicks   int
	ticksLeft  int
	current    int
	tickAmount float64
	startedAt  time.Duration
	tickEvent  *engine.Event
}

func ticksFor(duration, tick time.Duration) int {
	if tick <= 0 {
		return 1
	}
	return max(1, int(math.Round(float64(duration)/float64(tick))))
}

func (d *Dot) period(s *State) time.Duration {
	t := d.Action.TickTime
	if d.Action.HastedTicks && s != nil {
		t = time.Duration(float64(t) / (1 + s.Haste))
	}
	return max(t, time.Millisecond)
}

// Trigger starts the dot from the snapshot in s. Triggering a ticking dot
// takes the new snapshot and restores the full tick count while the
// current tick keeps its phase.
func (d *Dot) Trigger(s *State) {
	if d.Target.sleeping {
		return
	}
	a := d.Action
	snap := s.Clone()
	snap.Target = d.Target
	tick := d.period(snap)
	n := ticksFor(a.DotDuration, tick)
	if d.ticking {
		if a.Hooks.OnRefresh != nil {
			a.Hooks.OnRefresh(a, d)
		}
		if d.ticking {
			d.State = snap
			d.tickTime = tick
			d.numTicks = n
			d.ticksLeft = n
			a.Owner.Logf("DOT_REFRESH", "%s -> %s (%d ticks)", a.Name, d.Target.Name, n)
			return
		}
	}
	d.start(snap, tick, n, tick)
	a.Owner.Logf("DOT_START", "%s -> %s (%d ticks every %.3fs)", a.Name, d.Target.Name, n, tick.Seconds())
}

// Refresh restores the full tick count without a new snapshot.
func (d *Dot) Refresh() {
	if !d.ticking {
		return
	}
	d.ticksLeft = d.numTicks
}

// Extend adds ticks worth dur to a ticking dot.
func (d *Dot) Extend(dur time.Duration) {
	if !d.ticking || dur <= 0 {
		return
	}
	d.ticksLeft += ticksFor(dur, d.tickTime)
}

// Cancel stops the dot without running its last-tick hook.
func (d *Dot) Cancel() {
	if !d.ticking {
		return
	}
	d.finish(false)
}

// Copy transfers the dot onto target and returns the copy. Nothing happens
// when the dot is not ticking or target is asleep.
func (d *Dot) Copy(target *Actor, mode CopyMode) *Dot {
	if !d.ticking || target == nil || target.sleeping || target == d.Target {
		return nil
	}
	a := d.Action
	other := a.Dot(target)
	other.tickEvent.Cancel()
	other.tickEvent = nil
	snap := d.State.Clone()
	snap.Target = target
	other.tickAmount = d.tickAmount
	other.ticking = false
	if mode == CopyClone {
		first := d.tickTime
		if d.tickEvent != nil {
			first = d.tickEvent.At() - a.Owner.Now()
		}
		other.start(snap, d.tickTime, d.numTicks, first)
		other.ticksLeft = d.ticksLeft
	} else {
		other.start(snap, d.tickTime, d.numTicks, d.tickTime)
	}
	a.Owner.Logf("DOT_COPY", "%s %s -> %s (%d ticks)", a.Name, d.Target.Name, target.Name, other.ticksLeft)
	return other
}

// Bank adds amount to a residual dot. Whatever the dot had left to tick is
// added on top and the dot restarts with the total spread over its ticks.
func (d *Dot) Bank(amount float64) {
	if d.Target.sleeping || amount <= 0 {
		return
	}
	a := d.Action
	total := amount + d.Banked()
	d.tickEvent.Cancel()
	d.tickEvent = nil
	d.ticking = false
	s := a.NewState(d.Target)
	s.Result = ResultHit
	tick := d.period(nil)
	n := ticksFor(a.DotDuration, tick)
	d.tickAmount = total / float64(n)
	d.start(s, tick, n, tick)
}

// ResidualTrigger banks amount into the residual dot of a on target.
func (a *Action) ResidualTrigger(target *Actor, amount float64) *Dot {
	if target == nil || target.sleeping {
		return nil
	}
	d := a.Dot(target)
	d.Bank(amount)
	return d
}

// IsTicking reports whether the dot is active.
func (d *Dot) IsTicking() bool {
	return d != nil && d.ticking
}

// Remains returns the time until the last tick.
func (d *Dot) Remains() time.Duration {
	if !d.IsTicking() || d.tickEvent == nil {
		return 0
	}
	next := d.tickEvent.At() - d.Action.Owner.Now()
	return next + time.Duration(d.ticksLeft-1)*d.tickTime
}

// TicksLeft returns the number of ticks still to come.
func (d *Dot) TicksLeft() int {
	if !d.IsTicking() {
		return 0
	}
	return d.ticksLeft
}

// StartedAt returns when the dot last started.
func (d *Dot) StartedAt() time.Duration {
	return d.startedAt
}

// CurrentTick returns how many ticks happened since the dot started.
func (d *Dot) CurrentTick() int {
	if d == nil {
		return 0
	}
	return d.current
}

// TickAmount returns the non-critical damage of the next tick.
func (d *Dot) TickAmount() float64 {
	if !d.IsTicking() {
		return 0
	}
	if d.Action.Residual {
		return d.tickAmount
	}
	return d.formulaTick()
}

// Banked returns the damage a residual dot still has to deal.
func (d *Dot) Banked() float64 {
	if !d.IsTicking() || !d.Action.Residual {
		return 0
	}
	return d.tickAmount * float64(d.ticksLeft)
}

func (d *Dot) formulaTick() float64 {
	a := d.Action
	s := d.State
	return (a.TickBase + s.SpellPower*a.TickCoefficient) * s.Multiplier * s.scale()
}

func (d *Dot) start(s *State, tick time.Duration, n int, first time.Duration) {
	d.State = s
	d.tickTime = tick
	d.numTicks = n
	d.ticksLeft = n
	d.current = 0
	d.ticking = true
	d.startedAt = d.Action.Owner.Now()
	d.scheduleTick(first)
}

func (d *Dot) scheduleTick(delay time.Duration) {
	d.tickEvent = d.Action.Owner.Schedule(max(delay, 0), "tick "+d.Action.Name, d.tick)
}

func (d *Dot) tick() {
	d.tickEvent = nil
	a := d.Action
	if d.Target.sleeping {
		d.Cancel()
		return
	}
	d.ticksLeft--
	d.current++
	if a.TickAction != nil {
		a.TickAction.Execute(a.TickAction.NewState(d.Target))
	} else if amount := d.TickAmount(); amount > 0 {
		result := ResultHit
		if !a.Residual && a.TickMayCrit && a.Owner.RNG.Roll(d.State.CritChance) {
			result = ResultCrit
			amount *= a.Owner.CritMultiplier
		}
		a.dealDamage(d.Target, amount, result, RecordTick)
		if !a.Residual {
			a.multistrike(d.Target, amount, RecordTick)
		}
	}
	if a.Hooks.OnTick != nil {
		a.Hooks.OnTick(a, d)
	}
	if !d.ticking {
		return
	}
	if d.Target.sleeping {
		d.Cancel()
		return
	}
	if d.ticksLeft <= 0 {
		d.finish(true)
		return
	}
	d.scheduleTick(d.tickTime)
}

func (d *Dot) finish(lastTick bool) {
	a := d.Action
	d.ticking = false
	d.tickEvent.Cancel()
	d.tickEvent = nil
	d.ticksLeft = 0
	d.tickAmount = 0
	if lastTick && a.Hooks.OnLastTick != nil {
		a.Hooks.OnLastTick(a, d)
	}
	a.Owner.Logf("DOT_END", "%s -> %s", a.Name, d.Target.Name)
	if a.Channeled {
		a.Owner.channelFinished(d)
	}
}
