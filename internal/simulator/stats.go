package simulator

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/engine"
)

// ActionStats is the breakdown of one ability of one actor.
type ActionStats struct {
	Actor     string
	Action    string
	Executes  int
	Impacts   int
	Ticks     int
	Hits      int
	Crits     int
	Misses    int
	Damage    float64
	MinDamage float64
	MaxDamage float64
}

func (s *ActionStats) addDamage(amount float64, result actor.Result) {
	switch result {
	case actor.ResultCrit:
		s.Crits++
	case actor.ResultMiss:
		s.Misses++
		return
	default:
		s.Hits++
	}
	if amount <= 0 {
		return
	}
	s.Damage += amount
	if s.MinDamage == 0 || amount < s.MinDamage {
		s.MinDamage = amount
	}
	if amount > s.MaxDamage {
		s.MaxDamage = amount
	}
}

func (s *ActionStats) merge(other *ActionStats) {
	s.Executes += other.Executes
	s.Impacts += other.Impacts
	s.Ticks += other.Ticks
	s.Hits += other.Hits
	s.Crits += other.Crits
	s.Misses += other.Misses
	s.Damage += other.Damage
	if other.MinDamage > 0 && (s.MinDamage == 0 || other.MinDamage < s.MinDamage) {
		s.MinDamage = other.MinDamage
	}
	if other.MaxDamage > s.MaxDamage {
		s.MaxDamage = other.MaxDamage
	}
}

type actionKey struct {
	actor  string
	action string
}

// collector is the stats sink of one world. It only counts; it never looks
// at simulation state.
type collector struct {
	actions map[actionKey]*ActionStats
	damage  float64
}

func newCollector() *collector {
	return &collector{actions: make(map[actionKey]*ActionStats)}
}

func (c *collector) reset() {
	c.actions = make(map[actionKey]*ActionStats)
	c.damage = 0
}

func (c *collector) Record(r actor.Record) {
	key := actionKey{actor: r.Actor, action: r.Action}
	s := c.actions[key]
	if s == nil {
		s = &ActionStats{Actor: r.Actor, Action: r.Action}
		c.actions[key] = s
	}
	switch r.Kind {
	case actor.RecordExecute:
		s.Executes++
		return
	case actor.RecordImpact:
		s.Impacts++
	case actor.RecordTick:
		s.Ticks++
	}
	s.addDamage(r.Amount, r.Result)
	c.damage += max(r.Amount, 0)
}

// take hands the counters of the finished iteration over and starts fresh.
func (c *collector) take() *iteration {
	it := &iteration{actions: c.actions, damage: c.damage}
	c.reset()
	return it
}

type buffSample struct {
	name     string
	uptime   time.Duration
	benefit  float64
	triggers int
}

type resourceLedger struct {
	gained map[string]float64
	spent  map[string]float64
}

// iteration is what one run of a world produced.
type iteration struct {
	err     error
	length  time.Duration
	damage  float64
	actions map[actionKey]*ActionStats
	mana    resourceLedger
	buffs   []buffSample
}

// BuffStats summarizes one buff across valid iterations.
type BuffStats struct {
	Name     string
	Uptime   float64 // share of fight time
	Benefit  float64 // share of checks that found it up
	Triggers float64 // per iteration
}

// Result is the aggregate of a run. Averages cover valid iterations only.
type Result struct {
	RunID             uuid.UUID
	Player            string
	Spec              string
	Rotation          string
	Duration          time.Duration
	Iterations        int
	AbortedIterations int
	AbortReasons      map[string]int

	MeanLength  time.Duration
	TotalDamage float64
	DPS         float64
	MinDPS      float64
	MaxDPS      float64
	DPSStdDev   float64

	Actions     []*ActionStats
	ActorDamage map[string]float64
	ManaGained  map[string]float64
	ManaSpent   map[string]float64
	Buffs       []*BuffStats
}

// ValidIterations returns the number of iterations that count.
func (r *Result) ValidIterations() int {
	return r.Iterations - r.AbortedIterations
}

// aggregate folds iterations in index order so floating point sums do not
// depend on how the work was split across workers.
func aggregate(r *Result, its []*iteration) {
	r.AbortReasons = map[string]int{}
	r.ActorDamage = map[string]float64{}
	r.ManaGained = map[string]float64{}
	r.ManaSpent = map[string]float64{}
	actions := map[actionKey]*ActionStats{}
	buffs := map[string]*BuffStats{}
	var order []string

	var length time.Duration
	var dpsSum, dpsSq float64
	r.MinDPS = math.Inf(1)
	for _, it := range its {
		if it.err != nil {
			r.AbortedIterations++
			r.AbortReasons[engine.Reason(it.err)]++
			continue
		}
		length += it.length
		r.TotalDamage += it.damage
		dps := 0.0
		if it.length > 0 {
			dps = it.damage / it.length.Seconds()
		}
		dpsSum += dps
		dpsSq += dps * dps
		r.MinDPS = min(r.MinDPS, dps)
		r.MaxDPS = max(r.MaxDPS, dps)

		for _, key := range slices.SortedFunc(maps.Keys(it.actions), compareKeys) {
			s := it.actions[key]
			agg := actions[key]
			if agg == nil {
				agg = &ActionStats{Actor: key.actor, Action: key.action}
				actions[key] = agg
			}
			agg.merge(s)
			r.ActorDamage[key.actor] += s.Damage
		}
		for _, src := range slices.Sorted(maps.Keys(it.mana.gained)) {
			r.ManaGained[src] += it.mana.gained[src]
		}
		for _, src := range slices.Sorted(maps.Keys(it.mana.spent)) {
			r.ManaSpent[src] += it.mana.spent[src]
		}
		for _, b := range it.buffs {
			agg := buffs[b.name]
			if agg == nil {
				agg = &BuffStats{Name: b.name}
				buffs[b.name] = agg
				order = append(order, b.name)
			}
			agg.Uptime += b.uptime.Seconds()
			agg.Benefit += b.benefit
			agg.Triggers += float64(b.triggers)
		}
	}

	n := r.ValidIterations()
	if n == 0 {
		r.MinDPS = 0
		return
	}
	fn := float64(n)
	r.MeanLength = length / time.Duration(n)
	r.TotalDamage /= fn
	r.DPS = dpsSum / fn
	r.DPSStdDev = math.Sqrt(max(dpsSq/fn-r.DPS*r.DPS, 0))
	for k := range r.ActorDamage {
		r.ActorDamage[k] /= fn
	}
	for k := range r.ManaGained {
		r.ManaGained[k] /= fn
	}
	for k := range r.ManaSpent {
		r.ManaSpent[k] /= fn
	}

	r.Actions = slices.Collect(maps.Values(actions))
	slices.SortFunc(r.Actions, func(a, b *ActionStats) int {
		if c := cmp.Compare(b.Damage, a.Damage); c != 0 {
			return c
		}
		return compareKeys(actionKey{a.Actor, a.Action}, actionKey{b.Actor, b.Action})
	})
	for _, name := range order {
		b := buffs[name]
		if length > 0 {
			b.Uptime /= length.Seconds()
		}
		b.Benefit /= fn
		b.Triggers /= fn
		r.Buffs = append(r.Buffs, b)
	}
}

func compareKeys(a, b actionKey) int {
	if c := cmp.Compare(a.actor, b.actor); c != 0 {
		return c
	}
	return cmp.Compare(a.action, b.action)
}
