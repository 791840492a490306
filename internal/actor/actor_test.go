package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/engine"
)

type recorder struct {
	records []Record
}

func (r *recorder) Record(rec Record) { r.records = append(r.records, rec) }

func (r *recorder) of(kind RecordKind, action string) []Record {
	var out []Record
	for _, rec := range r.records {
		if rec.Kind == kind && rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

func (r *recorder) total(action string) float64 {
	sum := 0.0
	for _, rec := range r.records {
		if rec.Action == action {
			sum += rec.Amount
		}
	}
	return sum
}

type condFunc func() bool

func (f condFunc) Eval(apl.EvaluationContext) bool { return f() }

type fixture struct {
	sim    *engine.Sim
	reg    *Registry
	player *Actor
	boss   *Actor
	rec    *recorder
}

func newFixture(duration time.Duration, bossHealth float64) *fixture {
	sim := engine.NewSim(engine.SimulationConfig{Duration: duration, Seed: 7, WatchdogThreshold: 50}, nil)
	reg := NewRegistry()
	player := New(sim, "mage", KindPlayer, character.NewAttributes(character.Stats{MaxMana: 10000}, character.LinearConverter{}))
	boss := New(sim, "boss", KindEnemy, character.NewAttributes(character.Stats{MaxHealth: bossHealth}, character.LinearConverter{}))
	reg.Add(player)
	reg.Add(boss)
	player.SetDefaultTarget(boss)
	rec := &recorder{}
	player.Stats = rec
	return &fixture{sim: sim, reg: reg, player: player, boss: boss, rec: rec}
}

func (f *fixture) addEnemy(name string) *Actor {
	e := New(f.sim, name, KindEnemy, character.NewAttributes(character.Stats{}, character.LinearConverter{}))
	f.reg.Add(e)
	return e
}

func (f *fixture) start() {
	f.sim.Reset(0)
	for _, a := range f.reg.All() {
		a.Reset()
	}
	for _, a := range f.reg.All() {
		a.Arise()
	}
}

func runUntil(s *engine.Sim, at time.Duration) {
	for {
		next, ok := s.NextAt()
		if !ok || next > at {
			return
		}
		s.Advance()
	}
}

func bolt(owner *Actor) *Action {
	b := NewAction(owner, "bolt", SchoolArcane)
	b.CastTime = 2 * time.Second
	b.BaseMin, b.BaseMax = 100, 100
	return owner.AddAction(b)
}

func TestCastLoopRespectsCastTime(t *testing.T) {
	f := newFixture(10*time.Second, 0)
	b := bolt(f.player)
	f.player.SetLists(&ActionList{Name: "default", Entries: []*ListEntry{Use(b, nil)}})
	f.start()

	require.NoError(t, f.sim.Run())
	execs := f.rec.of(RecordExecute, "bolt")
	require.Len(t, execs, 5)
	for i, rec := range execs {
		assert.Equal(t, time.Duration(i+1)*2*time.Second, rec.Time)
	}
	assert.InDelta(t, 500, f.rec.total("bolt"), 1e-9)
	assert.InDelta(t, 500, f.boss.Health.Losses()["mage/bolt"], 1e-9)
}

func TestInstantCastConsumesBuffOnce(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	buff := f.player.NewBuff("pom", 0, 1)
	pom := NewAction(f.player, "pom", SchoolArcane)
	pom.Harmful = false
	pom.GCDTime = 0
	pom.Cooldown.Duration = time.Minute
	pom.Hooks.OnExecute = func(*Action, *State) { buff.Trigger() }
	f.player.AddAction(pom)

	b := bolt(f.player)
	b.Hooks.ExecuteTime = func(_ *Action, base time.Duration) time.Duration {
		if buff.Check() > 0 {
			return 0
		}
		return base
	}
	consumed := 0
	b.Hooks.OnExecute = func(_ *Action, s *State) {
		if s.InstantCast && buff.Check() > 0 {
			buff.Expire(0)
			consumed++
		}
	}
	f.player.SetLists(&ActionList{Name: "default", Entries: []*ListEntry{Use(pom, nil), Use(b, nil)}})
	f.start()

	require.NoError(t, f.sim.Run())
	assert.Equal(t, 1, consumed)
	assert.Equal(t, 0, buff.Check())
	execs := f.rec.of(RecordExecute, "bolt")
	require.Len(t, execs, 2)
	assert.Equal(t, time.Duration(0), execs[0].Time)
	assert.Equal(t, 3500*time.Millisecond, execs[1].Time)
}

func TestOffGCDActionUsedWhileGCDRolls(t *testing.T) {
	f := newFixture(3*time.Second, 0)
	blast := NewAction(f.player, "blast", SchoolArcane)
	blast.BaseMin, blast.BaseMax = 10, 10
	f.player.AddAction(blast)
	pom := NewAction(f.player, "pom", SchoolArcane)
	pom.Harmful = false
	pom.GCDTime = 0
	pom.Cooldown.Duration = time.Minute
	f.player.AddAction(pom)
	f.player.SetLists(&ActionList{Name: "default", Entries: []*ListEntry{Use(blast, nil), Use(pom, nil)}})
	f.start()

	require.NoError(t, f.sim.Run())
	assert.Equal(t, 1, pom.Executes())
	assert.Equal(t, time.Duration(0), pom.LastExecute())
	assert.Equal(t, 3, blast.Executes())
}

func TestCastFailsWhenTargetDiesMidCast(t *testing.T) {
	f := newFixture(5*time.Second, 1000)
	b := bolt(f.player)
	f.player.SetLists(&ActionList{Name: "default", Entries: []*ListEntry{Use(b, nil)}})
	var removed []string
	f.player.OnTargetRemoved(func(self, dead *Actor) {
		removed = append(removed, dead.Name)
	})
	f.start()
	_, err := f.sim.Schedule(time.Second, "kill", func() { f.boss.Demise() })
	require.NoError(t, err)

	require.NoError(t, f.sim.Run())
	assert.Equal(t, 0, b.Executes())
	assert.Empty(t, f.rec.of(RecordImpact, "bolt"))
	assert.Equal(t, []string{"boss"}, removed)
	assert.Nil(t, f.player.Executing())
}

func TestDemiseIsIdempotent(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	calls := 0
	f.player.OnTargetRemoved(func(*Actor, *Actor) { calls++ })
	f.start()
	f.boss.Demise()
	f.boss.Demise()
	assert.Equal(t, 1, calls)
	assert.True(t, f.boss.Sleeping())
	assert.Empty(t, f.reg.Enemies())
}

func TestActionListLoopAborts(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	a := &ActionList{Name: "default"}
	b := &ActionList{Name: "b"}
	a.Entries = []*ListEntry{CallList(b, nil)}
	b.Entries = []*ListEntry{CallList(a, nil)}
	f.player.SetLists(a, b)
	f.start()

	_, err := f.player.SelectAction()
	require.ErrorIs(t, err, ErrActionListLoop)
	var ae *engine.AbortError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "mage", ae.Actor)

	err = f.sim.Run()
	assert.ErrorIs(t, err, ErrActionListLoop)
}

func TestActionListRevisitOnSeparatePaths(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	bl := bolt(f.player)
	main := &ActionList{Name: "default"}
	shared := &ActionList{Name: "shared"}
	side := &ActionList{Name: "side"}
	main.Entries = []*ListEntry{CallList(shared, nil), CallList(side, nil), Use(bl, nil)}
	side.Entries = []*ListEntry{CallList(shared, nil)}
	f.player.SetLists(main, shared, side)
	f.start()

	sel, err := f.player.SelectAction()
	require.NoError(t, err)
	assert.Equal(t, bl, sel.Action)
	assert.Equal(t, f.boss, sel.Target)
}

func TestSelectActionHonoursConditionsAndTargets(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	add := f.addEnemy("add")
	bl := bolt(f.player)
	open := false
	f.player.SetLists(&ActionList{Name: "default", Entries: []*ListEntry{
		Use(bl, condFunc(func() bool { return open })).On(add),
		Use(bl, nil),
	}})
	f.start()

	sel, err := f.player.SelectAction()
	require.NoError(t, err)
	assert.Equal(t, f.boss, sel.Target)

	open = true
	sel, err = f.player.SelectAction()
	require.NoError(t, err)
	assert.Equal(t, add, sel.Target)
	assert.Equal(t, f.boss, f.player.CurrentTarget(), "override must not change the current target")
}

func TestWatchdogStopsZeroTimeLoop(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	toggle := NewAction(f.player, "toggle", SchoolPhysical)
	toggle.Harmful = false
	toggle.GCDTime = 0
	f.player.AddAction(toggle)
	f.player.SetLists(&ActionList{Name: "default", Entries: []*ListEntry{Use(toggle, nil)}})
	f.start()

	err := f.sim.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNoProgress))
	assert.Equal(t, time.Duration(0), f.sim.Now())
}

func TestBindRotationResolvesNames(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	bolt(f.player)
	file, err := apl.Parse([]byte("rotation:\n  - action: call_action_list\n    list: aoe\n  - action: wait\n    duration_seconds: 0.5\nlists:\n  - name: aoe\n    actions:\n      - action: cast\n        spell: arcane_blast\n"))
	require.NoError(t, err)
	rot, err := apl.Compile(file)
	require.NoError(t, err)

	err = f.player.BindRotation(rot)
	require.ErrorIs(t, err, ErrUnknownAction)

	blast := NewAction(f.player, "arcane_blast", SchoolArcane)
	blast.CastTime = time.Second
	f.player.AddAction(blast)
	require.NoError(t, f.player.BindRotation(rot))
	lists := f.player.Lists()
	require.Len(t, lists, 2)
	assert.Equal(t, apl.DefaultList, lists[0].Name)
	assert.Equal(t, "wait", lists[0].Entries[1].Action.Name)
	assert.Equal(t, 500*time.Millisecond, lists[0].Entries[1].Action.ExecuteTime())
}

func TestAreaActionWithDeadPrimaryHitsEveryLivingEnemy(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	add1 := f.addEnemy("add1")
	f.addEnemy("add2")
	nova := NewAction(f.player, "nova", SchoolArcane)
	nova.BaseMin, nova.BaseMax = 50, 50
	nova.AOE = -1
	f.player.AddAction(nova)
	f.start()
	add1.Demise()

	nova.Execute(nova.NewState(add1))
	var hit []string
	for _, rec := range f.rec.of(RecordImpact, "nova") {
		hit = append(hit, rec.Target)
	}
	assert.ElementsMatch(t, []string{"boss", "add2"}, hit)
}

func TestTargetListForAreaActions(t *testing.T) {
	f := newFixture(5*time.Second, 0)
	add1 := f.addEnemy("add1")
	add2 := f.addEnemy("add2")
	nova := NewAction(f.player, "nova", SchoolArcane)
	f.start()

	assert.Equal(t, []*Actor{add1}, nova.TargetList(add1))
	nova.AOE = -1
	assert.Equal(t, []*Actor{add1, f.boss, add2}, nova.TargetList(add1))
	nova.AOE = 2
	assert.Equal(t, []*Actor{add2, f.boss}, nova.TargetList(add2))
	add1.Demise()
	nova.AOE = -1
	assert.Equal(t, []*Actor{f.boss, add2}, nova.TargetList(f.boss))
}
