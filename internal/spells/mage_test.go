package spells

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/effects"
	"wod-mage-sim/internal/engine"
	"wod-mage-sim/internal/talents"
)

type recorder struct {
	records []actor.Record
}

func (r *recorder) Record(rec actor.Record) { r.records = append(r.records, rec) }

func (r *recorder) of(kind actor.RecordKind, action string) []actor.Record {
	var out []actor.Record
	for _, rec := range r.records {
		if rec.Kind == kind && rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

type fixture struct {
	sim     *engine.Sim
	reg     *actor.Registry
	m       *Mage
	boss    *actor.Actor
	enemies []*actor.Actor
	rec     *recorder
}

// newFixture builds a mage without crits, haste or multistrike so damage and
// timings are exact. setup may adjust the configuration before validation.
func newFixture(t *testing.T, duration time.Duration, setup func(cfg *config.Config), extra ...string) *fixture {
	t.Helper()
	cfg, err := config.Load("../../configs")
	require.NoError(t, err)
	cfg.Constants.Ratings.BaseCrit = -1
	cfg.Player.Stats.HasteRating = 0
	cfg.Player.Stats.MultistrikeRating = 0
	cfg.Player.Talents = nil
	cfg.Player.Glyphs = nil
	cfg.Player.Pets.PrecombatWaterElemental = false
	if setup != nil {
		setup(cfg)
	}
	require.NoError(t, cfg.Validate())

	sim := engine.NewSim(engine.SimulationConfig{Duration: duration, Seed: 7, WatchdogThreshold: 200}, nil)
	reg := actor.NewRegistry()
	var enemies []*actor.Actor
	for _, name := range append([]string{"boss"}, extra...) {
		e := actor.New(sim, name, actor.KindEnemy, character.NewAttributes(character.Stats{}, nil))
		reg.Add(e)
		enemies = append(enemies, e)
	}
	m, err := New(sim, reg, cfg)
	require.NoError(t, err)
	rec := &recorder{}
	m.Stats = rec
	m.SetDefaultTarget(enemies[0])
	return &fixture{sim: sim, reg: reg, m: m, boss: enemies[0], enemies: enemies, rec: rec}
}

func (f *fixture) start() {
	f.sim.Reset(0)
	for _, a := range f.reg.All() {
		a.Reset()
	}
	for _, e := range f.enemies {
		e.Arise()
	}
	f.m.Arise()
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

func spec(name string, talentNames ...string) func(cfg *config.Config) {
	return func(cfg *config.Config) {
		cfg.Player.Character.Specialization = name
		for _, n := range talentNames {
			if kind, _ := talents.KindOf(n); kind == talents.KindGlyph {
				cfg.Player.Glyphs = append(cfg.Player.Glyphs, n)
				continue
			}
			cfg.Player.Talents = append(cfg.Player.Talents, n)
		}
	}
}

func TestNewReportsMissingSpellData(t *testing.T) {
	cfg, err := config.Load("../../configs")
	require.NoError(t, err)
	delete(cfg.Spells, "frostbolt")
	delete(cfg.Spells, "icicle")

	sim := engine.NewSim(engine.SimulationConfig{Duration: time.Second}, nil)
	_, err = New(sim, actor.NewRegistry(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frostbolt")
	assert.Contains(t, err.Error(), "icicle")
}

func TestAriseAppliesArmorAndFlow(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane, talents.TalentIncantersFlow))
	f.start()

	assert.True(t, f.m.MoltenArmor.Active())
	assert.Equal(t, 1, f.m.IncantersFlow.Stacks())
	assert.Same(t, f.boss, f.m.CurrentTarget())
	assert.True(t, f.m.WaterElemental.Sleeping())
}

func TestIncantersFlowClimbsAndFalls(t *testing.T) {
	f := newFixture(t, 2*time.Minute, spec(config.SpecFire, talents.TalentIncantersFlow))
	f.start()

	var stacks []int
	for i := range 12 {
		at := time.Duration(i)*10*time.Second + time.Millisecond
		_, err := f.sim.Schedule(at, "sample", func() { stacks = append(stacks, f.m.IncantersFlow.Stacks()) })
		require.NoError(t, err)
	}
	runUntil(f.sim, 111*time.Second)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1, 1, 2}, stacks)
}

func TestPhaseActionsToggleAndAbortOnLoop(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane))
	start := f.m.Action("start_burn_phase")
	stop := f.m.Action("stop_burn_phase")
	f.m.SetLists(&actor.ActionList{Name: "default", Entries: []*actor.ListEntry{
		actor.Use(start, nil),
		actor.Use(stop, nil),
	}})
	f.start()

	err := f.sim.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, effects.ErrSwitchLoop)
	assert.Equal(t, "phase toggled twice at the same timestamp", engine.Reason(err))
	assert.Equal(t, time.Duration(0), f.sim.Now())
}

func TestChooseTargetAbortsOnSecondSwitch(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost), "add")
	add := f.enemies[1]
	ct := f.m.Action("choose_target")
	f.m.SetLists(&actor.ActionList{Name: "default", Entries: []*actor.ListEntry{
		actor.Use(ct, nil).On(add),
		actor.Use(ct, nil).On(f.boss),
	}})
	f.start()

	err := f.sim.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, effects.ErrSwitchLoop)
	assert.Same(t, add, f.m.CurrentTarget())
}

func TestTargetFallsBackWhenEnemyDies(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost), "add")
	f.start()
	f.boss.Demise()
	assert.Same(t, f.enemies[1], f.m.CurrentTarget())

	f.enemies[1].Demise()
	assert.Nil(t, f.m.CurrentTarget())
}

func TestRotationContextAnswersConditions(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFire, talents.TalentLivingBomb), "add")
	f.start()
	lb := f.m.Action("living_bomb")
	lb.Execute(lb.NewState(f.boss))
	f.m.HotStreak.Trigger()
	require.True(t, f.m.PyroChain.Enable(0))

	ctx := f.m.context(f.m.Actor, f.boss)
	assert.True(t, ctx.BuffActive("pyroblast"))
	assert.Equal(t, 15*time.Second, ctx.BuffRemaining("pyroblast"))
	assert.True(t, ctx.DotTicking("living_bomb"))
	assert.True(t, ctx.DebuffActive("living_bomb"))
	assert.Equal(t, 12*time.Second, ctx.DebuffRemaining("living_bomb"))
	assert.False(t, ctx.DebuffActive("ignite"))
	assert.True(t, ctx.PhaseActive("pyro_chain"))
	assert.False(t, ctx.PhaseActive("burn_phase"))
	assert.Equal(t, 2, ctx.ActiveEnemies())
	assert.Equal(t, 100.0, ctx.TargetHealthPercent())
	assert.True(t, ctx.CooldownReady("combustion"))
	assert.True(t, ctx.CooldownReady("not_a_spell"))
	assert.Less(t, ctx.ResourcePercent("mana"), 100.0)

	other := f.m.context(f.m.Actor, f.enemies[1])
	assert.False(t, other.DotTicking("living_bomb"))
}
