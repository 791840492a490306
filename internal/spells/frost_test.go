package spells

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/effects"
	"wod-mage-sim/internal/talents"
)

func icicleAmounts(r *recorder) []float64 {
	var out []float64
	for _, rec := range r.of(actor.RecordImpact, "icicle") {
		out = append(out, rec.Amount)
	}
	return out
}

func TestIcicleStoreLaunchesOldestWhenFull(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost))
	f.start()
	for i := 1; i <= 7; i++ {
		f.m.gainIcicle(f.boss, float64(i))
	}
	assert.Equal(t, 5, f.m.Icicles())

	runUntil(f.sim, time.Second)
	assert.Equal(t, []float64{1, 2}, icicleAmounts(f.rec))
}

func TestIciclesMelt(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost))
	f.start()
	f.m.gainIcicle(f.boss, 1)
	_, err := f.sim.Schedule(10*time.Second, "gain", func() { f.m.gainIcicle(f.boss, 2) })
	require.NoError(t, err)
	_, err = f.sim.Schedule(16*time.Second, "later", func() {})
	require.NoError(t, err)

	runUntil(f.sim, 16*time.Second)
	assert.Equal(t, 1, f.m.Icicles())
	ic, ok := f.m.drawIcicle()
	require.True(t, ok)
	assert.Equal(t, 2.0, ic.amount)
	_, ok = f.m.drawIcicle()
	assert.False(t, ok)
}

func TestIceLanceStartsIcicleVolley(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost))
	f.start()
	for i := 1; i <= 3; i++ {
		f.m.gainIcicle(f.boss, float64(i))
	}
	il := f.m.Action("ice_lance")
	il.Execute(il.NewState(f.boss))
	il.Execute(il.NewState(f.boss))

	runUntil(f.sim, 5*time.Second)
	assert.Equal(t, []float64{1, 2, 3}, icicleAmounts(f.rec))
	execs := f.rec.of(actor.RecordExecute, "icicle")
	require.Len(t, execs, 3)
	assert.Equal(t, 250*time.Millisecond, execs[0].Time)
	assert.Equal(t, execs[0].Time+750*time.Millisecond, execs[1].Time)
	assert.Equal(t, 0, f.m.Icicles())
	assert.False(t, f.m.icicleEvent.Pending())
}

func TestIcicleVolleyScalesWithSpellSpeed(t *testing.T) {
	f := newFixture(t, time.Minute, func(cfg *config.Config) {
		spec(config.SpecFrost)(cfg)
		cfg.Player.Stats.HasteRating = 5000
	})
	f.start()
	speed := f.m.Attr.SpellSpeed()
	require.Less(t, speed, 1.0)
	for i := 1; i <= 2; i++ {
		f.m.gainIcicle(f.boss, float64(i))
	}
	il := f.m.Action("ice_lance")
	il.Execute(il.NewState(f.boss))
	assert.Equal(t, 1, f.m.Icicles(), "first icicle leaves the store with ice lance")

	runUntil(f.sim, 5*time.Second)
	execs := f.rec.of(actor.RecordExecute, "icicle")
	require.Len(t, execs, 2)
	first := time.Duration(float64(250*time.Millisecond) * speed)
	assert.Equal(t, first, execs[0].Time)
	assert.Equal(t, first+time.Duration(float64(750*time.Millisecond)*speed), execs[1].Time)
}

func TestFrostboltFeedsIcicles(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost))
	f.start()
	fb := f.m.Action("frostbolt")
	fb.Execute(fb.NewState(f.boss))
	runUntil(f.sim, time.Second)

	impacts := f.rec.of(actor.RecordImpact, "frostbolt")
	require.Len(t, impacts, 1)
	require.Equal(t, 1, f.m.Icicles())
	assert.InDelta(t, impacts[0].Amount*f.m.Attr.Mastery(), f.m.icicles[0].amount, 1e-6)
}

func TestFingersOfFrostDoublesIceLance(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost))
	f.start()
	il := f.m.Action("ice_lance")
	il.Execute(il.NewState(f.boss))

	f.m.FingersOfFrost.TriggerWith(effects.TriggerOpts{Chance: 1, Stacks: 2})
	il.Execute(il.NewState(f.boss))
	runUntil(f.sim, time.Second)

	impacts := f.rec.of(actor.RecordImpact, "ice_lance")
	require.Len(t, impacts, 2)
	assert.InDelta(t, 2*impacts[0].Amount, impacts[1].Amount, 1e-6)
	assert.Equal(t, 1, f.m.FingersOfFrost.Stacks())
}

func TestIcyVeinsAddsHaste(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFrost))
	f.start()
	fb := f.m.Action("frostbolt")
	base := fb.ExecuteTime()

	f.m.Action("icy_veins").ScheduleExecute(f.m.Actor)
	assert.InDelta(t, 0.3, f.m.Attr.Haste(), 1e-9)
	assert.InDelta(t, float64(base)/1.3, float64(fb.ExecuteTime()), 1)

	runUntil(f.sim, 21*time.Second)
	assert.False(t, f.m.IcyVeins.Active())
	assert.Equal(t, base, fb.ExecuteTime())
}

func TestWaterElementalCastsForFrost(t *testing.T) {
	f := newFixture(t, 10*time.Second, func(cfg *config.Config) {
		spec(config.SpecFrost)(cfg)
		cfg.Player.Pets.PrecombatWaterElemental = true
	})
	f.start()
	we := f.m.WaterElemental
	require.False(t, we.Sleeping())
	assert.InDelta(t, f.m.Attr.SpellPower()*waterElementalSPInheritance, we.Attr.SpellPower(), 1e-6)
	assert.False(t, f.m.Action("summon_water_elemental").Ready(f.m.Actor))

	require.NoError(t, f.sim.Run())
	bolts := 0
	for _, rec := range f.rec.of(actor.RecordImpact, "waterbolt") {
		assert.Equal(t, "water_elemental", rec.Actor)
		bolts++
	}
	assert.Equal(t, 3, bolts)

	f.m.Demise()
	assert.True(t, we.Sleeping())
}

func TestMirrorImagesExpire(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecFire, talents.TalentMirrorImage))
	f.start()
	mi := f.m.Action("mirror_image")
	require.True(t, mi.Ready(f.m.Actor))
	mi.ScheduleExecute(f.m.Actor)

	require.Len(t, f.m.Images, talents.MirrorImageCount)
	for _, img := range f.m.Images {
		assert.False(t, img.Sleeping())
		assert.Equal(t, "fireball", img.Bolt.Name)
		assert.Same(t, f.boss, img.CurrentTarget())
	}
	runUntil(f.sim, 41*time.Second)
	for _, img := range f.m.Images {
		assert.True(t, img.Sleeping())
	}
	assert.False(t, f.m.MirrorImage.Active())
	assert.NotEmpty(t, f.rec.of(actor.RecordImpact, "fireball"))
}
