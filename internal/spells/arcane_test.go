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

func TestPresenceOfMindMakesOneCastInstant(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane))
	f.start()
	ab := f.m.Action("arcane_blast")
	base := ab.ExecuteTime()
	require.Greater(t, base, time.Duration(0))

	f.m.Action("presence_of_mind").ScheduleExecute(f.m.Actor)
	require.True(t, f.m.PresenceOfMind.Active())
	assert.Equal(t, time.Duration(0), ab.ExecuteTime())

	ab.ScheduleExecute(f.boss)
	assert.Equal(t, 1, ab.Executes())
	assert.False(t, f.m.PresenceOfMind.Active())
	assert.Equal(t, base, ab.ExecuteTime())
	assert.Equal(t, 1, f.m.ArcaneCharge.Stacks())
}

func TestArcaneChargesScaleCostAndDamage(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane))
	f.start()
	ab := f.m.Action("arcane_blast")
	cost := ab.Cost()

	f.m.ArcaneCharge.TriggerStacks(2)
	assert.InDelta(t, cost*(1+1.5*2), ab.Cost(), 1e-6)
	assert.InDelta(t, 2.0, f.m.chargeDamage(), 1e-9)

	f.m.ArcanePower.Trigger()
	assert.InDelta(t, cost*(1+1.5*2)*1.1, ab.Cost(), 1e-6)

	f.m.ArcaneCharge.TriggerStacks(5)
	assert.Equal(t, 4, f.m.ArcaneCharge.Stacks())
}

func TestArcaneMasteryFollowsMana(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane))
	f.start()
	ab := f.m.Action("arcane_blast")
	full := f.m.multiplier(ab, nil)
	assert.InDelta(t, 1+f.m.Attr.Mastery(), full, 1e-9)

	f.m.Mana.Spend(f.m.Mana.Max()/2, "test")
	assert.InDelta(t, 1+f.m.Attr.Mastery()/2, f.m.multiplier(ab, nil), 1e-9)
}

func TestArcaneBarrageHitsOneExtraTargetPerCharge(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane), "add1", "add2", "add3")
	f.start()
	barrage := f.m.Action("arcane_barrage")

	f.m.ArcaneCharge.TriggerStacks(2)
	barrage.Execute(barrage.NewState(f.boss))
	runUntil(f.sim, 5*time.Second)

	impacts := f.rec.of(actor.RecordImpact, "arcane_barrage")
	require.Len(t, impacts, 3)
	assert.Equal(t, "boss", impacts[0].Target)
	assert.InDelta(t, impacts[0].Amount/2, impacts[1].Amount, 1e-6)
	assert.Equal(t, 0, f.m.ArcaneCharge.Stacks())
	assert.Equal(t, 0, barrage.AOE)

	barrage.Cooldown.Clear()
	barrage.Execute(barrage.NewState(f.boss))
	runUntil(f.sim, 10*time.Second)
	assert.Len(t, f.rec.of(actor.RecordImpact, "arcane_barrage"), 4)
}

func TestArcaneMissilesChannelAddsCharge(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane))
	f.start()
	am := f.m.Action("arcane_missiles")
	assert.False(t, am.Ready(f.boss))

	f.m.ArcaneMissiles.TriggerWith(effects.TriggerOpts{Chance: 1})
	require.True(t, am.Ready(f.boss))
	am.ScheduleExecute(f.boss)
	assert.False(t, f.m.ArcaneMissiles.Active())
	assert.NotNil(t, f.m.Channeling())

	runUntil(f.sim, 3*time.Second)
	assert.Len(t, f.rec.of(actor.RecordImpact, "arcane_missiles_tick"), 5)
	assert.Equal(t, 1, f.m.ArcaneCharge.Stacks())
	assert.Nil(t, f.m.Channeling())
}

func TestEvocationRestoresMana(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane))
	f.start()
	f.m.Mana.Spend(f.m.Mana.Max()*0.6, "test")
	before := f.m.Mana.Current()

	f.m.Action("evocation").ScheduleExecute(f.m.Actor)
	runUntil(f.sim, 7*time.Second)
	gained := f.m.Mana.Gains()["evocation"]
	assert.InDelta(t, 3*0.15*f.m.Mana.Max(), gained, 1e-6)
	assert.Greater(t, f.m.Mana.Current(), before+gained-1)
}

func TestArcanePowerGlyphDoublesDurationAndCooldown(t *testing.T) {
	f := newFixture(t, time.Minute, spec(config.SpecArcane, talents.GlyphOfArcanePower))
	plain := newFixture(t, time.Minute, spec(config.SpecArcane))

	assert.Equal(t, 2*plain.m.ArcanePower.Duration, f.m.ArcanePower.Duration)
	assert.Equal(t, 2*plain.m.Action("arcane_power").Cooldown.Duration, f.m.Action("arcane_power").Cooldown.Duration)
}
