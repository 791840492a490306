package engine

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdogTripsAfterThreshold(t *testing.T) {
	w := NewWatchdog(3)
	require.NoError(t, w.Observe("mage", 0))
	require.NoError(t, w.Observe("mage", 0))
	require.NoError(t, w.Observe("mage", 0))
	err := w.Observe("mage", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProgress)

	var ae *AbortError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "mage", ae.Actor)
	assert.Equal(t, "watchdog", ae.Source)
}

func TestWatchdogResetsWhenTimeMoves(t *testing.T) {
	w := NewWatchdog(2)
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Observe("mage", time.Duration(i)*time.Second))
		require.NoError(t, w.Observe("mage", time.Duration(i)*time.Second))
	}
	require.NoError(t, w.Observe("pet", 9*time.Second))
}

func TestRNGIsReproducible(t *testing.T) {
	a := NewRNG(42, "iteration/0/mage")
	b := NewRNG(42, "iteration/0/mage")
	c := NewRNG(42, "iteration/1/mage")
	var sa, sb, sc []float64
	for i := 0; i < 20; i++ {
		sa = append(sa, a.Float64())
		sb = append(sb, b.Float64())
		sc = append(sc, c.Float64())
	}
	assert.Equal(t, sa, sb)
	assert.NotEqual(t, sa, sc)

	a.Reseed(42, "iteration/0/mage")
	assert.Equal(t, sa[0], a.Float64())
}

func TestRollBounds(t *testing.T) {
	r := NewRNG(1, "x")
	for i := 0; i < 100; i++ {
		assert.False(t, r.Roll(0))
		assert.True(t, r.Roll(1))
		v := r.Range(2, 4)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.LessOrEqual(t, v, 4.0)
	}
}

func TestSimRunStopsAtDurationAndAbort(t *testing.T) {
	var buf bytes.Buffer
	sim := NewSim(SimulationConfig{Duration: 10 * time.Second}, &buf)
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		_, _ = sim.Schedule(time.Second, "tick", tick)
	}
	_, _ = sim.Schedule(0, "tick", tick)
	require.NoError(t, sim.Run())
	assert.Equal(t, 11, ticks)
	assert.True(t, sim.Expired())

	sim.Reset(1)
	boom := errors.New("boom")
	_, _ = sim.Schedule(time.Second, "abort", func() { sim.Abort(Abort("mage", "test", boom)) })
	_, _ = sim.Schedule(2*time.Second, "never", func() { t.Fatal("ran after abort") })
	err := sim.Run()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "boom", Reason(err))
	assert.Contains(t, buf.String(), "ABORT")
}

func TestSimStopDrainsCurrentTimestamp(t *testing.T) {
	sim := NewSim(SimulationConfig{Duration: time.Minute}, nil)
	fired := 0
	_, _ = sim.Schedule(time.Second, "stop", func() { sim.Stop() })
	_, _ = sim.Schedule(time.Second, "same time", func() { fired++ })
	_, _ = sim.Schedule(2*time.Second, "later", func() { fired += 10 })
	require.NoError(t, sim.Run())
	assert.True(t, sim.Stopped())
	assert.Equal(t, 1, fired)
	assert.Equal(t, time.Second, sim.Now())

	sim.Reset(1)
	assert.False(t, sim.Stopped())
}
