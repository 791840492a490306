package simulator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/config"
)

var fixedRun = uuid.MustParse("6f1c2a4e-2d1b-4c55-9a7e-0b8d6c1e5f30")

func loadConfig(t *testing.T, setup func(cfg *config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("../../configs")
	require.NoError(t, err)
	cfg.Simulation.DurationSeconds = 60
	cfg.Simulation.Iterations = 6
	cfg.Simulation.Threads = 1
	if setup != nil {
		setup(cfg)
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietLog() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l), hook
}

func compile(t *testing.T, src string) *apl.CompiledRotation {
	t.Helper()
	file, err := apl.Parse([]byte(src))
	require.NoError(t, err)
	rot, err := apl.Compile(file)
	require.NoError(t, err)
	return rot
}

func run(t *testing.T, cfg *config.Config, opts Options) *Result {
	t.Helper()
	rot, err := LoadRotation(cfg)
	require.NoError(t, err)
	if opts.Log == nil {
		opts.Log, _ = quietLog()
	}
	opts.RunID = fixedRun
	s, err := New(cfg, rot, opts)
	require.NoError(t, err)
	r, err := s.Run(context.Background())
	require.NoError(t, err)
	return r
}

func TestResultsDoNotDependOnThreads(t *testing.T) {
	single := run(t, loadConfig(t, nil), Options{})
	multi := run(t, loadConfig(t, func(cfg *config.Config) { cfg.Simulation.Threads = 4 }), Options{})

	require.Equal(t, 0, single.AbortedIterations)
	assert.Greater(t, single.DPS, 0.0)
	assert.Equal(t, single, multi)
}

func TestCombatLogIsDeterministic(t *testing.T) {
	digest := func() ([32]byte, string) {
		var buf bytes.Buffer
		cfg := loadConfig(t, func(cfg *config.Config) {
			cfg.Simulation.Iterations = 2
			cfg.Simulation.Threads = 4
		})
		run(t, cfg, Options{CombatLog: &buf})
		return sha256.Sum256(buf.Bytes()), buf.String()
	}
	first, text := digest()
	second, _ := digest()

	assert.Equal(t, first, second)
	assert.Contains(t, text, fixedRun.String())
	assert.Contains(t, text, "=== iteration 1 ===")
	assert.Contains(t, text, "frostbolt")
}

func TestIterationEndsWhenEveryEnemyIsDead(t *testing.T) {
	cfg := loadConfig(t, func(cfg *config.Config) {
		cfg.Simulation.Enemies = []config.Enemy{
			{Name: "boss", Health: 20000},
			{Name: "add", Health: 1, ArriveSeconds: 20},
		}
	})
	r := run(t, cfg, Options{})

	require.Equal(t, 0, r.AbortedIterations)
	assert.Less(t, r.MeanLength, r.Duration)
	assert.GreaterOrEqual(t, r.MeanLength, 20*time.Second)
	assert.Greater(t, r.ActorDamage["mage"], 0.0)
}

func TestAbortedIterationsAreDiscarded(t *testing.T) {
	cfg := loadConfig(t, nil)
	rot := compile(t, `
name: loop
rotation:
  - action: cast
    spell: start_burn_phase
  - action: cast
    spell: stop_burn_phase
`)
	log, hook := quietLog()
	s, err := New(cfg, rot, Options{Log: log, RunID: fixedRun})
	require.NoError(t, err)
	r, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.Simulation.Iterations, r.AbortedIterations)
	assert.Equal(t, map[string]int{"phase toggled twice at the same timestamp": cfg.Simulation.Iterations}, r.AbortReasons)
	assert.Zero(t, r.DPS)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "iteration aborted" {
			warnings++
			assert.Equal(t, fixedRun.String(), e.Data["run_id"])
		}
	}
	assert.Equal(t, cfg.Simulation.Iterations, warnings)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNewRejectsUnknownTarget(t *testing.T) {
	cfg := loadConfig(t, nil)
	rot := compile(t, `
name: bad
rotation:
  - action: cast
    spell: frostbolt
    target: nobody
`)
	_, err := New(cfg, rot, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := loadConfig(t, nil)
	rot, err := LoadRotation(cfg)
	require.NoError(t, err)
	log, _ := quietLog()
	s, err := New(cfg, rot, Options{Log: log})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintReport(t *testing.T) {
	r := run(t, loadConfig(t, nil), Options{})
	var buf bytes.Buffer
	r.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, fixedRun.String())
	assert.Contains(t, out, "frostbolt")
	assert.Contains(t, out, "Iterations: 6 (0 aborted)")
	assert.Contains(t, out, "molten_armor")
}

func TestScaleFactorsFavourSpellPower(t *testing.T) {
	cfg := loadConfig(t, func(cfg *config.Config) { cfg.Simulation.Iterations = 3 })
	rot, err := LoadRotation(cfg)
	require.NoError(t, err)
	log, _ := quietLog()
	stats := cfg.Player.Stats

	deltas := DefaultStatDeltas()[:1]
	baseline, weights, err := ScaleFactors(context.Background(), cfg, rot, deltas, 2, Options{Log: log})
	require.NoError(t, err)

	require.Len(t, weights, 1)
	assert.Greater(t, baseline, 0.0)
	assert.Greater(t, weights[0].PlusDPS, weights[0].MinusDPS)
	assert.Greater(t, weights[0].Weight, 0.0)
	assert.InDelta(t, 1.0, weights[0].Normalized, 1e-9)
	assert.Equal(t, stats, cfg.Player.Stats)
}
