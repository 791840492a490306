package simulator

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/config"
)

// StatDelta perturbs one character stat.
type StatDelta struct {
	Name  string
	Delta float64
	Apply func(s *config.Stats, d float64)
}

// DefaultStatDeltas are the stats scale factors are computed for.
func DefaultStatDeltas() []StatDelta {
	return []StatDelta{
		{Name: "spell_power", Delta: 100, Apply: func(s *config.Stats, d float64) { s.SpellPower += d }},
		{Name: "intellect", Delta: 100, Apply: func(s *config.Stats, d float64) { s.Intellect += d }},
		{Name: "crit_rating", Delta: 100, Apply: func(s *config.Stats, d float64) { s.CritRating += d }},
		{Name: "haste_rating", Delta: 100, Apply: func(s *config.Stats, d float64) { s.HasteRating += d }},
		{Name: "mastery_rating", Delta: 100, Apply: func(s *config.Stats, d float64) { s.MasteryRating += d }},
		{Name: "multistrike_rating", Delta: 100, Apply: func(s *config.Stats, d float64) { s.MultistrikeRating += d }},
		{Name: "versatility_rating", Delta: 100, Apply: func(s *config.Stats, d float64) { s.VersatilityRating += d }},
	}
}

// StatWeight is the DPS gained per point of a stat.
type StatWeight struct {
	Stat       string
	Delta      float64
	Weight     float64
	PlusDPS    float64
	MinusDPS   float64
	Normalized float64 // relative to spell power
}

// WithStats returns a copy of cfg using stats. Slices Validate rewrites are
// cloned so copies can be validated concurrently.
func WithStats(cfg *config.Config, stats config.Stats) *config.Config {
	c := *cfg
	c.Player.Talents = slices.Clone(cfg.Player.Talents)
	c.Player.Glyphs = slices.Clone(cfg.Player.Glyphs)
	c.Player.Stats = stats
	return &c
}

// DPS runs cfg once and returns the mean DPS. Every call with the same seed
// sees the same random streams, which keeps stat comparisons low-noise.
func DPS(ctx context.Context, cfg *config.Config, rotation *apl.CompiledRotation, opts Options) (float64, error) {
	s, err := New(cfg, rotation, opts)
	if err != nil {
		return 0, err
	}
	r, err := s.Run(ctx)
	if err != nil {
		return 0, err
	}
	if r.ValidIterations() == 0 {
		return 0, fmt.Errorf("every iteration aborted: %v", r.AbortReasons)
	}
	return r.DPS, nil
}

// ScaleFactors computes central-difference stat weights around the
// configured stats. Up to parallel simulations run at once.
func ScaleFactors(ctx context.Context, cfg *config.Config, rotation *apl.CompiledRotation, deltas []StatDelta, parallel int, opts Options) (float64, []StatWeight, error) {
	opts.CombatLog = nil
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	base := cfg.Player.Stats
	weights := make([]StatWeight, len(deltas))
	var baseline float64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	g.Go(func() error {
		dps, err := DPS(ctx, WithStats(cfg, base), rotation, opts)
		baseline = dps
		return err
	})
	for i, sd := range deltas {
		weights[i] = StatWeight{Stat: sd.Name, Delta: sd.Delta}
		g.Go(func() error {
			plus := base
			sd.Apply(&plus, sd.Delta)
			dps, err := DPS(ctx, WithStats(cfg, plus), rotation, opts)
			weights[i].PlusDPS = dps
			return err
		})
		g.Go(func() error {
			minus := base
			sd.Apply(&minus, -sd.Delta)
			dps, err := DPS(ctx, WithStats(cfg, minus), rotation, opts)
			weights[i].MinusDPS = dps
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	var sp float64
	for i := range weights {
		w := &weights[i]
		w.Weight = (w.PlusDPS - w.MinusDPS) / (2 * w.Delta)
		if w.Stat == "spell_power" {
			sp = w.Weight
		}
	}
	if sp != 0 {
		for i := range weights {
			weights[i].Normalized = weights[i].Weight / sp
		}
	}
	return baseline, weights, nil
}
