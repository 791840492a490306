package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/logger"
	"wod-mage-sim/internal/simulator"
)

type sweepConfig struct {
	stat         simulator.StatDelta
	start        float64
	stop         float64
	step         float64
	concurrency  int
	includeDelta bool
	outputDir    string
}

type sweepPoint struct {
	value float64
	dps   float64
}

func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	rotationFlag := flag.String("rotation", "", "Rotation file relative to config-dir (defaults to player.yaml value)")
	iterations := flag.Int("iterations", 0, "Iterations (0 = use simulation.yaml)")
	seed := flag.Int64("seed", 0, "Base RNG seed (0 = use simulation.yaml)")
	verbose := flag.Bool("verbose", false, "Show plus/minus DPS columns")
	sweepStat := flag.String("stat", "", "Stat to sweep (e.g. haste_rating). If set, runs sweep mode instead of central-diff weights.")
	sweepStart := flag.Float64("start", math.NaN(), "Sweep start (defaults to the configured value)")
	sweepStop := flag.Float64("stop", math.NaN(), "Sweep stop (defaults to start + 2000)")
	sweepStep := flag.Float64("step", 100, "Sweep step")
	concurrency := flag.Int("concurrency", 0, "Concurrent sims (0 = num CPU)")
	includeDelta := flag.Bool("deltas", true, "Include DPS-per-point delta column in sweep CSV.")
	outputDir := flag.String("output-dir", "output/stat_curves", "Directory for sweep CSV output.")
	flag.Parse()

	logger.Init()
	log := logger.Log

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if *rotationFlag != "" {
		cfg.Player.Rotation = *rotationFlag
	}
	if *iterations > 0 {
		cfg.Simulation.Iterations = *iterations
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	// each sim runs single threaded; parallelism comes from running sims side by side
	cfg.Simulation.Threads = 1
	if *concurrency <= 0 {
		*concurrency = runtime.NumCPU()
	}

	rotation, err := simulator.LoadRotation(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to load rotation")
	}

	if *sweepStat != "" {
		sc, err := buildSweepConfig(cfg, *sweepStat, *sweepStart, *sweepStop, *sweepStep, *concurrency, *includeDelta, *outputDir)
		if err != nil {
			log.WithError(err).Fatal("sweep config error")
		}
		if err := runSweep(cfg, rotation, sc); err != nil {
			log.WithError(err).Fatal("sweep failed")
		}
		return
	}

	baseline, weights, err := simulator.ScaleFactors(context.Background(), cfg, rotation, simulator.DefaultStatDeltas(), *concurrency, simulator.Options{})
	if err != nil {
		log.WithError(err).Fatal("scale factors failed")
	}

	fmt.Printf("Stat Weights (central diff, shared seed %d)\n", cfg.Simulation.Seed)
	fmt.Printf("Rotation: %s (%s)\n", rotation.Name, cfg.Player.Character.Specialization)
	fmt.Printf("Iterations: %d, Duration: %.0fs\n\n", cfg.Simulation.Iterations, cfg.Simulation.DurationSeconds)
	fmt.Printf("Baseline DPS: %.2f\n\n", baseline)

	w := tabWriter()
	if *verbose {
		fmt.Fprintf(w, "Stat\tDelta\tDPS/Point\tWeight vs SP\tPlus DPS\tMinus DPS\n")
	} else {
		fmt.Fprintf(w, "Stat\tDelta\tDPS/Point\tWeight vs SP\n")
	}
	for _, res := range weights {
		if *verbose {
			fmt.Fprintf(w, "%s\t%+.0f\t%.3f\t%.3f\t%.2f\t%.2f\n",
				res.Stat, res.Delta, res.Weight, res.Normalized, res.PlusDPS, res.MinusDPS)
		} else {
			fmt.Fprintf(w, "%s\t%+.0f\t%.3f\t%.3f\n", res.Stat, res.Delta, res.Weight, res.Normalized)
		}
	}
	w.Flush()
}

// tabWriter creates a tab-aligned writer for consistent table output.
func tabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func buildSweepConfig(cfg *config.Config, stat string, start, stop, step float64, concurrency int, includeDelta bool, outputDir string) (sweepConfig, error) {
	sc := sweepConfig{
		start:        start,
		stop:         stop,
		step:         step,
		concurrency:  concurrency,
		includeDelta: includeDelta,
		outputDir:    outputDir,
	}
	found := false
	for _, sd := range simulator.DefaultStatDeltas() {
		if sd.Name == stat {
			sc.stat, found = sd, true
		}
	}
	if !found {
		return sweepConfig{}, fmt.Errorf("unsupported stat %q", stat)
	}
	if math.IsNaN(sc.start) {
		sc.start = dot(unit(sc.stat), cfg.Player.Stats)
	}
	if math.IsNaN(sc.stop) {
		sc.stop = sc.start + 2000
	}
	if sc.step <= 0 {
		return sweepConfig{}, fmt.Errorf("step must be > 0 (got %.2f)", sc.step)
	}
	if sc.stop <= sc.start {
		return sweepConfig{}, fmt.Errorf("stop must be > start (start=%.2f, stop=%.2f)", sc.start, sc.stop)
	}
	return sc, nil
}

// dot returns the value of the stat selected by the unit vector mask.
func dot(mask, s config.Stats) float64 {
	return mask.Intellect*s.Intellect + mask.SpellPower*s.SpellPower + mask.CritRating*s.CritRating +
		mask.HasteRating*s.HasteRating + mask.MasteryRating*s.MasteryRating +
		mask.MultistrikeRating*s.MultistrikeRating + mask.VersatilityRating*s.VersatilityRating
}

func runSweep(cfg *config.Config, rotation *apl.CompiledRotation, sc sweepConfig) error {
	var points []sweepPoint
	for v := sc.start; v <= sc.stop+1e-9; v += sc.step {
		points = append(points, sweepPoint{value: v})
	}
	if len(points) == 0 {
		return fmt.Errorf("no sweep points generated")
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(sc.concurrency)
	for i := range points {
		g.Go(func() error {
			stats := cfg.Player.Stats
			sc.stat.Apply(&stats, points[i].value-dot(unit(sc.stat), stats))
			dps, err := simulator.DPS(ctx, simulator.WithStats(cfg, stats), rotation, simulator.Options{})
			points[i].dps = dps
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	outPath := filepath.Join(sc.outputDir, fmt.Sprintf("%s.csv", sc.stat.Name))
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", outPath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"stat_value", "dps"}
	if sc.includeDelta {
		header = append(header, "dps_per_point")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range points {
		record := []string{fmt.Sprintf("%.4f", p.value), fmt.Sprintf("%.4f", p.dps)}
		if sc.includeDelta {
			if i == 0 {
				record = append(record, "")
			} else {
				prev := points[i-1]
				record = append(record, fmt.Sprintf("%.6f", (p.dps-prev.dps)/(p.value-prev.value)))
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	fmt.Printf("Sweep complete (%s): %d points, output=%s\n", sc.stat.Name, len(points), outPath)
	return nil
}

// unit returns stats with only the swept stat set to one.
func unit(sd simulator.StatDelta) config.Stats {
	var s config.Stats
	sd.Apply(&s, 1)
	return s
}
