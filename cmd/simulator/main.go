package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/logger"
	"wod-mage-sim/internal/simulator"
)

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		logger.Log.WithError(err).Fatal("simulation failed")
	}
}

// run parses args, plays the simulation and prints the report to out. Every
// file it opens is closed before it returns.
func run(ctx context.Context, args []string, out io.Writer) error {
	var (
		configDir  string
		rotation   string
		spec       string
		combatLog  string
		iterations int
		threads    int
		duration   float64
		seed       int64
	)
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.StringVar(&configDir, "config", "configs", "Directory holding the YAML configuration")
	fs.StringVar(&rotation, "rotation", "", "Rotation file, overrides player.yaml (relative to -config)")
	fs.StringVar(&spec, "spec", "", "Specialization, overrides player.yaml (arcane, fire, frost)")
	fs.StringVar(&combatLog, "log", "", "Write the combat log to this file ('-' for stdout); forces one thread")
	fs.IntVar(&iterations, "iterations", 0, "Iterations, overrides simulation.yaml")
	fs.IntVar(&threads, "threads", 0, "Worker threads, overrides simulation.yaml")
	fs.Float64Var(&duration, "duration", 0, "Fight length in seconds, overrides simulation.yaml")
	fs.Int64Var(&seed, "seed", 0, "Base seed, overrides simulation.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rotation != "" {
		cfg.Player.Rotation = rotation
	}
	if spec != "" {
		cfg.Player.Character.Specialization = spec
	}
	if iterations > 0 {
		cfg.Simulation.Iterations = iterations
	}
	if threads > 0 {
		cfg.Simulation.Threads = threads
	}
	if duration > 0 {
		cfg.Simulation.DurationSeconds = duration
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rot, err := simulator.LoadRotation(cfg)
	if err != nil {
		return err
	}

	var opts simulator.Options
	if combatLog == "" && cfg.Simulation.CombatLog {
		combatLog = "-"
	}
	switch combatLog {
	case "":
	case "-":
		opts.CombatLog = out
	default:
		f, err := os.Create(combatLog)
		if err != nil {
			return fmt.Errorf("create combat log: %w", err)
		}
		defer f.Close()
		opts.CombatLog = f
	}

	sim, err := simulator.New(cfg, rot, opts)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	result.Print(out)
	return nil
}
