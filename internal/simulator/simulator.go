package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/logger"
)

// Options tune a run beyond what the configuration files describe.
type Options struct {
	// CombatLog receives the trace of every iteration. Setting it forces a
	// single worker so lines do not interleave.
	CombatLog io.Writer
	// RunID identifies the run. A random one is generated when zero.
	RunID uuid.UUID
	// Log receives diagnostics. Defaults to the process logger.
	Log *logrus.Entry
}

// Simulator runs the configured fight many times and aggregates the results.
type Simulator struct {
	cfg      *config.Config
	rotation *apl.CompiledRotation
	opts     Options
	threads  int
	log      *logrus.Entry
}

// LoadRotation reads and compiles the rotation file the player config names.
func LoadRotation(cfg *config.Config) (*apl.CompiledRotation, error) {
	path := cfg.RotationPath()
	if path == "" {
		return nil, errors.New("player: no rotation configured")
	}
	file, err := apl.LoadRotation(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("load rotation: %w", err)
	}
	rot, err := apl.Compile(file)
	if err != nil {
		return nil, fmt.Errorf("compile rotation %s: %w", path, err)
	}
	return rot, nil
}

// New checks that cfg and rotation describe a runnable fight by building one
// world from them.
func New(cfg *config.Config, rotation *apl.CompiledRotation, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rotation == nil {
		return nil, errors.New("no rotation")
	}
	if _, err := newWorld(cfg, rotation, nil); err != nil {
		return nil, err
	}
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logger.Log)
	}
	threads := min(max(cfg.Simulation.Threads, 1), cfg.Simulation.Iterations)
	if opts.CombatLog != nil {
		threads = 1
	}
	return &Simulator{
		cfg:      cfg,
		rotation: rotation,
		opts:     opts,
		threads:  threads,
		log:      opts.Log.WithField("run_id", opts.RunID.String()),
	}, nil
}

// Threads returns the number of workers Run uses.
func (s *Simulator) Threads() int {
	return s.threads
}

// Run plays every iteration. Worker w owns one world and plays iterations
// w, w+threads, ... so iteration i always sees the same seed label no matter
// how many workers there are.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	n := s.cfg.Simulation.Iterations
	s.log.WithFields(logrus.Fields{
		"spec":       s.cfg.Player.Character.Specialization,
		"rotation":   s.rotation.Name,
		"iterations": n,
		"threads":    s.threads,
	}).Info("starting simulation")
	if s.opts.CombatLog != nil {
		fmt.Fprintf(s.opts.CombatLog, "=== run %s: %s, %d iterations, %.0fs ===\n",
			s.opts.RunID, s.rotation.Name, n, s.cfg.Simulation.Duration().Seconds())
	}

	its := make([]*iteration, n)
	g, ctx := errgroup.WithContext(ctx)
	for w := range s.threads {
		g.Go(func() error {
			wd, err := newWorld(s.cfg, s.rotation, s.opts.CombatLog)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			for i := w; i < n; i += s.threads {
				if err := ctx.Err(); err != nil {
					return err
				}
				it := wd.run(i)
				if it.err != nil {
					s.log.WithError(it.err).WithField("iteration", i).Warn("iteration aborted")
				}
				its[i] = it
			}
			s.log.WithField("worker", w).Debug("worker finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Result{
		RunID:      s.opts.RunID,
		Player:     s.cfg.Player.Character.Name,
		Spec:       s.cfg.Player.Character.Specialization,
		Rotation:   s.rotation.Name,
		Duration:   s.cfg.Simulation.Duration(),
		Iterations: n,
	}
	aggregate(r, its)
	entry := s.log.WithFields(logrus.Fields{
		"dps":     fmt.Sprintf("%.2f", r.DPS),
		"aborted": r.AbortedIterations,
	})
	if r.ValidIterations() == 0 {
		entry.Error("every iteration was aborted")
	} else {
		entry.Info("simulation finished")
	}
	return r, nil
}
