package engine

import (
	"fmt"
	"io"
	"time"
)

// SimulationConfig holds per-iteration simulation parameters.
type SimulationConfig struct {
	Duration          time.Duration // Fight duration
	Seed              int64         // Run seed every RNG stream derives from
	WatchdogThreshold int           // Consecutive zero-time decisions before abort
	WaitQuantum       time.Duration // Idle step when nothing is ready and nothing is queued
}

// DefaultWaitQuantum is the idle step used when none is configured.
const DefaultWaitQuantum = 100 * time.Millisecond

// Sim is the context one iteration runs in. It owns the clock and the event
// queue; actors receive it explicitly.
type Sim struct {
	*Scheduler

	Config    SimulationConfig
	Iteration int
	Log       *CombatLog
	Watchdog  *Watchdog

	abort   error
	stopped bool
}

// NewSim returns a simulation context. logWriter may be nil.
func NewSim(cfg SimulationConfig, logWriter io.Writer) *Sim {
	if cfg.WaitQuantum <= 0 {
		cfg.WaitQuantum = DefaultWaitQuantum
	}
	return &Sim{
		Scheduler: NewScheduler(),
		Config:    cfg,
		Log:       NewCombatLog(logWriter),
		Watchdog:  NewWatchdog(cfg.WatchdogThreshold),
	}
}

// Reset prepares the context for the given iteration.
func (s *Sim) Reset(iteration int) {
	s.Scheduler.Reset()
	s.Watchdog.Reset()
	s.Iteration = iteration
	s.abort = nil
	s.stopped = false
}

// StreamLabel returns the RNG label for an actor in the current iteration.
func (s *Sim) StreamLabel(actor string) string {
	return fmt.Sprintf("iteration/%d/%s", s.Iteration, actor)
}

// Abort stops the current iteration. Only the first error is kept.
func (s *Sim) Abort(err error) {
	if err == nil || s.abort != nil {
		return
	}
	s.abort = err
	s.Log.At(s.Now(), "sim", "ABORT", "%v", err)
}

// Aborted returns the error that stopped the iteration, if any.
func (s *Sim) Aborted() error {
	return s.abort
}

// Stop ends the iteration early without an error, e.g. when every enemy is
// dead. Events already due at the current time still fire.
func (s *Sim) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.Log.At(s.Now(), "sim", "STOP", "no enemies left")
}

// Stopped reports whether Stop was called this iteration.
func (s *Sim) Stopped() bool {
	return s.stopped
}

// Expired reports whether the fight duration has been reached.
func (s *Sim) Expired() bool {
	return s.Config.Duration > 0 && s.Now() >= s.Config.Duration
}

// Logf writes a combat log line at the current time.
func (s *Sim) Logf(actor, event, format string, args ...any) {
	s.Log.At(s.Now(), actor, event, format, args...)
}

// Run fires events until the queue drains, the fight ends or the iteration
// is aborted.
func (s *Sim) Run() error {
	for s.abort == nil {
		next, ok := s.NextAt()
		if !ok {
			break
		}
		if s.Config.Duration > 0 && next > s.Config.Duration {
			break
		}
		if s.stopped && next > s.Now() {
			break
		}
		s.Advance()
	}
	return s.abort
}
