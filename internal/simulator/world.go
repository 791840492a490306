package simulator

import (
	"fmt"
	"io"
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/engine"
	"wod-mage-sim/internal/spells"
)

// world is one isolated copy of the fight. A worker owns exactly one world
// and resets it between iterations.
type world struct {
	sim     *engine.Sim
	reg     *actor.Registry
	mage    *spells.Mage
	enemies []*enemy
	stats   *collector
	pending int
}

type enemy struct {
	*actor.Actor
	arrive  time.Duration
	despawn time.Duration
}

func simulationConfig(cfg *config.Config) engine.SimulationConfig {
	return engine.SimulationConfig{
		Duration:          cfg.Simulation.Duration(),
		Seed:              cfg.Simulation.Seed,
		WatchdogThreshold: cfg.Constants.Engine.WatchdogThreshold,
		WaitQuantum:       config.Seconds(cfg.Constants.Engine.WaitQuantumSeconds),
	}
}

// newWorld builds the enemies, the mage and its pets, and binds the rotation.
// Every configuration problem surfaces here, before any iteration runs.
func newWorld(cfg *config.Config, rotation *apl.CompiledRotation, logWriter io.Writer) (*world, error) {
	w := &world{
		sim:   engine.NewSim(simulationConfig(cfg), logWriter),
		reg:   actor.NewRegistry(),
		stats: newCollector(),
	}
	for _, ec := range cfg.Simulation.Enemies {
		attr := character.NewAttributes(character.Stats{MaxHealth: ec.Health}, nil)
		e := &enemy{
			Actor:   actor.New(w.sim, ec.Name, actor.KindEnemy, attr),
			arrive:  config.Seconds(ec.ArriveSeconds),
			despawn: config.Seconds(ec.DespawnSeconds),
		}
		e.Hooks.OnDemise = w.enemyDied
		w.reg.Add(e.Actor)
		w.enemies = append(w.enemies, e)
	}

	m, err := spells.New(w.sim, w.reg, cfg)
	if err != nil {
		return nil, err
	}
	if err := m.BindRotation(rotation); err != nil {
		return nil, fmt.Errorf("bind rotation %q: %w", rotation.Name, err)
	}
	w.mage = m
	for _, a := range w.reg.All() {
		if a.Kind != actor.KindEnemy {
			a.Stats = w.stats
		}
	}
	return w, nil
}

// run plays iteration i to completion.
func (w *world) run(i int) *iteration {
	w.sim.Reset(i)
	w.stats.reset()
	for _, a := range w.reg.All() {
		a.Reset()
	}
	w.sim.Log.Static("=== iteration %d ===", i)

	w.pending = 0
	for _, e := range w.enemies {
		if e.arrive == 0 {
			w.arrive(e)
			continue
		}
		w.pending++
		e.Schedule(e.arrive, "arrive", func() {
			w.pending--
			w.arrive(e)
			w.mage.AcquireTarget()
		})
	}
	w.mage.AcquireTarget()
	w.mage.Arise()

	err := w.sim.Run()
	it := w.stats.take()
	if err != nil {
		it.err = err
		return it
	}
	it.length = w.sim.Config.Duration
	if w.sim.Stopped() {
		it.length = w.sim.Now()
	}
	it.mana = resourceLedger{gained: w.mage.Mana.Gains(), spent: w.mage.Mana.Losses()}
	for _, b := range w.mage.Buffs() {
		it.buffs = append(it.buffs, buffSample{
			name:     b.Label,
			uptime:   b.Uptime(),
			benefit:  b.Benefit(),
			triggers: b.Triggers(),
		})
	}
	return it
}

func (w *world) arrive(e *enemy) {
	e.Arise()
	if e.despawn > 0 {
		e.Schedule(e.despawn-e.arrive, "despawn", e.Demise)
	}
}

// enemyDied ends the iteration once nothing is left to fight.
func (w *world) enemyDied(*actor.Actor) {
	if w.pending == 0 && len(w.reg.Enemies()) == 0 {
		w.sim.Stop()
	}
}
