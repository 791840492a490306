package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/talents"
)

// Ratings holds the rating conversion table.
type Ratings struct {
	CritPerPercent        float64 `yaml:"crit_rating_per_percent"`
	HastePerPercent       float64 `yaml:"haste_rating_per_percent"`
	MasteryPerPoint       float64 `yaml:"mastery_rating_per_point"`
	MultistrikePerPercent float64 `yaml:"multistrike_rating_per_percent"`
	VersatilityPerPercent float64 `yaml:"versatility_rating_per_percent"`
	BaseCrit              float64 `yaml:"base_crit"`
	BaseMastery           float64 `yaml:"base_mastery"`
}

// GCD holds global cooldown bounds in seconds.
type GCD struct {
	Base    float64 `yaml:"base"`
	Minimum float64 `yaml:"minimum"`
}

// Combat holds hit table constants.
type Combat struct {
	CritMultiplier float64 `yaml:"crit_multiplier"`
	MissChance     float64 `yaml:"miss_chance"`
}

// Engine holds scheduler limits.
type Engine struct {
	WatchdogThreshold  int     `yaml:"watchdog_threshold"`
	WaitQuantumSeconds float64 `yaml:"wait_quantum_seconds"`
}

// Constants holds game constants
type Constants struct {
	Ratings             Ratings            `yaml:"ratings"`
	MasteryCoefficients map[string]float64 `yaml:"mastery_coefficients"`
	GCD                 GCD                `yaml:"gcd"`
	Combat              Combat             `yaml:"combat"`
	Engine              Engine             `yaml:"engine"`
}

// SpellData is one row of the static spell table. Times are in seconds.
// Buffs and procs share the table; they mostly use Duration, Value,
// ProcChance and MaxStacks.
type SpellData struct {
	ManaCost        float64 `yaml:"mana_cost"`
	CastTime        float64 `yaml:"cast_time"`
	Cooldown        float64 `yaml:"cooldown"`
	OffGCD          bool    `yaml:"off_gcd"`
	TravelTime      float64 `yaml:"travel_time"`
	BaseDamageMin   float64 `yaml:"base_damage_min"`
	BaseDamageMax   float64 `yaml:"base_damage_max"`
	SPCoefficient   float64 `yaml:"sp_coefficient"`
	DotDuration     float64 `yaml:"dot_duration"`
	TickTime        float64 `yaml:"tick_time"`
	TickDamage      float64 `yaml:"tick_damage"`
	TickCoefficient float64 `yaml:"tick_coefficient"`
	HastedTicks     bool    `yaml:"hasted_ticks"`
	Duration        float64 `yaml:"duration"`
	Value           float64 `yaml:"value"`
	CostMultiplier  float64 `yaml:"cost_multiplier"`
	ProcChance      float64 `yaml:"proc_chance"`
	MaxStacks       int     `yaml:"max_stacks"`
	AOE             int     `yaml:"aoe"`
}

// Spells holds all spell data keyed by spell name.
type Spells map[string]SpellData

// Stats are the gear-derived character stats.
type Stats struct {
	Intellect          float64 `yaml:"intellect"`
	SpellPower         float64 `yaml:"spell_power"`
	CritRating         float64 `yaml:"crit_rating"`
	HasteRating        float64 `yaml:"haste_rating"`
	MasteryRating      float64 `yaml:"mastery_rating"`
	MultistrikeRating  float64 `yaml:"multistrike_rating"`
	VersatilityRating  float64 `yaml:"versatility_rating"`
	MaxMana            float64 `yaml:"max_mana"`
	ManaRegenPerSecond float64 `yaml:"mana_regen_per_second"`
}

// Character identifies the simulated mage.
type Character struct {
	Name           string `yaml:"name"`
	Specialization string `yaml:"specialization"`
}

// Pets holds pet options.
type Pets struct {
	PrecombatWaterElemental bool `yaml:"precombat_water_elemental"`
}

// Player holds player character configuration
type Player struct {
	Character Character `yaml:"character"`
	Stats     Stats     `yaml:"stats"`
	Talents   []string  `yaml:"talents"`
	Glyphs    []string  `yaml:"glyphs"`
	Rotation  string    `yaml:"rotation"`
	Pets      Pets      `yaml:"pets"`

	active talents.Set
}

// Enemy is one target of the fight. Zero health means the enemy cannot die.
type Enemy struct {
	Name           string  `yaml:"name"`
	Health         float64 `yaml:"health"`
	ArriveSeconds  float64 `yaml:"arrive_seconds"`
	DespawnSeconds float64 `yaml:"despawn_seconds"`
}

// Simulation holds run parameters.
type Simulation struct {
	DurationSeconds float64 `yaml:"duration_seconds"`
	Iterations      int     `yaml:"iterations"`
	Threads         int     `yaml:"threads"`
	Seed            int64   `yaml:"seed"`
	CombatLog       bool    `yaml:"combat_log"`
	Enemies         []Enemy `yaml:"enemies"`
}

// Config holds all configuration
type Config struct {
	Dir        string
	Constants  Constants
	Spells     Spells
	Player     Player
	Simulation Simulation
}

const (
	SpecArcane = "arcane"
	SpecFire   = "fire"
	SpecFrost  = "frost"
)

// Seconds converts a YAML seconds value to a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func DefaultConstants() Constants {
	return Constants{
		Ratings: Ratings{
			CritPerPercent:        110,
			HastePerPercent:       90,
			MasteryPerPoint:       110,
			MultistrikePerPercent: 66,
			VersatilityPerPercent: 130,
			BaseCrit:              0.05,
			BaseMastery:           8,
		},
		MasteryCoefficients: map[string]float64{
			SpecArcane: 2.0,
			SpecFire:   1.5,
			SpecFrost:  2.0,
		},
		GCD:    GCD{Base: 1.5, Minimum: 1.0},
		Combat: Combat{CritMultiplier: 2.0},
		Engine: Engine{WatchdogThreshold: 1000, WaitQuantumSeconds: 0.1},
	}
}

func DefaultPlayer() Player {
	return Player{
		Character: Character{Name: "mage", Specialization: SpecFrost},
		Stats: Stats{
			Intellect:          3500,
			SpellPower:         4200,
			CritRating:         1500,
			HasteRating:        1200,
			MasteryRating:      900,
			MultistrikeRating:  700,
			VersatilityRating:  300,
			MaxMana:            160000,
			ManaRegenPerSecond: 3200,
		},
		Rotation: "rotations/frost.yaml",
	}
}

func DefaultSimulation() Simulation {
	return Simulation{
		DurationSeconds: 300,
		Iterations:      1000,
		Threads:         1,
		Seed:            1,
		Enemies:         []Enemy{{Name: "boss"}},
	}
}

// Converter returns the rating converter for a specialization.
func (c Constants) Converter(spec string) character.LinearConverter {
	return character.LinearConverter{
		CritPerPercent:        c.Ratings.CritPerPercent,
		HastePerPercent:       c.Ratings.HastePerPercent,
		MasteryPerPoint:       c.Ratings.MasteryPerPoint,
		MultistrikePerPercent: c.Ratings.MultistrikePerPercent,
		VersatilityPerPercent: c.Ratings.VersatilityPerPercent,
		BaseCrit:              c.Ratings.BaseCrit,
		BaseMastery:           c.Ratings.BaseMastery,
		MasteryCoefficient:    c.MasteryCoefficients[spec],
	}
}

// CharacterStats converts the configured stats.
func (s Stats) CharacterStats() character.Stats {
	return character.Stats{
		Intellect:          s.Intellect,
		SpellPower:         s.SpellPower,
		CritRating:         s.CritRating,
		HasteRating:        s.HasteRating,
		MasteryRating:      s.MasteryRating,
		MultistrikeRating:  s.MultistrikeRating,
		VersatilityRating:  s.VersatilityRating,
		MaxMana:            s.MaxMana,
		ManaRegenPerSecond: s.ManaRegenPerSecond,
	}
}

// Duration returns the fight length.
func (s Simulation) Duration() time.Duration {
	return Seconds(s.DurationSeconds)
}

// Spell returns the data row for name.
func (c *Config) Spell(name string) (SpellData, bool) {
	d, ok := c.Spells[name]
	return d, ok
}

// RotationPath resolves the player's rotation file against the config dir.
func (c *Config) RotationPath() string {
	if c.Player.Rotation == "" || filepath.IsAbs(c.Player.Rotation) {
		return c.Player.Rotation
	}
	return filepath.Join(c.Dir, c.Player.Rotation)
}

// Load reads every configuration file from dir. spells.yaml is required;
// the other files fall back to their defaults when missing.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		Dir:        dir,
		Constants:  DefaultConstants(),
		Player:     DefaultPlayer(),
		Simulation: DefaultSimulation(),
	}
	if err := readOptional(dir, "constants.yaml", &cfg.Constants); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "spells.yaml"))
	if err != nil {
		return nil, fmt.Errorf("spells.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg.Spells); err != nil {
		return nil, fmt.Errorf("spells.yaml: %w", err)
	}
	if err := readOptional(dir, "player.yaml", &cfg.Player); err != nil {
		return nil, err
	}
	if err := readOptional(dir, "simulation.yaml", &cfg.Simulation); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readOptional(dir, name string, out any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
