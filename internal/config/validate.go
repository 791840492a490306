package config

import (
	"fmt"

	"wod-mage-sim/internal/talents"
)

// RequiredSpells lists the spell table rows the mage is built from.
var RequiredSpells = []string{
	"arcane_blast", "arcane_missiles", "arcane_missiles_tick", "arcane_barrage", "arcane_power",
	"arcane_charge", "presence_of_mind", "evocation",
	"fireball", "pyroblast", "inferno_blast", "combustion", "living_bomb", "living_bomb_explosion",
	"ignite", "heating_up", "hot_streak",
	"frostbolt", "ice_lance", "icicle", "fingers_of_frost", "icy_veins",
	"summon_water_elemental", "waterbolt",
	"mirror_image", "mirror_image_bolt", "molten_armor",
}

// Validate returns the first problem found in the configuration.
func (cfg *Config) Validate() error {
	if err := cfg.Constants.validate(); err != nil {
		return err
	}
	if err := cfg.Spells.validate(); err != nil {
		return err
	}
	if err := cfg.Player.validate(); err != nil {
		return err
	}
	return cfg.Simulation.validate()
}

func (c *Constants) validate() error {
	if c.GCD.Base <= 0 || c.GCD.Minimum < 0 || c.GCD.Minimum > c.GCD.Base {
		return fmt.Errorf("constants: invalid gcd %.2f/%.2f", c.GCD.Base, c.GCD.Minimum)
	}
	if c.Combat.CritMultiplier < 1 {
		return fmt.Errorf("constants: crit_multiplier %.2f below 1", c.Combat.CritMultiplier)
	}
	if c.Combat.MissChance < 0 || c.Combat.MissChance >= 1 {
		return fmt.Errorf("constants: miss_chance %.2f out of range", c.Combat.MissChance)
	}
	if c.Engine.WatchdogThreshold < 0 || c.Engine.WaitQuantumSeconds < 0 {
		return fmt.Errorf("constants: negative engine limits")
	}
	return nil
}

func (s Spells) validate() error {
	for _, name := range RequiredSpells {
		if _, ok := s[name]; !ok {
			return fmt.Errorf("spells: missing '%s'", name)
		}
	}
	for name, d := range s {
		if d.ManaCost < 0 || d.CastTime < 0 || d.Cooldown < 0 || d.TravelTime < 0 ||
			d.DotDuration < 0 || d.TickTime < 0 || d.Duration < 0 {
			return fmt.Errorf("spells: '%s' has a negative cost or time", name)
		}
		if d.BaseDamageMax < d.BaseDamageMin {
			return fmt.Errorf("spells: '%s' base_damage_max below base_damage_min", name)
		}
		if d.DotDuration > 0 && d.TickTime <= 0 {
			return fmt.Errorf("spells: '%s' has a dot without tick_time", name)
		}
		if d.ProcChance < 0 || d.ProcChance > 1 {
			return fmt.Errorf("spells: '%s' proc_chance out of range", name)
		}
	}
	return nil
}

func (p *Player) validate() error {
	switch p.Character.Specialization {
	case SpecArcane, SpecFire, SpecFrost:
	default:
		return fmt.Errorf("player: unknown specialization '%s'", p.Character.Specialization)
	}
	if p.Character.Name == "" {
		return fmt.Errorf("player: name missing")
	}
	if p.Stats.MaxMana <= 0 {
		return fmt.Errorf("player: max_mana must be positive")
	}
	active, err := validateSelection(p.Talents, p.Glyphs)
	if err != nil {
		return err
	}
	p.active = active
	return nil
}

func validateSelection(talentNames, glyphNames []string) (talents.Set, error) {
	active := talents.Set{}
	rows := map[int]string{}
	check := func(names []string, expected talents.Kind) error {
		for i, raw := range names {
			name := talents.Normalize(raw)
			names[i] = name
			kind, ok := talents.KindOf(name)
			if !ok {
				return fmt.Errorf("player: unknown %s '%s'", expected, raw)
			}
			if kind != expected {
				return fmt.Errorf("player: '%s' is a %s but listed under %ss", name, kind, expected)
			}
			if _, dup := active[name]; dup {
				return fmt.Errorf("player: '%s' selected more than once", name)
			}
			if row := talents.RowOf(name); row > 0 {
				if other, taken := rows[row]; taken {
					return fmt.Errorf("player: talents '%s' and '%s' share row %d", other, name, row)
				}
				rows[row] = name
			}
			active[name] = struct{}{}
		}
		return nil
	}
	if err := check(talentNames, talents.KindTalent); err != nil {
		return nil, err
	}
	if len(glyphNames) > talents.MaxGlyphs {
		return nil, fmt.Errorf("player: glyph selections exceed limit (%d > %d)", len(glyphNames), talents.MaxGlyphs)
	}
	if err := check(glyphNames, talents.KindGlyph); err != nil {
		return nil, err
	}
	return active, nil
}

func (s *Simulation) validate() error {
	if s.DurationSeconds <= 0 {
		return fmt.Errorf("simulation: duration_seconds must be positive")
	}
	if s.Iterations <= 0 {
		return fmt.Errorf("simulation: iterations must be positive")
	}
	if s.Threads < 0 {
		return fmt.Errorf("simulation: threads must not be negative")
	}
	if len(s.Enemies) == 0 {
		return fmt.Errorf("simulation: at least one enemy required")
	}
	seen := map[string]bool{}
	for _, e := range s.Enemies {
		if e.Name == "" {
			return fmt.Errorf("simulation: enemy without a name")
		}
		if seen[e.Name] {
			return fmt.Errorf("simulation: enemy '%s' defined twice", e.Name)
		}
		seen[e.Name] = true
		if e.Health < 0 || e.ArriveSeconds < 0 || e.DespawnSeconds < 0 {
			return fmt.Errorf("simulation: enemy '%s' has negative values", e.Name)
		}
		if e.DespawnSeconds > 0 && e.DespawnSeconds <= e.ArriveSeconds {
			return fmt.Errorf("simulation: enemy '%s' despawns before it arrives", e.Name)
		}
	}
	return nil
}
