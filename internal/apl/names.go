package apl

import (
	"fmt"
	"strings"
)

// NOTE: keep these lists in sync with the abilities and auras the mage exposes.
var (
	knownSpells = map[string]struct{}{
		"arcane_blast":           {},
		"arcane_missiles":        {},
		"arcane_barrage":         {},
		"arcane_power":           {},
		"presence_of_mind":       {},
		"evocation":              {},
		"fireball":               {},
		"pyroblast":              {},
		"inferno_blast":          {},
		"combustion":             {},
		"living_bomb":            {},
		"frostbolt":              {},
		"ice_lance":              {},
		"icy_veins":              {},
		"summon_water_elemental": {},
		"mirror_image":           {},
		"choose_target":          {},
		"start_burn_phase":       {},
		"stop_burn_phase":        {},
		"start_pyro_chain":       {},
		"stop_pyro_chain":        {},
	}
	knownBuffs = map[string]struct{}{
		"arcane_charge":    {},
		"arcane_missiles":  {},
		"arcane_power":     {},
		"presence_of_mind": {},
		"heating_up":       {},
		"pyroblast":        {},
		"fingers_of_frost": {},
		"icy_veins":        {},
		"incanters_flow":   {},
		"molten_armor":     {},
		"mirror_image":     {},
	}
	knownDebuffs = map[string]struct{}{
		"ignite":      {},
		"combustion":  {},
		"living_bomb": {},
		"pyroblast":   {},
	}
	knownPhases = map[string]struct{}{
		"burn_phase": {},
		"pyro_chain": {},
	}
	knownResources = map[string]struct{}{
		"mana":   {},
		"health": {},
	}
)

// KnownSpell reports whether name is an ability rotations may reference.
func KnownSpell(name string) bool {
	_, ok := knownSpells[normalizeName(name)]
	return ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validateName(kind string, known map[string]struct{}, name string) (string, error) {
	n := normalizeName(name)
	if n == "" {
		return n, fmt.Errorf("%s name missing", kind)
	}
	if _, ok := known[n]; !ok {
		return "", fmt.Errorf("unknown %s '%s'", kind, name)
	}
	return n, nil
}

func validateSpellName(name string) (string, error) {
	return validateName("spell", knownSpells, name)
}

func validateBuffName(name string) (string, error) {
	return validateName("buff", knownBuffs, name)
}

func validateDebuffName(name string) (string, error) {
	return validateName("debuff", knownDebuffs, name)
}

func validateResourceName(name string) (string, error) {
	return validateName("resource", knownResources, name)
}

func validatePhaseName(name string) (string, error) {
	return validateName("phase", knownPhases, name)
}

func validateCooldownName(name string) (string, error) {
	return validateSpellName(name)
}
