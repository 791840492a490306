package character

import (
	"maps"
	"slices"
)

// Attributes caches derived combat values and invalidates them per stat when
// a modifier changes.
type Attributes struct {
	base Stats
	conv RatingConverter

	mods  [statCount]map[string]float64
	cache [statCount]float64
	valid [statCount]bool

	recomputes int
}

// NewAttributes returns attributes for base stats converted with conv.
func NewAttributes(base Stats, conv RatingConverter) *Attributes {
	if conv == nil {
		conv = LinearConverter{}
	}
	a := &Attributes{base: base, conv: conv}
	for i := range a.mods {
		a.mods[i] = make(map[string]float64)
	}
	return a
}

// Base returns the unmodified stats.
func (a *Attributes) Base() Stats {
	return a.base
}

// SetBase replaces the stats and drops every cached value.
func (a *Attributes) SetBase(s Stats) {
	a.base = s
	a.invalidateAll()
}

// AddModifier sets the modifier contributed by source to stat.
// Haste and damage modifiers multiply, the rest add.
func (a *Attributes) AddModifier(stat Stat, source string, value float64) {
	a.mods[stat][source] = value
	a.valid[stat] = false
}

// RemoveModifier drops the modifier contributed by source.
func (a *Attributes) RemoveModifier(stat Stat, source string) {
	if _, ok := a.mods[stat][source]; !ok {
		return
	}
	delete(a.mods[stat], source)
	a.valid[stat] = false
}

// ClearModifiers removes every temporary modifier.
func (a *Attributes) ClearModifiers() {
	for i := range a.mods {
		clear(a.mods[i])
	}
	a.invalidateAll()
}

// Recomputes returns how many cached values were rebuilt.
func (a *Attributes) Recomputes() int {
	return a.recomputes
}

func (a *Attributes) SpellPower() float64 {
	return a.get(StatSpellPower)
}

func (a *Attributes) SpellCrit() float64 {
	return a.get(StatCrit)
}

// Haste returns the total haste fraction.
func (a *Attributes) Haste() float64 {
	return a.get(StatHaste)
}

// SpellSpeed returns the multiplier applied to cast times and periods.
func (a *Attributes) SpellSpeed() float64 {
	return 1 / (1 + a.Haste())
}

func (a *Attributes) Mastery() float64 {
	return a.get(StatMastery)
}

func (a *Attributes) Multistrike() float64 {
	return a.get(StatMultistrike)
}

func (a *Attributes) Versatility() float64 {
	return a.get(StatVersatility)
}

// DamageMultiplier returns the product of all damage modifiers.
func (a *Attributes) DamageMultiplier() float64 {
	return a.get(StatDamage)
}

func (a *Attributes) get(stat Stat) float64 {
	if a.valid[stat] {
		return a.cache[stat]
	}
	a.cache[stat] = a.compute(stat)
	a.valid[stat] = true
	a.recomputes++
	return a.cache[stat]
}

func (a *Attributes) compute(stat Stat) float64 {
	switch stat {
	case StatSpellPower:
		return a.base.SpellPower + a.base.Intellect + a.sum(stat)
	case StatCrit:
		return a.conv.Crit(a.base.CritRating) + a.sum(stat)
	case StatHaste:
		return (1+a.conv.Haste(a.base.HasteRating))*a.product(stat) - 1
	case StatMastery:
		return a.conv.Mastery(a.base.MasteryRating) + a.sum(stat)
	case StatMultistrike:
		return a.conv.Multistrike(a.base.MultistrikeRating) + a.sum(stat)
	case StatVersatility:
		return a.conv.Versatility(a.base.VersatilityRating) + a.sum(stat)
	case StatDamage:
		return a.product(stat)
	}
	return 0
}

func (a *Attributes) sum(stat Stat) float64 {
	total := 0.0
	for _, k := range slices.Sorted(maps.Keys(a.mods[stat])) {
		total += a.mods[stat][k]
	}
	return total
}

func (a *Attributes) product(stat Stat) float64 {
	total := 1.0
	for _, k := range slices.Sorted(maps.Keys(a.mods[stat])) {
		total *= 1 + a.mods[stat][k]
	}
	return total
}

func (a *Attributes) invalidateAll() {
	for i := range a.valid {
		a.valid[i] = false
	}
}
