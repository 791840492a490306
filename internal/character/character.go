package character

// Stats represents the gear-derived character stats fed into a simulation.
type Stats struct {
	Intellect          float64
	SpellPower         float64
	CritRating         float64
	HasteRating        float64
	MasteryRating      float64
	MultistrikeRating  float64
	VersatilityRating  float64
	MaxMana            float64
	ManaRegenPerSecond float64
	MaxHealth          float64
}

// Stat names a derived attribute that can carry temporary modifiers.
type Stat int

const (
	StatSpellPower Stat = iota
	StatCrit
	StatHaste
	StatMastery
	StatMultistrike
	StatVersatility
	StatDamage
	statCount
)

func (s Stat) String() string {
	switch s {
	case StatSpellPower:
		return "spell_power"
	case StatCrit:
		return "crit"
	case StatHaste:
		return "haste"
	case StatMastery:
		return "mastery"
	case StatMultistrike:
		return "multistrike"
	case StatVersatility:
		return "versatility"
	case StatDamage:
		return "damage"
	default:
		return "unknown"
	}
}

// RatingConverter turns combat ratings into fractions.
type RatingConverter interface {
	Crit(rating float64) float64
	Haste(rating float64) float64
	Mastery(rating float64) float64
	Multistrike(rating float64) float64
	Versatility(rating float64) float64
}

// LinearConverter converts ratings with a fixed rating-per-percent table.
type LinearConverter struct {
	CritPerPercent        float64
	HastePerPercent       float64
	MasteryPerPoint       float64
	MultistrikePerPercent float64
	VersatilityPerPercent float64
	BaseCrit              float64
	BaseMastery           float64
	MasteryCoefficient    float64
}

func per(rating, perPercent float64) float64 {
	if perPercent <= 0 {
		return 0
	}
	return rating / perPercent / 100
}

func (c LinearConverter) Crit(rating float64) float64 {
	return c.BaseCrit + per(rating, c.CritPerPercent)
}

func (c LinearConverter) Haste(rating float64) float64 {
	return per(rating, c.HastePerPercent)
}

// Mastery returns the mastery value: points times the coefficient as a fraction.
func (c LinearConverter) Mastery(rating float64) float64 {
	points := c.BaseMastery
	if c.MasteryPerPoint > 0 {
		points += rating / c.MasteryPerPoint
	}
	return points * c.MasteryCoefficient / 100
}

func (c LinearConverter) Multistrike(rating float64) float64 {
	return per(rating, c.MultistrikePerPercent)
}

func (c LinearConverter) Versatility(rating float64) float64 {
	return per(rating, c.VersatilityPerPercent)
}
