package talents

import (
	"sort"
	"strings"
	"time"
)

type Kind string

const (
	KindTalent Kind = "talent"
	KindGlyph  Kind = "glyph"
)

const (
	TalentLivingBomb    = "living_bomb"
	TalentMirrorImage   = "mirror_image"
	TalentIncantersFlow = "incanters_flow"

	GlyphOfInfernoBlast = "glyph_of_inferno_blast"
	GlyphOfCombustion   = "glyph_of_combustion"
	GlyphOfArcanePower  = "glyph_of_arcane_power"
)

// MaxGlyphs is how many glyphs a character can inscribe.
const MaxGlyphs = 3

type entry struct {
	kind Kind
	row  int
}

var catalog = map[string]entry{
	TalentLivingBomb:    {kind: KindTalent, row: 5},
	TalentMirrorImage:   {kind: KindTalent, row: 6},
	TalentIncantersFlow: {kind: KindTalent, row: 6},

	GlyphOfInfernoBlast: {kind: KindGlyph},
	GlyphOfCombustion:   {kind: KindGlyph},
	GlyphOfArcanePower:  {kind: KindGlyph},
}

const (
	IncantersFlowStackBonus = 0.04
	IncantersFlowMaxStacks  = 5
	IncantersFlowPeriod     = 10 * time.Second

	InfernoBlastGlyphExtraTargets = 1

	CombustionGlyphDamageMultiplier   = 2.0
	CombustionGlyphCooldownMultiplier = 2.0

	ArcanePowerGlyphDurationMultiplier = 2.0
	ArcanePowerGlyphCooldownMultiplier = 2.0

	MirrorImageCount    = 3
	MirrorImageDuration = 40 * time.Second
)

// Normalize returns the canonical lowercase snake_case name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// KindOf returns the kind and whether the name is known.
func KindOf(name string) (Kind, bool) {
	e, ok := catalog[name]
	return e.kind, ok
}

// RowOf returns the talent row of a talent, 0 for glyphs and unknown names.
func RowOf(name string) int {
	return catalog[name].row
}

// IsKnown returns true if the identifier is recognized.
func IsKnown(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Known returns every identifier of the given kind, sorted.
func Known(kind Kind) []string {
	var out []string
	for name, e := range catalog {
		if e.kind == kind {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// IncantersFlowMultiplier returns the damage multiplier for the given stacks.
func IncantersFlowMultiplier(stacks int) float64 {
	if stacks <= 0 {
		return 1
	}
	return 1 + IncantersFlowStackBonus*float64(stacks)
}

// Set is the validated selection of talents and glyphs of one character.
type Set map[string]struct{}

// NewSet returns a set holding the given normalized names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[Normalize(n)] = struct{}{}
	}
	return s
}

// Has reports whether name is selected.
func (s Set) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s[Normalize(name)]
	return ok
}
