package config

import "wod-mage-sim/internal/talents"

// Active returns the validated talent and glyph selection.
func (p *Player) Active() talents.Set {
	if p.active == nil {
		p.active = talents.NewSet(append(append([]string{}, p.Talents...), p.Glyphs...)...)
	}
	return p.active
}

// HasTalent is a convenience helper on Player.
func (p *Player) HasTalent(name string) bool {
	return p.Active().Has(name)
}

// HasGlyph is a convenience helper on Player.
func (p *Player) HasGlyph(name string) bool {
	return p.Active().Has(name)
}
