package actor

import (
	"time"

	"wod-mage-sim/internal/effects"
)

// TargetData is the state a source actor keeps about one target: its dots and
// the debuffs it applied. It is created lazily and dropped on reset.
type TargetData struct {
	Source *Actor
	Target *Actor

	dots     map[string]*Dot
	dotOrder []*Dot
	debuffs  map[string]*effects.Aura
}

func newTargetData(source, target *Actor) *TargetData {
	return &TargetData{
		Source:  source,
		Target:  target,
		dots:    make(map[string]*Dot),
		debuffs: make(map[string]*effects.Aura),
	}
}

// Dot returns the dot of act on this target, creating it on first use.
func (td *TargetData) Dot(act *Action) *Dot {
	if d, ok := td.dots[act.Name]; ok {
		return d
	}
	d := &Dot{Action: act, Target: td.Target}
	td.dots[act.Name] = d
	td.dotOrder = append(td.dotOrder, d)
	return d
}

// FindDot returns the named dot or nil when it was never created.
func (td *TargetData) FindDot(name string) *Dot {
	if td == nil {
		return nil
	}
	return td.dots[name]
}

// Dots returns the dots in creation order.
func (td *TargetData) Dots() []*Dot {
	return td.dotOrder
}

// AddDebuff registers an aura the source keeps on this target.
func (td *TargetData) AddDebuff(b *effects.Aura) *effects.Aura {
	td.debuffs[b.Label] = b
	return b
}

// NewDebuff creates and registers a debuff driven by the source's clock.
func (td *TargetData) NewDebuff(label string, duration time.Duration, maxStacks int) *effects.Aura {
	return td.AddDebuff(effects.NewAura(td.Source.Sim, td.Source.RNG, label, duration, maxStacks))
}

// Debuff returns the named debuff or nil.
func (td *TargetData) Debuff(name string) *effects.Aura {
	if td == nil {
		return nil
	}
	return td.debuffs[name]
}

func (td *TargetData) cancelDots() {
	for _, d := range td.dotOrder {
		d.Cancel()
	}
}
