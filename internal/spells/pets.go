package spells

import (
	"fmt"
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/talents"
)

const (
	waterElementalSPInheritance = 0.75
	mirrorImageSPInheritance    = 0.25
)

// Pet is a guardian that casts a single bolt at its owner's target. Its
// stats are taken from the owner every time it is summoned.
type Pet struct {
	*actor.Actor

	owner       *Mage
	inheritance float64
	duration    time.Duration
	Bolt        *actor.Action
}

func (m *Mage) newPet(reg *actor.Registry, name, bolt, data string, school actor.School, inheritance float64, duration time.Duration) *Pet {
	p := &Pet{
		Actor:       actor.New(m.Sim, name, actor.KindPet, character.NewAttributes(character.Stats{}, nil)),
		owner:       m,
		inheritance: inheritance,
		duration:    duration,
	}
	p.OwnerID = m.ID
	p.GCDBase = m.GCDBase
	p.GCDMin = m.GCDMin
	p.CritMultiplier = m.CritMultiplier
	p.MissChance = m.MissChance
	reg.Add(p.Actor)

	p.Bolt = actor.NewAction(p.Actor, bolt, school)
	applySpellData(p.Bolt, m.spellData(data))
	p.AddAction(p.Bolt)
	p.SetLists(&actor.ActionList{Name: "default", Entries: []*actor.ListEntry{actor.Use(p.Bolt, nil)}})

	p.Hooks.OnArise = p.onArise
	p.OnTargetRemoved(p.targetRemoved)
	return p
}

func (m *Mage) registerPets(reg *actor.Registry) {
	m.WaterElemental = m.newPet(reg, "water_elemental", "waterbolt", "waterbolt", actor.SchoolFrost,
		waterElementalSPInheritance, 0)

	bolt, school := "frostbolt", actor.SchoolFrost
	switch m.Spec {
	case config.SpecArcane:
		bolt, school = "arcane_blast", actor.SchoolArcane
	case config.SpecFire:
		bolt, school = "fireball", actor.SchoolFire
	}
	for i := range talents.MirrorImageCount {
		name := fmt.Sprintf("mirror_image_%d", i+1)
		m.Images = append(m.Images, m.newPet(reg, name, bolt, "mirror_image_bolt", school,
			mirrorImageSPInheritance, m.MirrorImage.Duration))
	}
}

func (m *Mage) pets() []*Pet {
	return append([]*Pet{m.WaterElemental}, m.Images...)
}

// Summon brings the pet into the fight.
func (p *Pet) Summon() {
	p.Arise()
}

func (p *Pet) onArise(*actor.Actor) {
	o := p.owner
	p.Stats = o.Stats
	p.Attr.SetBase(character.Stats{SpellPower: o.Attr.SpellPower() * p.inheritance})
	p.Attr.AddModifier(character.StatCrit, "owner", o.Attr.SpellCrit())
	p.Attr.AddModifier(character.StatHaste, "owner", o.Attr.Haste())
	p.Attr.AddModifier(character.StatMultistrike, "owner", o.Attr.Multistrike())
	p.Attr.AddModifier(character.StatVersatility, "owner", o.Attr.Versatility())

	target := o.CurrentTarget()
	if target == nil || target.Sleeping() {
		target = o.firstEnemy()
	}
	p.SetTarget(target)
	if p.duration > 0 {
		p.Schedule(p.duration, "expire", p.Demise)
	}
}

func (p *Pet) targetRemoved(self, dead *actor.Actor) {
	if self.CurrentTarget() != dead {
		return
	}
	next := p.owner.CurrentTarget()
	if next == nil || next.Sleeping() {
		next = p.owner.firstEnemy()
	}
	self.SetTarget(next)
}

func (m *Mage) summonWaterElemental() {
	s := m.newSpell("summon_water_elemental", actor.SchoolFrost)
	s.Harmful = false
	s.MayCrit = false
	s.Hooks.Ready = func(*actor.Action, *actor.Actor) bool {
		return m.Spec == config.SpecFrost && m.WaterElemental.Sleeping()
	}
	s.Hooks.OnExecute = then(s.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.WaterElemental.Summon()
	})
}

func (m *Mage) mirrorImage() {
	mi := m.newSpell("mirror_image", actor.SchoolArcane)
	mi.Harmful = false
	mi.MayCrit = false
	mi.Hooks.Ready = func(*actor.Action, *actor.Actor) bool {
		return m.HasTalent(talents.TalentMirrorImage)
	}
	mi.Hooks.OnExecute = then(mi.Hooks.OnExecute, func(*actor.Action, *actor.State) {
		m.MirrorImage.Trigger()
		for _, img := range m.Images {
			img.Summon()
		}
	})
}
