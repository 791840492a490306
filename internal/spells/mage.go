package spells

import (
	"fmt"
	"strings"
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/apl"
	"wod-mage-sim/internal/character"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/effects"
	"wod-mage-sim/internal/engine"
	"wod-mage-sim/internal/talents"
)

// Mage is the player actor together with its class mechanics.
type Mage struct {
	*actor.Actor

	Config *config.Config
	Spec   string

	ArcaneCharge   *effects.Aura
	ArcaneMissiles *effects.Aura
	ArcanePower    *effects.Aura
	PresenceOfMind *effects.Aura
	HeatingUp      *effects.Aura
	HotStreak      *effects.Aura
	FingersOfFrost *effects.Aura
	IcyVeins       *effects.Aura
	IncantersFlow  *effects.Aura
	MoltenArmor    *effects.Aura
	MirrorImage    *effects.Aura

	BurnPhase *effects.StateSwitch
	PyroChain *effects.StateSwitch

	WaterElemental *Pet
	Images         []*Pet

	ignite    *actor.Action
	icicle    *actor.Action
	explosion *actor.Action

	icicles        []icicle
	icicleEvent    *engine.Event
	icicleMax      int
	icicleLifetime time.Duration
	icicleInterval time.Duration
	heatingUpDelay time.Duration

	missing []string
}

// New builds the mage described by cfg and registers it, and its pets, in reg.
func New(sim *engine.Sim, reg *actor.Registry, cfg *config.Config) (*Mage, error) {
	p := &cfg.Player
	spec := p.Character.Specialization
	attr := character.NewAttributes(p.Stats.CharacterStats(), cfg.Constants.Converter(spec))
	m := &Mage{
		Actor:     actor.New(sim, p.Character.Name, actor.KindPlayer, attr),
		Config:    cfg,
		Spec:      spec,
		BurnPhase: effects.NewStateSwitch("burn_phase"),
		PyroChain: effects.NewStateSwitch("pyro_chain"),
	}
	c := cfg.Constants
	m.GCDBase = config.Seconds(c.GCD.Base)
	m.GCDMin = config.Seconds(c.GCD.Minimum)
	m.CritMultiplier = c.Combat.CritMultiplier
	m.MissChance = c.Combat.MissChance
	reg.Add(m.Actor)

	m.registerBuffs()
	m.registerSpells()
	m.registerPets(reg)
	if len(m.missing) > 0 {
		return nil, fmt.Errorf("%s: no spell data for %s", m.Name, strings.Join(m.missing, ", "))
	}

	m.ContextFunc = m.context
	m.Hooks = actor.LifecycleHooks{
		OnReset:  m.onReset,
		OnArise:  m.onArise,
		OnDemise: m.onDemise,
	}
	m.OnTargetRemoved(m.targetRemoved)
	return m, nil
}

// HasTalent reports whether a talent or glyph is selected.
func (m *Mage) HasTalent(name string) bool {
	return m.Config.Player.HasTalent(name)
}

func (m *Mage) registerBuffs() {
	charge := m.spellData("arcane_charge")
	m.ArcaneCharge = m.NewBuff("arcane_charge", config.Seconds(charge.Duration), charge.MaxStacks)

	missiles := m.spellData("arcane_missiles")
	m.ArcaneMissiles = m.NewBuff("arcane_missiles", config.Seconds(missiles.Duration), missiles.MaxStacks)
	m.ArcaneMissiles.Chance = missiles.ProcChance

	ap := m.spellData("arcane_power")
	apDuration := config.Seconds(ap.Duration)
	if m.HasTalent(talents.GlyphOfArcanePower) {
		apDuration = time.Duration(float64(apDuration) * talents.ArcanePowerGlyphDurationMultiplier)
	}
	m.ArcanePower = m.NewBuff("arcane_power", apDuration, 1)
	m.ArcanePower.DefaultValue = ap.Value

	m.PresenceOfMind = m.NewBuff("presence_of_mind", 0, 1)

	heating := m.spellData("heating_up")
	m.HeatingUp = m.NewBuff("heating_up", config.Seconds(heating.Duration), 1)
	m.heatingUpDelay = config.Seconds(heating.Value)
	m.HotStreak = m.NewBuff("pyroblast", config.Seconds(m.spellData("hot_streak").Duration), 1)

	fof := m.spellData("fingers_of_frost")
	m.FingersOfFrost = m.NewBuff("fingers_of_frost", config.Seconds(fof.Duration), fof.MaxStacks)
	m.FingersOfFrost.Chance = fof.ProcChance

	iv := m.spellData("icy_veins")
	m.IcyVeins = m.NewBuff("icy_veins", config.Seconds(iv.Duration), 1)
	m.IcyVeins.DefaultValue = iv.Value
	m.IcyVeins.OnGain = func(a *effects.Aura, _ time.Duration) {
		m.Attr.AddModifier(character.StatHaste, a.Label, iv.Value)
	}
	m.IcyVeins.OnExpire = func(a *effects.Aura, _ time.Duration) {
		m.Attr.RemoveModifier(character.StatHaste, a.Label)
	}

	m.IncantersFlow = m.NewBuff("incanters_flow", 0, talents.IncantersFlowMaxStacks)
	m.IncantersFlow.Reverse = true
	m.IncantersFlow.Period = talents.IncantersFlowPeriod

	armor := m.spellData("molten_armor")
	m.MoltenArmor = m.NewBuff("molten_armor", 0, 1)
	m.MoltenArmor.OnGain = func(a *effects.Aura, _ time.Duration) {
		m.Attr.AddModifier(character.StatCrit, a.Label, armor.Value)
	}
	m.MoltenArmor.OnExpire = func(a *effects.Aura, _ time.Duration) {
		m.Attr.RemoveModifier(character.StatCrit, a.Label)
	}

	images := config.Seconds(m.spellData("mirror_image").Duration)
	if images <= 0 {
		images = talents.MirrorImageDuration
	}
	m.MirrorImage = m.NewBuff("mirror_image", images, 1)

	icicle := m.spellData("icicle")
	m.icicleMax = max(icicle.MaxStacks, 1)
	m.icicleLifetime = config.Seconds(icicle.Duration)
	m.icicleInterval = config.Seconds(icicle.Value)
}

func (m *Mage) registerSpells() {
	m.arcaneBlast()
	m.arcaneMissiles()
	m.arcaneBarrage()
	m.arcanePower()
	m.presenceOfMind()
	m.evocation()

	m.ignite = m.igniteAction()
	m.fireball()
	m.pyroblast()
	m.infernoBlast()
	m.combustion()
	m.explosion = m.livingBombExplosion()
	m.livingBomb()

	m.icicle = m.icicleAction()
	m.frostbolt()
	m.iceLance()
	m.icyVeins()

	m.summonWaterElemental()
	m.mirrorImage()
	m.chooseTarget()
	m.phaseActions("burn_phase", m.BurnPhase)
	m.phaseActions("pyro_chain", m.PyroChain)
}

func (m *Mage) context(_, target *actor.Actor) apl.EvaluationContext {
	return &rotationContext{m: m, target: target}
}

func (m *Mage) onReset(*actor.Actor) {
	m.icicles = m.icicles[:0]
	m.icicleEvent = nil
	m.BurnPhase.Reset()
	m.PyroChain.Reset()
}

func (m *Mage) onArise(*actor.Actor) {
	m.MoltenArmor.Trigger()
	if m.HasTalent(talents.TalentIncantersFlow) {
		m.IncantersFlow.Trigger()
	}
	if m.Spec == config.SpecFrost && m.Config.Player.Pets.PrecombatWaterElemental {
		m.WaterElemental.Summon()
	}
}

func (m *Mage) onDemise(*actor.Actor) {
	m.WaterElemental.Demise()
	for _, img := range m.Images {
		img.Demise()
	}
}

// targetRemoved falls back to the first living enemy when the current target
// dies.
func (m *Mage) targetRemoved(self, dead *actor.Actor) {
	if self.CurrentTarget() != dead {
		return
	}
	next := m.firstEnemy()
	self.SetTarget(next)
	if next != nil {
		m.Logf("TARGET", "%s -> %s", dead.Name, next.Name)
	}
}

// AcquireTarget points the mage and its active pets at the first living
// enemy when they have none. The driver calls it when enemies arrive.
func (m *Mage) AcquireTarget() {
	if t := m.CurrentTarget(); t == nil || t.Sleeping() {
		m.SetTarget(m.firstEnemy())
	}
	for _, p := range m.pets() {
		if t := p.CurrentTarget(); !p.Sleeping() && (t == nil || t.Sleeping()) {
			p.SetTarget(m.CurrentTarget())
		}
	}
}

func (m *Mage) firstEnemy() *actor.Actor {
	if enemies := m.Registry().Enemies(); len(enemies) > 0 {
		return enemies[0]
	}
	return nil
}
