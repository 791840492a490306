package spells

import (
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/config"
	"wod-mage-sim/internal/talents"
)

// fireImpact feeds the fire mastery: crits drive heating up and hot streak,
// and every direct hit banks a share of its damage into ignite.
func (m *Mage) fireImpact(a *actor.Action, s *actor.State) {
	if m.Spec != config.SpecFire || !s.Landed() {
		return
	}
	m.hotStreak(a, s)
	if s.Amount > 0 {
		m.ignite.ResidualTrigger(s.Target, s.Amount*m.Attr.Mastery())
	}
}

func (m *Mage) hotStreak(a *actor.Action, s *actor.State) {
	if s.Crit() {
		if m.HeatingUp.Active() {
			m.HeatingUp.Expire(0)
			m.HotStreak.Trigger()
			return
		}
		m.HeatingUp.Trigger()
		return
	}
	if !m.HeatingUp.Active() {
		return
	}
	// a non-crit that was in flight leaves a short window for the next crit
	if a.TravelTime > 0 {
		m.HeatingUp.Expire(m.heatingUpDelay)
		return
	}
	m.HeatingUp.Expire(0)
}

func (m *Mage) igniteAction() *actor.Action {
	ig := m.newBackground("ignite", "ignite", actor.SchoolFire)
	ig.Residual = true
	ig.MayCrit = false
	ig.IgnoreMultipliers = true
	return ig
}

func (m *Mage) fireball() {
	fb := m.newSpell("fireball", actor.SchoolFire)
	fb.Hooks.OnImpact = m.fireImpact
}

func (m *Mage) pyroblast() {
	pyro := m.newSpell("pyroblast", actor.SchoolFire)
	shared := pyro.Hooks
	pyro.Hooks.ExecuteTime = func(a *actor.Action, t time.Duration) time.Duration {
		if m.HotStreak.Active() {
			return 0
		}
		return shared.ExecuteTime(a, t)
	}
	pyro.Hooks.Cost = func(a *actor.Action, c float64) float64 {
		if m.HotStreak.Active() {
			return 0
		}
		return shared.Cost(a, c)
	}
	pyro.Hooks.OnSchedule = func(a *actor.Action, s *actor.State) {
		if s.InstantCast && m.HotStreak.Up() {
			s.Flags |= flagHotStreak
		}
		shared.OnSchedule(a, s)
	}
	pyro.Hooks.OnExecute = then(func(_ *actor.Action, s *actor.State) {
		if s.Has(flagHotStreak) {
			m.HotStreak.Expire(0)
		}
	}, shared.OnExecute)
	pyro.Hooks.OnImpact = m.fireImpact
}

func (m *Mage) infernoBlast() {
	ib := m.newSpell("inferno_blast", actor.SchoolFire)
	spread := ib.AOE
	ib.AOE = 0
	if m.HasTalent(talents.GlyphOfInfernoBlast) {
		spread += talents.InfernoBlastGlyphExtraTargets
	}
	ib.Hooks.CritChance = func(*actor.Action, *actor.State, float64) float64 { return 1 }
	// spread what the target already carries before this hit adds to it
	ib.Hooks.OnImpact = func(a *actor.Action, s *actor.State) {
		m.spreadFire(s.Target, spread)
		m.fireImpact(a, s)
	}
}

// spreadFire copies the fire dots from primary onto up to n random other
// enemies. Ignite is banked on top of what the target already has, and
// combustion never overwrites a running one.
func (m *Mage) spreadFire(primary *actor.Actor, n int) {
	var others []*actor.Actor
	for _, e := range m.Registry().Enemies() {
		if e != primary {
			others = append(others, e)
		}
	}
	if len(others) == 0 || n <= 0 {
		return
	}
	m.RNG.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	others = others[:min(n, len(others))]

	td := m.FindTargetData(primary)
	for _, name := range []string{"living_bomb", "pyroblast", "combustion", "ignite"} {
		src := td.FindDot(name)
		if !src.IsTicking() {
			continue
		}
		for _, t := range others {
			switch name {
			case "ignite":
				m.ignite.ResidualTrigger(t, src.Banked())
			case "combustion":
				if !src.Action.FindDot(t).IsTicking() {
					src.Copy(t, actor.CopyClone)
				}
			default:
				src.Copy(t, actor.CopyClone)
			}
		}
	}
}

func (m *Mage) combustion() {
	c := m.newSpell("combustion", actor.SchoolFire)
	c.Residual = true
	c.MayCrit = false
	c.IgnoreMultipliers = true
	d, _ := m.Config.Spell("combustion")
	scale := d.Value
	if m.HasTalent(talents.GlyphOfCombustion) {
		scale *= talents.CombustionGlyphDamageMultiplier
		c.Cooldown.Duration = time.Duration(float64(c.Cooldown.Duration) * talents.CombustionGlyphCooldownMultiplier)
	}
	ticks := 1
	if c.TickTime > 0 {
		ticks = max(1, int(c.DotDuration/c.TickTime))
	}
	c.Hooks.Ready = func(_ *actor.Action, t *actor.Actor) bool {
		return m.ignite.FindDot(t).IsTicking()
	}
	c.Hooks.OnImpact = func(a *actor.Action, s *actor.State) {
		ig := m.ignite.FindDot(s.Target)
		if !ig.IsTicking() {
			return
		}
		a.Dot(s.Target).Cancel()
		a.ResidualTrigger(s.Target, ig.TickAmount()*scale*float64(ticks))
	}
}

func (m *Mage) livingBombExplosion() *actor.Action {
	ex := m.newBackground("living_bomb_explosion", "living_bomb_explosion", actor.SchoolFire)
	ex.Hooks.OnImpact = m.fireImpact
	return ex
}

func (m *Mage) livingBomb() {
	lb := m.newSpell("living_bomb", actor.SchoolFire)
	d, _ := m.Config.Spell("living_bomb")
	lb.Hooks.Ready = func(*actor.Action, *actor.Actor) bool {
		return m.HasTalent(talents.TalentLivingBomb)
	}
	explode := func(dot *actor.Dot) {
		m.explosion.Execute(m.explosion.NewState(dot.Target))
	}
	lb.Hooks.OnLastTick = func(_ *actor.Action, dot *actor.Dot) {
		explode(dot)
	}
	lb.Hooks.OnRefresh = func(a *actor.Action, dot *actor.Dot) {
		if dot.Remains() < time.Duration(float64(a.DotDuration)*d.Value) {
			explode(dot)
		}
	}
}
