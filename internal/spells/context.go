package spells

import (
	"time"

	"wod-mage-sim/internal/actor"
	"wod-mage-sim/internal/effects"
)

// rotationContext answers action-list conditions for the mage against one
// candidate target.
type rotationContext struct {
	m      *Mage
	target *actor.Actor
}

func (c *rotationContext) BuffActive(name string) bool {
	return c.m.Buff(name).Active()
}

func (c *rotationContext) BuffRemaining(name string) time.Duration {
	return c.m.Buff(name).Remaining()
}

func (c *rotationContext) BuffStacks(name string) int {
	return c.m.Buff(name).Stacks()
}

func (c *rotationContext) targetData() *actor.TargetData {
	return c.m.FindTargetData(c.target)
}

func (c *rotationContext) DebuffActive(name string) bool {
	td := c.targetData()
	return td.FindDot(name).IsTicking() || td.Debuff(name).Active()
}

func (c *rotationContext) DebuffRemaining(name string) time.Duration {
	td := c.targetData()
	if d := td.FindDot(name); d.IsTicking() {
		return d.Remains()
	}
	return td.Debuff(name).Remaining()
}

func (c *rotationContext) DotTicking(name string) bool {
	return c.targetData().FindDot(name).IsTicking()
}

func (c *rotationContext) ResourcePercent(resource string) float64 {
	if resource == "health" {
		return c.m.Health.Pct()
	}
	c.m.RegenMana()
	return c.m.Mana.Pct()
}

func (c *rotationContext) CooldownReady(name string) bool {
	a := c.m.Action(name)
	return a == nil || a.Cooldown.Ready(c.m.Now())
}

func (c *rotationContext) CooldownRemaining(name string) time.Duration {
	a := c.m.Action(name)
	if a == nil {
		return 0
	}
	return a.Cooldown.Remaining(c.m.Now())
}

func (c *rotationContext) phase(name string) *effects.StateSwitch {
	switch name {
	case c.m.BurnPhase.Name:
		return c.m.BurnPhase
	case c.m.PyroChain.Name:
		return c.m.PyroChain
	}
	return nil
}

func (c *rotationContext) PhaseActive(name string) bool {
	sw := c.phase(name)
	return sw != nil && sw.On()
}

func (c *rotationContext) PhaseDuration(name string) time.Duration {
	sw := c.phase(name)
	if sw == nil {
		return 0
	}
	return sw.Duration(c.m.Now())
}

func (c *rotationContext) Icicles() int {
	return c.m.Icicles()
}

func (c *rotationContext) ActiveEnemies() int {
	return len(c.m.Registry().Enemies())
}

func (c *rotationContext) TargetHealthPercent() float64 {
	if c.target == nil {
		return 0
	}
	return c.target.Health.Pct()
}

func (c *rotationContext) Time() time.Duration {
	return c.m.Now()
}
