package apl

import "time"

// EvaluationContext is provided by the actor when evaluating conditions.
// It is bound to the target the candidate entry would act on.
type EvaluationContext interface {
	BuffActive(name string) bool
	BuffRemaining(name string) time.Duration
	BuffStacks(name string) int
	DebuffActive(name string) bool
	DebuffRemaining(name string) time.Duration
	DotTicking(name string) bool
	ResourcePercent(resource string) float64
	CooldownReady(name string) bool
	CooldownRemaining(name string) time.Duration
	PhaseActive(name string) bool
	PhaseDuration(name string) time.Duration
	Icicles() int
	ActiveEnemies() int
	TargetHealthPercent() float64
	Time() time.Duration
}

// Condition evaluates to true/false for a given context.
type Condition interface {
	Eval(ctx EvaluationContext) bool
}

// Always true/false conditions.
type trueCondition struct{}

func (trueCondition) Eval(EvaluationContext) bool { return true }

type falseCondition struct{}

func (falseCondition) Eval(EvaluationContext) bool { return false }

// anyCondition is logical OR.
type anyCondition struct {
	children []Condition
}

func (c anyCondition) Eval(ctx EvaluationContext) bool {
	for _, child := range c.children {
		if child.Eval(ctx) {
			return true
		}
	}
	return false
}

// allCondition is logical AND.
type allCondition struct {
	children []Condition
}

func (c allCondition) Eval(ctx EvaluationContext) bool {
	for _, child := range c.children {
		if !child.Eval(ctx) {
			return false
		}
	}
	return true
}

// notCondition negates a child.
type notCondition struct {
	child Condition
}

func (c notCondition) Eval(ctx EvaluationContext) bool {
	if c.child == nil {
		return true
	}
	return !c.child.Eval(ctx)
}

// bounds holds optional lt/lte/gt/gte comparisons against one value.
type bounds struct {
	lt  *float64
	lte *float64
	gt  *float64
	gte *float64
}

func (b bounds) match(v float64) bool {
	if b.lt != nil && !(v < *b.lt) {
		return false
	}
	if b.lte != nil && !(v <= *b.lte) {
		return false
	}
	if b.gt != nil && !(v > *b.gt) {
		return false
	}
	if b.gte != nil && !(v >= *b.gte) {
		return false
	}
	return true
}

func (b bounds) matchDuration(d time.Duration) bool {
	return b.match(d.Seconds())
}

// remainingWindow bounds the remaining time of an active aura.
type remainingWindow struct {
	minRemaining *time.Duration
	maxRemaining *time.Duration
}

func (w remainingWindow) match(remaining time.Duration) bool {
	if w.minRemaining != nil && remaining < *w.minRemaining {
		return false
	}
	if w.maxRemaining != nil && remaining > *w.maxRemaining {
		return false
	}
	return true
}

// debuffActiveCondition checks if a debuff on the target is active.
type debuffActiveCondition struct {
	name   string
	window remainingWindow
}

func (c debuffActiveCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil || !ctx.DebuffActive(c.name) {
		return false
	}
	return c.window.match(ctx.DebuffRemaining(c.name))
}

// dotRemainingCondition compares DoT remaining duration.
type dotRemainingCondition struct {
	spell string
	bounds
}

func (c dotRemainingCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.matchDuration(ctx.DebuffRemaining(c.spell))
}

type dotTickingCondition struct {
	spell string
}

func (c dotTickingCondition) Eval(ctx EvaluationContext) bool {
	return ctx != nil && ctx.DotTicking(c.spell)
}

// resourcePercentCondition compares resource levels (mana, health).
type resourcePercentCondition struct {
	resource string
	bounds
}

func (c resourcePercentCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.match(ctx.ResourcePercent(c.resource))
}

// cooldownReadyCondition checks if a spell is off cooldown.
type cooldownReadyCondition struct {
	name string
}

func (c cooldownReadyCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return ctx.CooldownReady(c.name)
}

type cooldownRemainingCondition struct {
	name string
	bounds
}

func (c cooldownRemainingCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.matchDuration(ctx.CooldownRemaining(c.name))
}

type buffActiveCondition struct {
	name   string
	window remainingWindow
}

func (c buffActiveCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil || !ctx.BuffActive(c.name) {
		return false
	}
	return c.window.match(ctx.BuffRemaining(c.name))
}

type buffStacksCondition struct {
	buff string
	bounds
}

func (c buffStacksCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.match(float64(ctx.BuffStacks(c.buff)))
}

type phaseActiveCondition struct {
	phase string
}

func (c phaseActiveCondition) Eval(ctx EvaluationContext) bool {
	return ctx != nil && ctx.PhaseActive(c.phase)
}

type phaseDurationCondition struct {
	phase string
	bounds
}

func (c phaseDurationCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.matchDuration(ctx.PhaseDuration(c.phase))
}

// valueCondition compares a context value that takes no name.
type valueCondition struct {
	value func(ctx EvaluationContext) float64
	bounds
}

func (c valueCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.match(c.value(ctx))
}

func iciclesValue(ctx EvaluationContext) float64 { return float64(ctx.Icicles()) }
func activeEnemiesValue(ctx EvaluationContext) float64 { return float64(ctx.ActiveEnemies()) }
func targetHealthValue(ctx EvaluationContext) float64 { return ctx.TargetHealthPercent() }
func timeValue(ctx EvaluationContext) float64 { return ctx.Time().Seconds() }
