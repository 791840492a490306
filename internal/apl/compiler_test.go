package apl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubContext struct {
	buffs     map[string]int
	remaining map[string]time.Duration
	dots      map[string]time.Duration
	phases    map[string]time.Duration
	mana      float64
	icicles   int
	enemies   int
	now       time.Duration
}

func (s stubContext) BuffActive(name string) bool { return s.buffs[name] > 0 }
func (s stubContext) BuffRemaining(name string) time.Duration { return s.remaining[name] }
func (s stubContext) BuffStacks(name string) int { return s.buffs[name] }
func (s stubContext) DebuffActive(name string) bool { return s.dots[name] > 0 }
func (s stubContext) DebuffRemaining(name string) time.Duration { return s.dots[name] }
func (s stubContext) DotTicking(name string) bool { return s.dots[name] > 0 }
func (s stubContext) ResourcePercent(string) float64 { return s.mana }
func (s stubContext) CooldownReady(string) bool { return true }
func (s stubContext) CooldownRemaining(string) time.Duration { return 0 }
func (s stubContext) PhaseActive(name string) bool {
	_, ok := s.phases[name]
	return ok
}
func (s stubContext) PhaseDuration(name string) time.Duration { return s.phases[name] }
func (s stubContext) Icicles() int { return s.icicles }
func (s stubContext) ActiveEnemies() int { return s.enemies }
func (s stubContext) TargetHealthPercent() float64 { return 100 }
func (s stubContext) Time() time.Duration { return s.now }

const sampleRotation = `
name: Arcane test
variables:
  burn_mana: 30
rotation:
  - action: call_action_list
    list: burn
    when:
      phase_active: { phase: burn_phase }
  - action: cast
    spell: start_burn_phase
    when:
      resource_percent: { resource: mana, gte: 90 }
  - action: cast
    spell: arcane_blast
lists:
  - name: burn
    actions:
      - action: cast
        spell: stop_burn_phase
        when:
          resource_percent: { resource: mana, lt: "${burn_mana}" }
      - action: cast
        spell: arcane_missiles
        when:
          all:
            - buff_stacks: { buff: arcane_charge, gte: 4 }
            - buff_active: { buff: arcane_missiles }
      - action: cast
        spell: arcane_blast
`

func compileSample(t *testing.T) *CompiledRotation {
	t.Helper()
	file, err := Parse([]byte(sampleRotation))
	require.NoError(t, err)
	rot, err := Compile(file)
	require.NoError(t, err)
	return rot
}

func TestCompileBuildsNamedLists(t *testing.T) {
	rot := compileSample(t)
	require.Len(t, rot.Lists, 2)
	assert.Equal(t, DefaultList, rot.Default().Name)
	burn := rot.List("burn")
	require.NotNil(t, burn)
	require.Len(t, burn.Actions, 3)

	first := rot.Default().Actions[0]
	assert.Equal(t, ActionCallList, first.Type)
	assert.Equal(t, "burn", first.List)
	assert.True(t, first.Condition.Eval(stubContext{phases: map[string]time.Duration{"burn_phase": time.Second}}))
	assert.False(t, first.Condition.Eval(stubContext{}))

	stop := burn.Actions[0]
	assert.True(t, stop.Condition.Eval(stubContext{mana: 20}))
	assert.False(t, stop.Condition.Eval(stubContext{mana: 40}))

	missiles := burn.Actions[1]
	assert.True(t, missiles.Condition.Eval(stubContext{buffs: map[string]int{"arcane_charge": 4, "arcane_missiles": 1}}))
	assert.False(t, missiles.Condition.Eval(stubContext{buffs: map[string]int{"arcane_charge": 3, "arcane_missiles": 1}}))
}

func TestCompileRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown spell":     "rotation:\n  - action: cast\n    spell: shadow_bolt\n",
		"unknown list":      "rotation:\n  - action: call_action_list\n    list: nope\n",
		"pet ability":       "rotation:\n  - action: cast\n    spell: waterbolt\n",
		"duplicate list":    "lists:\n  - name: a\n  - name: a\n",
		"unknown condition": "rotation:\n  - action: cast\n    spell: fireball\n    when:\n      moon_phase: { gt: 1 }\n",
		"bad buff":          "rotation:\n  - action: cast\n    spell: fireball\n    when:\n      buff_active: { buff: backdraft }\n",
		"missing variable":  "rotation:\n  - action: cast\n    spell: fireball\n    when:\n      icicles: { gt: \"${x}\" }\n",
		"wait without time": "rotation:\n  - action: wait\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			file, err := Parse([]byte(doc))
			require.NoError(t, err)
			_, err = Compile(file)
			assert.Error(t, err)
		})
	}
}

func TestValueConditions(t *testing.T) {
	doc := `
rotation:
  - action: cast
    spell: ice_lance
    when:
      any:
        - icicles: { gte: 5 }
        - all:
            - active_enemies: { gt: 2 }
            - time: { lt_seconds: 10 }
        - dot_remaining: { spell: living_bomb, lt_seconds: 1.5, gt_seconds: 0 }
`
	file, err := Parse([]byte(doc))
	require.NoError(t, err)
	rot, err := Compile(file)
	require.NoError(t, err)
	cond := rot.Default().Actions[0].Condition

	assert.True(t, cond.Eval(stubContext{icicles: 5}))
	assert.True(t, cond.Eval(stubContext{enemies: 3, now: 5 * time.Second}))
	assert.False(t, cond.Eval(stubContext{enemies: 3, now: 15 * time.Second}))
	assert.True(t, cond.Eval(stubContext{dots: map[string]time.Duration{"living_bomb": time.Second}}))
	assert.False(t, cond.Eval(stubContext{dots: map[string]time.Duration{"living_bomb": 2 * time.Second}}))
}

func TestLoadRotationMergesImports(t *testing.T) {
	dir := t.TempDir()
	base := "name: base\nvariables:\n  threshold: 3\nlists:\n  - name: aoe\n    actions:\n      - action: cast\n        spell: arcane_barrage\nrotation:\n  - action: cast\n    spell: presence_of_mind\n"
	main := "name: main\nimports: [base.yaml]\nrotation:\n  - action: call_action_list\n    list: aoe\n    when:\n      active_enemies: { gte: \"${threshold}\" }\n  - action: cast\n    spell: arcane_blast\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.yaml"), []byte(main), 0o644))

	file, err := LoadRotation(dir, "main.yaml")
	require.NoError(t, err)
	rot, err := Compile(file)
	require.NoError(t, err)
	require.Len(t, rot.Default().Actions, 3)
	assert.Equal(t, "presence_of_mind", rot.Default().Actions[0].Spell)
	assert.NotNil(t, rot.List("aoe"))
	assert.True(t, rot.Default().Actions[1].Condition.Eval(stubContext{enemies: 3}))
}

func TestLoadRotationDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("imports: [b.yaml]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("imports: [a.yaml]\n"), 0o644))
	_, err := LoadRotation(dir, "a.yaml")
	assert.ErrorContains(t, err, "cycle")
}
