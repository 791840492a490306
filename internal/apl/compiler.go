package apl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxLists is the number of lists one rotation may define, including the
// default list. Each list owns one bit of the evaluator's visited mask.
const MaxLists = 64

// CompiledRotation is the runtime representation of an APL file.
type CompiledRotation struct {
	Name        string
	Description string
	Variables   map[string]any
	Lists       []*List
}

// List is a compiled, ordered priority list.
type List struct {
	Name    string
	Actions []*Action
}

// ActionType enumerates supported rotation actions.
type ActionType int

const (
	ActionCastSpell ActionType = iota
	ActionCallList
	ActionWait
)

func (t ActionType) String() string {
	switch t {
	case ActionCastSpell:
		return "cast"
	case ActionCallList:
		return "call_action_list"
	case ActionWait:
		return "wait"
	default:
		return "unknown"
	}
}

// Action is a compiled, ready-to-evaluate rotation entry.
type Action struct {
	Type      ActionType
	Spell     string
	List      string
	Target    string
	Duration  time.Duration
	Condition Condition
	Tags      []string
}

// Default returns the list built from the top-level rotation.
func (r *CompiledRotation) Default() *List {
	return r.List(DefaultList)
}

// List returns the named list or nil.
func (r *CompiledRotation) List(name string) *List {
	if r == nil {
		return nil
	}
	for _, l := range r.Lists {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Compile turns a parsed File into a CompiledRotation.
func Compile(file *File) (*CompiledRotation, error) {
	if file == nil {
		return nil, fmt.Errorf("nil rotation file")
	}
	defs := append([]ListDefinition{{Name: DefaultList, Actions: file.Rotation}}, file.Lists...)
	if len(defs) > MaxLists {
		return nil, fmt.Errorf("rotation defines %d lists, at most %d are supported", len(defs), MaxLists)
	}
	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		name := normalizeName(def.Name)
		if name == "" {
			return nil, fmt.Errorf("action list without a name")
		}
		if known[name] {
			return nil, fmt.Errorf("action list '%s' defined twice", name)
		}
		known[name] = true
	}

	rotation := &CompiledRotation{
		Name:        file.Name,
		Description: file.Description,
		Variables:   file.Variables,
	}
	for _, def := range defs {
		list := &List{Name: normalizeName(def.Name)}
		for idx := range def.Actions {
			action, err := compileAction(&def.Actions[idx], file.Variables)
			if err != nil {
				return nil, fmt.Errorf("list %s entry %d: %w", list.Name, idx, err)
			}
			if action.Type == ActionCallList && !known[action.List] {
				return nil, fmt.Errorf("list %s entry %d: unknown action list '%s'", list.Name, idx, action.List)
			}
			list.Actions = append(list.Actions, action)
		}
		rotation.Lists = append(rotation.Lists, list)
	}
	return rotation, nil
}

func compileAction(def *ActionDefinition, vars map[string]any) (*Action, error) {
	if def == nil {
		return nil, fmt.Errorf("nil action")
	}
	action := &Action{
		Tags:   def.Tags,
		Target: normalizeName(def.Target),
	}
	var err error
	action.Condition, err = compileCondition(def.When, vars)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(def.Action) {
	case "cast_spell", "cast":
		if def.Spell == "" {
			return nil, fmt.Errorf("cast action requires 'spell'")
		}
		spellName, err := validateSpellName(def.Spell)
		if err != nil {
			return nil, err
		}
		action.Type = ActionCastSpell
		action.Spell = spellName
	case "call_action_list", "run_action_list":
		if def.List == "" {
			return nil, fmt.Errorf("call_action_list requires 'list'")
		}
		action.Type = ActionCallList
		action.List = normalizeName(def.List)
	case "wait":
		if def.DurationSeconds <= 0 {
			return nil, fmt.Errorf("wait action requires duration_seconds > 0")
		}
		action.Type = ActionWait
		action.Spell = "wait"
		action.Duration = time.Duration(def.DurationSeconds * float64(time.Second))
	default:
		return nil, fmt.Errorf("unsupported action '%s'", def.Action)
	}

	return action, nil
}

// CompileCondition compiles a standalone condition tree.
func CompileCondition(node *yaml.Node, vars map[string]any) (Condition, error) {
	if node == nil {
		return trueCondition{}, nil
	}
	return parseConditionNode(node, vars)
}

func compileCondition(node *ConditionNode, vars map[string]any) (Condition, error) {
	if node == nil || node.Node() == nil {
		return trueCondition{}, nil
	}
	return parseConditionNode(node.Node(), vars)
}

func parseConditionNode(node *yaml.Node, vars map[string]any) (Condition, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) != 1 {
			return nil, fmt.Errorf("empty condition document")
		}
		return parseConditionNode(node.Content[0], vars)
	case yaml.MappingNode:
		return parseConditionMapping(node, vars)
	case yaml.SequenceNode:
		// Treat bare sequences as implicit "all"
		children, err := parseConditionSequence(node, vars)
		if err != nil {
			return nil, err
		}
		return allCondition{children: children}, nil
	case yaml.ScalarNode:
		var boolVal bool
		if err := node.Decode(&boolVal); err == nil {
			if boolVal {
				return trueCondition{}, nil
			}
			return falseCondition{}, nil
		}
		return nil, fmt.Errorf("unsupported scalar condition: %s", node.Value)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
	}
}

func parseConditionMapping(node *yaml.Node, vars map[string]any) (Condition, error) {
	if len(node.Content)%2 != 0 || len(node.Content) == 0 {
		return nil, fmt.Errorf("condition mapping must have key/value pairs")
	}
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("condition mapping must have exactly one entry")
	}

	key := node.Content[0].Value
	val := node.Content[1]

	switch key {
	case "all":
		children, err := parseConditionSequence(val, vars)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		return allCondition{children: children}, nil
	case "any":
		children, err := parseConditionSequence(val, vars)
		if err != nil {
			return nil, fmt.Errorf("any: %w", err)
		}
		return anyCondition{children: children}, nil
	case "not":
		child, err := parseConditionNode(val, vars)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return notCondition{child: child}, nil
	case "true":
		return trueCondition{}, nil
	case "false":
		return falseCondition{}, nil
	}

	params, err := nodeToMap(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	switch key {
	case "debuff_active":
		name, err := namedField(params, "debuff", vars, validateDebuffName)
		if err != nil {
			return nil, err
		}
		window, err := remainingFields(params, vars)
		if err != nil {
			return nil, err
		}
		return debuffActiveCondition{name: name, window: window}, nil
	case "dot_remaining":
		spell, err := namedField(params, "spell", vars, validateDebuffName)
		if err != nil {
			return nil, err
		}
		b, err := boundsFields(params, "_seconds", vars)
		if err != nil {
			return nil, err
		}
		return dotRemainingCondition{spell: spell, bounds: b}, nil
	case "dot_ticking":
		spell, err := namedField(params, "spell", vars, validateDebuffName)
		if err != nil {
			return nil, err
		}
		return dotTickingCondition{spell: spell}, nil
	case "buff_active":
		name, err := namedField(params, "buff", vars, validateBuffName)
		if err != nil {
			return nil, err
		}
		window, err := remainingFields(params, vars)
		if err != nil {
			return nil, err
		}
		return buffActiveCondition{name: name, window: window}, nil
	case "buff_stacks", "charges":
		name, err := namedField(params, "buff", vars, validateBuffName)
		if err != nil {
			return nil, err
		}
		b, err := boundsFields(params, "", vars)
		if err != nil {
			return nil, err
		}
		return buffStacksCondition{buff: name, bounds: b}, nil
	case "resource_percent":
		res, err := namedField(params, "resource", vars, validateResourceName)
		if err != nil {
			return nil, err
		}
		b, err := boundsFields(params, "", vars)
		if err != nil {
			return nil, err
		}
		return resourcePercentCondition{resource: res, bounds: b}, nil
	case "cooldown_ready":
		name, err := namedField(params, "spell", vars, validateCooldownName)
		if err != nil {
			return nil, err
		}
		return cooldownReadyCondition{name: name}, nil
	case "cooldown_remaining":
		name, err := namedField(params, "spell", vars, validateCooldownName)
		if err != nil {
			return nil, err
		}
		b, err := boundsFields(params, "_seconds", vars)
		if err != nil {
			return nil, err
		}
		return cooldownRemainingCondition{name: name, bounds: b}, nil
	case "phase_active":
		phase, err := namedField(params, "phase", vars, validatePhaseName)
		if err != nil {
			return nil, err
		}
		return phaseActiveCondition{phase: phase}, nil
	case "phase_duration":
		phase, err := namedField(params, "phase", vars, validatePhaseName)
		if err != nil {
			return nil, err
		}
		b, err := boundsFields(params, "_seconds", vars)
		if err != nil {
			return nil, err
		}
		return phaseDurationCondition{phase: phase, bounds: b}, nil
	case "icicles":
		b, err := boundsFields(params, "", vars)
		if err != nil {
			return nil, err
		}
		return valueCondition{value: iciclesValue, bounds: b}, nil
	case "active_enemies":
		b, err := boundsFields(params, "", vars)
		if err != nil {
			return nil, err
		}
		return valueCondition{value: activeEnemiesValue, bounds: b}, nil
	case "target_health_percent":
		b, err := boundsFields(params, "", vars)
		if err != nil {
			return nil, err
		}
		return valueCondition{value: targetHealthValue, bounds: b}, nil
	case "time":
		b, err := boundsFields(params, "_seconds", vars)
		if err != nil {
			return nil, err
		}
		return valueCondition{value: timeValue, bounds: b}, nil
	default:
		return nil, fmt.Errorf("unknown condition '%s'", key)
	}
}

func parseConditionSequence(node *yaml.Node, vars map[string]any) ([]Condition, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected sequence, got %d", node.Kind)
	}
	children := make([]Condition, 0, len(node.Content))
	for idx, childNode := range node.Content {
		child, err := parseConditionNode(childNode, vars)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", idx, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func nodeToMap(node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping node, got %d", node.Kind)
	}
	result := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		result[key] = node.Content[i+1]
	}
	return result, nil
}

func namedField(fields map[string]*yaml.Node, key string, vars map[string]any, validate func(string) (string, error)) (string, error) {
	raw, err := stringField(fields, key, true, vars)
	if err != nil {
		return "", err
	}
	return validate(raw)
}

func remainingFields(fields map[string]*yaml.Node, vars map[string]any) (remainingWindow, error) {
	var w remainingWindow
	var err error
	if w.minRemaining, err = durationField(fields, "min_remaining", vars); err != nil {
		return w, err
	}
	if w.maxRemaining, err = durationField(fields, "max_remaining", vars); err != nil {
		return w, err
	}
	return w, nil
}

func boundsFields(fields map[string]*yaml.Node, suffix string, vars map[string]any) (bounds, error) {
	var b bounds
	var err error
	if b.lt, err = floatField(fields, "lt"+suffix, vars); err != nil {
		return b, err
	}
	if b.lte, err = floatField(fields, "lte"+suffix, vars); err != nil {
		return b, err
	}
	if b.gt, err = floatField(fields, "gt"+suffix, vars); err != nil {
		return b, err
	}
	if b.gte, err = floatField(fields, "gte"+suffix, vars); err != nil {
		return b, err
	}
	return b, nil
}

func stringField(fields map[string]*yaml.Node, key string, required bool, vars map[string]any) (string, error) {
	node, ok := fields[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing field '%s'", key)
		}
		return "", nil
	}
	val, err := resolveScalar(node, vars)
	if err != nil {
		return "", err
	}
	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func durationField(fields map[string]*yaml.Node, key string, vars map[string]any) (*time.Duration, error) {
	val, err := floatField(fields, key, vars)
	if err != nil || val == nil {
		return nil, err
	}
	d := time.Duration(*val * float64(time.Second))
	return &d, nil
}

func floatField(fields map[string]*yaml.Node, key string, vars map[string]any) (*float64, error) {
	node, ok := fields[key]
	if !ok {
		return nil, nil
	}
	val, err := resolveScalar(node, vars)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case int64:
		f := float64(v)
		return &f, nil
	case uint64:
		f := float64(v)
		return &f, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float for key '%s'", v, key)
	}
}

func resolveScalar(node *yaml.Node, vars map[string]any) (interface{}, error) {
	if node == nil {
		return nil, fmt.Errorf("nil scalar")
	}
	var out interface{}
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	if str, ok := out.(string); ok {
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "${") && strings.HasSuffix(str, "}") {
			name := strings.TrimSpace(str[2 : len(str)-1])
			if vars == nil {
				return nil, fmt.Errorf("variable '%s' not defined", name)
			}
			val, ok := vars[name]
			if !ok {
				return nil, fmt.Errorf("variable '%s' not defined", name)
			}
			return val, nil
		}
	}
	return out, nil
}
