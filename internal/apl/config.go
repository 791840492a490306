package apl

import "gopkg.in/yaml.v3"

// DefaultList is the name of the list built from the top-level rotation.
const DefaultList = "default"

// File represents one rotation YAML file.
type File struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Imports     []string           `yaml:"imports"`
	Variables   map[string]any     `yaml:"variables"`
	Rotation    []ActionDefinition `yaml:"rotation"`
	Lists       []ListDefinition   `yaml:"lists"`
}

// ListDefinition is a named sub-list that entries can call into.
type ListDefinition struct {
	Name    string             `yaml:"name"`
	Actions []ActionDefinition `yaml:"actions"`
}

// ActionDefinition describes one entry in a priority list.
type ActionDefinition struct {
	Action          string         `yaml:"action"`
	Spell           string         `yaml:"spell,omitempty"`
	List            string         `yaml:"list,omitempty"`
	Target          string         `yaml:"target,omitempty"`
	DurationSeconds float64        `yaml:"duration_seconds,omitempty"`
	Tags            []string       `yaml:"tags,omitempty"`
	When            *ConditionNode `yaml:"when,omitempty"`
}

// ConditionNode captures the raw YAML tree for conditions.
// We keep the node so the compiler can interpret it later.
type ConditionNode struct {
	raw *yaml.Node
}

// Node exposes the underlying YAML node.
func (c *ConditionNode) Node() *yaml.Node {
	if c == nil {
		return nil
	}
	return c.raw
}

// UnmarshalYAML stores the condition tree verbatim.
func (c *ConditionNode) UnmarshalYAML(value *yaml.Node) error {
	c.raw = value
	return nil
}

// NewConditionNode wraps a YAML condition node.
func NewConditionNode(node *yaml.Node) *ConditionNode {
	return &ConditionNode{raw: node}
}

// Parse decodes a rotation document without resolving imports.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}
