package schema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/dshills/richdoc/internal/document"
)

// Matcher selects the nodes a rule applies to. Empty fields match any
// kind or type.
type Matcher struct {
	Kind string `yaml:"kind"`
	Type string `yaml:"type"`
}

// matches reports whether the matcher selects the node.
func (m Matcher) matches(n *document.Node) bool {
	if m.Kind != "" && m.Kind != n.Kind().String() {
		return false
	}
	if m.Type != "" && m.Type != n.Type() {
		return false
	}
	return true
}

// ChildRule is one alternative a child may satisfy. Empty lists accept
// any kind or type.
type ChildRule struct {
	Kinds []string `yaml:"kinds"`
	Types []string `yaml:"types"`
}

func (c ChildRule) allows(n *document.Node) bool {
	if len(c.Kinds) > 0 {
		ok := false
		for _, k := range c.Kinds {
			if k == n.Kind().String() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(c.Types) > 0 {
		ok := false
		for _, t := range c.Types {
			if t == n.Type() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Rule constrains the nodes its matcher selects.
type Rule struct {
	Match Matcher `yaml:"match"`

	// Children lists the acceptable child shapes; a child violating all
	// of them is removed during normalization. Empty accepts anything.
	Children []ChildRule `yaml:"children"`

	// MergeAdjacentTexts joins neighboring text children into one node.
	MergeAdjacentTexts bool `yaml:"merge_adjacent_texts"`

	// MinChildren removes the node itself when it falls below this count.
	MinChildren int `yaml:"min_children"`
}

// allowsChild reports whether the rule accepts n as a child.
func (r *Rule) allowsChild(n *document.Node) bool {
	if len(r.Children) == 0 {
		return true
	}
	for _, c := range r.Children {
		if c.allows(n) {
			return true
		}
	}
	return false
}

// Schema is an ordered rule set; the first matching rule wins. The
// transform layer passes schemas through unexamined; only the normalizer
// interprets them.
type Schema struct {
	Rules []Rule `yaml:"rules"`
}

// Parse reads a schema from YAML.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return &s, nil
}

// Load reads a schema from a YAML file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return Parse(data)
}

// ruleFor returns the first rule matching the node.
func (s *Schema) ruleFor(n *document.Node) (*Rule, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Rules {
		if s.Rules[i].Match.matches(n) {
			return &s.Rules[i], true
		}
	}
	return nil, false
}
