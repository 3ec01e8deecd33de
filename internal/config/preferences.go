package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const bioKey = "bio"

// Preference is one routine entry such as wake_up: "7:30左右".
type Preference struct {
	Key   string
	Value string
}

// Preferences keeps the free-form bio apart from the routine entries and
// preserves the order entries appear in the file.
type Preferences struct {
	Bio     string
	Entries []Preference
}

// Get returns the value for key.
func (p Preferences) Get(key string) (string, bool) {
	for _, e := range p.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces an existing entry in place or appends a new one.
func (p *Preferences) Set(key, value string) {
	if key == bioKey {
		p.Bio = value
		return
	}
	for i := range p.Entries {
		if p.Entries[i].Key == key {
			p.Entries[i].Value = value
			return
		}
	}
	p.Entries = append(p.Entries, Preference{Key: key, Value: value})
}

// Map returns the entries as a map for the constraint extractor.
func (p Preferences) Map() map[string]string {
	m := make(map[string]string, len(p.Entries))
	for _, e := range p.Entries {
		m[e.Key] = e.Value
	}
	return m
}

func (p *Preferences) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: preferences must be a mapping", node.Line)
	}
	*p = Preferences{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: preference %q must be a single value", value.Line, key.Value)
		}
		p.Set(key.Value, strings.TrimSpace(value.Value))
	}
	return nil
}

func (p Preferences) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value string) {
		v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
		if strings.Contains(value, "\n") {
			v.Style = yaml.LiteralStyle
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, v)
	}
	if p.Bio != "" {
		add(bioKey, p.Bio)
	}
	for _, e := range p.Entries {
		add(e.Key, e.Value)
	}
	return node, nil
}
