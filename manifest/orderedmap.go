package manifest

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v3"
)

// stringMap is an insertion-ordered string-to-string map, used for a
// manifest's `requires` and `environment` sections so that the order
// entries were declared in survives a load/round-trip cycle (§8:
// "insertion-ordered maps are explicitly preserved").
//
// The ordering itself is reconstructed from the YAML document's node
// order (plain Go maps make no such guarantee); the values are then
// stored in an orderedmap.OrderedMap, which is also what iterates them
// back out in declaration order.
type stringMap struct {
	om *orderedmap.OrderedMap
}

func newStringMap() *stringMap {
	return &stringMap{om: orderedmap.New()}
}

func (m *stringMap) Set(key, value string) {
	m.om.Set(key, value)
}

func (m *stringMap) Get(key string) (string, bool) {
	v, ok := m.om.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Keys returns the map's keys in declaration order.
func (m *stringMap) Keys() []string {
	if m.om == nil {
		return nil
	}
	return m.om.Keys()
}

// Len reports the number of entries.
func (m *stringMap) Len() int {
	if m.om == nil {
		return 0
	}
	return len(m.om.Keys())
}

func (m *stringMap) UnmarshalYAML(node *yaml.Node) error {
	m.om = orderedmap.New()
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %v", node.Kind)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var key, value string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("decoding key: %w", err)
		}
		if err := valNode.Decode(&value); err != nil {
			return fmt.Errorf("decoding value for %q: %w", key, err)
		}
		m.om.Set(key, value)
	}

	return nil
}

func (m *stringMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m.om == nil {
		return node, nil
	}
	for _, key := range m.om.Keys() {
		value, _ := m.om.Get(key)
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(key); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
