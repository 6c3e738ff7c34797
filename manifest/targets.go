package manifest

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v3"

	"github.com/pesenv/pes/perr"
)

// PackageTarget is a named set of dependencies (plus includes of other
// targets in the same manifest) within a manifest.
type PackageTarget struct {
	Include  []string
	Requires *stringMap
}

// targetsMap is an insertion-ordered map of target name -> PackageTarget.
type targetsMap struct {
	om *orderedmap.OrderedMap
}

func newTargetsMap() *targetsMap {
	return &targetsMap{om: orderedmap.New()}
}

func (m *targetsMap) Get(name string) (PackageTarget, bool) {
	v, ok := m.om.Get(name)
	if !ok {
		return PackageTarget{}, false
	}
	pt, ok := v.(PackageTarget)
	return pt, ok
}

func (m *targetsMap) Keys() []string {
	if m.om == nil {
		return nil
	}
	return m.om.Keys()
}

func (m *targetsMap) UnmarshalYAML(node *yaml.Node) error {
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

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return fmt.Errorf("decoding target name: %w", err)
		}

		var raw struct {
			Include  []string   `yaml:"include"`
			Requires *stringMap `yaml:"requires"`
		}
		if err := valNode.Decode(&raw); err != nil {
			return fmt.Errorf("decoding target %q: %w", name, err)
		}
		requires := raw.Requires
		if requires == nil {
			requires = newStringMap()
		}

		if _, exists := m.om.Get(name); exists {
			return fmt.Errorf("target %q: %w", name, perr.ErrDuplicateKey)
		}
		m.om.Set(name, PackageTarget{Include: raw.Include, Requires: requires})
	}

	return nil
}

func (m *targetsMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m.om == nil {
		return node, nil
	}
	for _, name := range m.om.Keys() {
		v, _ := m.om.Get(name)
		pt := v.(PackageTarget)

		keyNode := &yaml.Node{}
		if err := keyNode.Encode(name); err != nil {
			return nil, err
		}

		valNode := &yaml.Node{}
		if err := valNode.Encode(struct {
			Include  []string   `yaml:"include,omitempty"`
			Requires *stringMap `yaml:"requires"`
		}{Include: pt.Include, Requires: pt.Requires}); err != nil {
			return nil, err
		}

		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
