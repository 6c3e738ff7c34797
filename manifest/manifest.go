// Package manifest loads a distribution's manifest.yaml into a
// validated, immutable Manifest value and resolves its targets'
// dependency lists.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pesenv/pes/grammar"
	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/version"
	"github.com/pesenv/pes/vrange"
)

// Manifest is a schema-versioned, immutable record describing a
// single distribution: its identity, its named targets, and the
// environment mutations it contributes.
type Manifest struct {
	Schema      uint32
	Name        string
	Version     version.Version
	Description string
	Targets     *targetsMap
	Environment *stringMap

	// path is the manifest's location on disk; Root derives the
	// distribution root from it.
	path string
}

type yamlManifest struct {
	Schema      uint32      `yaml:"schema"`
	Name        string      `yaml:"name"`
	Version     string      `yaml:"version"`
	Description string      `yaml:"description"`
	Targets     *targetsMap `yaml:"targets"`
	Environment *stringMap  `yaml:"environment"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("loading manifest %q: %w", path, perr.ErrManifestNotFound)
		}
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}

	var raw yamlManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", path, err)
	}

	v, err := version.Parse(raw.Version)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}

	targets := raw.Targets
	if targets == nil {
		targets = newTargetsMap()
	}
	environment := raw.Environment
	if environment == nil {
		environment = newStringMap()
	}

	m := &Manifest{
		Schema:      raw.Schema,
		Name:        raw.Name,
		Version:     v,
		Description: raw.Description,
		Targets:     targets,
		Environment: environment,
		path:        path,
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// validate checks every requires-value parses as a Range, every
// include references an existing target, and the distribution root
// exists on disk.
func (m *Manifest) validate() error {
	if _, err := os.Stat(m.Root()); err != nil {
		return fmt.Errorf("manifest %q: %w", m.path, perr.ErrMissingPath)
	}

	for _, targetName := range m.Targets.Keys() {
		target, _ := m.Targets.Get(targetName)

		for _, includeName := range target.Include {
			if _, ok := m.Targets.Get(includeName); !ok {
				return fmt.Errorf("target %q includes unknown target %q: %w", targetName, includeName, perr.ErrMissingInclude)
			}
		}

		for _, pkgName := range target.Requires.Keys() {
			rangeText, _ := target.Requires.Get(pkgName)
			if _, err := grammar.ParseRange(rangeText); err != nil {
				return fmt.Errorf("target %q requires %q: invalid range %q: %w", targetName, pkgName, rangeText, err)
			}
		}
	}

	return nil
}

// Root returns the distribution's root directory: the manifest path
// with its filename (and any manifest-relative subdirectory, e.g.
// "METADATA/manifest.yaml") popped off.
func (m *Manifest) Root() string {
	return filepath.Dir(m.path)
}

// Distribution returns the "name-version" string identifying this manifest.
func (m *Manifest) Distribution() string {
	return fmt.Sprintf("%s-%s", m.Name, m.Version)
}

// MarshalYAML renders m back into the same shape Load parses, so that
// ToYAML(m) followed by Load reproduces an equal Manifest (modulo the
// path field, which records where it was loaded from, not data it
// owns).
func (m *Manifest) MarshalYAML() (interface{}, error) {
	return yamlManifest{
		Schema:      m.Schema,
		Name:        m.Name,
		Version:     m.Version.String(),
		Description: m.Description,
		Targets:     m.Targets,
		Environment: m.Environment,
	}, nil
}

// ToYAML serializes m to its YAML document form.
func (m *Manifest) ToYAML() ([]byte, error) {
	return yaml.Marshal(m)
}

// Requirement is a single resolved (package, Range) entry produced by
// Requires.
type Requirement struct {
	Package string
	Range   vrange.Range
}

// Requires returns, in order, the requires entries of every target
// named in target's include list, followed by target's own requires.
// Chained includes (an include of an include) are intentionally not
// resolved — see the design notes on "chained includes".
func (m *Manifest) Requires(targetName string) ([]Requirement, error) {
	target, ok := m.Targets.Get(targetName)
	if !ok {
		return nil, fmt.Errorf("manifest %q: %w", m.Distribution(), &perr.MissingTargetError{Target: targetName})
	}

	var out []Requirement

	for _, includeName := range target.Include {
		included, ok := m.Targets.Get(includeName)
		if !ok {
			return nil, fmt.Errorf("target %q: %w", targetName, perr.ErrMissingInclude)
		}
		reqs, err := requirementsOf(included)
		if err != nil {
			return nil, err
		}
		out = append(out, reqs...)
	}

	own, err := requirementsOf(target)
	if err != nil {
		return nil, err
	}
	out = append(out, own...)

	return out, nil
}

func requirementsOf(target PackageTarget) ([]Requirement, error) {
	var out []Requirement
	for _, pkgName := range target.Requires.Keys() {
		rangeText, _ := target.Requires.Get(pkgName)
		r, err := grammar.ParseRange(rangeText)
		if err != nil {
			return nil, err
		}
		out = append(out, Requirement{Package: pkgName, Range: r})
	}
	return out, nil
}

// EnvironmentEntry is a single (key, path-expression-text) pair, in
// the order it was declared in the manifest.
type EnvironmentEntry struct {
	Key        string
	Expression string
}

// EnvironmentEntries returns the manifest's environment section in
// declared order.
func (m *Manifest) EnvironmentEntries() []EnvironmentEntry {
	keys := m.Environment.Keys()
	out := make([]EnvironmentEntry, 0, len(keys))
	for _, key := range keys {
		expr, _ := m.Environment.Get(key)
		out = append(out, EnvironmentEntry{Key: key, Expression: expr})
	}
	return out
}
