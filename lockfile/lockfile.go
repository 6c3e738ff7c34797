// Package lockfile persists a per-target solve as a TOML document so
// a later "shell"/"env" invocation can reproduce it without
// re-running the resolver.
package lockfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/resolver"
	"github.com/pesenv/pes/version"
)

// currentSchema is the only schema version this reader accepts.
const currentSchema = 1

// LockFile is the parsed, mutable record of one or more solved
// targets for a single request/author.
type LockFile struct {
	Schema  uint32                       `toml:"schema"`
	Request string                       `toml:"request"`
	Author  string                       `toml:"author"`
	Lock    map[string]map[string]string `toml:"lock"`
}

// New starts a fresh LockFile for request/author with no locked targets.
func New(request, author string) *LockFile {
	return &LockFile{
		Schema:  currentSchema,
		Request: request,
		Author:  author,
		Lock:    map[string]map[string]string{},
	}
}

// AddDist records "name-version" as one member of target's lock,
// overwriting any prior entry for the same package name.
func (l *LockFile) AddDist(target, distribution string) error {
	name, v, err := splitDistribution(distribution)
	if err != nil {
		return err
	}
	if l.Lock[target] == nil {
		l.Lock[target] = map[string]string{}
	}
	l.Lock[target][name] = v.String()
	return nil
}

func splitDistribution(distribution string) (string, version.Version, error) {
	i := lastDash(distribution)
	if i < 0 {
		return "", version.Version{}, fmt.Errorf("invalid distribution %q: expected name-version", distribution)
	}
	v, err := version.Parse(distribution[i+1:])
	if err != nil {
		// A pre-release version ("4.4.0-beta") carries a dash of its
		// own, so retry with the dash before it.
		j := lastDash(distribution[:i])
		if j < 0 {
			return "", version.Version{}, fmt.Errorf("invalid distribution %q: %w", distribution, err)
		}
		pv, err2 := version.Parse(distribution[j+1:])
		if err2 != nil {
			return "", version.Version{}, fmt.Errorf("invalid distribution %q: %w", distribution, err)
		}
		v, i = pv, j
	}
	return distribution[:i], v, nil
}

func lastDash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '-' {
			return i
		}
	}
	return -1
}

// Version returns the locked version of package within target.
func (l *LockFile) Version(target, pkg string) (version.Version, bool) {
	t, ok := l.Lock[target]
	if !ok {
		return version.Version{}, false
	}
	raw, ok := t[pkg]
	if !ok {
		return version.Version{}, false
	}
	v, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, false
	}
	return v, true
}

// HasTarget reports whether target has an entry in the lock table
// (which may be empty if the document declares the table with no
// packages).
func (l *LockFile) HasTarget(target string) bool {
	_, ok := l.Lock[target]
	return ok
}

// Targets returns every locked target name, sorted.
func (l *LockFile) Targets() []string {
	out := make([]string, 0, len(l.Lock))
	for t := range l.Lock {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DistFor is one (package, version) pair locked under a target.
type DistFor struct {
	Package string
	Version version.Version
}

// DistsFor returns every (package, version) pair locked under target,
// sorted by package name, or ok=false if target is not locked.
func (l *LockFile) DistsFor(target string) ([]DistFor, bool) {
	t, ok := l.Lock[target]
	if !ok {
		return nil, false
	}

	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DistFor, 0, len(names))
	for _, name := range names {
		v, err := version.Parse(t[name])
		if err != nil {
			continue
		}
		out = append(out, DistFor{Package: name, Version: v})
	}
	return out, true
}

// SelectedDependenciesFor returns target's locked packages as a
// resolver.Solution-shaped value, for callers that want to feed a
// lockfile straight into the environment composer.
func (l *LockFile) SelectedDependenciesFor(target string) ([]resolver.SolutionEntry, error) {
	dists, ok := l.DistsFor(target)
	if !ok {
		return nil, fmt.Errorf("lockfile: %w", &perr.MissingTargetError{Target: target})
	}
	out := make([]resolver.SolutionEntry, 0, len(dists))
	for _, d := range dists {
		out = append(out, resolver.SolutionEntry{Package: d.Package, Version: d.Version})
	}
	return out, nil
}

// ToString serializes l as TOML text.
func (l *LockFile) ToString() (string, error) {
	data, err := toml.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("marshaling lockfile: %w", err)
	}
	return string(data), nil
}

// ToFile writes l to path as TOML.
func (l *LockFile) ToFile(path string) error {
	s, err := l.ToString()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o666)
}

// FromString parses a TOML lockfile document, rejecting any schema
// value other than the one this reader understands.
func FromString(data string) (*LockFile, error) {
	var l LockFile
	if err := toml.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}
	if l.Lock == nil {
		l.Lock = map[string]map[string]string{}
	}
	if l.Schema != currentSchema {
		return nil, fmt.Errorf("lockfile: unsupported schema %d (expected %d)", l.Schema, currentSchema)
	}
	return &l, nil
}

// FromFile reads and parses the lockfile at path.
func FromFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %q: %w", path, err)
	}
	return FromString(string(data))
}
