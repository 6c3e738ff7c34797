// Package envcompose implements PES's environment composer: given a
// resolver Solution, it locates each selected distribution's
// manifest, evaluates its environment entries against a per-
// distribution {root}-bound VarProvider, and folds the results into a
// single key -> merged-path-list environment on top of a hygienic
// base environment snapshot.
package envcompose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pesenv/pes/grammar"
	"github.com/pesenv/pes/manifest"
	"github.com/pesenv/pes/pathexpr"
	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/repository"
	"github.com/pesenv/pes/resolver"
)

// Member is one (package, manifest path) pair the composer folds in,
// in the order it should be visited.
type Member struct {
	Package string
	Path    string
}

// env is an insertion-ordered key -> PathExpression map, mirroring the
// ordered maps used elsewhere in the manifest loader.
type env struct {
	values map[string]pathexpr.PathExpression
	order  []string
}

func newEnv() *env {
	return &env{values: map[string]pathexpr.PathExpression{}}
}

func (e *env) merge(key string, incoming pathexpr.PathExpression) {
	existing, ok := e.values[key]
	if !ok {
		e.values[key] = incoming
		e.order = append(e.order, key)
		return
	}
	e.values[key] = pathexpr.Merge(existing, incoming)
}

// Composer folds a set of manifests' environment entries into a
// single environment, seeded from a BaseEnv snapshot.
type Composer struct {
	base BaseEnv
}

// New returns a Composer seeded with base.
func New(base BaseEnv) *Composer {
	return &Composer{base: base}
}

// ComposeMembers runs the composition algorithm over members in the
// order given (solution insertion order, per the composer contract).
func (c *Composer) ComposeMembers(members []Member) (map[string][]string, error) {
	e := newEnv()
	for _, key := range c.base.order {
		e.merge(key, c.base.entries[key])
	}

	var missing []string
	for _, m := range members {
		if m.Path == "" {
			missing = append(missing, m.Package)
			continue
		}

		mf, err := manifest.Load(m.Path)
		if err != nil {
			missing = append(missing, m.Package)
			continue
		}

		root := mf.Root()
		lookup := grammar.Lookup(func(name string) (string, bool) {
			if name == "root" {
				return root, true
			}
			return "", false
		})

		for _, entry := range mf.EnvironmentEntries() {
			pe, err := grammar.ParsePathExpression(entry.Expression, lookup)
			if err != nil {
				return nil, fmt.Errorf("composing %s: environment key %q: %w", mf.Distribution(), entry.Key, err)
			}
			e.merge(entry.Key, pe)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &perr.MissingManifestsError{Distributions: missing}
	}

	out := make(map[string][]string, len(e.order))
	for _, key := range e.order {
		out[key] = append([]string{}, e.values[key].Paths...)
	}
	return out, nil
}

// Render turns a composed environment into "KEY=seg1:seg2:..." lines,
// one per key, sorted by key for stable, reproducible output.
func Render(composed map[string][]string) []string {
	keys := make([]string, 0, len(composed))
	for k := range composed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, strings.Join(composed[k], ":")))
	}
	return out
}

// MembersFromSolution resolves each solution entry's distribution to
// a manifest path using repo, preserving solution order.
func MembersFromSolution(entries []resolver.SolutionEntry, repo *repository.Repository) []Member {
	members := make([]Member, 0, len(entries))
	for _, e := range entries {
		path, err := repo.Manifest(e.Package, e.Version)
		if err != nil {
			members = append(members, Member{Package: e.Package})
			continue
		}
		members = append(members, Member{Package: e.Package, Path: path})
	}
	return members
}
