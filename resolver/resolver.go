// Package resolver implements PES's dependency resolution: a
// conflict-driven, backtracking solver over (package, Range)
// constraints in the style of PubGrub, adapted to the project's
// single-threaded, cooperative execution model.
package resolver

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pesenv/pes/manifest"
	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/repository"
	"github.com/pesenv/pes/version"
)

// rootRequest is the synthetic package name used to anchor a solve at
// a single root node, mirroring the original implementation's
// ROOT_REQUEST sentinel. It is never surfaced in a Solution.
const rootRequest = "ROOT_REQUEST"

// rootVersion is the arbitrary version pinned to the synthetic root.
var rootVersion = version.New(1, 0, 0)

// versionEntry is one registered (version, requires) pair for a package.
type versionEntry struct {
	Version  version.Version
	Requires []manifest.Requirement
}

// Solver accumulates the universe of known (package, version) pairs
// and their "run" target requirements, then answers solve requests
// against exactly that universe — no manifest I/O happens during
// Solve itself.
type Solver struct {
	registered map[string][]versionEntry
	log        *logrus.Entry
}

// New returns an empty Solver.
func New() *Solver {
	return &Solver{
		registered: make(map[string][]versionEntry),
		log:        logrus.WithField("component", "resolver"),
	}
}

// AddRepository registers every manifest repo yields (after the
// caller's release-type/override filtering) by extracting its "run"
// target's requirements. Manifests are processed in sorted
// name-version order so registration, and therefore candidate
// ordering, is deterministic regardless of filesystem iteration order.
func (s *Solver) AddRepository(repo *repository.Repository, minReleaseType version.ReleaseType, overrides []repository.Override) error {
	results := repo.Manifests(minReleaseType, overrides)
	paths := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("add_repository: %w", r.Err)
		}
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		m, err := manifest.Load(path)
		if err != nil {
			return fmt.Errorf("add_repository: %w", err)
		}

		reqs, err := m.Requires("run")
		if err != nil {
			if _, ok := err.(*perr.MissingTargetError); !ok {
				return fmt.Errorf("add_repository: %w", err)
			}
			reqs = nil
		}

		s.register(m.Name, m.Version, reqs)
		s.log.WithFields(logrus.Fields{
			"package": m.Name,
			"version": m.Version.String(),
			"requires": len(reqs),
		}).Debug("registered distribution")
	}

	return nil
}

// register inserts (or replaces) a candidate, keeping each package's
// entries sorted ascending by version so the solver can always walk
// from highest to lowest when picking a candidate.
func (s *Solver) register(pkg string, v version.Version, requires []manifest.Requirement) {
	entries := s.registered[pkg]
	for i, e := range entries {
		if e.Version.Equal(v) {
			entries[i] = versionEntry{Version: v, Requires: requires}
			return
		}
	}
	entries = append(entries, versionEntry{Version: v, Requires: requires})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Version.LessThan(entries[j].Version)
	})
	s.registered[pkg] = entries
}

// Packages returns every package name registered via AddRepository, sorted.
func (s *Solver) Packages() []string {
	out := make([]string, 0, len(s.registered))
	for name := range s.registered {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Versions returns every version registered for pkg, ascending.
func (s *Solver) Versions(pkg string) []version.Version {
	entries := s.registered[pkg]
	out := make([]version.Version, len(entries))
	for i, e := range entries {
		out[i] = e.Version
	}
	return out
}
