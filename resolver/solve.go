package resolver

import (
	"fmt"
	"strings"

	"github.com/pesenv/pes/grammar"
	"github.com/pesenv/pes/manifest"
	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/version"
	"github.com/pesenv/pes/vrange"
)

// Solution is the ordered (package -> version) result of a successful
// solve. Iteration order matches the order packages were first
// decided during resolution, which is deterministic for a given
// Solver state and request.
type Solution struct {
	entries []SolutionEntry
	index   map[string]int
}

// SolutionEntry is one (package, version) pair of a Solution.
type SolutionEntry struct {
	Package string
	Version version.Version
}

// Entries returns the solution's members in deterministic order, with
// the synthetic root request filtered out.
func (s *Solution) Entries() []SolutionEntry {
	return s.entries
}

// Get returns the version selected for pkg, if any.
func (s *Solution) Get(pkg string) (version.Version, bool) {
	i, ok := s.index[pkg]
	if !ok {
		return version.Version{}, false
	}
	return s.entries[i].Version, true
}

// Solve resolves request (a list of top-level package/range
// constraints) against every (package, version) pair previously
// registered via AddRepository. It inserts a synthetic root node
// whose dependencies are request, resolves starting from that node,
// and returns the selected dependencies with the sentinel filtered
// out.
func (s *Solver) Solve(request []manifest.Requirement) (*Solution, error) {
	root := versionEntry{Version: rootVersion, Requires: request}

	const maxAttempts = 10000
	excluded := map[string]map[string]bool{}
	// exclusionReasons records, per package, why each excluded version
	// was excluded. A later attempt may exhaust a package's candidates
	// entirely and go terminal with no contributions left mentioning
	// the real culprit (it was eliminated along with the version that
	// required it); folding these back in keeps that culprit in the
	// final explanation instead of losing it to the retry loop.
	exclusionReasons := map[string][]string{}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		decided, order, conflict, err := s.attempt(root, excluded, exclusionReasons)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			return s.buildSolution(decided, order), nil
		}
		if !conflict.retryable {
			return nil, &perr.NoSolutionError{Explanation: conflict.explanation}
		}

		set, ok := excluded[conflict.pkg]
		if !ok {
			set = map[string]bool{}
			excluded[conflict.pkg] = set
		}
		set[conflict.badVersion.String()] = true

		if conflict.reason != "" {
			exclusionReasons[conflict.pkg] = append(exclusionReasons[conflict.pkg],
				fmt.Sprintf("%s-%s was excluded because %s", conflict.pkg, conflict.badVersion, conflict.reason))
		}
	}

	return nil, &perr.NoSolutionError{Explanation: "exceeded maximum resolution attempts without converging"}
}

// SolveForManifest loads the manifest at path and solves the
// requirements of target.
func (s *Solver) SolveForManifest(path, target string) (*Solution, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	reqs, err := m.Requires(target)
	if err != nil {
		return nil, err
	}
	return s.Solve(reqs)
}

// SolveFromString parses a request string of space- or
// comma-separated package-range expressions (e.g. "maya-1.0.1
// maya_startup-1.2.3+<4") and solves it. A convenience for callers
// driven directly by a command line.
func (s *Solver) SolveFromString(request string) (*Solution, error) {
	normalized := strings.ReplaceAll(request, ",", " ")
	var reqs []manifest.Requirement
	for _, field := range strings.Fields(normalized) {
		pr, err := grammar.ParsePackageRange(field)
		if err != nil {
			return nil, fmt.Errorf("solve_from_str: %w", err)
		}
		reqs = append(reqs, manifest.Requirement{Package: pr.Name, Range: pr.Range})
	}
	return s.Solve(reqs)
}

// conflict describes why an attempt failed. retryable conflicts can be
// resolved by excluding badVersion and trying again; non-retryable
// conflicts are terminal no-solution outcomes.
type conflict struct {
	pkg         string
	badVersion  version.Version
	retryable   bool
	explanation string
	// reason is set on retryable conflicts so Solve can remember, by
	// package, why a version was excluded. A later attempt may drop
	// the contribution that named the real culprit along with the
	// version it belonged to; reason lets that culprit survive into
	// whatever terminal explanation eventually gets reported.
	reason string
}

// contribution records one requirer's constraint on a package, kept
// per-attempt so a terminal failure can render every contributing
// requirement.
type contribution struct {
	requirer string
	rng      vrange.Range
}

// queueItem is one pending (package, incoming range) edge to process,
// processed breadth-first so resolution order is deterministic and
// mirrors the shallowest-requirer-first order a reader would expect.
type queueItem struct {
	pkg      string
	rng      vrange.Range
	requirer string
}

func (s *Solver) attempt(root versionEntry, excluded map[string]map[string]bool, reasons map[string][]string) (map[string]version.Version, []string, *conflict, error) {
	decided := map[string]version.Version{}
	var order []string
	constraints := map[string]vrange.Range{}
	contributions := map[string][]contribution{}

	queue := []queueItem{{pkg: rootRequest, rng: vrange.Exact(rootVersion), requirer: "root"}}
	decided[rootRequest] = rootVersion
	order = append(order, rootRequest)
	for _, req := range root.Requires {
		queue = append(queue, queueItem{pkg: req.Package, rng: req.Range, requirer: rootRequest + "-" + rootVersion.String()})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		contributions[item.pkg] = append(contributions[item.pkg], contribution{requirer: item.requirer, rng: item.rng})

		merged := item.rng
		if existing, ok := constraints[item.pkg]; ok {
			merged = existing.Intersect(item.rng)
		}
		constraints[item.pkg] = merged

		if merged.IsEmpty() {
			reason := explainNoCandidates(item.pkg, contributions[item.pkg])
			if blamePkg, blameVersion, ok := soleBlamableRequirer(contributions[item.pkg]); ok {
				return nil, nil, &conflict{pkg: blamePkg, badVersion: blameVersion, retryable: true, reason: reason}, nil
			}
			return nil, nil, &conflict{
				pkg:         item.pkg,
				retryable:   false,
				explanation: buildExplanation(item.pkg, contributions[item.pkg], reasons),
			}, nil
		}

		if existingVersion, ok := decided[item.pkg]; ok {
			if !merged.Contains(existingVersion) {
				return nil, nil, &conflict{
					pkg:        item.pkg,
					badVersion: existingVersion,
					retryable:  true,
					reason:     explainNoCandidates(item.pkg, contributions[item.pkg]),
				}, nil
			}
			continue
		}

		candidate, ok := s.pickCandidate(item.pkg, merged, excluded[item.pkg])
		if !ok {
			reason := explainNoCandidates(item.pkg, contributions[item.pkg])
			if blamePkg, blameVersion, ok := soleBlamableRequirer(contributions[item.pkg]); ok {
				return nil, nil, &conflict{pkg: blamePkg, badVersion: blameVersion, retryable: true, reason: reason}, nil
			}
			return nil, nil, &conflict{
				pkg:         item.pkg,
				retryable:   false,
				explanation: buildExplanation(item.pkg, contributions[item.pkg], reasons),
			}, nil
		}

		decided[item.pkg] = candidate.Version
		order = append(order, item.pkg)

		requirer := fmt.Sprintf("%s-%s", item.pkg, candidate.Version)
		for _, req := range candidate.Requires {
			queue = append(queue, queueItem{pkg: req.Package, rng: req.Range, requirer: requirer})
		}
	}

	return decided, order, nil, nil
}

// pickCandidate returns the highest registered version of pkg that
// lies within rng and is not in the exclusion set built up across
// prior failed attempts.
func (s *Solver) pickCandidate(pkg string, rng vrange.Range, excluded map[string]bool) (versionEntry, bool) {
	entries := s.registered[pkg]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if excluded[e.Version.String()] {
			continue
		}
		if rng.Contains(e.Version) {
			return e, true
		}
	}
	return versionEntry{}, false
}

// soleBlamableRequirer reports whether contributions names exactly one
// requirer, and that requirer is itself a decided (non-root) package
// version rather than the synthetic root request. When it does, that
// requirer's version is the single cause of the conflict and can be
// excluded on retry — backtracking one level instead of declaring the
// whole request unsatisfiable. Two or more contributing requirers make
// the blame ambiguous between them, so those conflicts stay terminal.
func soleBlamableRequirer(contributions []contribution) (pkg string, v version.Version, ok bool) {
	if len(contributions) != 1 {
		return "", version.Version{}, false
	}
	return splitRequirer(contributions[0].requirer)
}

// splitRequirer parses a "package-version" requirer tag back into its
// parts, or reports ok=false for the synthetic root's own tags ("root"
// and "ROOT_REQUEST-<version>"), which can't be excluded and retried.
func splitRequirer(requirer string) (pkg string, v version.Version, ok bool) {
	if requirer == "root" || strings.HasPrefix(requirer, rootRequest+"-") {
		return "", version.Version{}, false
	}
	i := strings.LastIndexByte(requirer, '-')
	if i < 0 {
		return "", version.Version{}, false
	}
	parsed, err := version.Parse(requirer[i+1:])
	if err != nil {
		// A pre-release version ("2.0.0-beta") carries a dash of its
		// own, so retry with the dash before it.
		j := strings.LastIndexByte(requirer[:i], '-')
		if j < 0 {
			return "", version.Version{}, false
		}
		if parsed, err = version.Parse(requirer[j+1:]); err != nil {
			return "", version.Version{}, false
		}
		i = j
	}
	return requirer[:i], parsed, true
}

func explainNoCandidates(pkg string, contributions []contribution) string {
	parts := make([]string, 0, len(contributions))
	for _, c := range contributions {
		parts = append(parts, fmt.Sprintf("%s requires %s %s", c.requirer, pkg, c.rng))
	}
	return fmt.Sprintf("no version of %q satisfies: %s", pkg, strings.Join(parts, " and "))
}

// buildExplanation renders the terminal no-candidates message for pkg
// and appends any reasons recorded for pkg's own earlier exclusions, so
// a culprit eliminated in a prior attempt still surfaces in the final
// explanation even if nothing in the current attempt mentions it.
func buildExplanation(pkg string, contributions []contribution, reasons map[string][]string) string {
	explanation := explainNoCandidates(pkg, contributions)
	if prior := reasons[pkg]; len(prior) > 0 {
		explanation += "; " + strings.Join(prior, "; ")
	}
	return explanation
}

func (s *Solver) buildSolution(decided map[string]version.Version, order []string) *Solution {
	sol := &Solution{index: map[string]int{}}
	for _, pkg := range order {
		if pkg == rootRequest {
			continue
		}
		if _, ok := sol.index[pkg]; ok {
			continue
		}
		sol.index[pkg] = len(sol.entries)
		sol.entries = append(sol.entries, SolutionEntry{Package: pkg, Version: decided[pkg]})
	}
	return sol
}
