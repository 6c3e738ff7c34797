package main

import (
	"fmt"

	"github.com/pesenv/pes/envcompose"
	"github.com/pesenv/pes/manifest"
	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/repository"
	"github.com/pesenv/pes/resolver"
	"github.com/pesenv/pes/version"
)

// composeEntries converts a package/version-string entry list (shared
// by the live-solve and lockfile-replay env paths) into a composed
// KEY -> path-list environment.
func composeEntries(repos []*repository.Repository, entries []composedEntry) (map[string][]string, error) {
	solEntries := make([]resolver.SolutionEntry, 0, len(entries))
	for _, e := range entries {
		v, err := version.Parse(e.Version)
		if err != nil {
			return nil, fmt.Errorf("composeEntries: %w", err)
		}
		solEntries = append(solEntries, resolver.SolutionEntry{Package: e.Package, Version: v})
	}
	return composeSolution(repos, solEntries)
}

// openRepositories resolves the configured PluginHost into one
// repository.Repository per existing root, erroring with
// perr.ErrNoRepositories if none exist.
func openRepositories() ([]*repository.Repository, error) {
	host, err := loadPluginHost()
	if err != nil {
		return nil, err
	}

	roots := repositoryRoots(host)
	if len(roots) == 0 {
		return nil, fmt.Errorf("pes: %w", perr.ErrNoRepositories)
	}

	repos := make([]*repository.Repository, 0, len(roots))
	for _, root := range roots {
		repos = append(repos, repository.New(root, host))
	}
	return repos, nil
}

// buildSolver registers every manifest visible across repos (filtered
// to minReleaseType) into a fresh resolver.Solver.
func buildSolver(repos []*repository.Repository, minReleaseType version.ReleaseType) (*resolver.Solver, error) {
	s := resolver.New()
	for _, repo := range repos {
		if err := s.AddRepository(repo, minReleaseType, nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// manifestPathAcross finds pkg-v's manifest in the first repository
// that has it.
func manifestPathAcross(repos []*repository.Repository, pkg string, v version.Version) (string, error) {
	var lastErr error
	for _, repo := range repos {
		path, err := repo.Manifest(pkg, v)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = perr.ErrManifestNotFound
	}
	return "", lastErr
}

// composeSolution locates every solution member's manifest across
// repos and folds their environment entries into a final
// KEY -> path-list mapping, seeded from the current process's
// hygienic base environment.
func composeSolution(repos []*repository.Repository, entries []resolver.SolutionEntry) (map[string][]string, error) {
	members := make([]envcompose.Member, 0, len(entries))
	for _, e := range entries {
		path, err := manifestPathAcross(repos, e.Package, e.Version)
		if err != nil {
			members = append(members, envcompose.Member{Package: e.Package})
			continue
		}
		members = append(members, envcompose.Member{Package: e.Package, Path: path})
	}

	composer := envcompose.New(envcompose.Snapshot())
	return composer.ComposeMembers(members)
}

// loadManifestAcross finds and loads distribution's manifest across repos.
func loadManifestAcross(repos []*repository.Repository, distribution string) (*manifest.Manifest, error) {
	var lastErr error
	for _, repo := range repos {
		path, err := repo.ManifestFor(distribution)
		if err != nil {
			lastErr = err
			continue
		}
		return manifest.Load(path)
	}
	if lastErr == nil {
		lastErr = perr.ErrDistributionNotFound
	}
	return nil, lastErr
}
