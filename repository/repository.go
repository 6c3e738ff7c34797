package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/version"
)

// Repository is a root directory containing "<package>/<version>/"
// distributions.
type Repository struct {
	Root       string
	PluginHost PluginHost
}

// New constructs a Repository rooted at root, using host to locate
// each distribution's manifest file.
func New(root string, host PluginHost) *Repository {
	return &Repository{Root: root, PluginHost: host}
}

// Manifest returns the manifest path for a specific package/version,
// or perr.ErrMissingPath if the distribution directory does not exist.
func (r *Repository) Manifest(pkg string, v version.Version) (string, error) {
	distRoot := filepath.Join(r.Root, pkg, v.String())
	if _, err := os.Stat(distRoot); err != nil {
		return "", fmt.Errorf("%s-%s: %w", pkg, v, perr.ErrMissingPath)
	}
	return r.PluginHost.ManifestPathFromDistribution(distRoot), nil
}

// ManifestFor parses "name-version" and delegates to Manifest.
func (r *Repository) ManifestFor(distribution string) (string, error) {
	pkg, v, err := splitDistribution(distribution)
	if err != nil {
		return "", err
	}
	return r.Manifest(pkg, v)
}

func splitDistribution(distribution string) (string, version.Version, error) {
	i := strings.LastIndexByte(distribution, '-')
	if i < 0 {
		return "", version.Version{}, fmt.Errorf("invalid distribution %q: expected name-version", distribution)
	}
	v, err := version.Parse(distribution[i+1:])
	if err != nil {
		// A pre-release version ("4.4.0-beta") carries a dash of its
		// own, so retry with the dash before it.
		j := strings.LastIndexByte(distribution[:i], '-')
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

// HasDistribution reports whether "name-version" exists in r.
func (r *Repository) HasDistribution(distribution string) bool {
	_, err := r.ManifestFor(distribution)
	return err == nil
}

// Packages returns the paths (repository root joined with the
// directory name) of the package directories found directly under the
// repository root, sorted.
func (r *Repository) Packages() ([]string, error) {
	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return nil, fmt.Errorf("listing repository %q: %w", r.Root, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(r.Root, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ManifestsFor lists every manifest path for the named package whose
// version's release type is >= minReleaseType.
func (r *Repository) ManifestsFor(pkg string, minReleaseType version.ReleaseType) ([]string, error) {
	versionDirs, err := os.ReadDir(filepath.Join(r.Root, pkg))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("listing versions of %q: %w", pkg, err)
	}

	var out []string
	for _, e := range versionDirs {
		if !e.IsDir() {
			continue
		}
		v, err := version.Parse(e.Name())
		if err != nil {
			continue
		}
		if v.ReleaseType < minReleaseType {
			continue
		}
		out = append(out, r.PluginHost.ManifestPathFromDistribution(filepath.Join(r.Root, pkg, e.Name())))
	}
	return out, nil
}

// ManifestResult is one item of a Manifests() walk: either a manifest
// path or an error encountered while producing one. Errors are
// surfaced as items rather than aborting the walk, so the caller can
// choose to ignore or fail on them.
type ManifestResult struct {
	Path string
	Err  error
}

// Override pins a specific (name, version) distribution to bypass the
// release-type filter in Manifests.
type Override struct {
	Name    string
	Version version.Version
}

// candidate is one (package, version) distribution directory found by
// the directory walk, awaiting its manifest-existence check.
type candidate struct {
	pkg, manifestPath string
	v                 version.Version
}

// Manifests walks every distribution in the repository, applying the
// minReleaseType filter except to distributions listed in overrides.
// Order is stable per invocation (sorted by "name-version") but is not
// otherwise part of the contract.
//
// The directory walk itself is sequential (it's cheap, and its
// results feed the candidate list deterministically), but the
// per-candidate manifest-existence stat — one syscall per distribution,
// the dominant cost on a repository with thousands of versions — is
// spread across a bounded worker pool and merged back in sorted order
// afterward, so parallelism never leaks into the result ordering.
func (r *Repository) Manifests(minReleaseType version.ReleaseType, overrides []Override) []ManifestResult {
	overrideSet := make(map[string]struct{}, len(overrides))
	for _, o := range overrides {
		overrideSet[fmt.Sprintf("%s-%s", o.Name, o.Version)] = struct{}{}
	}

	packageDirs, err := os.ReadDir(r.Root)
	if err != nil {
		return []ManifestResult{{Err: fmt.Errorf("listing repository %q: %w", r.Root, err)}}
	}

	var results []ManifestResult
	var candidates []candidate
	for _, pkgEntry := range packageDirs {
		if !pkgEntry.IsDir() {
			continue
		}
		pkg := pkgEntry.Name()

		versionDirs, err := os.ReadDir(filepath.Join(r.Root, pkg))
		if err != nil {
			results = append(results, ManifestResult{Err: fmt.Errorf("listing versions of %q: %w", pkg, err)})
			continue
		}

		for _, verEntry := range versionDirs {
			if !verEntry.IsDir() {
				continue
			}
			v, err := version.Parse(verEntry.Name())
			if err != nil {
				results = append(results, ManifestResult{Err: fmt.Errorf("package %q: %w", pkg, err)})
				continue
			}

			_, overridden := overrideSet[fmt.Sprintf("%s-%s", pkg, v)]
			if v.ReleaseType < minReleaseType && !overridden {
				continue
			}

			distRoot := filepath.Join(r.Root, pkg, verEntry.Name())
			manifestPath := r.PluginHost.ManifestPathFromDistribution(distRoot)
			candidates = append(candidates, candidate{pkg: pkg, v: v, manifestPath: manifestPath})
		}
	}

	results = append(results, statCandidates(candidates)...)

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results
}

// statCandidates checks manifest existence for every candidate,
// bounding concurrency to avoid exhausting file descriptors on large
// repositories.
func statCandidates(candidates []candidate) []ManifestResult {
	out := make([]ManifestResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(16)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if _, err := os.Stat(c.manifestPath); err != nil {
				out[i] = ManifestResult{Err: fmt.Errorf("%s-%s: %w", c.pkg, c.v, perr.ErrManifestNotFound)}
				return nil
			}
			out[i] = ManifestResult{Path: c.manifestPath}
			return nil
		})
	}
	_ = g.Wait() // statCandidates's workers never return a non-nil error

	return out
}
