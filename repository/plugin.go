// Package repository enumerates package distributions on disk and
// locates their manifests via a pluggable PluginHost.
package repository

import (
	"os"
	"path/filepath"
	"strings"
)

// PluginHost abstracts the two studio-specific capabilities every
// deployment of PES must supply: where to look for repositories, and
// how a distribution root maps to its manifest file. Implementations
// must be pure functions with no mutable state, safe to call
// concurrently.
type PluginHost interface {
	// FindRepositories returns zero or more candidate repository
	// roots. Non-existent paths are filtered by the caller.
	FindRepositories() []string

	// ManifestPathFromDistribution appends the site's manifest
	// filename/subpath to a distribution root.
	ManifestPathFromDistribution(distRoot string) string
}

// DefaultPluginHost reads repository roots from PES_PACKAGE_REPO_PATH
// (colon-separated, matching $PATH conventions) and assumes each
// distribution's manifest lives directly at "manifest.yaml".
type DefaultPluginHost struct{}

func (DefaultPluginHost) FindRepositories() []string {
	path := os.Getenv("PES_PACKAGE_REPO_PATH")
	if path == "" {
		return nil
	}
	var roots []string
	for _, p := range strings.Split(path, string(os.PathListSeparator)) {
		if p != "" {
			roots = append(roots, p)
		}
	}
	return roots
}

func (DefaultPluginHost) ManifestPathFromDistribution(distRoot string) string {
	return filepath.Join(distRoot, "manifest.yaml")
}

// EnvPluginHost is a PluginHost configured entirely by the roots and
// manifest subpath it is constructed with (it reads no environment
// variables itself), useful for tests and for studios that keep
// manifests in a non-default subdirectory (e.g. "METADATA/manifest.yaml").
type EnvPluginHost struct {
	Roots            []string
	ManifestRelPath  string
}

func NewEnvPluginHost(roots []string, manifestRelPath string) EnvPluginHost {
	if manifestRelPath == "" {
		manifestRelPath = "manifest.yaml"
	}
	return EnvPluginHost{Roots: roots, ManifestRelPath: manifestRelPath}
}

func (h EnvPluginHost) FindRepositories() []string {
	return h.Roots
}

func (h EnvPluginHost) ManifestPathFromDistribution(distRoot string) string {
	return filepath.Join(distRoot, h.ManifestRelPath)
}
