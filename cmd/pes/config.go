package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pesenv/pes/repository"
)

// pluginDescriptor is the shape consumed from REPO_FINDER_PLUGIN: a
// JSON file describing repository roots and the manifest filename
// convention, read once at startup. This stands in for the original
// dlopen'd plugin shared library per the "dynamic plugin loading"
// design note — no shared-library machinery, just a narrow capability
// interface backed by a config file.
type pluginDescriptor struct {
	Roots           []string `json:"roots"`
	ManifestRelPath string   `json:"manifestRelPath"`
}

// loadPluginHost honors REPO_FINDER_PLUGIN when set, otherwise falls
// back to repository.DefaultPluginHost (which itself reads
// PES_PACKAGE_REPO_PATH).
func loadPluginHost() (repository.PluginHost, error) {
	descriptorPath := os.Getenv("REPO_FINDER_PLUGIN")
	if descriptorPath == "" {
		return repository.DefaultPluginHost{}, nil
	}

	data, err := os.ReadFile(descriptorPath)
	if err != nil {
		return nil, fmt.Errorf("reading REPO_FINDER_PLUGIN %q: %w", descriptorPath, err)
	}

	var desc pluginDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing REPO_FINDER_PLUGIN %q: %w", descriptorPath, err)
	}

	return repository.NewEnvPluginHost(desc.Roots, desc.ManifestRelPath), nil
}

// repositoryRoots filters a PluginHost's candidate roots down to the
// ones that actually exist on disk.
func repositoryRoots(host repository.PluginHost) []string {
	roots := host.FindRepositories()
	var existing []string
	for _, root := range roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			existing = append(existing, root)
		}
	}
	return existing
}
