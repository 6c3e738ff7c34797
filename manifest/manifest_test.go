package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
schema: 1
name: mypackage
version: 1.2.3
description: free text
targets:
  run:
    requires:
      maya: "^4.3"
      core: "2+<4"
  build:
    include: [run]
    requires:
      ninja: "1"
environment:
  PATH: "append({root}/bin)"
  PYTHONPATH: "{root}/python"
`

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	distRoot := filepath.Join(dir, "mypackage", "1.2.3")
	require.NoError(t, os.MkdirAll(distRoot, 0o777))
	path := filepath.Join(distRoot, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o666))
	return path
}

func TestLoadAndDistribution(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mypackage-1.2.3", m.Distribution())
	assert.Equal(t, filepath.Dir(path), m.Root())
}

func TestRequiresIncludesBeforeOwn(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)

	reqs, err := m.Requires("build")
	require.NoError(t, err)

	require.Len(t, reqs, 3)
	assert.Equal(t, "maya", reqs[0].Package)
	assert.Equal(t, "core", reqs[1].Package)
	assert.Equal(t, "ninja", reqs[2].Package)
}

func TestRequiresUnknownTarget(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)

	_, err = m.Requires("nonexistent")
	assert.Error(t, err)
}

func TestEnvironmentEntriesPreserveOrder(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)

	entries := m.EnvironmentEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "PATH", entries[0].Key)
	assert.Equal(t, "PYTHONPATH", entries[1].Key)
}

func TestLoadRejectsUnknownInclude(t *testing.T) {
	path := writeManifest(t, `
schema: 1
name: broken
version: 1.0.0
targets:
  build:
    include: [run]
    requires: {}
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidRange(t *testing.T) {
	path := writeManifest(t, `
schema: 1
name: broken
version: 1.0.0
targets:
  run:
    requires:
      maya: "not a range??"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateTargetKey(t *testing.T) {
	path := writeManifest(t, `
schema: 1
name: broken
version: 1.0.0
targets:
  run:
    requires:
      maya: "^4.3"
  run:
    requires:
      core: "2"
`)
	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope", "manifest.yaml"))
	assert.Error(t, err)
}

func TestManifestYAMLRoundTrip(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)

	data, err := m.ToYAML()
	require.NoError(t, err)

	reloadPath := writeManifest(t, string(data))
	reloaded, err := Load(reloadPath)
	require.NoError(t, err)

	assert.Equal(t, m.Distribution(), reloaded.Distribution())
	assert.Equal(t, m.Description, reloaded.Description)
	assert.Equal(t, m.Targets.Keys(), reloaded.Targets.Keys())
	assert.Equal(t, m.Environment.Keys(), reloaded.Environment.Keys())

	origReqs, err := m.Requires("build")
	require.NoError(t, err)
	reloadedReqs, err := reloaded.Requires("build")
	require.NoError(t, err)
	require.Equal(t, len(origReqs), len(reloadedReqs))
	for i := range origReqs {
		assert.Equal(t, origReqs[i].Package, reloadedReqs[i].Package)
		assert.Equal(t, origReqs[i].Range.String(), reloadedReqs[i].Range.String())
	}
}
