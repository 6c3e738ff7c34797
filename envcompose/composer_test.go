package envcompose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifestAt(t *testing.T, root, pkg, ver, contents string) string {
	t.Helper()
	distRoot := filepath.Join(root, pkg, ver)
	require.NoError(t, os.MkdirAll(distRoot, 0o777))
	path := filepath.Join(distRoot, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o666))
	return path
}

func TestComposeMembersMergesPrependAcrossDistributions(t *testing.T) {
	root := t.TempDir()

	mayaPath := writeManifestAt(t, root, "maya", "4.3.0", `
schema: 1
name: maya
version: 4.3.0
environment:
  PATH: "append({root}/bin)"
`)
	corePath := writeManifestAt(t, root, "core", "2.0.0", `
schema: 1
name: core
version: 2.0.0
environment:
  PATH: "prepend({root}/bin)"
`)

	c := New(BaseEnv{})
	out, err := c.ComposeMembers([]Member{
		{Package: "maya", Path: mayaPath},
		{Package: "core", Path: corePath},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "core", "2.0.0") + "/bin",
		filepath.Join(root, "maya", "4.3.0") + "/bin",
	}, out["PATH"])
}

func TestComposeMembersMissingManifestIsReported(t *testing.T) {
	c := New(BaseEnv{})
	_, err := c.ComposeMembers([]Member{
		{Package: "ghost", Path: ""},
	})
	assert.Error(t, err)
}

func TestComposeMembersExactReplaces(t *testing.T) {
	root := t.TempDir()

	basePath := writeManifestAt(t, root, "base", "1.0.0", `
schema: 1
name: base
version: 1.0.0
environment:
  PYTHONPATH: "{root}/python"
`)
	overridePath := writeManifestAt(t, root, "override", "1.0.0", `
schema: 1
name: override
version: 1.0.0
environment:
  PYTHONPATH: "{root}/override-python"
`)

	c := New(BaseEnv{})
	out, err := c.ComposeMembers([]Member{
		{Package: "base", Path: basePath},
		{Package: "override", Path: overridePath},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "override", "1.0.0") + "/override-python"}, out["PYTHONPATH"])
}

func TestRenderSortsKeys(t *testing.T) {
	lines := Render(map[string][]string{
		"PYTHONPATH": {"/a"},
		"PATH":       {"/b"},
	})
	assert.Equal(t, []string{"PATH=/b", "PYTHONPATH=/a"}, lines)
}

func TestBaseEnvSnapshotFiltersAllowlist(t *testing.T) {
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("PES_TOTALLY_NOT_ALLOWED", "secret")

	b := Snapshot()
	_, langOK := b.entries["LANG"]
	_, blockedOK := b.entries["PES_TOTALLY_NOT_ALLOWED"]
	assert.True(t, langOK)
	assert.False(t, blockedOK)
}
