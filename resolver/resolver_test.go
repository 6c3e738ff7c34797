package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesenv/pes/manifest"
	"github.com/pesenv/pes/version"
	"github.com/pesenv/pes/vrange"
)

func req(pkg string, r vrange.Range) manifest.Requirement {
	return manifest.Requirement{Package: pkg, Range: r}
}

func TestSolvePicksHighestSatisfyingVersion(t *testing.T) {
	s := New()
	s.register("maya", version.MustParse("4.2.0"), nil)
	s.register("maya", version.MustParse("4.3.0"), nil)
	s.register("maya", version.MustParse("4.3.1"), nil)

	sol, err := s.Solve([]manifest.Requirement{
		req("maya", vrange.Between(version.MustParse("4.0.0"), version.MustParse("5.0.0"))),
	})
	require.NoError(t, err)

	v, ok := sol.Get("maya")
	require.True(t, ok)
	assert.True(t, v.Equal(version.MustParse("4.3.1")))
}

func TestSolveExcludesRootSentinel(t *testing.T) {
	s := New()
	s.register("maya", version.MustParse("4.3.0"), nil)

	sol, err := s.Solve([]manifest.Requirement{
		req("maya", vrange.Any()),
	})
	require.NoError(t, err)

	for _, e := range sol.Entries() {
		assert.NotEqual(t, "ROOT_REQUEST", e.Package)
	}
}

func TestSolveTransitiveDependency(t *testing.T) {
	s := New()
	s.register("maya", version.MustParse("4.3.0"), []manifest.Requirement{
		req("core", vrange.Between(version.MustParse("2.0.0"), version.MustParse("3.0.0"))),
	})
	s.register("core", version.MustParse("2.0.0"), nil)
	s.register("core", version.MustParse("2.5.0"), nil)

	sol, err := s.Solve([]manifest.Requirement{
		req("maya", vrange.Exact(version.MustParse("4.3.0"))),
	})
	require.NoError(t, err)

	core, ok := sol.Get("core")
	require.True(t, ok)
	assert.True(t, core.Equal(version.MustParse("2.5.0")))
}

func TestSolveNoSolutionOnDisjointRanges(t *testing.T) {
	s := New()
	s.register("maya", version.MustParse("4.3.0"), nil)

	_, err := s.Solve([]manifest.Requirement{
		req("maya", vrange.Between(version.MustParse("1.0.0"), version.MustParse("2.0.0"))),
		req("maya", vrange.Between(version.MustParse("3.0.0"), version.MustParse("4.0.0"))),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maya")
}

func TestSolveNoSolutionWhenNoVersionRegistered(t *testing.T) {
	s := New()
	_, err := s.Solve([]manifest.Requirement{
		req("ghost", vrange.Any()),
	})
	assert.Error(t, err)
}

func TestSolveBacktracksOnConflictingTransitiveRequirement(t *testing.T) {
	s := New()
	// "a" at its highest version (2.0.0) wants core>=3, but "b" needs core<3.
	// The solver must fall back to a's 1.0.0, which is compatible with b.
	s.register("a", version.MustParse("1.0.0"), []manifest.Requirement{
		req("core", vrange.Between(version.MustParse("1.0.0"), version.MustParse("3.0.0"))),
	})
	s.register("a", version.MustParse("2.0.0"), []manifest.Requirement{
		req("core", vrange.Between(version.MustParse("3.0.0"), version.MustParse("4.0.0"))),
	})
	s.register("b", version.MustParse("1.0.0"), []manifest.Requirement{
		req("core", vrange.Between(version.MustParse("1.0.0"), version.MustParse("2.0.0"))),
	})
	s.register("core", version.MustParse("1.5.0"), nil)

	sol, err := s.Solve([]manifest.Requirement{
		req("a", vrange.Any()),
		req("b", vrange.Any()),
	})
	require.NoError(t, err)

	a, _ := sol.Get("a")
	assert.True(t, a.Equal(version.MustParse("1.0.0")))
}

func TestSolveNoSolutionMentionsTransitiveCulprit(t *testing.T) {
	s := New()
	s.register("a", version.MustParse("1.0.0"), []manifest.Requirement{
		req("b", vrange.Exact(version.MustParse("1.0.0"))),
	})
	s.register("b", version.MustParse("2.0.0"), nil)

	_, err := s.Solve([]manifest.Requirement{
		req("a", vrange.Any()),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestSolveFromStringParsesPackageRanges(t *testing.T) {
	s := New()
	s.register("maya", version.MustParse("4.3.0"), nil)
	s.register("core", version.MustParse("2.0.0"), nil)

	sol, err := s.SolveFromString("maya-4.3.0,core-2")
	require.NoError(t, err)
	assert.Len(t, sol.Entries(), 2)
}

func TestPackagesAndVersionsIntrospection(t *testing.T) {
	s := New()
	s.register("maya", version.MustParse("4.3.0"), nil)
	s.register("maya", version.MustParse("4.2.0"), nil)
	s.register("core", version.MustParse("2.0.0"), nil)

	assert.Equal(t, []string{"core", "maya"}, s.Packages())
	versions := s.Versions("maya")
	require.Len(t, versions, 2)
	assert.True(t, versions[0].Equal(version.MustParse("4.2.0")))
	assert.True(t, versions[1].Equal(version.MustParse("4.3.0")))
}
