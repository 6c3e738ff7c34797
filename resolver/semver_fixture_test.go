package resolver

import (
	"fmt"
	"testing"

	blangsemver "github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesenv/pes/manifest"
	"github.com/pesenv/pes/version"
	"github.com/pesenv/pes/vrange"
)

// semverFixture builds a run of release-only candidate versions by
// bumping a blang/semver/v4 value, giving the solver a version ladder
// to pick from that is generated independently of PES's own Version
// type. This cross-checks that our ordering ("pick the highest
// satisfying candidate") agrees with an established semver
// implementation's notion of "higher" for plain release versions.
func semverFixture(t *testing.T, base string, steps int) []version.Version {
	t.Helper()
	sv, err := blangsemver.Parse(base)
	require.NoError(t, err)

	out := make([]version.Version, 0, steps)
	for i := 0; i < steps; i++ {
		out = append(out, version.New(uint32(sv.Major), uint32(sv.Minor), uint32(sv.Patch)))
		sv.Patch++
	}
	return out
}

func TestSolverAgreesWithSemverOrderingOnReleaseLadder(t *testing.T) {
	ladder := semverFixture(t, "4.2.0", 5)

	s := New()
	for _, v := range ladder {
		s.register("maya", v, nil)
	}

	sol, err := s.Solve([]manifest.Requirement{
		{Package: "maya", Range: vrange.Any()},
	})
	require.NoError(t, err)

	got, ok := sol.Get("maya")
	require.True(t, ok)
	assert.True(t, got.Equal(ladder[len(ladder)-1]), fmt.Sprintf("expected highest of ladder %v, got %s", ladder, got))
}
