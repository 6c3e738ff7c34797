package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonical(t *testing.T) {
	cases := []struct {
		input string
		want  Version
	}{
		{"1.2.3", New(1, 2, 3)},
		{"1.2.3-beta", Version{1, 2, 3, Beta}},
		{"1.2.3-alpha", Version{1, 2, 3, Alpha}},
		{"1.2.3-rc", Version{1, 2, 3, ReleaseCandidate}},
		{"1.2", Version{1, 2, 0, Release}},
		{"1", Version{1, 0, 0, Release}},
	}

	for _, c := range cases {
		got, err := Parse(c.input)
		require.NoError(t, err)
		assert.True(t, got.Equal(c.want), "Parse(%q) = %s, want %s", c.input, got, c.want)
	}
}

func TestBumpAlwaysGreater(t *testing.T) {
	inputs := []string{"0.0.0-alpha", "1.2.3", "1.2.3-beta", "1.2.3-rc", "9.9.9"}
	for _, in := range inputs {
		v := MustParse(in)
		assert.True(t, v.LessThan(v.Bump()), "%s should be less than its bump %s", v, v.Bump())
	}
}

func TestBumpRelease(t *testing.T) {
	assert.Equal(t, New(1, 2, 4), New(1, 2, 3).Bump())
}

func TestBumpPrerelease(t *testing.T) {
	assert.Equal(t, Version{1, 2, 3, Beta}, Version{1, 2, 3, Alpha}.Bump())
	assert.Equal(t, Version{1, 2, 3, ReleaseCandidate}, Version{1, 2, 3, Beta}.Bump())
	assert.Equal(t, Version{1, 2, 3, Release}, Version{1, 2, 3, ReleaseCandidate}.Bump())
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{"1.2.3", "1.2.3-alpha", "1.2.3-beta", "1.2.3-rc", "0.0.0"}
	for _, in := range inputs {
		v := MustParse(in)
		got, err := Parse(v.String())
		require.NoError(t, err)
		assert.True(t, got.Equal(v))
	}
}

func TestOrdering(t *testing.T) {
	assert.True(t, MustParse("1.2.3-alpha").LessThan(MustParse("1.2.3-beta")))
	assert.True(t, MustParse("1.2.3-beta").LessThan(MustParse("1.2.3-rc")))
	assert.True(t, MustParse("1.2.3-rc").LessThan(MustParse("1.2.3")))
	assert.True(t, MustParse("1.2.3").LessThan(MustParse("1.2.4")))
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not-a-version")
	assert.Error(t, err)

	_, err = Parse("1.2.3.4")
	assert.Error(t, err)

	_, err = Parse("1.2.3-nightly")
	assert.Error(t, err)
}
