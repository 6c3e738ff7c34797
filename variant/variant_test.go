package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pesenv/pes/version"
)

func v(s string) version.Version { return version.MustParse(s) }

func TestCompareOrdersByVersionThenIndex(t *testing.T) {
	a := Variant{Version: v("1.0.0"), Index: 0}
	b := Variant{Version: v("1.0.0"), Index: 1}
	c := Variant{Version: v("2.0.0"), Index: 0}

	assert.True(t, a.LessThan(b))
	assert.True(t, b.LessThan(c))
	assert.False(t, c.LessThan(a))
	assert.True(t, a.Equal(Variant{Version: v("1.0.0"), Index: 0}))
}

func TestVariantString(t *testing.T) {
	assert.Equal(t, "1.0.0@3", Variant{Version: v("1.0.0"), Index: 3}.String())
}

func TestExactRangeMatchesOnlyThatVariant(t *testing.T) {
	target := Variant{Version: v("1.0.0"), Index: 2}
	r := ExactRange(target)

	assert.True(t, r.Contains(target))
	assert.False(t, r.Contains(Variant{Version: v("1.0.0"), Index: 3}))
	assert.False(t, r.Contains(Variant{Version: v("1.0.1"), Index: 2}))
}

func TestImplicitRangeSpansEveryIndexOfThatVersion(t *testing.T) {
	r := ImplicitRange(Variant{Version: v("1.0.0"), Index: 0})

	assert.True(t, r.Contains(Variant{Version: v("1.0.0"), Index: 0}))
	assert.True(t, r.Contains(Variant{Version: v("1.0.0"), Index: MaxVariants}))
	assert.False(t, r.Contains(Variant{Version: v("1.0.1"), Index: 0}))
}

func TestHiExclusiveRangeExcludesUpperBound(t *testing.T) {
	r := Range{
		Lo:          Variant{Version: v("1.0.0"), Index: 0},
		Hi:          Variant{Version: v("2.0.0"), Index: 0},
		HiExclusive: true,
	}

	assert.True(t, r.Contains(Variant{Version: v("1.9.9"), Index: MaxVariants}))
	assert.False(t, r.Contains(Variant{Version: v("2.0.0"), Index: 0}))
}
