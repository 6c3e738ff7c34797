package variant

// Range is a contiguous span of Variants ordered by (Version, Index).
// HiExclusive distinguishes a closed upper bound (the default, used
// for explicit and implicit variant ranges) from a half-open one
// (used when a variant range is derived from a caret version range,
// whose upper version bound is itself exclusive).
type Range struct {
	Lo, Hi      Variant
	HiExclusive bool
}

// ExactRange matches exactly v.
func ExactRange(v Variant) Range {
	return Range{Lo: v, Hi: v}
}

// ImplicitRange spans every variant of a single version: index 0
// through MaxVariants, inclusive.
func ImplicitRange(v Variant) Range {
	return Range{
		Lo: Variant{Version: v.Version, Index: 0},
		Hi: Variant{Version: v.Version, Index: MaxVariants},
	}
}

// Contains reports whether x falls within r.
func (r Range) Contains(x Variant) bool {
	if x.LessThan(r.Lo) {
		return false
	}
	if r.HiExclusive {
		return x.LessThan(r.Hi)
	}
	return !r.Hi.LessThan(x)
}
