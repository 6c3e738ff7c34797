// Package variant implements PES's Variant type: a Version paired
// with a small build-index, used to model ABI/build variants of the
// same version.
package variant

import (
	"fmt"

	"github.com/pesenv/pes/version"
)

// MaxVariants is the sentinel upper index used when constructing
// ranges that span all variants of a Version; such ranges include it.
const MaxVariants = 24

// Variant pairs a Version with an index in [0, MaxVariants], ordered
// lexicographically on (Version, Index).
type Variant struct {
	Version version.Version
	Index   uint8
}

// Compare orders two Variants lexicographically.
func Compare(a, b Variant) int {
	if c := version.Compare(a.Version, b.Version); c != 0 {
		return c
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}

func (v Variant) LessThan(o Variant) bool { return Compare(v, o) < 0 }
func (v Variant) Equal(o Variant) bool    { return Compare(v, o) == 0 }

func (v Variant) String() string {
	return fmt.Sprintf("%s@%d", v.Version, v.Index)
}
