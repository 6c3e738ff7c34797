// Package vrange implements PES's Range type: a finite union of
// disjoint half-open [lo, hi) intervals over version.Version.
package vrange

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pesenv/pes/version"
)

// interval is a half-open [lo, hi) span. hiInf marks an interval with
// no upper bound; only Any() and the trailing interval of Complement()
// produce one, since Exact, Between and caret expansion are always
// bounded.
type interval struct {
	lo    version.Version
	hi    version.Version
	hiInf bool
}

func (iv interval) contains(v version.Version) bool {
	if v.LessThan(iv.lo) {
		return false
	}
	if iv.hiInf {
		return true
	}
	return v.LessThan(iv.hi)
}

// Range is an immutable set of versions expressible as a union of
// disjoint half-open intervals.
type Range struct {
	intervals []interval
}

// Any matches every version.
func Any() Range {
	return Range{intervals: []interval{{lo: version.Version{}, hiInf: true}}}
}

// Exact matches exactly v: the half-open interval [v, bump(v)).
func Exact(v version.Version) Range {
	return Range{intervals: []interval{{lo: v, hi: v.Bump()}}}
}

// Between matches the half-open interval [lo, hi).
func Between(lo, hi version.Version) Range {
	if !lo.LessThan(hi) {
		return Range{}
	}
	return Range{intervals: []interval{{lo: lo, hi: hi}}}
}

// Contains reports whether v falls within any of r's intervals.
func (r Range) Contains(v version.Version) bool {
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// Bounds returns the lower and upper bound of r's first interval,
// assuming r is a single bounded (non-infinite) interval, as produced
// by Exact, Between and caret expansion. ok is false for Any() or an
// empty Range.
func (r Range) Bounds() (lo, hi version.Version, ok bool) {
	if len(r.intervals) == 0 || r.intervals[0].hiInf {
		return version.Version{}, version.Version{}, false
	}
	return r.intervals[0].lo, r.intervals[0].hi, true
}

// IsEmpty reports whether r matches no version at all.
func (r Range) IsEmpty() bool {
	return len(r.intervals) == 0
}

// Intersect returns the set of versions matched by both r and o.
func (r Range) Intersect(o Range) Range {
	var out []interval
	for _, a := range r.intervals {
		for _, b := range o.intervals {
			if iv, ok := intersectInterval(a, b); ok {
				out = append(out, iv)
			}
		}
	}
	return normalize(out)
}

func intersectInterval(a, b interval) (interval, bool) {
	lo := a.lo
	if b.lo.GreaterThan(lo) {
		lo = b.lo
	}

	hiInf := a.hiInf && b.hiInf
	var hi version.Version
	switch {
	case a.hiInf:
		hi, hiInf = b.hi, b.hiInf
	case b.hiInf:
		hi, hiInf = a.hi, a.hiInf
	default:
		hi = a.hi
		if b.hi.LessThan(hi) {
			hi = b.hi
		}
	}

	if !hiInf && !lo.LessThan(hi) {
		return interval{}, false
	}
	return interval{lo: lo, hi: hi, hiInf: hiInf}, true
}

// Union returns the set of versions matched by either r or o.
func (r Range) Union(o Range) Range {
	all := append(append([]interval{}, r.intervals...), o.intervals...)
	return normalize(all)
}

// Complement returns the set of versions not matched by r: Any() minus
// r's intervals. r's intervals are already sorted and disjoint (every
// constructor routes through normalize or builds a single interval
// directly), so the complement is just the gaps between them, plus
// whatever lies before the first and after the last.
func (r Range) Complement() Range {
	ivs := append([]interval{}, r.intervals...)
	sort.Slice(ivs, func(i, j int) bool {
		return ivs[i].lo.LessThan(ivs[j].lo)
	})

	var out []interval
	cursor := version.Version{}
	for _, iv := range ivs {
		if cursor.LessThan(iv.lo) {
			out = append(out, interval{lo: cursor, hi: iv.lo})
		}
		if iv.hiInf {
			return Range{intervals: out}
		}
		if iv.hi.GreaterThan(cursor) {
			cursor = iv.hi
		}
	}
	out = append(out, interval{lo: cursor, hiInf: true})
	return Range{intervals: out}
}

// normalize sorts intervals by lower bound and merges any that touch
// or overlap, keeping the resulting set disjoint.
func normalize(ivs []interval) Range {
	if len(ivs) == 0 {
		return Range{}
	}
	sort.Slice(ivs, func(i, j int) bool {
		return ivs[i].lo.LessThan(ivs[j].lo)
	})

	merged := []interval{ivs[0]}
	for _, next := range ivs[1:] {
		last := &merged[len(merged)-1]
		if last.hiInf || next.lo.LessThan(last.hi) || next.lo.Equal(last.hi) {
			if next.hiInf {
				last.hiInf = true
			} else if !last.hiInf && next.hi.GreaterThan(last.hi) {
				last.hi = next.hi
			}
			continue
		}
		merged = append(merged, next)
	}
	return Range{intervals: merged}
}

// String renders r in a debug-friendly union-of-intervals form; it is
// not accepted by the grammar parser (ranges only ever round-trip
// through their originating textual form, tracked separately).
func (r Range) String() string {
	if r.IsEmpty() {
		return "<empty>"
	}
	parts := make([]string, len(r.intervals))
	for i, iv := range r.intervals {
		if iv.hiInf {
			parts[i] = fmt.Sprintf("[%s,+inf)", iv.lo)
		} else {
			parts[i] = fmt.Sprintf("[%s,%s)", iv.lo, iv.hi)
		}
	}
	return strings.Join(parts, " U ")
}
