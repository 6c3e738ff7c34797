// Package version implements PES's version type: a total order over
// (major, minor, patch, release_type) with release_type ranging over
// Alpha < Beta < ReleaseCandidate < Release.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pesenv/pes/perr"
)

// ReleaseType orders the maturity of a release. The zero value is
// Alpha so that an unspecified Version sorts correctly against any
// parsed version sharing the same numeric parts.
type ReleaseType int

const (
	Alpha ReleaseType = iota
	Beta
	ReleaseCandidate
	Release
)

func (rt ReleaseType) String() string {
	switch rt {
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case ReleaseCandidate:
		return "rc"
	case Release:
		return ""
	default:
		return fmt.Sprintf("ReleaseType(%d)", int(rt))
	}
}

// parseReleaseType accepts the spelling variants named in the grammar:
// "rc" | "releaseCandidate" | "release_candidate" | "alpha" | "beta".
func parseReleaseType(s string) (ReleaseType, error) {
	switch strings.ToLower(s) {
	case "rc", "releasecandidate", "release_candidate":
		return ReleaseCandidate, nil
	case "alpha":
		return Alpha, nil
	case "beta":
		return Beta, nil
	default:
		return 0, &perr.UnknownReleaseTypeError{Input: s}
	}
}

// Version is a PES package version: major.minor.patch with an
// optional pre-release kind. The zero value, Version{}, is the
// smallest possible version (0.0.0-alpha).
type Version struct {
	Major, Minor, Patch uint32
	ReleaseType         ReleaseType
}

// New constructs a released (non-prerelease) version.
func New(major, minor, patch uint32) Version {
	return Version{Major: major, Minor: minor, Patch: patch, ReleaseType: Release}
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b, ordering first by (major, minor, patch) and then by
// release_type.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpUint(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpUint(a.Minor, b.Minor)
	case a.Patch != b.Patch:
		return cmpUint(a.Patch, b.Patch)
	case a.ReleaseType != b.ReleaseType:
		return cmpUint(uint32(a.ReleaseType), uint32(b.ReleaseType))
	default:
		return 0
	}
}

func cmpUint(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Version) LessThan(o Version) bool    { return Compare(v, o) < 0 }
func (v Version) GreaterThan(o Version) bool { return Compare(v, o) > 0 }
func (v Version) Equal(o Version) bool       { return Compare(v, o) == 0 }

// Bump returns the successor of v: if v is a Release, the patch
// component is incremented; otherwise the release type advances one
// step toward Release, keeping the numeric parts fixed.
func (v Version) Bump() Version {
	if v.ReleaseType == Release {
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1, ReleaseType: Release}
	}
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch, ReleaseType: v.ReleaseType + 1}
}

// String returns the canonical textual form: "M.m.p" for a Release,
// "M.m.p-<kind>" otherwise.
func (v Version) String() string {
	if v.ReleaseType == Release {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.ReleaseType)
}

// Parse parses a version of the form DIGITS("."DIGITS("."DIGITS)?)?("-"prerelease)?.
// Missing minor/patch components default to 0.
func Parse(input string) (Version, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Version{}, &perr.InvalidVersionError{Input: input}
	}

	core := s
	releaseType := Release
	if i := strings.IndexByte(s, '-'); i >= 0 {
		core = s[:i]
		rt, err := parseReleaseType(s[i+1:])
		if err != nil {
			return Version{}, err
		}
		releaseType = rt
	}

	parts := strings.Split(core, ".")
	if len(parts) > 3 || len(parts) == 0 {
		return Version{}, &perr.InvalidVersionError{Input: input}
	}

	nums := [3]uint32{}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Version{}, &perr.ParseIntError{Full: input, Part: part, Cause: err}
		}
		nums[i] = uint32(n)
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], ReleaseType: releaseType}, nil
}

// MustParse parses input and panics if it is invalid. Intended for
// constructing literals in tests and constant-like call sites.
func MustParse(input string) Version {
	v, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return v
}

// MarshalYAML/UnmarshalYAML allow Version to appear directly as a
// manifest's `version:` field.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

func (v *Version) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
