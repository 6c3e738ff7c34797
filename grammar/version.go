package grammar

import (
	"strconv"
	"strings"

	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/version"
)

// versionCore is the numeric (major[.minor[.patch]]) prefix of a
// version, prior to any "-prerelease" suffix. count records how many
// of the three components were actually present in the text, which
// the caret-expansion rules in scanRange need to distinguish "^1" from
// "^1.0.0".
type versionCore struct {
	major, minor, patch uint32
	count               int
}

func scanVersionCore(p *parser) (versionCore, error) {
	var vc versionCore

	first := p.expectFunc(digits)
	if first == "" {
		return vc, &perr.ParseError{Context: "version", Input: p.rest()}
	}
	n, err := strconv.ParseUint(first, 10, 32)
	if err != nil {
		return vc, &perr.ParseIntError{Full: p.s, Part: first, Cause: err}
	}
	vc.major = uint32(n)
	vc.count = 1

	if p.peek(".") {
		p.next()
		second := p.expectFunc(digits)
		if second == "" {
			return vc, &perr.ParseError{Context: "version", Input: p.rest()}
		}
		n, err := strconv.ParseUint(second, 10, 32)
		if err != nil {
			return vc, &perr.ParseIntError{Full: p.s, Part: second, Cause: err}
		}
		vc.minor = uint32(n)
		vc.count = 2

		if p.peek(".") {
			p.next()
			third := p.expectFunc(digits)
			if third == "" {
				return vc, &perr.ParseError{Context: "version", Input: p.rest()}
			}
			n, err := strconv.ParseUint(third, 10, 32)
			if err != nil {
				return vc, &perr.ParseIntError{Full: p.s, Part: third, Cause: err}
			}
			vc.patch = uint32(n)
			vc.count = 3
		}
	}

	return vc, nil
}

// prerelease keywords recognized after "-" in a version string.
var prereleaseKeywords = []string{
	"releaseCandidate", "release_candidate", "rc",
	"alpha", "beta",
}

func scanPrerelease(p *parser) (version.ReleaseType, error) {
	word := p.expectFunc(func(ch rune, i int) bool { return alphaword(ch, i) || (i > 0 && ch == '_') })
	switch strings.ToLower(word) {
	case "rc", "releasecandidate", "release_candidate":
		return version.ReleaseCandidate, nil
	case "alpha":
		return version.Alpha, nil
	case "beta":
		return version.Beta, nil
	default:
		return 0, &perr.UnknownReleaseTypeError{Input: word}
	}
}

// scanVersion parses a version := DIGITS ("." DIGITS ("." DIGITS)?)? ("-" prerelease)?
func scanVersion(p *parser) (version.Version, error) {
	vc, err := scanVersionCore(p)
	if err != nil {
		return version.Version{}, err
	}

	rt := version.Release
	if p.peek("-") {
		p.next()
		rt, err = scanPrerelease(p)
		if err != nil {
			return version.Version{}, err
		}
	}

	return version.Version{Major: vc.major, Minor: vc.minor, Patch: vc.patch, ReleaseType: rt}, nil
}

// ParseVersion parses input as a complete version, requiring the
// entire (trimmed) input to be consumed.
func ParseVersion(input string) (version.Version, error) {
	p := newParser(strings.TrimSpace(input))
	v, err := scanVersion(p)
	if err != nil {
		return version.Version{}, err
	}
	if !p.atEOF() {
		return version.Version{}, &perr.ParseError{Context: "version: unconsumed input", Input: p.rest()}
	}
	return v, nil
}
