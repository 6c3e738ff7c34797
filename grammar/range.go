package grammar

import (
	"strings"

	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/version"
	"github.com/pesenv/pes/vrange"
)

// betweenSeparators are the two spellings of the "between" separator;
// "+<" and ".." are equivalent.
var betweenSeparators = []string{"+<", ".."}

// ParseRange parses a complete range string, requiring the entire
// (trimmed) input to be consumed.
//
//	range   := caret | between | exact
//	caret   := "^" version-core
//	between := version " "* ("+<" | "..") " "* version
//	exact   := version
func ParseRange(input string) (vrange.Range, error) {
	p := newParser(strings.TrimSpace(input))
	r, err := scanRange(p)
	if err != nil {
		return vrange.Range{}, err
	}
	if !p.atEOF() {
		return vrange.Range{}, &perr.ParseError{Context: "range: unconsumed input", Input: p.rest()}
	}
	return r, nil
}

func scanRange(p *parser) (vrange.Range, error) {
	if p.peek("^") {
		p.next()
		vc, err := scanVersionCore(p)
		if err != nil {
			return vrange.Range{}, err
		}
		return caretRange(vc), nil
	}

	lo, err := scanVersion(p)
	if err != nil {
		return vrange.Range{}, err
	}

	save := p.pos
	p.skipWhitespace()
	if sep := p.expect(betweenSeparators...); sep != "" {
		p.skipWhitespace()
		hi, err := scanVersion(p)
		if err != nil {
			return vrange.Range{}, err
		}
		return vrange.Between(lo, hi), nil
	}
	p.pos = save

	return vrange.Exact(lo), nil
}

// caretRange expands a caret version-core per the authoritative table:
//
//	^M              [M.0.0, (M+1).0.0)
//	^M.m, M>=1      [M.m.0, (M+1).0.0)
//	^0.m            [0.m.0, 0.(m+1).0)
//	^M.m.p, M>=1    [M.m.p, (M+1).0.0)
//	^0.m.p, m>=1    [0.m.p, 0.(m+1).0)
//	^0.0.p          [0.0.p, 0.0.(p+1))
func caretRange(vc versionCore) vrange.Range {
	lo := version.Version{Major: vc.major, Minor: vc.minor, Patch: vc.patch, ReleaseType: version.Release}

	var hi version.Version
	switch vc.count {
	case 1:
		hi = version.New(vc.major+1, 0, 0)
	case 2:
		if vc.major >= 1 {
			hi = version.New(vc.major+1, 0, 0)
		} else {
			hi = version.New(0, vc.minor+1, 0)
		}
	default: // 3
		switch {
		case vc.major >= 1:
			hi = version.New(vc.major+1, 0, 0)
		case vc.minor >= 1:
			hi = version.New(0, vc.minor+1, 0)
		default:
			hi = version.New(0, 0, vc.patch+1)
		}
	}

	return vrange.Between(lo, hi)
}
