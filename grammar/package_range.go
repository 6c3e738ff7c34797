package grammar

import (
	"strings"

	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/vrange"
)

// PackageRange is the parsed form of "name-range" (or a bare "name",
// which matches any version).
type PackageRange struct {
	Name  string
	Range vrange.Range
}

// ParsePackageRange parses a complete package-range string.
//
//	package-range := ident "-" range | ident
func ParsePackageRange(input string) (PackageRange, error) {
	p := newParser(strings.TrimSpace(input))
	name := p.scanIdent()
	if name == "" {
		return PackageRange{}, &perr.ParseError{Context: "package-range: expected identifier", Input: p.rest()}
	}

	if p.atEOF() {
		return PackageRange{Name: name, Range: vrange.Any()}, nil
	}

	if p.expect("-") == "" {
		return PackageRange{}, &perr.ParseError{Context: "package-range: expected '-' before range", Input: p.rest()}
	}

	r, err := scanRange(p)
	if err != nil {
		return PackageRange{}, err
	}
	if !p.atEOF() {
		return PackageRange{}, &perr.ParseError{Context: "package-range: unconsumed input", Input: p.rest()}
	}

	return PackageRange{Name: name, Range: r}, nil
}
