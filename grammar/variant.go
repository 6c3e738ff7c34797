package grammar

import (
	"strconv"
	"strings"

	"github.com/pesenv/pes/perr"
	"github.com/pesenv/pes/variant"
)

// ParseVariant parses a complete "version@index" string.
//
//	variant := version "@" DIGITS
func ParseVariant(input string) (variant.Variant, error) {
	p := newParser(strings.TrimSpace(input))
	v, err := scanVariant(p)
	if err != nil {
		return variant.Variant{}, err
	}
	if !p.atEOF() {
		return variant.Variant{}, &perr.ParseError{Context: "variant: unconsumed input", Input: p.rest()}
	}
	return v, nil
}

func scanVariant(p *parser) (variant.Variant, error) {
	v, err := scanVersion(p)
	if err != nil {
		return variant.Variant{}, err
	}
	if p.expect("@") == "" {
		return variant.Variant{}, &perr.ParseError{Context: "variant: expected '@index'", Input: p.rest()}
	}
	idx, err := scanVariantIndex(p)
	if err != nil {
		return variant.Variant{}, err
	}
	return variant.Variant{Version: v, Index: idx}, nil
}

func scanVariantIndex(p *parser) (uint8, error) {
	digitsStr := p.expectFunc(digits)
	if digitsStr == "" {
		return 0, &perr.ParseError{Context: "variant: expected index digits", Input: p.rest()}
	}
	n, err := strconv.ParseUint(digitsStr, 10, 8)
	if err != nil {
		return 0, &perr.ParseIntError{Full: p.s, Part: digitsStr, Cause: err}
	}
	return uint8(n), nil
}

// VariantPackageRange is the parsed form of a variant-range string.
type VariantPackageRange struct {
	Name  string
	Range variant.Range
}

// ParseVariantRange parses a complete variant-range string.
//
//	variant-range := ident "-" ( variant-between | variant-exact | caret-variant | implicit )
func ParseVariantRange(input string) (VariantPackageRange, error) {
	p := newParser(strings.TrimSpace(input))
	name := p.scanIdent()
	if name == "" {
		return VariantPackageRange{}, &perr.ParseError{Context: "variant-range: expected identifier", Input: p.rest()}
	}
	if p.expect("-") == "" {
		return VariantPackageRange{}, &perr.ParseError{Context: "variant-range: expected '-' before range", Input: p.rest()}
	}

	r, err := scanVariantRangeBody(p)
	if err != nil {
		return VariantPackageRange{}, err
	}
	if !p.atEOF() {
		return VariantPackageRange{}, &perr.ParseError{Context: "variant-range: unconsumed input", Input: p.rest()}
	}

	return VariantPackageRange{Name: name, Range: r}, nil
}

func scanVariantRangeBody(p *parser) (variant.Range, error) {
	// caret-variant: the version range is half-open, so the resulting
	// variant range's upper bound is exclusive at index 0.
	if p.peek("^") {
		p.next()
		vc, err := scanVersionCore(p)
		if err != nil {
			return variant.Range{}, err
		}
		vr := caretRange(vc)
		lo, hi, ok := vr.Bounds()
		if !ok {
			return variant.Range{}, &perr.ParseError{Context: "variant-range: empty caret range", Input: p.rest()}
		}
		return variant.Range{
			Lo:          variant.Variant{Version: lo, Index: 0},
			Hi:          variant.Variant{Version: hi, Index: 0},
			HiExclusive: true,
		}, nil
	}

	v1, err := scanVersion(p)
	if err != nil {
		return variant.Range{}, err
	}

	idx1, hasIdx1 := -1, false
	if p.peek("@") {
		p.next()
		n, err := scanVariantIndex(p)
		if err != nil {
			return variant.Range{}, err
		}
		idx1, hasIdx1 = int(n), true
	}

	save := p.pos
	p.skipWhitespace()
	if sep := p.expect(betweenSeparators...); sep != "" {
		p.skipWhitespace()
		v2, err := scanVersion(p)
		if err != nil {
			return variant.Range{}, err
		}
		idx2 := variant.MaxVariants
		if p.peek("@") {
			p.next()
			n, err := scanVariantIndex(p)
			if err != nil {
				return variant.Range{}, err
			}
			idx2 = int(n)
		}
		loIdx := 0
		if hasIdx1 {
			loIdx = idx1
		}
		return variant.Range{
			Lo: variant.Variant{Version: v1, Index: uint8(loIdx)},
			Hi: variant.Variant{Version: v2, Index: uint8(idx2)},
		}, nil
	}
	p.pos = save

	if hasIdx1 {
		return variant.ExactRange(variant.Variant{Version: v1, Index: uint8(idx1)}), nil
	}

	return variant.ImplicitRange(variant.Variant{Version: v1, Index: 0}), nil
}
