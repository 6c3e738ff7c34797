package grammar

import (
	"strings"

	"github.com/pesenv/pes/pathexpr"
	"github.com/pesenv/pes/perr"
)

// Lookup resolves a {var} placeholder to its value. The boolean
// return mirrors the "comma ok" map idiom: false means the variable
// is unknown and parsing must fail with InvalidKeyError.
type Lookup func(name string) (string, bool)

// ParsePathExpression parses a full path-expr, requiring the entire
// (trimmed) input to be consumed.
//
//	path-expr := "append(" paths ")" | "prepend(" paths ")" | paths
//	paths     := path (":" path)*
//	path      := segment+
//	segment   := absolute-segment | relative-segment | "{" ident "}"
func ParsePathExpression(input string, lookup Lookup) (pathexpr.PathExpression, error) {
	p := newParser(strings.TrimSpace(input))
	pe, err := scanPathExpression(p, lookup)
	if err != nil {
		return pathexpr.PathExpression{}, err
	}
	if !p.atEOF() {
		return pathexpr.PathExpression{}, &perr.ParseError{Context: "path-expr: unconsumed input", Input: p.rest()}
	}
	return pe, nil
}

func scanPathExpression(p *parser, lookup Lookup) (pathexpr.PathExpression, error) {
	p.skipWhitespace()

	switch {
	case p.peek("append("):
		p.expect("append(")
		paths, err := scanPaths(p, lookup)
		if err != nil {
			return pathexpr.PathExpression{}, err
		}
		p.skipWhitespace()
		if p.expect(")") == "" {
			return pathexpr.PathExpression{}, &perr.ParseError{Context: "append(...): missing closing paren", Input: p.rest()}
		}
		return pathexpr.PathExpression{Mode: pathexpr.Append, Paths: paths}, nil

	case p.peek("prepend("):
		p.expect("prepend(")
		paths, err := scanPaths(p, lookup)
		if err != nil {
			return pathexpr.PathExpression{}, err
		}
		p.skipWhitespace()
		if p.expect(")") == "" {
			return pathexpr.PathExpression{}, &perr.ParseError{Context: "prepend(...): missing closing paren", Input: p.rest()}
		}
		return pathexpr.PathExpression{Mode: pathexpr.Prepend, Paths: paths}, nil

	default:
		paths, err := scanPaths(p, lookup)
		if err != nil {
			return pathexpr.PathExpression{}, err
		}
		return pathexpr.PathExpression{Mode: pathexpr.Exact, Paths: paths}, nil
	}
}

func scanPaths(p *parser, lookup Lookup) ([]string, error) {
	var out []string
	for {
		path, err := scanPath(p, lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, path)

		if p.peek(":") {
			p.next()
			continue
		}
		break
	}
	return out, nil
}

// isPathTerminator reports the characters that end a path segment run:
// the path separator, the closing paren of append(...)/prepend(...),
// and whitespace (surrounding whitespace is trimmed by the caller).
func isPathTerminator(ch rune) bool {
	return ch == ':' || ch == ')' || ch == ' ' || ch == '\t'
}

func scanPath(p *parser, lookup Lookup) (string, error) {
	sb := &strings.Builder{}

	for {
		if p.atEOF() || isPathTerminator(p.peekRune()) {
			break
		}

		if p.peek("{") {
			p.next() // consume '{'
			name := p.expectFunc(identRune)
			if p.expect("}") == "" {
				return "", &perr.ParseError{Context: "path: unterminated {var}", Input: p.rest()}
			}

			value, ok := lookup(name)
			if !ok {
				return "", &perr.InvalidKeyError{Key: name}
			}
			sb.WriteString(value)

			// A {var} immediately followed by '/' consumes the slash,
			// so "{root}/bin" doesn't produce a spurious empty segment
			// join: {root} expands in place and the '/' is emitted
			// verbatim right after it, same as any other literal rune.
			if p.peek("/") {
				p.next()
				sb.WriteByte('/')
			}
			continue
		}

		sb.WriteRune(p.next())
	}

	if sb.Len() == 0 {
		return "", &perr.ParseError{Context: "path: empty segment", Input: p.rest()}
	}

	return sb.String(), nil
}
