package osc

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	wildcardChars    = "*?[]{}"
	invalidPartChars = " #,/"
)

// IsWildcard reports whether name contains any wildcard characters.
func IsWildcard(name string) bool {
	return strings.ContainsAny(name, wildcardChars)
}

// IsValidAddressPart reports whether part can be used as the name of an
// AddressNode.
func IsValidAddressPart(part string) bool {
	return !strings.ContainsAny(part, invalidPartChars)
}

// checkAddressPart returns an error wrapping ErrInvalidPattern if part can't
// name an AddressNode: it holds a reserved character or a malformed wildcard.
func checkAddressPart(part string) error {
	if !IsValidAddressPart(part) {
		return errors.Wrapf(ErrInvalidPattern, "invalid address part %q", part)
	}
	if IsWildcard(part) {
		if _, err := compileWildcard(part); err != nil {
			return err
		}
	}
	return nil
}

// SplitAddress splits an OSC address into its non-empty parts:
// "/foo/bar" becomes ["foo", "bar"].
func SplitAddress(addr string) []string {
	parts := strings.Split(addr, "/")
	path := parts[:0]
	for _, p := range parts {
		if p != "" {
			path = append(path, p)
		}
	}
	return path
}

// MatchesWildcard reports whether value matches the single address part
// pattern. It supports:
//
//	*        any sequence of zero or more characters
//	?        any single character
//	[abc]    any of the listed characters
//	[a-z]    any character in the range
//	[!...]   any character not in the list or range
//	{a,b,c}  any of the literal alternatives
//
// Unterminated groups return an error wrapping ErrInvalidPattern.
func MatchesWildcard(value, pattern string) (bool, error) {
	if value == pattern && !IsWildcard(pattern) {
		return true, nil
	}

	toks, err := compileWildcard(pattern)
	if err != nil {
		return false, err
	}
	return matchTokens(value, toks), nil
}

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokAny               // ?
	tokStar              // *
	tokClass             // [...]
	tokAlternation       // {...}
)

type byteRange struct {
	lo, hi byte
}

type wildcardToken struct {
	kind   tokenKind
	lit    byte
	negate bool
	ranges []byteRange
	alts   []string
}

func (t *wildcardToken) inClass(c byte) bool {
	for _, r := range t.ranges {
		if r.lo <= c && c <= r.hi {
			return !t.negate
		}
	}
	return t.negate
}

func compileWildcard(pattern string) ([]wildcardToken, error) {
	toks := make([]wildcardToken, 0, len(pattern))
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			// Consecutive stars match the same as one
			if n := len(toks); n > 0 && toks[n-1].kind == tokStar {
				continue
			}
			toks = append(toks, wildcardToken{kind: tokStar})

		case '?':
			toks = append(toks, wildcardToken{kind: tokAny})

		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end == -1 {
				return nil, errors.Wrapf(ErrInvalidPattern, "unterminated '[' in %q", pattern)
			}
			tok, err := compileClass(pattern[i+1 : i+1+end])
			if err != nil {
				return nil, errors.WithMessagef(err, "in %q", pattern)
			}
			toks = append(toks, tok)
			i += end + 1

		case '{':
			end := strings.IndexByte(pattern[i+1:], '}')
			if end == -1 {
				return nil, errors.Wrapf(ErrInvalidPattern, "unterminated '{' in %q", pattern)
			}
			toks = append(toks, wildcardToken{
				kind: tokAlternation,
				alts: strings.Split(pattern[i+1:i+1+end], ","),
			})
			i += end + 1

		case ']', '}':
			return nil, errors.Wrapf(ErrInvalidPattern, "unbalanced %q in %q", c, pattern)

		default:
			toks = append(toks, wildcardToken{kind: tokLiteral, lit: c})
		}
	}
	return toks, nil
}

// compileClass compiles the body of a [...] group. A leading '!' negates
// the class; a '-' at either end is literal.
func compileClass(body string) (wildcardToken, error) {
	tok := wildcardToken{kind: tokClass}
	if len(body) > 0 && body[0] == '!' {
		tok.negate = true
		body = body[1:]
	}
	if body == "" {
		return tok, errors.Wrap(ErrInvalidPattern, "empty character class")
	}

	for i := 0; i < len(body); i++ {
		lo := body[i]
		if i+2 < len(body) && body[i+1] == '-' {
			hi := body[i+2]
			if hi < lo {
				return tok, errors.Wrapf(ErrInvalidPattern, "bad character range %c-%c", lo, hi)
			}
			tok.ranges = append(tok.ranges, byteRange{lo, hi})
			i += 2
			continue
		}
		tok.ranges = append(tok.ranges, byteRange{lo, lo})
	}
	return tok, nil
}

func matchTokens(value string, toks []wildcardToken) bool {
	for len(toks) > 0 {
		tok := &toks[0]
		switch tok.kind {
		case tokStar:
			rest := toks[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(value); i++ {
				if matchTokens(value[i:], rest) {
					return true
				}
			}
			return false

		case tokAlternation:
			for _, alt := range tok.alts {
				if strings.HasPrefix(value, alt) && matchTokens(value[len(alt):], toks[1:]) {
					return true
				}
			}
			return false

		case tokAny:
			if value == "" {
				return false
			}

		case tokClass:
			if value == "" || !tok.inClass(value[0]) {
				return false
			}

		case tokLiteral:
			if value == "" || value[0] != tok.lit {
				return false
			}
		}
		value = value[1:]
		toks = toks[1:]
	}
	return value == ""
}
