package intercept

import (
	"errors"
	"regexp"
	"strings"
)

var ErrEmptyPattern = errors.New("empty intercept pattern")

// Pattern is a URL glob evaluated against the full request URL.
// `**` matches any run of characters, `*` any run without `/`, and `?`
// a single non-`/` character. Everything else matches literally.
type Pattern struct {
	raw    string
	re     *regexp.Regexp
	tokens []patToken
}

type patTokenKind int

const (
	tokLiteral patTokenKind = iota // single literal character
	tokOne                         // `?`, one non-slash character
	tokRun                         // `*`, any run without `/`
	tokDeep                        // `**`, any run of characters
)

type patToken struct {
	kind patTokenKind
	ch   rune
}

func CompilePattern(raw string) (*Pattern, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyPattern
	}
	var expr strings.Builder
	var tokens []patToken
	expr.WriteString("^")
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				expr.WriteString(".*")
				tokens = append(tokens, patToken{kind: tokDeep})
				i++
				continue
			}
			expr.WriteString("[^/]*")
			tokens = append(tokens, patToken{kind: tokRun})
		case '?':
			expr.WriteString("[^/]")
			tokens = append(tokens, patToken{kind: tokOne})
		default:
			expr.WriteString(regexp.QuoteMeta(string(runes[i])))
			tokens = append(tokens, patToken{kind: tokLiteral, ch: runes[i]})
		}
	}
	expr.WriteString("$")
	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, err
	}
	return &Pattern{raw: raw, re: re, tokens: tokens}, nil
}

func (p *Pattern) String() string { return p.raw }

func (p *Pattern) Matches(url string) bool {
	return p != nil && p.re.MatchString(url)
}

// Overlaps reports whether the two patterns could both claim some URL.
// Globs describe regular languages, so the check walks both token
// streams at once and asks whether a common string exists. Registration
// rejects overlapping rules up front instead of letting registration
// order decide the match.
func (p *Pattern) Overlaps(other *Pattern) bool {
	if p == nil || other == nil {
		return false
	}
	memo := make(map[[2]int]bool, len(p.tokens)*len(other.tokens))
	return intersects(p.tokens, other.tokens, 0, 0, memo)
}

// intersects answers whether some string is generated by both a[i:] and
// b[j:]. Every recursive branch advances i or j, so the walk terminates;
// memoization keeps the star-against-star paths linear.
func intersects(a, b []patToken, i, j int, memo map[[2]int]bool) bool {
	key := [2]int{i, j}
	if v, ok := memo[key]; ok {
		return v
	}
	var res bool
	switch {
	case i == len(a) && j == len(b):
		res = true
	case i == len(a):
		res = matchesEmpty(b[j]) && intersects(a, b, i, j+1, memo)
	case j == len(b):
		res = matchesEmpty(a[i]) && intersects(a, b, i+1, j, memo)
	case a[i].kind == tokDeep:
		// `**` either matches empty here or absorbs whatever b's head emits.
		res = intersects(a, b, i+1, j, memo) || intersects(a, b, i, j+1, memo)
	case b[j].kind == tokDeep:
		res = intersects(a, b, i, j+1, memo) || intersects(a, b, i+1, j, memo)
	case a[i].kind == tokRun:
		// `*` matches empty, or eats b's head as long as it can avoid `/`.
		res = intersects(a, b, i+1, j, memo) ||
			(canEmitNonSlash(b[j]) && intersects(a, b, i, j+1, memo))
	case b[j].kind == tokRun:
		res = intersects(a, b, i, j+1, memo) ||
			(canEmitNonSlash(a[i]) && intersects(a, b, i+1, j, memo))
	case a[i].kind == tokOne:
		res = canEmitNonSlash(b[j]) && intersects(a, b, i+1, j+1, memo)
	case b[j].kind == tokOne:
		res = canEmitNonSlash(a[i]) && intersects(a, b, i+1, j+1, memo)
	default:
		res = a[i].ch == b[j].ch && intersects(a, b, i+1, j+1, memo)
	}
	memo[key] = res
	return res
}

func matchesEmpty(t patToken) bool {
	return t.kind == tokRun || t.kind == tokDeep
}

func canEmitNonSlash(t patToken) bool {
	if t.kind == tokLiteral {
		return t.ch != '/'
	}
	return true
}
