// Package catalog consumes the two external price-catalog sources (BCJ
// and WKI) and implements the NORMA-style search syntax used to filter
// their rows: quoted phrases, bare words, * and ? wildcards, and a
// leading - to exclude.
package catalog

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TokenType classifies one query token.
type TokenType int

// Token types.
const (
	TokenWord TokenType = iota
	TokenPhrase
	TokenWildcard
)

// Token is one parsed unit of a search query.
type Token struct {
	Type    TokenType
	Value   string
	Negated bool
}

var tokenRe = regexp.MustCompile(`"([^"]+)"|(\S+)`)

// ParseQuery splits a query into tokens. Quoted runs become phrase
// tokens; a leading - on an unquoted token negates it; tokens
// containing * or ? become wildcard tokens.
func ParseQuery(q string) []Token {
	var tokens []Token
	for _, m := range tokenRe.FindAllStringSubmatch(q, -1) {
		phrase := m[1]
		raw := phrase
		if raw == "" {
			raw = m[2]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		neg := strings.HasPrefix(raw, "-")
		core := raw
		if neg {
			core = raw[1:]
		}
		switch {
		case phrase != "":
			tokens = append(tokens, Token{Type: TokenPhrase, Value: phrase, Negated: neg})
		case strings.ContainsAny(core, "*?"):
			tokens = append(tokens, Token{Type: TokenWildcard, Value: core, Negated: neg})
		case core != "":
			tokens = append(tokens, Token{Type: TokenWord, Value: core, Negated: neg})
		}
	}
	return tokens
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// fold lowercases and strips diacritics, so "żelbet" matches "zelbet".
func fold(s string) string {
	out, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// wildcardRegexp compiles a wildcard token: * matches any run, ? any
// single character; everything else is literal.
func wildcardRegexp(wc string) (*regexp.Regexp, error) {
	var b strings.Builder
	for _, r := range wc {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return regexp.Compile("(?i)" + b.String())
}

// Matches reports whether a row satisfies all tokens: every positive
// token must match the folded symbol+description haystack, and no
// negated token may match.
func Matches(row Row, tokens []Token) bool {
	hay := fold(row.Symbol + " " + row.Description)

	for _, t := range tokens {
		val := fold(t.Value)
		var hit bool
		switch t.Type {
		case TokenWildcard:
			re, err := wildcardRegexp(val)
			if err != nil {
				continue
			}
			hit = re.MatchString(hay)
		default:
			hit = strings.Contains(hay, val)
		}

		if t.Negated {
			if hit {
				return false
			}
		} else if !hit {
			return false
		}
	}
	return true
}

// Rank scores a row against the raw query for result ordering: symbol
// prefix beats symbol substring beats description substring.
func Rank(row Row, query string) int {
	s := strings.ToLower(row.Symbol)
	d := strings.ToLower(row.Description)
	q := strings.ToLower(strings.TrimSpace(query))
	switch {
	case q == "":
		return 0
	case strings.HasPrefix(s, q):
		return 3
	case strings.Contains(s, q):
		return 2
	case strings.Contains(d, q):
		return 1
	default:
		return 0
	}
}

// Filter applies the query tokens to rows and orders survivors by rank
// (stable, descending).
func Filter(rows []Row, query string) []Row {
	tokens := ParseQuery(query)
	var out []Row
	for _, r := range rows {
		if Matches(r, tokens) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Rank(out[i], query) > Rank(out[j], query)
	})
	return out
}

// BackendQuery builds the search string sent to the remote service:
// positive non-wildcard token values joined with "+", falling back to
// the trimmed raw query. Wildcards and negations are applied
// client-side only.
func BackendQuery(raw string) string {
	var terms []string
	for _, t := range ParseQuery(raw) {
		if t.Negated || t.Type == TokenWildcard {
			continue
		}
		terms = append(terms, t.Value)
	}
	if len(terms) > 0 {
		return strings.Join(terms, "+")
	}
	return strings.TrimSpace(raw)
}
