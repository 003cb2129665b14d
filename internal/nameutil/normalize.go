package nameutil

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper removes combining marks after canonical decomposition, so
// accented characters fold to their base letters before tokenization.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize normalizes a raw name into its comparison tokens: lowercased,
// diacritics and punctuation stripped, split on separators. Returns nil when
// the name carries no usable tokens.
func Tokenize(name string) []string {
	folded, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Key returns the canonical comparison form of a name: its tokens sorted and
// joined with single spaces. Two names with the same token set share a key
// regardless of token order.
func Key(name string) string {
	tokens := Tokenize(name)
	if len(tokens) == 0 {
		return ""
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// SharedTokens counts the distinct tokens two names have in common.
func SharedTokens(a, b string) int {
	tokensA := Tokenize(a)
	if len(tokensA) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokensA))
	for _, tok := range tokensA {
		seen[tok] = struct{}{}
	}
	shared := 0
	for _, tok := range Tokenize(b) {
		if _, ok := seen[tok]; ok {
			shared++
			delete(seen, tok)
		}
	}
	return shared
}
