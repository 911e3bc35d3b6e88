package search

import (
	"strings"
	"unicode"
)

// stopWords are dropped before building an FTS query so common function
// words don't dilute the bm25 ranking.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "was": true, "were": true, "will": true, "with": true,
}

// Tokenize lowercases text, splits on non-alphanumeric boundaries, and
// drops stop words, single-character noise and repeated tokens, keeping at
// most the first 20 distinct tokens.
func Tokenize(text string) []string {
	const maxTokens = 20
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
		if len(out) == maxTokens {
			break
		}
	}
	return out
}
