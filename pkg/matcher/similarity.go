package matcher

import (
	"strings"
	"unicode"
)

// stopWords are short connector words and bare unit abbreviations that
// carry no signal when comparing work descriptions.
var stopWords = map[string]struct{}{
	"de": {}, "la": {}, "el": {}, "en": {}, "con": {}, "para": {},
	"por": {}, "a": {}, "y": {}, "o": {},
	"mm": {}, "cm": {}, "m": {}, "m2": {}, "m3": {},
	"the": {}, "of": {}, "and": {}, "in": {}, "to": {},
}

// NormalizeDescription lowercases a description, strips every character
// other than letters (accented Latin included), digits and whitespace,
// and collapses whitespace runs.
func NormalizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokens splits a normalized description into its stop-word-filtered
// word set.
func tokens(s string) map[string]struct{} {
	words := strings.Fields(NormalizeDescription(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Similarity scores two descriptions with Jaccard similarity over their
// normalized, stop-word-filtered token sets. It is symmetric, returns
// 1.0 for identical non-empty inputs and 0 when either side has no
// tokens left after filtering.
func Similarity(a, b string) float64 {
	setA := tokens(a)
	setB := tokens(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
