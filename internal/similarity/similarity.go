// Package similarity scores textual closeness of identifier and description
// strings in [0,1]. The score blends token-set overlap (robust to word
// reordering and boilerplate) with normalized edit distance (catches typos in
// single tokens that token splitting would treat as wholly distinct).
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	jaccardWeight = 0.6
	editWeight    = 0.4
)

// separators splits references like "INV-0001", "A/B" or "X_Y.Z" into
// comparable tokens.
func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', ',', '.', '/', '_', '-':
		return true
	}
	return false
}

func canonical(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), " "))
}

// Tokenize splits a canonicalized string on whitespace and the separators
// ", . / _ -", discarding empty tokens.
func Tokenize(value string) []string {
	return strings.FieldsFunc(canonical(value), isSeparator)
}

// Jaccard computes the token-set Jaccard index of two strings: intersection
// size over union size, 0 when both token sets are empty.
func Jaccard(a, b string) float64 {
	setA := tokenSet(Tokenize(a))
	setB := tokenSet(Tokenize(b))
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// Score returns the blended similarity of two strings: 0.6 × Jaccard plus
// 0.4 × edit similarity. Symmetric; 1 for identical non-empty inputs; 0 when
// both inputs are empty.
func Score(a, b string) float64 {
	ca, cb := canonical(a), canonical(b)
	if ca == "" && cb == "" {
		return 0
	}

	distance := levenshtein.ComputeDistance(ca, cb)
	maxLen := utf8.RuneCountInString(ca)
	if l := utf8.RuneCountInString(cb); l > maxLen {
		maxLen = l
	}
	editScore := 1 - float64(distance)/float64(maxLen)

	return jaccardWeight*Jaccard(a, b) + editWeight*editScore
}
