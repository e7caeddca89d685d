// Package lexicon holds the canonical word forms shared by ingestion and search.
package lexicon

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Word length bounds for the corpus, inclusive.
// Anagram search enumerates 2^n subsets of a query, so MaxLength also caps
// the size of any subset worth looking up.
const (
	MinLength = 3
	MaxLength = 7
)

// Signature returns the letters of word sorted ascending, duplicates kept
// (e.g. "letter" -> "eelrtt"). Two words are anagrams iff their signatures match.
func Signature(word string) string {
	runes := []rune(word)
	slices.Sort(runes)
	return string(runes)
}

// Length is the number of letters in word.
func Length(word string) int {
	return utf8.RuneCountInString(word)
}

// Accept reports whether a raw candidate line may enter the corpus.
// Only candidates that are already lowercase are accepted; mixed-case input
// is rejected rather than lowered ("Apple" is dropped, not turned into "apple").
func Accept(candidate string) (string, bool) {
	if strings.ToLower(candidate) != candidate {
		return "", false
	}
	n := Length(candidate)
	if n < MinLength || n > MaxLength {
		return "", false
	}
	return candidate, true
}
