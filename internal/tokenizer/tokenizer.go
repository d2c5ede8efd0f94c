// Package tokenizer normalizes raw text into index terms.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermLength is the minimum rune length of a term kept for index
// population. Query terms and curated keyword tags bypass this filter.
const MinTermLength = 3

// Tokenize lower-cases text, replaces every non-word non-whitespace rune
// with a space, and splits on whitespace. Deterministic, no side effects;
// empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Fields(cleaned)
}

// IndexTerms tokenizes text and drops terms shorter than MinTermLength
// runes. Used for posting-list population, not for query terms.
func IndexTerms(text string) []string {
	terms := Tokenize(text)
	kept := terms[:0]
	for _, t := range terms {
		if utf8.RuneCountInString(t) >= MinTermLength {
			kept = append(kept, t)
		}
	}
	return kept
}

// FoldKeyword normalizes an explicit keyword tag: case-folded and trimmed,
// no length filter.
func FoldKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
