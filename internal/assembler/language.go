package assembler

import (
	"strings"

	"github.com/hyperjump/hanashi/internal/tokenizer"
)

// Detector guesses the language of a visitor message. Implementations are
// coarse heuristics; the interface exists so a real model can replace them
// without touching the retrieval core.
type Detector interface {
	Detect(text string) string
}

// Expander augments a query for retrieval in the index's primary language.
// The returned query must contain the original text (superset, never a
// replacement).
type Expander interface {
	Expand(text, lang string) string
}

// LangFrench is the index's primary language tag.
const LangFrench = "fr"

// LangEnglish is the only foreign language the heuristic recognizes.
const LangEnglish = "en"

// stopwordDetector counts stopword hits per language and picks the winner.
// French wins ties: the storefront and its index are French.
type stopwordDetector struct{}

// NewStopwordDetector returns the default heuristic detector.
func NewStopwordDetector() Detector { return stopwordDetector{} }

var frenchStopwords = toSet([]string{
	"le", "la", "les", "un", "une", "des", "du", "de", "est", "et", "ou",
	"je", "tu", "il", "elle", "nous", "vous", "mon", "ma", "mes", "pour",
	"avec", "dans", "sur", "pas", "que", "qui", "quoi", "comment", "bonjour",
	"merci", "combien", "quand", "où",
})

var englishStopwords = toSet([]string{
	"the", "a", "an", "is", "are", "and", "or", "i", "you", "my", "your",
	"for", "with", "in", "on", "not", "what", "how", "when", "where", "can",
	"do", "does", "hello", "thanks", "please", "much",
})

func (stopwordDetector) Detect(text string) string {
	french, english := 0, 0
	for _, term := range tokenizer.Tokenize(text) {
		if _, ok := frenchStopwords[term]; ok {
			french++
		}
		if _, ok := englishStopwords[term]; ok {
			english++
		}
	}
	if english > french {
		return LangEnglish
	}
	return LangFrench
}

// termExpander appends known French equivalents of foreign commerce terms
// to the query, keeping the original text intact.
type termExpander struct {
	translations map[string]string
}

// NewTermExpander returns the default English-to-French term expander.
func NewTermExpander() Expander {
	return &termExpander{translations: map[string]string{
		"shipping":  "livraison",
		"delivery":  "livraison",
		"ship":      "livraison",
		"payment":   "paiement",
		"pay":       "paiement",
		"return":    "retour",
		"returns":   "retours",
		"refund":    "remboursement",
		"price":     "prix",
		"cost":      "prix",
		"order":     "commande",
		"bracelet":  "bracelet",
		"bracelets": "bracelets",
		"care":      "entretien",
		"bead":      "perle",
		"beads":     "perles",
	}}
}

func (e *termExpander) Expand(text, lang string) string {
	if lang == LangFrench {
		return text
	}
	var extra []string
	seen := make(map[string]struct{})
	for _, term := range tokenizer.Tokenize(text) {
		fr, ok := e.translations[term]
		if !ok {
			continue
		}
		if _, dup := seen[fr]; dup {
			continue
		}
		seen[fr] = struct{}{}
		extra = append(extra, fr)
	}
	if len(extra) == 0 {
		return text
	}
	return text + " " + strings.Join(extra, " ")
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
