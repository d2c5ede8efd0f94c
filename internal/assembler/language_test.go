package assembler

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	d := NewStopwordDetector()
	tests := []struct {
		text string
		want string
	}{
		{"Bonjour, combien coûte la livraison en Suisse ?", LangFrench},
		{"What is the shipping cost to Switzerland?", LangEnglish},
		{"How can I return my bracelet?", LangEnglish},
		{"Je veux retourner mon bracelet", LangFrench},
		{"", LangFrench},
		{"bracelet", LangFrench},
	}
	for _, tt := range tests {
		if got := d.Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestExpandKeepsOriginalText(t *testing.T) {
	e := NewTermExpander()
	in := "What is the shipping cost?"
	got := e.Expand(in, LangEnglish)
	if !strings.HasPrefix(got, in) {
		t.Errorf("expansion dropped the original text: %q", got)
	}
	for _, want := range []string{"livraison", "prix"} {
		if !strings.Contains(got, want) {
			t.Errorf("expansion missing %q: %q", want, got)
		}
	}
}

func TestExpandDeduplicatesTranslations(t *testing.T) {
	e := NewTermExpander()
	got := e.Expand("shipping and delivery", LangEnglish)
	if strings.Count(got, "livraison") != 1 {
		t.Errorf("translation appended more than once: %q", got)
	}
}

func TestExpandIsIdentityForFrench(t *testing.T) {
	e := NewTermExpander()
	in := "Quel est le prix de la livraison ?"
	if got := e.Expand(in, LangFrench); got != in {
		t.Errorf("Expand(fr) = %q, want input unchanged", got)
	}
}

func TestExpandNoKnownTerms(t *testing.T) {
	e := NewTermExpander()
	in := "hello there"
	if got := e.Expand(in, LangEnglish); got != in {
		t.Errorf("Expand = %q, want input unchanged", got)
	}
}
