package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
)

type stubSearcher struct {
	lastQuery string
	results   []models.SearchResult
}

func (s *stubSearcher) Search(query string, topK int) []models.SearchResult {
	s.lastQuery = query
	if topK < len(s.results) {
		return s.results[:topK]
	}
	return s.results
}

type stubOrders struct {
	lastQuery string
	order     *models.Order
	err       error
}

func (s *stubOrders) FindOrder(ctx context.Context, query string) (*models.Order, error) {
	s.lastQuery = query
	return s.order, s.err
}

func testConfig() Config {
	return Config{TopK: 5, SnippetMaxChars: 600, ContextMaxChars: 4000}
}

func newTestAssembler(searcher *stubSearcher, orders OrderLookup, cfg Config) *Assembler {
	return New(searcher, orders, nil, NewStopwordDetector(), NewTermExpander(), cfg, zap.NewNop())
}

func result(origin models.Origin, content, url string) models.SearchResult {
	return models.SearchResult{
		Document: models.Document{Content: content, Origin: origin, SourceURL: url},
		Score:    1,
	}
}

func TestAssembleTagsSnippetsWithOrigin(t *testing.T) {
	searcher := &stubSearcher{results: []models.SearchResult{
		result(models.OriginCurated, "Livraison gratuite dès 50 CHF.", ""),
		result(models.OriginCrawled, "Délai de 3-5 jours.", "https://marakame.ch/pages/livraison"),
	}}
	a := newTestAssembler(searcher, nil, testConfig())

	ctxStr, results := a.Assemble(context.Background(), "combien coûte la livraison ?")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !strings.Contains(ctxStr, "[curated] Livraison gratuite dès 50 CHF.") {
		t.Errorf("curated snippet missing or untagged:\n%s", ctxStr)
	}
	if !strings.Contains(ctxStr, "[crawled] Délai de 3-5 jours. (source: https://marakame.ch/pages/livraison)") {
		t.Errorf("crawled snippet missing its source:\n%s", ctxStr)
	}
	parts := strings.Split(ctxStr, "\n\n")
	if len(parts) != 2 {
		t.Errorf("got %d parts, want 2:\n%s", len(parts), ctxStr)
	}
}

func TestAssembleExpandsEnglishQueries(t *testing.T) {
	searcher := &stubSearcher{}
	a := newTestAssembler(searcher, nil, testConfig())

	a.Assemble(context.Background(), "What is the shipping cost?")
	if !strings.Contains(searcher.lastQuery, "livraison") {
		t.Errorf("query not expanded: %q", searcher.lastQuery)
	}
	if !strings.Contains(searcher.lastQuery, "shipping") {
		t.Errorf("expansion dropped the original terms: %q", searcher.lastQuery)
	}

	a.Assemble(context.Background(), "combien pour la livraison ?")
	if searcher.lastQuery != "combien pour la livraison ?" {
		t.Errorf("french query altered: %q", searcher.lastQuery)
	}
}

func TestAssembleTruncatesSnippetsAndContext(t *testing.T) {
	long := strings.Repeat("perles de verre ", 100)
	searcher := &stubSearcher{results: []models.SearchResult{
		result(models.OriginCurated, long, ""),
		result(models.OriginCurated, long, ""),
	}}
	cfg := Config{TopK: 5, SnippetMaxChars: 50, ContextMaxChars: 80}
	a := newTestAssembler(searcher, nil, cfg)

	ctxStr, _ := a.Assemble(context.Background(), "perles")
	if n := utf8.RuneCountInString(ctxStr); n > 80 {
		t.Errorf("context length = %d runes, want <= 80", n)
	}
}

func TestAssembleOrderLineByNumber(t *testing.T) {
	orders := &stubOrders{order: &models.Order{
		Number:            "1042",
		FulfillmentStatus: models.FulfillmentFulfilled,
		Total:             "89.00",
		Currency:          "CHF",
		CreatedAt:         time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}}
	a := newTestAssembler(&stubSearcher{}, orders, testConfig())

	ctxStr, _ := a.Assemble(context.Background(), "Où en est ma commande #1042 ?")
	if orders.lastQuery != "1042" {
		t.Errorf("lookup query = %q, want 1042 (hash stripped)", orders.lastQuery)
	}
	want := "[commande] Commande #1042: expédiée — 89.00 CHF, passée le 15.03.2024"
	if !strings.Contains(ctxStr, want) {
		t.Errorf("order line missing:\n%s", ctxStr)
	}
}

func TestAssembleOrderLineByEmail(t *testing.T) {
	orders := &stubOrders{}
	a := newTestAssembler(&stubSearcher{}, orders, testConfig())

	a.Assemble(context.Background(), "Ma commande pour claire@example.ch n'est pas arrivée")
	if orders.lastQuery != "claire@example.ch" {
		t.Errorf("lookup query = %q, want the email", orders.lastQuery)
	}
}

func TestAssembleSkipsOrderLookupWithoutHints(t *testing.T) {
	orders := &stubOrders{order: &models.Order{Number: "1"}}
	a := newTestAssembler(&stubSearcher{}, orders, testConfig())

	ctxStr, _ := a.Assemble(context.Background(), "Bonjour, avez-vous des bracelets rouges ?")
	if orders.lastQuery != "" {
		t.Errorf("lookup ran without an order hint: %q", orders.lastQuery)
	}
	if strings.Contains(ctxStr, "[commande]") {
		t.Errorf("order line present without a hint:\n%s", ctxStr)
	}
}

func TestAssembleToleratesOrderLookupFailure(t *testing.T) {
	orders := &stubOrders{err: errors.New("upstream down")}
	searcher := &stubSearcher{results: []models.SearchResult{
		result(models.OriginCurated, "Retours acceptés sous 30 jours.", ""),
	}}
	a := newTestAssembler(searcher, orders, testConfig())

	ctxStr, _ := a.Assemble(context.Background(), "commande #9999 ?")
	if !strings.Contains(ctxStr, "Retours acceptés") {
		t.Errorf("retrieval part lost on lookup failure:\n%s", ctxStr)
	}
	if strings.Contains(ctxStr, "[commande]") {
		t.Errorf("order line present despite failed lookup:\n%s", ctxStr)
	}
}

type stubCRM struct {
	lastEmail string
	messages  []models.CRMMessage
	err       error
}

func (s *stubCRM) FindRecentMessages(ctx context.Context, email string) ([]models.CRMMessage, error) {
	s.lastEmail = email
	return s.messages, s.err
}

func TestAssembleCRMLine(t *testing.T) {
	crm := &stubCRM{messages: []models.CRMMessage{
		{Subject: "Retour bracelet", Timestamp: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC), Direction: "inbound"},
	}}
	a := New(&stubSearcher{}, nil, crm, NewStopwordDetector(), NewTermExpander(), testConfig(), zap.NewNop())

	ctxStr, _ := a.Assemble(context.Background(), "Des nouvelles pour claire@example.ch ?")
	if crm.lastEmail != "claire@example.ch" {
		t.Errorf("crm lookup email = %q", crm.lastEmail)
	}
	want := "[crm] Dernier échange avec claire@example.ch le 10.03.2024: Retour bracelet"
	if !strings.Contains(ctxStr, want) {
		t.Errorf("crm line missing:\n%s", ctxStr)
	}

	// No email, no lookup.
	crm.lastEmail = ""
	a.Assemble(context.Background(), "Bonjour !")
	if crm.lastEmail != "" {
		t.Errorf("crm lookup ran without an email: %q", crm.lastEmail)
	}
}

func TestAssembleToleratesCRMFailure(t *testing.T) {
	crm := &stubCRM{err: errors.New("crm down")}
	a := New(&stubSearcher{}, nil, crm, NewStopwordDetector(), NewTermExpander(), testConfig(), zap.NewNop())

	ctxStr, _ := a.Assemble(context.Background(), "claire@example.ch")
	if strings.Contains(ctxStr, "[crm]") {
		t.Errorf("crm line present despite failed lookup:\n%s", ctxStr)
	}
}

func TestAssembleEmptyIndexYieldsEmptyContext(t *testing.T) {
	a := newTestAssembler(&stubSearcher{}, nil, testConfig())
	ctxStr, results := a.Assemble(context.Background(), "bonjour")
	if ctxStr != "" || len(results) != 0 {
		t.Errorf("got (%q, %v), want empty context and no results", ctxStr, results)
	}
}
