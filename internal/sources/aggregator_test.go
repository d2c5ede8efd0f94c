package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
)

func TestCollectCuratedOnly(t *testing.T) {
	agg := NewAggregator(NewCurated(""), nil, nil, 0, zap.NewNop())
	docs := agg.Collect(context.Background())
	if len(docs) != 6 {
		t.Fatalf("got %d docs, want the 6 built-in entries", len(docs))
	}
	for _, d := range docs {
		if d.Origin != models.OriginCurated {
			t.Errorf("origin = %s, want curated", d.Origin)
		}
	}
}

func TestCollectSurvivesSourceFailures(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	crawler := newTestCrawler(t, []string{down.URL}, 5)
	catalog := NewCatalogClient(down.URL, "token", time.Second)
	agg := NewAggregator(NewCurated(""), crawler, catalog, 0, zap.NewNop())

	docs := agg.Collect(context.Background())
	if len(docs) != 6 {
		t.Fatalf("got %d docs, want 6 curated docs despite source failures", len(docs))
	}
}

func TestCollectMergesAllSources(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page(substantive)))
	})
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productsJSON))
	})

	crawler := newTestCrawler(t, []string{srv.URL + "/pages/faq"}, 5)
	catalog := NewCatalogClient(srv.URL, "token", time.Second)
	agg := NewAggregator(NewCurated(""), crawler, catalog, 0, zap.NewNop())

	docs := agg.Collect(context.Background())
	counts := map[models.Origin]int{}
	for _, d := range docs {
		counts[d.Origin]++
	}
	if counts[models.OriginCurated] != 6 {
		t.Errorf("curated docs = %d, want 6", counts[models.OriginCurated])
	}
	if counts[models.OriginCrawled] != 1 {
		t.Errorf("crawled docs = %d, want 1", counts[models.OriginCrawled])
	}
	if counts[models.OriginCatalog] != 2 {
		t.Errorf("catalog docs = %d, want 2", counts[models.OriginCatalog])
	}
}

func TestCollectTruncatesLongDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	long := ""
	for i := 0; i < 50; i++ {
		long += "très long contenu répété "
	}
	writeKnowledgeFile(t, path, "Long", long)

	agg := NewAggregator(NewCurated(path), nil, nil, 100, zap.NewNop())
	docs := agg.Collect(context.Background())
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if n := utf8.RuneCountInString(docs[0].Content); n != 100 {
		t.Errorf("content length = %d runes, want 100", n)
	}
}

func TestDedupeDocs(t *testing.T) {
	docs := dedupeDocs([]models.Document{
		{Content: "a", SourceURL: "https://x/1", Origin: models.OriginCurated},
		{Content: "b", SourceURL: "https://x/1", Origin: models.OriginCrawled},
		{Content: "sans url", Origin: models.OriginCurated},
		{Content: "sans url", Origin: models.OriginCurated},
		{Content: "c", SourceURL: "https://x/2", Origin: models.OriginCatalog},
	})
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3: %+v", len(docs), docs)
	}
	// The earlier of the two URL duplicates wins.
	if docs[0].Origin != models.OriginCurated {
		t.Errorf("duplicate resolution kept %s, want curated", docs[0].Origin)
	}
}

func writeKnowledgeFile(t *testing.T, path, title, content string) {
	t.Helper()
	data := "documents:\n  - title: " + title + "\n    content: \"" + content + "\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCuratedReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	writeKnowledgeFile(t, path, "Horaires", "Ouvert du lundi au vendredi")

	c := NewCurated(path)
	docs := c.Docs()
	if len(docs) != 1 || docs[0].Title != "Horaires" {
		t.Fatalf("initial load = %+v", docs)
	}

	writeKnowledgeFile(t, path, "Contact", "Écrivez-nous à contact@marakame.ch")
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	docs = c.Docs()
	if len(docs) != 1 || docs[0].Title != "Contact" {
		t.Errorf("after reload = %+v", docs)
	}
}

func TestCuratedReloadKeepsPreviousSetOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	writeKnowledgeFile(t, path, "Horaires", "Ouvert du lundi au vendredi")

	c := NewCurated(path)
	if err := os.WriteFile(path, []byte("documents: [not: valid: yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(); err == nil {
		t.Fatal("expected reload error for malformed file")
	}
	docs := c.Docs()
	if len(docs) != 1 || docs[0].Title != "Horaires" {
		t.Errorf("previous set lost after failed reload: %+v", docs)
	}
}

func TestCuratedMissingFileFallsBackToDefaults(t *testing.T) {
	c := NewCurated(filepath.Join(t.TempDir(), "absent.yaml"))
	if got := len(c.Docs()); got != 6 {
		t.Errorf("got %d docs, want the 6 built-in entries", got)
	}
}
