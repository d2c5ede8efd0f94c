// Package models defines core data structures for documents, chat messages, and lookups.
package models

// Origin identifies where a knowledge document came from.
type Origin string

const (
	// OriginCurated marks hand-written ground-truth documents.
	OriginCurated Origin = "curated"
	// OriginCrawled marks documents extracted from crawled site pages.
	OriginCrawled Origin = "crawled"
	// OriginCatalog marks documents synthesized from catalog products.
	OriginCatalog Origin = "catalog"
)

// Document is one retrievable unit of knowledge. IDs are assigned at
// ingestion and are unique within one index generation; a document is
// immutable once ingested.
type Document struct {
	ID        int      `json:"id"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	Origin    Origin   `json:"origin"`
	SourceURL string   `json:"source_url,omitempty"`
	Category  string   `json:"category,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// SearchResult is a scored document returned from the knowledge index.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}
