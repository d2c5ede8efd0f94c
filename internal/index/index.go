// Package index implements the in-memory inverted knowledge index. The
// index is published as immutable generations: a build replaces the
// previous generation atomically and readers never observe a half-built
// one.
package index

import (
	"sort"
	"sync/atomic"

	"github.com/hyperjump/hanashi/internal/models"
	"github.com/hyperjump/hanashi/internal/tokenizer"
)

// generation is one immutable snapshot: the document set plus the inverted
// map from term to ascending document ids.
type generation struct {
	docs     []models.Document
	postings map[string][]int
}

// Index maps terms to documents and answers ranked lookups. Safe for
// concurrent use: searches read the current generation through an atomic
// pointer while Ingest builds the next one aside.
type Index struct {
	current atomic.Pointer[generation]
	boosts  []BoostRule
}

// New creates an empty index with the given boost rules. Queries before
// the first Ingest return no results.
func New(boosts ...BoostRule) *Index {
	return &Index{boosts: boosts}
}

// Ingest builds a new generation from the full document set and publishes
// it, replacing the previous generation. Document ids are assigned here,
// in slice order. An empty set yields a valid empty generation.
func (i *Index) Ingest(docs []models.Document) {
	g := &generation{
		docs:     make([]models.Document, len(docs)),
		postings: make(map[string][]int),
	}
	for id, doc := range docs {
		doc.ID = id
		g.docs[id] = doc

		seen := make(map[string]struct{})
		for _, term := range tokenizer.IndexTerms(doc.Content) {
			seen[term] = struct{}{}
		}
		for _, term := range tokenizer.IndexTerms(doc.Title) {
			seen[term] = struct{}{}
		}
		// Keyword tags are indexed verbatim, no length filter.
		for _, kw := range doc.Keywords {
			if folded := tokenizer.FoldKeyword(kw); folded != "" {
				seen[folded] = struct{}{}
			}
		}
		for term := range seen {
			g.postings[term] = append(g.postings[term], id)
		}
	}
	// Docs are processed in id order, so every posting list is ascending.
	i.current.Store(g)
}

// Search tokenizes the query, scores candidates by the number of distinct
// query terms they contain, applies boost rules, and returns at most topK
// results sorted by descending score with ties broken by ingestion order.
// An unpopulated index or a query with no matches returns an empty set.
func (i *Index) Search(query string, topK int) []models.SearchResult {
	g := i.current.Load()
	if g == nil || topK <= 0 {
		return nil
	}

	queryTerms := dedupe(tokenizer.Tokenize(query))
	scores := make(map[int]float64)
	for _, term := range queryTerms {
		for _, id := range g.postings[term] {
			scores[id]++
		}
	}
	if len(scores) == 0 {
		return nil
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Ints(ids) // ingestion order before the stable sort, so ties keep it

	for _, id := range ids {
		doc := &g.docs[id]
		for _, rule := range i.boosts {
			scores[id] = rule.Apply(queryTerms, doc, scores[id])
		}
	}

	sort.SliceStable(ids, func(a, b int) bool {
		return scores[ids[a]] > scores[ids[b]]
	})

	if len(ids) > topK {
		ids = ids[:topK]
	}
	results := make([]models.SearchResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, models.SearchResult{
			Document: g.docs[id],
			Score:    scores[id],
		})
	}
	return results
}

// Stats returns the document and term counts of the current generation.
// ok is false before the first ingestion.
func (i *Index) Stats() (docs, terms int, ok bool) {
	g := i.current.Load()
	if g == nil {
		return 0, 0, false
	}
	return len(g.docs), len(g.postings), true
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
