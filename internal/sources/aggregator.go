// Package sources collects knowledge documents from the curated set, the
// crawled storefront site, and the product catalog.
package sources

import (
	"context"

	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
)

// Aggregator merges documents from all sources in fixed priority order:
// curated first (always present), then crawled pages, then catalog
// entries. Failure of an optional source is logged and never prevents
// publication of the curated set.
type Aggregator struct {
	curated   *Curated
	crawler   *Crawler
	catalog   *CatalogClient
	maxDocLen int
	logger    *zap.Logger
}

// NewAggregator creates an aggregator. crawler and catalog may be nil when
// the corresponding source is not configured. maxDocLen caps document
// content length in runes; 0 disables truncation.
func NewAggregator(curated *Curated, crawler *Crawler, catalog *CatalogClient, maxDocLen int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		curated:   curated,
		crawler:   crawler,
		catalog:   catalog,
		maxDocLen: maxDocLen,
		logger:    logger,
	}
}

// Collect gathers the full document set for one index build.
func (a *Aggregator) Collect(ctx context.Context) []models.Document {
	docs := a.curated.Docs()

	if a.crawler != nil {
		crawled, err := a.crawler.Crawl(ctx)
		if err != nil {
			a.logger.Warn("crawl source failed, continuing without it", zap.Error(err))
		}
		docs = append(docs, crawled...)
	}

	if a.catalog != nil && a.catalog.Configured() {
		products, err := a.catalog.ListProducts(ctx)
		if err != nil {
			a.logger.Warn("catalog source failed, continuing without it", zap.Error(err))
		}
		for _, p := range products {
			docs = append(docs, ProductDocument(p, a.catalog.baseURL))
		}
	}

	docs = dedupeDocs(docs)
	if a.maxDocLen > 0 {
		for i := range docs {
			docs[i].Content = truncateRunes(docs[i].Content, a.maxDocLen)
		}
	}
	a.logger.Info("sources collected", zap.Int("documents", len(docs)))
	return docs
}

// dedupeDocs drops later documents that repeat an earlier source URL or,
// for documents without a locator, an earlier content string. Earlier
// sources win, preserving the priority order.
func dedupeDocs(docs []models.Document) []models.Document {
	seenURL := make(map[string]struct{})
	seenContent := make(map[string]struct{})
	out := docs[:0]
	for _, d := range docs {
		if d.SourceURL != "" {
			if _, ok := seenURL[d.SourceURL]; ok {
				continue
			}
			seenURL[d.SourceURL] = struct{}{}
		} else {
			if _, ok := seenContent[d.Content]; ok {
				continue
			}
			seenContent[d.Content] = struct{}{}
		}
		out = append(out, d)
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
