package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxPageBytes = 2 << 20 // per-page body read cap

// Crawler fetches pages from the storefront site, starting at the seed
// URLs and following discovered links. Traversal is confined to the seed
// host, bounded by a page-count ceiling, and rate limited between fetches.
type Crawler struct {
	client     *http.Client
	limiter    *rate.Limiter
	seeds      []string
	maxPages   int
	minContent int
	logger     *zap.Logger
}

// CrawlerConfig bounds a crawl.
type CrawlerConfig struct {
	Seeds             []string
	MaxPages          int
	MinContentChars   int
	RequestsPerSecond float64
	FetchTimeout      time.Duration
}

// NewCrawler creates a crawler. The timeout is a best-effort bound on each
// fetch, not on the whole crawl.
func NewCrawler(cfg CrawlerConfig, logger *zap.Logger) *Crawler {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}
	return &Crawler{
		client:     &http.Client{Timeout: cfg.FetchTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		seeds:      cfg.Seeds,
		maxPages:   cfg.MaxPages,
		minContent: cfg.MinContentChars,
		logger:     logger,
	}
}

// Crawl walks the site breadth-first and returns one document per
// substantive page. Individual fetch failures are logged and skipped; an
// error is returned only when no page at all could be retrieved.
func (c *Crawler) Crawl(ctx context.Context) ([]models.Document, error) {
	if len(c.seeds) == 0 {
		return nil, nil
	}
	first, err := url.Parse(c.seeds[0])
	if err != nil {
		return nil, fmt.Errorf("parse seed %q: %w", c.seeds[0], err)
	}
	host := first.Host

	queue := append([]string(nil), c.seeds...)
	visited := make(map[string]struct{})
	var docs []models.Document
	fetched := 0

	for len(queue) > 0 && fetched < c.maxPages {
		pageURL := queue[0]
		queue = queue[1:]
		norm := normalizeURL(pageURL)
		if _, ok := visited[norm]; ok {
			continue
		}
		visited[norm] = struct{}{}

		page, err := c.fetch(ctx, pageURL)
		if err != nil {
			c.logger.Warn("crawl fetch failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		fetched++

		text := ExtractText(page)
		if len([]rune(text)) >= c.minContent {
			docs = append(docs, models.Document{
				Title:     ExtractTitle(page),
				Content:   text,
				Origin:    models.OriginCrawled,
				SourceURL: pageURL,
			})
		} else {
			c.logger.Debug("crawl page discarded as non-substantive", zap.String("url", pageURL))
		}

		for _, link := range ExtractLinks(page) {
			resolved, ok := resolveLink(pageURL, link, host)
			if !ok {
				continue
			}
			if _, seen := visited[normalizeURL(resolved)]; !seen {
				queue = append(queue, resolved)
			}
		}
	}

	if fetched == 0 {
		return nil, fmt.Errorf("crawl: no page could be fetched from %d seed(s)", len(c.seeds))
	}
	return docs, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "hanashi-crawler/1.0")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// resolveLink resolves href against base and accepts it only when it stays
// on the owning host and does not point at a binary asset.
func resolveLink(base, href, host string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host != host {
		return "", false
	}
	lower := strings.ToLower(resolved.Path)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".css", ".js", ".pdf", ".zip", ".ico", ".woff", ".woff2"} {
		if strings.HasSuffix(lower, ext) {
			return "", false
		}
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

func normalizeURL(raw string) string {
	return strings.TrimSuffix(raw, "/")
}
