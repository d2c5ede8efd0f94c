package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/hanashi/internal/models"
)

// CatalogClient lists products from the e-commerce platform's public
// catalog endpoint (Shopify-style /products.json).
type CatalogClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewCatalogClient creates a catalog client. An empty baseURL yields an
// unconfigured client whose ListProducts returns nothing.
func NewCatalogClient(baseURL, token string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a catalog endpoint is set.
func (c *CatalogClient) Configured() bool { return c.baseURL != "" }

type catalogVariant struct {
	Price string `json:"price"`
}

type catalogProduct struct {
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	ProductType string           `json:"product_type"`
	Tags        string           `json:"tags"`
	Handle      string           `json:"handle"`
	Variants    []catalogVariant `json:"variants"`
}

// ListProducts fetches the product catalog.
func (c *CatalogClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	if !c.Configured() {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products.json?limit=250", nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("X-Shopify-Access-Token", c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog fetch: status %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		Products []catalogProduct `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}
	products := make([]models.Product, 0, len(payload.Products))
	for _, p := range payload.Products {
		price := ""
		if len(p.Variants) > 0 {
			price = p.Variants[0].Price
		}
		products = append(products, models.Product{
			Title:       p.Title,
			BodyHTML:    p.BodyHTML,
			ProductType: p.ProductType,
			Price:       price,
			Tags:        p.Tags,
			Handle:      p.Handle,
		})
	}
	return products, nil
}

// ProductDocument normalizes one product into a synthetic knowledge
// document combining title, stripped description, type, price, and tags.
func ProductDocument(p models.Product, baseURL string) models.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Produit: %s", p.Title)
	if desc := StripTags(p.BodyHTML); desc != "" {
		fmt.Fprintf(&b, "\n%s", desc)
	}
	if p.ProductType != "" {
		fmt.Fprintf(&b, "\nType: %s", p.ProductType)
	}
	if p.Price != "" {
		fmt.Fprintf(&b, "\nPrix: %s CHF", p.Price)
	}
	if p.Tags != "" {
		fmt.Fprintf(&b, "\nTags: %s", p.Tags)
	}

	var keywords []string
	for _, tag := range strings.Split(p.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			keywords = append(keywords, tag)
		}
	}
	sourceURL := ""
	if p.Handle != "" && baseURL != "" {
		sourceURL = strings.TrimSuffix(baseURL, "/") + "/products/" + p.Handle
	}
	return models.Document{
		Title:     p.Title,
		Content:   b.String(),
		Origin:    models.OriginCatalog,
		SourceURL: sourceURL,
		Category:  p.ProductType,
		Keywords:  keywords,
	}
}
