package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/hanashi/internal/models"
)

const productsJSON = `{
  "products": [
    {
      "title": "Bracelet Colibri",
      "body_html": "<p>Bracelet en perles de verre, motif <b>colibri</b>.</p>",
      "product_type": "Bracelet",
      "tags": "perles, colibri, rouge",
      "handle": "bracelet-colibri",
      "variants": [{"price": "49.00"}]
    },
    {
      "title": "Bracelet Peyotl",
      "body_html": "",
      "product_type": "Bracelet",
      "tags": "",
      "handle": "bracelet-peyotl",
      "variants": []
    }
  ]
}`

func TestListProducts(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products.json" {
			http.NotFound(w, r)
			return
		}
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	client := NewCatalogClient(srv.URL, "secret", 2*time.Second)
	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if gotToken != "secret" {
		t.Errorf("access token header = %q", gotToken)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].Price != "49.00" {
		t.Errorf("price = %q, want 49.00", products[0].Price)
	}
	if products[1].Price != "" {
		t.Errorf("variant-less product price = %q, want empty", products[1].Price)
	}
}

func TestListProductsUnconfigured(t *testing.T) {
	client := NewCatalogClient("", "", time.Second)
	products, err := client.ListProducts(context.Background())
	if err != nil || products != nil {
		t.Errorf("unconfigured client = (%v, %v), want (nil, nil)", products, err)
	}
}

func TestListProductsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "locked", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	if _, err := NewCatalogClient(srv.URL, "", time.Second).ListProducts(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestProductDocument(t *testing.T) {
	doc := ProductDocument(models.Product{
		Title:       "Bracelet Colibri",
		BodyHTML:    "<p>Motif <b>colibri</b> traditionnel.</p>",
		ProductType: "Bracelet",
		Price:       "49.00",
		Tags:        "perles, colibri",
		Handle:      "bracelet-colibri",
	}, "https://marakame.ch")

	if doc.Origin != models.OriginCatalog {
		t.Errorf("origin = %s, want catalog", doc.Origin)
	}
	if doc.SourceURL != "https://marakame.ch/products/bracelet-colibri" {
		t.Errorf("source url = %q", doc.SourceURL)
	}
	for _, want := range []string{"Bracelet Colibri", "Motif colibri traditionnel.", "Prix: 49.00 CHF", "Type: Bracelet"} {
		if !strings.Contains(doc.Content, want) {
			t.Errorf("content missing %q:\n%s", want, doc.Content)
		}
	}
	if strings.Contains(doc.Content, "<b>") {
		t.Errorf("markup not stripped: %s", doc.Content)
	}
	if len(doc.Keywords) != 2 || doc.Keywords[0] != "perles" || doc.Keywords[1] != "colibri" {
		t.Errorf("keywords = %v", doc.Keywords)
	}
}
