package sources

import (
	"fmt"
	"os"
	"sync"

	"github.com/hyperjump/hanashi/internal/models"
	"gopkg.in/yaml.v3"
)

// curatedEntry is one document in the curated knowledge YAML file.
type curatedEntry struct {
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type curatedFile struct {
	Documents []curatedEntry `yaml:"documents"`
}

// Curated holds the curated document set: built-in defaults, optionally
// replaced by a YAML file that can be reloaded while the service runs.
type Curated struct {
	path string

	mu   sync.RWMutex
	docs []models.Document
}

// NewCurated creates the curated source. When path is non-empty an initial
// load is attempted; on failure (or empty path) the built-in defaults are
// used.
func NewCurated(path string) *Curated {
	c := &Curated{path: path, docs: defaultCurated()}
	if path != "" {
		_ = c.Reload()
	}
	return c
}

// Reload re-reads the knowledge file. The previous set is kept on error,
// so a malformed edit can never drop the curated baseline.
func (c *Curated) Reload() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read knowledge file: %w", err)
	}
	var parsed curatedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse knowledge file: %w", err)
	}
	if len(parsed.Documents) == 0 {
		return fmt.Errorf("knowledge file %s contains no documents", c.path)
	}
	docs := make([]models.Document, 0, len(parsed.Documents))
	for _, e := range parsed.Documents {
		docs = append(docs, models.Document{
			Title:    e.Title,
			Content:  e.Content,
			Origin:   models.OriginCurated,
			Category: e.Category,
			Keywords: e.Keywords,
		})
	}
	c.mu.Lock()
	c.docs = docs
	c.mu.Unlock()
	return nil
}

// Docs returns a copy of the current curated set.
func (c *Curated) Docs() []models.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Document(nil), c.docs...)
}

// defaultCurated is the built-in FAQ baseline for the storefront. It
// guarantees answerability even when the knowledge file and the external
// sources are all unavailable.
func defaultCurated() []models.Document {
	entries := []curatedEntry{
		{
			Content:  "Marakame propose des bracelets artisanaux faits main par des artisans Huichol du Mexique. Chaque bracelet est unique et créé avec des perles de verre traditionnelles.",
			Category: "about",
			Keywords: []string{"marakame", "huichol", "artisanat"},
		},
		{
			Content:  "Livraison Suisse: gratuite dès 50 CHF. Délai: 3-5 jours ouvrables. Livraison internationale: 5-10 jours ouvrables.",
			Category: "livraison",
			Keywords: []string{"livraison", "délai", "shipping"},
		},
		{
			Content:  "Paiements acceptés: carte de crédit (Visa, Mastercard), PayPal, et Twint. Tous les paiements sont sécurisés.",
			Category: "paiement",
			Keywords: []string{"paiement", "twint", "paypal"},
		},
		{
			Content:  "Retours acceptés sous 30 jours. Le produit doit être dans son état original. Contactez-nous à contact@marakame.ch pour initier un retour.",
			Category: "retours",
			Keywords: []string{"retour", "remboursement"},
		},
		{
			Content:  "Les bracelets Huichol sont fabriqués avec la technique ancestrale du tissage de perles. Chaque motif a une signification spirituelle dans la culture Wixárika.",
			Category: "produits",
			Keywords: []string{"bracelet", "perles", "wixárika"},
		},
		{
			Content:  "Pour l'entretien des bracelets: évitez le contact avec l'eau et les produits chimiques. Rangez-les à plat pour préserver leur forme.",
			Category: "entretien",
			Keywords: []string{"entretien", "nettoyage"},
		},
	}
	docs := make([]models.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, models.Document{
			Content:  e.Content,
			Origin:   models.OriginCurated,
			Category: e.Category,
			Keywords: e.Keywords,
		})
	}
	return docs
}
