package index

import "github.com/hyperjump/hanashi/internal/models"

// BoostRule adjusts a document's base score when the query matches the
// rule's trigger terms. Rules are heuristic and their factors are
// configuration, not load-bearing constants.
type BoostRule interface {
	Name() string
	Apply(queryTerms []string, doc *models.Document, score float64) float64
}

// OriginBoost multiplies the score of documents from one origin when any
// query term is in the trigger set.
type OriginBoost struct {
	name     string
	triggers map[string]struct{}
	origin   models.Origin
	factor   float64
}

// NewOriginBoost creates an origin boost. A factor of 0 or 1 disables it.
func NewOriginBoost(name string, triggers []string, origin models.Origin, factor float64) *OriginBoost {
	set := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		set[t] = struct{}{}
	}
	return &OriginBoost{name: name, triggers: set, origin: origin, factor: factor}
}

// Name returns the rule name.
func (b *OriginBoost) Name() string { return b.name }

// Apply multiplies score by the configured factor when triggered.
func (b *OriginBoost) Apply(queryTerms []string, doc *models.Document, score float64) float64 {
	if score == 0 || b.factor == 0 || b.factor == 1 || doc.Origin != b.origin {
		return score
	}
	for _, t := range queryTerms {
		if _, ok := b.triggers[t]; ok {
			return score * b.factor
		}
	}
	return score
}

// priceTriggers are price-related terms (French and English) that boost
// catalog documents.
var priceTriggers = []string{
	"prix", "tarif", "cout", "coût", "coûte", "combien", "cher",
	"price", "cost", "how", "much", "chf", "acheter", "buy",
}

// questionTriggers are question words that boost curated FAQ documents.
var questionTriggers = []string{
	"comment", "pourquoi", "quand", "quel", "quelle", "quels", "quelles",
	"est", "puis", "peut", "how", "what", "when", "why", "where", "can",
}

// DefaultBoosts returns the standard boost set: price terms favor catalog
// documents, question words favor curated FAQ documents.
func DefaultBoosts(catalogFactor, curatedFactor float64) []BoostRule {
	return []BoostRule{
		NewOriginBoost("price_catalog", priceTriggers, models.OriginCatalog, catalogFactor),
		NewOriginBoost("question_curated", questionTriggers, models.OriginCurated, curatedFactor),
	}
}
