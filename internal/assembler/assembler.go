// Package assembler builds the bounded, source-tagged context string that
// accompanies each generation call.
package assembler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
)

// Searcher answers ranked knowledge lookups.
type Searcher interface {
	Search(query string, topK int) []models.SearchResult
}

// OrderLookup resolves an order number or customer email to an order
// record, or nil when absent.
type OrderLookup interface {
	FindOrder(ctx context.Context, query string) (*models.Order, error)
}

// CRMLookup returns a customer's recent support exchanges, newest first.
type CRMLookup interface {
	FindRecentMessages(ctx context.Context, email string) ([]models.CRMMessage, error)
}

var (
	orderNumberRe = regexp.MustCompile(`#?\b\d{4,}\b`)
	emailRe       = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// Config bounds the assembled context.
type Config struct {
	TopK            int // search fan-out
	SnippetMaxChars int // per-snippet budget, in runes
	ContextMaxChars int // whole-context budget, in runes
}

// Assembler queries the knowledge index and the order-lookup collaborator
// and concatenates what it finds into one bounded context string. It
// degrades gracefully: an empty index or a failed lookup just yields fewer
// parts.
type Assembler struct {
	searcher Searcher
	orders   OrderLookup
	crm      CRMLookup
	detector Detector
	expander Expander
	cfg      Config
	logger   *zap.Logger
}

// New creates an assembler. orders and crm may be nil when the
// corresponding lookup is not configured.
func New(searcher Searcher, orders OrderLookup, crm CRMLookup, detector Detector, expander Expander, cfg Config, logger *zap.Logger) *Assembler {
	return &Assembler{
		searcher: searcher,
		orders:   orders,
		crm:      crm,
		detector: detector,
		expander: expander,
		cfg:      cfg,
		logger:   logger,
	}
}

// Assemble produces the context string for one visitor message, plus the
// retrieved documents for observability.
func (a *Assembler) Assemble(ctx context.Context, message string) (string, []models.SearchResult) {
	query := message
	if lang := a.detector.Detect(message); lang != LangFrench {
		query = a.expander.Expand(message, lang)
	}

	results := a.searcher.Search(query, a.cfg.TopK)

	var parts []string
	for _, r := range results {
		snippet := truncateRunes(strings.TrimSpace(r.Document.Content), a.cfg.SnippetMaxChars)
		tag := string(r.Document.Origin)
		if r.Document.SourceURL != "" {
			parts = append(parts, fmt.Sprintf("[%s] %s (source: %s)", tag, snippet, r.Document.SourceURL))
		} else {
			parts = append(parts, fmt.Sprintf("[%s] %s", tag, snippet))
		}
	}

	if line := a.orderLine(ctx, message); line != "" {
		parts = append(parts, line)
	}
	if line := a.crmLine(ctx, message); line != "" {
		parts = append(parts, line)
	}

	assembled := strings.Join(parts, "\n\n")
	return truncateRunes(assembled, a.cfg.ContextMaxChars), results
}

// orderLine looks up an order when the message contains an order-number or
// email-like substring. Lookup failures are logged and yield nothing.
func (a *Assembler) orderLine(ctx context.Context, message string) string {
	if a.orders == nil {
		return ""
	}
	lookup := ""
	if m := emailRe.FindString(message); m != "" {
		lookup = m
	} else if m := orderNumberRe.FindString(message); m != "" {
		lookup = strings.TrimPrefix(m, "#")
	}
	if lookup == "" {
		return ""
	}
	order, err := a.orders.FindOrder(ctx, lookup)
	if err != nil {
		a.logger.Warn("order lookup failed", zap.String("query", lookup), zap.Error(err))
		return ""
	}
	if order == nil {
		return ""
	}
	return fmt.Sprintf("[commande] Commande #%s: %s — %s %s, passée le %s",
		order.Number, order.StatusText(), order.Total, order.Currency,
		order.CreatedAt.Format("02.01.2006"))
}

// crmLine summarizes the customer's latest support exchange when the
// message carries an email. Lookup failures are logged and yield nothing.
func (a *Assembler) crmLine(ctx context.Context, message string) string {
	if a.crm == nil {
		return ""
	}
	email := emailRe.FindString(message)
	if email == "" {
		return ""
	}
	messages, err := a.crm.FindRecentMessages(ctx, email)
	if err != nil {
		a.logger.Warn("crm lookup failed", zap.String("email", email), zap.Error(err))
		return ""
	}
	if len(messages) == 0 {
		return ""
	}
	last := messages[0]
	return fmt.Sprintf("[crm] Dernier échange avec %s le %s: %s",
		email, last.Timestamp.Format("02.01.2006"),
		truncateRunes(strings.TrimSpace(last.Subject), a.cfg.SnippetMaxChars))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
