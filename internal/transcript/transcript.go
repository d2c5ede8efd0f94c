// Package transcript renders closed-session transcripts and dispatches
// them by email.
package transcript

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/hyperjump/hanashi/internal/models"
	"github.com/hyperjump/hanashi/internal/session"
	"go.uber.org/zap"
)

// Mailer sends one HTML email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Dispatcher implements session.Dispatcher by mailing the transcript to
// the support inbox. Failures are logged by the session engine, never
// surfaced to the visitor.
type Dispatcher struct {
	mailer    Mailer
	recipient string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewDispatcher creates a transcript dispatcher.
func NewDispatcher(mailer Mailer, recipient string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:    mailer,
		recipient: recipient,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Dispatch renders and sends the transcript for one closed session.
func (d *Dispatcher) Dispatch(snap session.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	subject := fmt.Sprintf("Transcript conversation %s (%s)", snap.ID, snap.CloseReason)
	if err := d.mailer.Send(ctx, d.recipient, subject, BuildHTML(snap)); err != nil {
		return fmt.Errorf("send transcript: %w", err)
	}
	d.logger.Debug("transcript sent",
		zap.String("session_id", snap.ID),
		zap.String("recipient", d.recipient),
	)
	return nil
}

// BuildHTML renders a session transcript as a simple HTML document.
func BuildHTML(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>Conversation %s</h2>", html.EscapeString(snap.ID))
	fmt.Fprintf(&b, "<p>Début: %s<br>Fin de conversation: %s<br>Messages visiteur: %d<br>Motif de fermeture: %s</p>",
		snap.CreatedAt.Format("02.01.2006 15:04"),
		snap.LastActivity.Format("02.01.2006 15:04"),
		snap.MessageCount,
		html.EscapeString(string(snap.CloseReason)),
	)
	if snap.VisitorEmail != "" {
		fmt.Fprintf(&b, "<p>Email visiteur: %s</p>", html.EscapeString(snap.VisitorEmail))
	}
	b.WriteString("<hr>")
	for _, m := range snap.History {
		label := "Visiteur"
		if m.Role == models.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "<p><b>%s</b> <i>%s</i><br>%s</p>",
			label,
			m.Timestamp.Format("15:04:05"),
			html.EscapeString(m.Content),
		)
	}
	b.WriteString("</body></html>")
	return b.String()
}
