package transcript

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPMailer sends mail through a plain SMTP endpoint.
type SMTPMailer struct {
	addr     string // host:port
	from     string
	username string
	password string
}

// NewSMTPMailer creates an SMTP mailer. username may be empty for
// unauthenticated relays.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, username: username, password: password}
}

// Send delivers one HTML email. The context bounds nothing here: net/smtp
// has no context support, so the dispatcher's timeout is best effort.
func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.username != "" {
		host := m.addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}
	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer is the fallback when no SMTP endpoint is configured: it logs
// the would-be email instead of sending it.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email metadata.
func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.logger.Info("mail transport unconfigured, transcript logged only",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}
