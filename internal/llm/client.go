// Package llm wraps the external language-generation service.
package llm

import (
	"context"
	"errors"

	"github.com/hyperjump/hanashi/internal/models"
)

// ErrUnavailable is returned when the generation service is unreachable or
// unconfigured. There is no fallback generation path, so callers must
// surface this to the user rather than retry indefinitely.
var ErrUnavailable = errors.New("generation service unavailable")

// Client generates a reply from system instructions and message history.
type Client interface {
	Generate(ctx context.Context, system string, history []models.ChatMessage) (string, error)
}
