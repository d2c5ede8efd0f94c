// Package assistant orchestrates one conversation turn: session policy,
// context assembly, the generation call, and reply recording.
package assistant

import (
	"context"
	"fmt"

	"github.com/hyperjump/hanashi/internal/assembler"
	"github.com/hyperjump/hanashi/internal/llm"
	"github.com/hyperjump/hanashi/internal/models"
	"github.com/hyperjump/hanashi/internal/refresh"
	"github.com/hyperjump/hanashi/internal/session"
	"go.uber.org/zap"
)

const personaPrompt = `Tu es l'assistant virtuel de Marakame, une boutique suisse de bracelets artisanaux Huichol du Mexique.

CONTEXTE (informations de notre base de données):
%s

INSTRUCTIONS:
- Réponds en français, de manière amicale et professionnelle
- Base tes réponses sur le contexte fourni
- Si tu ne trouves pas l'information, dis-le poliment et propose de contacter contact@marakame.ch
- Sois concis mais complet`

// TurnResponse is what one inbound message produces.
type TurnResponse struct {
	Reply    string                `json:"reply,omitempty"`
	Notices  []string              `json:"notices,omitempty"`
	State    session.State         `json:"state"`
	Reason   session.CloseReason   `json:"reason,omitempty"`
	Context  []models.SearchResult `json:"context_used,omitempty"`
	Rejected bool                  `json:"rejected,omitempty"`
}

// Assistant wires the session engine, the context assembler, the refresh
// scheduler, and the generation client into the turn flow.
type Assistant struct {
	sessions  *session.Engine
	assembler *assembler.Assembler
	scheduler *refresh.Scheduler
	generator llm.Client
	logger    *zap.Logger
}

// New creates an assistant. generator may be nil when the generation
// service is unconfigured; turns then fail with llm.ErrUnavailable.
func New(sessions *session.Engine, asm *assembler.Assembler, scheduler *refresh.Scheduler, generator llm.Client, logger *zap.Logger) *Assistant {
	return &Assistant{
		sessions:  sessions,
		assembler: asm,
		scheduler: scheduler,
		generator: generator,
		logger:    logger,
	}
}

// HandleMessage processes one visitor message and returns the reply plus
// any system notices. The only error it returns is a generation failure;
// every other collaborator degrades silently.
func (a *Assistant) HandleMessage(ctx context.Context, sessionID, message string) (*TurnResponse, error) {
	res := a.sessions.RecordVisitorMessage(sessionID, message)
	if res.Rejected {
		return &TurnResponse{
			Notices:  res.Notices,
			State:    res.State,
			Reason:   res.Reason,
			Rejected: true,
		}, nil
	}

	// Stale-index check rides on the request but the rebuild itself runs
	// in the background; this turn is served by the current generation.
	a.scheduler.TriggerIfNeeded()

	contextStr, retrieved := a.assembler.Assemble(ctx, message)

	if a.generator == nil {
		return nil, llm.ErrUnavailable
	}
	history := a.sessions.History(sessionID)
	reply, err := a.generator.Generate(ctx, fmt.Sprintf(personaPrompt, contextStr), history)
	if err != nil {
		a.logger.Error("generation failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	a.sessions.RecordAssistantReply(sessionID, reply)

	return &TurnResponse{
		Reply:   reply,
		Notices: res.Notices,
		State:   res.State,
		Context: retrieved,
	}, nil
}

// EndSession closes a session at the visitor's request.
func (a *Assistant) EndSession(sessionID string) *TurnResponse {
	res := a.sessions.End(sessionID)
	return &TurnResponse{Notices: res.Notices, State: res.State, Reason: res.Reason}
}

// CheckIdle evaluates timeout policy for one session, for pollers.
func (a *Assistant) CheckIdle(sessionID string) *TurnResponse {
	res := a.sessions.CheckIdle(sessionID)
	return &TurnResponse{Notices: res.Notices, State: res.State, Reason: res.Reason}
}
