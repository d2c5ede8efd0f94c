package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hyperjump/hanashi/internal/llm"
	"go.uber.org/zap"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)
	if req.SessionID == "" || req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}
	s.logger.Debug("chat request", zap.String("session_id", req.SessionID))

	resp, err := s.assistant.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			s.respondError(w, http.StatusServiceUnavailable, "generation service unavailable")
			return
		}
		s.logger.Error("chat turn failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatEnd(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		s.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.assistant.EndSession(req.SessionID))
}

// handleChatPoll lets the page check idle state between messages; the
// warning and closing notices surface here when the visitor goes quiet.
func (s *Server) handleChatPoll(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.assistant.CheckIdle(id))
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}
	s.scheduler.TriggerIfNeeded()
	results := s.index.Search(req.Query, req.Limit)
	s.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	docs, terms, built := s.index.Stats()
	total, open := s.sessions.Counts()
	resp := map[string]any{
		"index": map[string]any{
			"built":         built,
			"documents":     docs,
			"terms":         terms,
			"needs_refresh": s.scheduler.NeedsRefresh(),
			"in_flight":     s.scheduler.InFlight(),
		},
		"sessions": map[string]any{
			"total": total,
			"open":  open,
		},
	}
	if last, ok := s.scheduler.LastBuild(); ok {
		resp["index"].(map[string]any)["last_build"] = last
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encode failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
