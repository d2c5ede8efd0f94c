// Package server provides the HTTP API for the hanashi assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/hanashi/internal/assistant"
	"github.com/hyperjump/hanashi/internal/config"
	"github.com/hyperjump/hanashi/internal/index"
	"github.com/hyperjump/hanashi/internal/refresh"
	"github.com/hyperjump/hanashi/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the HTTP server for the assistant API.
type Server struct {
	assistant *assistant.Assistant
	sessions  *session.Engine
	index     *index.Index
	scheduler *refresh.Scheduler
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	asst *assistant.Assistant,
	sessions *session.Engine,
	idx *index.Index,
	scheduler *refresh.Scheduler,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		assistant: asst,
		sessions:  sessions,
		index:     idx,
		scheduler: scheduler,
		config:    cfg,
		logger:    logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/chat", s.handleChat)
	r.Post("/chat/end", s.handleChatEnd)
	r.Get("/chat/poll", s.handleChatPoll)
	r.Post("/search", s.handleSearch)
	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
