// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"shieldhive/internal/controller/handlers"
	"shieldhive/internal/controller/middleware"
)

// Options carries the wiring the server needs beyond its handlers.
type Options struct {
	ServerKey      string
	RateLimit      float64
	RateBurst      int
	Logger         *slog.Logger
	MetricsHandler http.Handler
}

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server. Agent-facing endpoints sit behind the
// shared-key check and the per-client rate limiter; operator reads do not.
func New(addr string, h *handlers.Handlers, opts Options) *Server {
	agentMW := func(next http.Handler) http.Handler {
		return middleware.RequireServerKey(opts.ServerKey)(
			middleware.RateLimit(opts.RateLimit, opts.RateBurst)(next),
		)
	}

	mux := http.NewServeMux()

	// Agent-facing endpoints.
	mux.Handle("POST /api/v1/heartbeat", agentMW(http.HandlerFunc(h.Heartbeat)))
	mux.Handle("GET /api/v1/commands/{agent_id}", agentMW(http.HandlerFunc(h.Commands)))
	mux.Handle("POST /api/v1/results", agentMW(http.HandlerFunc(h.Results)))
	mux.Handle("POST /api/v1/threat", agentMW(http.HandlerFunc(h.Threat)))

	// Operator/dashboard endpoints.
	mux.HandleFunc("POST /api/v1/jobs", h.CreateJob)
	mux.HandleFunc("GET /api/v1/ai_brief", h.Brief)
	mux.HandleFunc("GET /api/v1/agents", h.Agents)
	mux.HandleFunc("GET /api/v1/threats", h.Threats)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)

	mux.HandleFunc("GET /health", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	var root http.Handler = mux
	if opts.Logger != nil {
		root = middleware.RequestID(opts.Logger)(root)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      root,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
