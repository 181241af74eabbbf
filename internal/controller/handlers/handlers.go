// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shieldhive/internal/store"
	"shieldhive/pkg/api"
)

// Registry is the agent-registry surface the handlers consume.
type Registry interface {
	Heartbeat(ctx context.Context, agentID, ipAddress, remoteIP, location string, logs []string) (int64, error)
	List(ctx context.Context) ([]api.AgentView, error)
}

// JobQueue is the command-queue surface the handlers consume.
type JobQueue interface {
	Enqueue(ctx context.Context, agentID, command, payload string) (int64, error)
	Dispatch(ctx context.Context, agentID string) ([]store.Job, error)
	Complete(ctx context.Context, jobID int64, status store.JobStatus, result string) error
}

// ThreatLedger is the threat-ledger surface the handlers consume.
type ThreatLedger interface {
	Report(ctx context.Context, fileHash, threatName string, score *int, reasons *string) (*store.Threat, error)
	Recent(ctx context.Context, limit int) ([]store.Threat, error)
	StoreAnalysis(ctx context.Context, threatID int64, analysis string) error
}

// Briefer produces operator narratives.
type Briefer interface {
	FleetBrief(ctx context.Context) api.BriefResponse
	ThreatNarrative(ctx context.Context, threatName, reasons, fileHash string) string
}

// StatsStore feeds the dashboard counters and readiness probe.
type StatsStore interface {
	Ping(ctx context.Context) error
	CountAgents(ctx context.Context) (int64, error)
	CountAgentsByStatus(ctx context.Context, status store.AgentStatus) (int64, error)
	CountThreats(ctx context.Context) (int64, error)
	CountValidatedThreats(ctx context.Context) (int64, error)
	CountJobsByStatus(ctx context.Context, status store.JobStatus) (int64, error)
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	registry Registry
	queue    JobQueue
	ledger   ThreatLedger
	briefer  Briefer
	stats    StatsStore
	logger   *slog.Logger
}

// New creates a new Handlers instance with the given dependencies.
func New(registry Registry, queue JobQueue, ledger ThreatLedger, briefer Briefer, stats StatsStore, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		registry: registry,
		queue:    queue,
		ledger:   ledger,
		briefer:  briefer,
		stats:    stats,
		logger:   logger,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{Success: false, Error: message})
}

// handleError maps component errors onto the HTTP taxonomy: validation
// failures become 400, missing records 404, anything else a rolled-back 500.
func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case store.IsValidation(err):
		h.httpError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		h.httpError(w, "not found", http.StatusNotFound)
	default:
		h.logger.Error("persistence failure", "error", err)
		h.httpError(w, err.Error(), http.StatusInternalServerError)
	}
}
