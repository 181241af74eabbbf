package handlers

import (
	"net/http"

	"shieldhive/internal/store"
	"shieldhive/pkg/api"
)

// Stats handles GET /stats.
// Returns the dashboard counters in one shot.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalAgents, err := h.stats.CountAgents(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}
	onlineAgents, err := h.stats.CountAgentsByStatus(ctx, store.AgentStatusOnline)
	if err != nil {
		h.handleError(w, err)
		return
	}
	totalThreats, err := h.stats.CountThreats(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}
	validated, err := h.stats.CountValidatedThreats(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}
	pendingJobs, err := h.stats.CountJobsByStatus(ctx, store.JobStatusPending)
	if err != nil {
		h.handleError(w, err)
		return
	}
	completedJobs, err := h.stats.CountJobsByStatus(ctx, store.JobStatusCompleted)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.StatsResponse{
		Success:          true,
		TotalAgents:      totalAgents,
		OnlineAgents:     onlineAgents,
		TotalThreats:     totalThreats,
		ValidatedThreats: validated,
		PendingJobs:      pendingJobs,
		CompletedJobs:    completedJobs,
	})
}
