package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"shieldhive/pkg/api"
)

// Heartbeat handles POST /heartbeat.
// Upserts the agent record and returns its pending-job count.
func (h *Handlers) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req api.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AgentID == "" {
		h.httpError(w, "agent_id is required", http.StatusBadRequest)
		return
	}

	// The registry uses the connection's source address only when it first
	// creates the agent record.
	var remoteIP string
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	pending, err := h.registry.Heartbeat(r.Context(), req.AgentID, req.IPAddress, remoteIP, req.Location, req.Logs)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.HeartbeatResponse{
		Success:     true,
		AgentID:     req.AgentID,
		PendingJobs: pending,
	})
}
