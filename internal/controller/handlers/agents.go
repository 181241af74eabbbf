package handlers

import (
	"net/http"

	"shieldhive/pkg/api"
)

// Agents handles GET /agents.
// Returns all registered agents with masked IPs, most recently seen first.
func (h *Handlers) Agents(w http.ResponseWriter, r *http.Request) {
	views, err := h.registry.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.AgentsResponse{
		Success: true,
		Count:   len(views),
		Agents:  views,
	})
}
