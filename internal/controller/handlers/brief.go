package handlers

import "net/http"

// Brief handles GET /ai_brief.
// The fleet brief is deterministic and never fails the request: when the
// store is unreadable it reports UNKNOWN with a 200.
func (h *Handlers) Brief(w http.ResponseWriter, r *http.Request) {
	h.respondJson(w, http.StatusOK, h.briefer.FleetBrief(r.Context()))
}
