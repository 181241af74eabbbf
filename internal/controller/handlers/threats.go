package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"shieldhive/internal/store"
	"shieldhive/pkg/api"
)

// Threat handles POST /threat.
// Merges the sighting into the ledger and, for fingerprints still awaiting a
// narrative, kicks off background analysis.
func (h *Handlers) Threat(w http.ResponseWriter, r *http.Request) {
	var req api.ThreatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FileHash == "" {
		h.httpError(w, "file_hash is required", http.StatusBadRequest)
		return
	}

	threat, err := h.ledger.Report(r.Context(), req.FileHash, req.ThreatName, req.Score, req.Reasons)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if threat.Analysis == store.PendingAnalysis {
		go h.analyzeThreat(*threat)
	}

	h.respondJson(w, http.StatusOK, api.ThreatResponse{
		Success:     true,
		ThreatID:    threat.ID,
		ReportCount: threat.ReportCount,
	})
}

// analyzeThreat runs off the request goroutine; the narrative is best-effort
// and must not hold up the reporting agent.
func (h *Handlers) analyzeThreat(threat store.Threat) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	narrative := h.briefer.ThreatNarrative(ctx, threat.ThreatName, threat.Reasons, threat.FileHash)
	if err := h.ledger.StoreAnalysis(ctx, threat.ID, narrative); err != nil {
		h.logger.Error("failed to store threat analysis",
			"threat_id", threat.ID,
			"error", err,
		)
	}
}

// Threats handles GET /threats.
// Lists recently seen threats with their analysis text for the dashboard.
func (h *Handlers) Threats(w http.ResponseWriter, r *http.Request) {
	threats, err := h.ledger.Recent(r.Context(), 10)
	if err != nil {
		h.handleError(w, err)
		return
	}

	views := make([]api.ThreatView, 0, len(threats))
	for _, t := range threats {
		views = append(views, api.ThreatView{
			ID:          t.ID,
			FileHash:    t.FileHash,
			ThreatName:  t.ThreatName,
			ReportCount: t.ReportCount,
			Validated:   t.Validated,
			Score:       t.Score,
			Reasons:     t.Reasons,
			Analysis:    t.Analysis,
			LastSeen:    t.LastSeen.UTC().Format(time.RFC3339),
		})
	}

	h.respondJson(w, http.StatusOK, api.ThreatsResponse{
		Success: true,
		Count:   len(views),
		Threats: views,
	})
}
