package handlers

import (
	"net/http"

	"shieldhive/pkg/api"
)

// Commands handles GET /commands/{agent_id}.
// Returns every pending job for the agent, marking each Sent on the way out.
func (h *Handlers) Commands(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agent_id")
	if agentID == "" {
		h.httpError(w, "agent_id is required", http.StatusBadRequest)
		return
	}

	jobs, err := h.queue.Dispatch(r.Context(), agentID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	commands := make([]api.Command, 0, len(jobs))
	for _, job := range jobs {
		commands = append(commands, api.Command{
			JobID:   job.ID,
			Command: job.Command,
			Payload: job.Payload,
		})
	}

	h.respondJson(w, http.StatusOK, api.CommandsResponse{
		Success:  true,
		AgentID:  agentID,
		Commands: commands,
	})
}
