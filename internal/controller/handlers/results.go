package handlers

import (
	"encoding/json"
	"net/http"

	"shieldhive/internal/store"
	"shieldhive/pkg/api"
)

// Results handles POST /results.
// Records the terminal status and result an agent reports for a job.
func (h *Handlers) Results(w http.ResponseWriter, r *http.Request) {
	var req api.ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.JobID == 0 {
		h.httpError(w, "job_id is required", http.StatusBadRequest)
		return
	}

	if err := h.queue.Complete(r.Context(), req.JobID, store.JobStatus(req.Status), req.Result); err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.ResultResponse{
		Success: true,
		JobID:   req.JobID,
		Message: "Result recorded",
	})
}

// CreateJob handles POST /jobs.
// Queues a command for an agent; the agent picks it up on its next poll.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.queue.Enqueue(r.Context(), req.AgentID, req.Command, req.Payload)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.CreateJobResponse{
		Success: true,
		JobID:   jobID,
	})
}
