// Package jobqueue manages the command lifecycle for agents.
package jobqueue

import (
	"context"
	"fmt"
	"time"

	"shieldhive/internal/store"
)

// Store is the persistence surface the queue needs.
type Store interface {
	store.TxBeginner
	store.JobStore
}

// Queue owns the Pending -> Sent -> {Completed, Failed} job lifecycle.
type Queue struct {
	store Store
	now   func() time.Time
}

// New creates a job queue.
func New(s Store) *Queue {
	return &Queue{store: s, now: time.Now}
}

// Enqueue creates a Pending job for the agent and returns its id.
func (q *Queue) Enqueue(ctx context.Context, agentID, command, payload string) (int64, error) {
	if agentID == "" {
		return 0, store.Required("agent_id")
	}
	if command == "" {
		return 0, store.Required("command")
	}

	job := &store.Job{
		AgentID:   agentID,
		Command:   command,
		Payload:   payload,
		Status:    store.JobStatusPending,
		CreatedAt: q.now().UTC(),
	}

	tx, err := q.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin enqueue tx: %w", err)
	}
	defer tx.Rollback()

	id, err := q.store.CreateJob(ctx, tx, job)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit enqueue: %w", err)
	}
	return id, nil
}

// Dispatch claims every Pending job for the agent in creation order and
// returns them as Sent. The claim is atomic; concurrent dispatches for the
// same agent never deliver the same job twice. An empty queue yields an
// empty slice, not an error.
func (q *Queue) Dispatch(ctx context.Context, agentID string) ([]store.Job, error) {
	if agentID == "" {
		return nil, store.Required("agent_id")
	}
	return q.store.ClaimPendingJobs(ctx, agentID)
}

// Complete records the terminal status and result of a job. The status
// defaults to Completed when unspecified. Re-completion of an already
// terminal job overwrites the prior result; agents re-post after a lost ack.
// Returns store.ErrNotFound for an unknown job id.
func (q *Queue) Complete(ctx context.Context, jobID int64, status store.JobStatus, result string) error {
	if status == "" {
		status = store.JobStatusCompleted
	}
	if status != store.JobStatusCompleted && status != store.JobStatusFailed {
		return &store.ValidationError{Field: "status", Reason: "must be Completed or Failed"}
	}

	tx, err := q.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin complete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := q.store.GetJobByID(ctx, tx, jobID); err != nil {
		return err
	}

	if err := q.store.UpdateJobResult(ctx, tx, jobID, status, result, q.now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job result: %w", err)
	}
	return nil
}

// PendingCount returns the number of Pending jobs for the agent.
func (q *Queue) PendingCount(ctx context.Context, agentID string) (int64, error) {
	return q.store.CountPendingJobs(ctx, agentID)
}
