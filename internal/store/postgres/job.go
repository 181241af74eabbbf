package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"shieldhive/internal/store"
)

// CreateJob inserts a new Pending job and returns its server-assigned id.
func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) (int64, error) {
	query := `
		INSERT INTO jobs (agent_id, command, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		job.AgentID,
		job.Command,
		job.Payload,
		job.Status,
		job.CreatedAt,
	).Scan(&job.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to create job for agent %s: %w", job.AgentID, err)
	}
	return job.ID, nil
}

// GetJobByID returns a job by id.
func (s *Store) GetJobByID(ctx context.Context, tx store.DBTransaction, id int64) (*store.Job, error) {
	query := `
		SELECT id, agent_id, command, payload, status, result, created_at, completed_at
		FROM jobs
		WHERE id = $1
	`

	var job store.Job
	err := s.getExecutor(tx).QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.AgentID,
		&job.Command,
		&job.Payload,
		&job.Status,
		&job.Result,
		&job.CreatedAt,
		&job.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %d: %w", id, err)
	}
	return &job, nil
}

// ClaimPendingJobs atomically claims every Pending job for the agent using
// SELECT ... FOR UPDATE SKIP LOCKED, so concurrent polls for the same agent
// never receive the same job twice. Returns nil if nothing is pending.
func (s *Store) ClaimPendingJobs(ctx context.Context, agentID string) ([]store.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, agent_id, command, payload, status, created_at
		FROM jobs
		WHERE agent_id = $1 AND status = $2
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
	`, agentID, store.JobStatusPending)
	if err != nil {
		return nil, fmt.Errorf("claim query failed for agent %s: %w", agentID, err)
	}
	defer rows.Close()

	var jobs []store.Job
	var jobIDs []int64
	for rows.Next() {
		var job store.Job
		if err := rows.Scan(&job.ID, &job.AgentID, &job.Command, &job.Payload, &job.Status, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("claim scan failed: %w", err)
		}
		job.Status = store.JobStatusSent
		jobs = append(jobs, job)
		jobIDs = append(jobIDs, job.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim rows error: %w", err)
	}

	if len(jobs) == 0 {
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1
		WHERE id = ANY($2)
	`, store.JobStatusSent, pq.Array(jobIDs))
	if err != nil {
		return nil, fmt.Errorf("claim status update failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// UpdateJobResult stores the terminal status, result text, and completion
// time of a job.
func (s *Store) UpdateJobResult(ctx context.Context, tx store.DBTransaction, id int64, status store.JobStatus, result string, completedAt time.Time) error {
	query := `
		UPDATE jobs
		SET status = $1, result = $2, completed_at = $3
		WHERE id = $4
	`
	_, err := s.getExecutor(tx).ExecContext(ctx, query, status, result, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update job %d result: %w", id, err)
	}
	return nil
}

// CountPendingJobs returns how many jobs are Pending for the agent.
func (s *Store) CountPendingJobs(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs WHERE agent_id = $1 AND status = $2",
		agentID, store.JobStatusPending,
	).Scan(&count)
	return count, err
}

// CountJobsByStatus returns the fleet-wide count of jobs in a status.
func (s *Store) CountJobsByStatus(ctx context.Context, status store.JobStatus) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE status = $1", status).Scan(&count)
	return count, err
}
