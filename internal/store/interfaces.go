package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows us to pass either a connection pool or an active transaction to
// the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// TxBeginner opens transactions. Every externally visible operation runs
// under exactly one transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// AgentStore handles persistence of agent records.
type AgentStore interface {
	// GetAgentForUpdate loads an agent by its agent_id, locking the row when
	// called inside a transaction. Returns ErrNotFound if absent.
	GetAgentForUpdate(ctx context.Context, tx DBTransaction, agentID string) (*Agent, error)

	// CreateAgent inserts a new agent record.
	CreateAgent(ctx context.Context, tx DBTransaction, agent *Agent) error

	// UpdateAgent persists mutated heartbeat fields of an existing agent.
	UpdateAgent(ctx context.Context, tx DBTransaction, agent *Agent) error

	// ListAgents returns all agents ordered by last_seen descending.
	ListAgents(ctx context.Context) ([]Agent, error)

	// CountAgents returns the total number of registered agents.
	CountAgents(ctx context.Context) (int64, error)

	// CountAgentsByStatus returns the number of agents in the given status.
	CountAgentsByStatus(ctx context.Context, status AgentStatus) (int64, error)

	// MarkAgentsOffline flips agents with last_seen before the cutoff to
	// Offline and returns how many rows changed.
	MarkAgentsOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// JobStore handles persistence of queued commands.
type JobStore interface {
	// CreateJob inserts a new Pending job and returns its server-assigned id.
	CreateJob(ctx context.Context, tx DBTransaction, job *Job) (int64, error)

	// GetJobByID returns a job by id. Returns ErrNotFound if absent.
	GetJobByID(ctx context.Context, tx DBTransaction, id int64) (*Job, error)

	// ClaimPendingJobs atomically transitions every Pending job for the agent
	// to Sent, ordered by creation time ascending, and returns them.
	// Implementations must guarantee at-most-once delivery under concurrent
	// claims (SELECT ... FOR UPDATE SKIP LOCKED or equivalent).
	ClaimPendingJobs(ctx context.Context, agentID string) ([]Job, error)

	// UpdateJobResult stores the terminal status, result, and completion time.
	UpdateJobResult(ctx context.Context, tx DBTransaction, id int64, status JobStatus, result string, completedAt time.Time) error

	// CountPendingJobs returns how many jobs are Pending for the agent.
	CountPendingJobs(ctx context.Context, agentID string) (int64, error)

	// CountJobsByStatus returns the fleet-wide count of jobs in a status.
	CountJobsByStatus(ctx context.Context, status JobStatus) (int64, error)
}

// ThreatStore handles persistence of the threat ledger.
type ThreatStore interface {
	// GetThreatForUpdate loads a threat by fingerprint, locking the row when
	// called inside a transaction. Returns ErrNotFound if absent.
	GetThreatForUpdate(ctx context.Context, tx DBTransaction, fileHash string) (*Threat, error)

	// CreateThreat inserts a first-sighting threat and returns its id.
	CreateThreat(ctx context.Context, tx DBTransaction, threat *Threat) (int64, error)

	// UpdateThreatReport persists an incremented report of an existing threat.
	UpdateThreatReport(ctx context.Context, tx DBTransaction, threat *Threat) error

	// SetThreatAnalysis stores the generated narrative for a threat.
	SetThreatAnalysis(ctx context.Context, id int64, analysis string) error

	// ListThreats returns up to limit threats ordered by last_seen descending.
	ListThreats(ctx context.Context, limit int) ([]Threat, error)

	// CountThreats returns the total number of tracked fingerprints.
	CountThreats(ctx context.Context) (int64, error)

	// CountValidatedThreats returns the number of validated threats.
	CountValidatedThreats(ctx context.Context) (int64, error)

	// CountHighSeverity returns the number of threats whose last known score
	// is at or above the threshold.
	CountHighSeverity(ctx context.Context, threshold int) (int64, error)
}
