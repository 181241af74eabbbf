// Package store contains the database layer for the hive controller.
package store

import "time"

// AgentStatus is the liveness state of an agent.
type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "Online"
	AgentStatusOffline AgentStatus = "Offline"
)

// MaxAgentLogs bounds the per-agent log ring buffer.
const MaxAgentLogs = 5

// AgentLogEntry is one log line delivered on a heartbeat, timestamped at
// receipt.
type AgentLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Agent represents a connected field endpoint. RecentLogs holds at most
// MaxAgentLogs entries, newest first.
type Agent struct {
	ID          int64
	AgentID     string
	IPAddress   string
	Location    string
	Status      AgentStatus
	ThreatScore int
	RecentLogs  []AgentLogEntry
	LastSeen    time.Time
}

// JobStatus represents the state of a queued command.
// Transitions are one-directional: Pending -> Sent -> {Completed, Failed}.
type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusSent      JobStatus = "Sent"
	JobStatusCompleted JobStatus = "Completed"
	JobStatusFailed    JobStatus = "Failed"
)

// Job is a command queued for a specific agent.
type Job struct {
	ID          int64
	AgentID     string
	Command     string
	Payload     string
	Status      JobStatus
	Result      *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// PendingAnalysis is the placeholder analysis text a threat carries until the
// background narrative lands.
const PendingAnalysis = "Pending Analysis"

// Threat is a deduplicated malicious-file fingerprint and its aggregated
// report metadata. Score and reasons are last-write-wins across reports.
type Threat struct {
	ID          int64
	FileHash    string
	ThreatName  string
	ReportCount int
	Validated   bool
	Score       int
	Reasons     string
	Analysis    string
	LastSeen    time.Time
}
