// Package api contains shared JSON request/response structs.
// This package is shared between the CLI, the controller, and field agents.
package api

// HeartbeatRequest is the liveness report posted by an agent.
// Log lines ride along with the heartbeat; only the last five are kept.
type HeartbeatRequest struct {
	AgentID   string   `json:"agent_id"`
	IPAddress string   `json:"ip_address,omitempty"`
	Location  string   `json:"location,omitempty"`
	Logs      []string `json:"logs,omitempty"`
}

// HeartbeatResponse tells the agent how many jobs are waiting for it.
type HeartbeatResponse struct {
	Success     bool   `json:"success"`
	AgentID     string `json:"agent_id"`
	PendingJobs int64  `json:"pending_jobs"`
}

// Command is a single dispatched job as delivered to an agent.
type Command struct {
	JobID   int64  `json:"job_id"`
	Command string `json:"command"`
	Payload string `json:"payload"`
}

// CommandsResponse is the response body for the agent poll endpoint.
type CommandsResponse struct {
	Success  bool      `json:"success"`
	AgentID  string    `json:"agent_id"`
	Commands []Command `json:"commands"`
}

// ResultRequest is posted by an agent after executing a job.
type ResultRequest struct {
	JobID  int64  `json:"job_id"`
	Status string `json:"status,omitempty"`
	Result string `json:"result,omitempty"`
}

// ResultResponse acknowledges a recorded job result.
type ResultResponse struct {
	Success bool   `json:"success"`
	JobID   int64  `json:"job_id"`
	Message string `json:"message"`
}

// CreateJobRequest queues a command for a specific agent.
type CreateJobRequest struct {
	AgentID string `json:"agent_id"`
	Command string `json:"command"`
	Payload string `json:"payload,omitempty"`
}

// CreateJobResponse is the response body after queueing a job.
type CreateJobResponse struct {
	Success bool  `json:"success"`
	JobID   int64 `json:"job_id"`
}

// ThreatRequest is a threat sighting reported by an agent scanner. Score and
// reasons are pointers so an absent field is distinguishable from an explicit
// zero; on repeat reports an absent field keeps the stored value.
type ThreatRequest struct {
	FileHash   string  `json:"file_hash"`
	ThreatName string  `json:"threat_name,omitempty"`
	Score      *int    `json:"score,omitempty"`
	Reasons    *string `json:"reasons,omitempty"`
}

// ThreatResponse carries the ledger identity of the reported fingerprint.
type ThreatResponse struct {
	Success     bool  `json:"success"`
	ThreatID    int64 `json:"threat_id"`
	ReportCount int   `json:"report_count"`
}

// ThreatView represents a tracked threat in API responses.
type ThreatView struct {
	ID          int64  `json:"id"`
	FileHash    string `json:"file_hash"`
	ThreatName  string `json:"threat_name"`
	ReportCount int    `json:"report_count"`
	Validated   bool   `json:"validated"`
	Score       int    `json:"last_known_score"`
	Reasons     string `json:"last_known_reasons"`
	Analysis    string `json:"ai_analysis"`
	LastSeen    string `json:"last_seen"`
}

// ThreatsResponse lists recently seen threats.
type ThreatsResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Threats []ThreatView `json:"threats"`
}

// AgentView is the privacy-preserving agent projection. The IP address is
// masked before it leaves the controller.
type AgentView struct {
	AgentID     string `json:"agent_id"`
	IPAddress   string `json:"ip_address"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	ThreatScore int    `json:"threat_score"`
	LastSeen    string `json:"last_seen"`
}

// AgentsResponse lists registered agents, most recently seen first.
type AgentsResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Agents  []AgentView `json:"agents"`
}

// BriefResponse is the operator-facing fleet posture summary.
type BriefResponse struct {
	Status         string `json:"status"`
	ThreatLevel    string `json:"threat_level"`
	Recommendation string `json:"recommendation"`
	Summary        string `json:"summary"`
	Error          string `json:"error,omitempty"`
}

// StatsResponse carries the dashboard counters.
type StatsResponse struct {
	Success          bool  `json:"success"`
	TotalAgents      int64 `json:"total_agents"`
	OnlineAgents     int64 `json:"online_agents"`
	TotalThreats     int64 `json:"total_threats"`
	ValidatedThreats int64 `json:"validated_threats"`
	PendingJobs      int64 `json:"pending_jobs"`
	CompletedJobs    int64 `json:"completed_jobs"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
