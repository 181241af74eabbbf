package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shieldhive/internal/store"
)

const agentColumns = "id, agent_id, ip_address, location, status, threat_score, recent_logs, last_seen"

// GetAgentForUpdate loads an agent row by agent_id. Inside a transaction the
// row is locked so concurrent heartbeats for the same agent serialize.
func (s *Store) GetAgentForUpdate(ctx context.Context, tx store.DBTransaction, agentID string) (*store.Agent, error) {
	query := fmt.Sprintf("SELECT %s FROM agents WHERE agent_id = $1", agentColumns)
	if tx != nil {
		query += " FOR UPDATE"
	}

	row := s.getExecutor(tx).QueryRowContext(ctx, query, agentID)
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agent %s: %w", agentID, err)
	}
	return agent, nil
}

// CreateAgent inserts a new agent row.
func (s *Store) CreateAgent(ctx context.Context, tx store.DBTransaction, agent *store.Agent) error {
	logsJSON, err := json.Marshal(agent.RecentLogs)
	if err != nil {
		return fmt.Errorf("failed to encode agent logs: %w", err)
	}

	query := `
		INSERT INTO agents (agent_id, ip_address, location, status, threat_score, recent_logs, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = s.getExecutor(tx).QueryRowContext(ctx, query,
		agent.AgentID,
		agent.IPAddress,
		agent.Location,
		agent.Status,
		agent.ThreatScore,
		logsJSON,
		agent.LastSeen,
	).Scan(&agent.ID)
	if err != nil {
		return fmt.Errorf("failed to create agent %s: %w", agent.AgentID, err)
	}
	return nil
}

// UpdateAgent persists the mutable heartbeat fields of an existing agent.
func (s *Store) UpdateAgent(ctx context.Context, tx store.DBTransaction, agent *store.Agent) error {
	logsJSON, err := json.Marshal(agent.RecentLogs)
	if err != nil {
		return fmt.Errorf("failed to encode agent logs: %w", err)
	}

	query := `
		UPDATE agents
		SET ip_address = $1, location = $2, status = $3, threat_score = $4, recent_logs = $5, last_seen = $6
		WHERE agent_id = $7
	`
	_, err = s.getExecutor(tx).ExecContext(ctx, query,
		agent.IPAddress,
		agent.Location,
		agent.Status,
		agent.ThreatScore,
		logsJSON,
		agent.LastSeen,
		agent.AgentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent %s: %w", agent.AgentID, err)
	}
	return nil
}

// ListAgents returns all agents, most recently seen first.
func (s *Store) ListAgents(ctx context.Context) ([]store.Agent, error) {
	query := fmt.Sprintf("SELECT %s FROM agents ORDER BY last_seen DESC", agentColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []store.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// CountAgents returns the total number of registered agents.
func (s *Store) CountAgents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM agents").Scan(&count)
	return count, err
}

// CountAgentsByStatus returns the number of agents in the given status.
func (s *Store) CountAgentsByStatus(ctx context.Context, status store.AgentStatus) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM agents WHERE status = $1", status).Scan(&count)
	return count, err
}

// MarkAgentsOffline flips agents that have not heartbeated since the cutoff.
func (s *Store) MarkAgentsOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agents
		SET status = $1
		WHERE status = $2 AND last_seen < $3
	`, store.AgentStatusOffline, store.AgentStatusOnline, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark agents offline: %w", err)
	}
	return res.RowsAffected()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAgent(row scanner) (*store.Agent, error) {
	var agent store.Agent
	var logsJSON []byte

	err := row.Scan(
		&agent.ID,
		&agent.AgentID,
		&agent.IPAddress,
		&agent.Location,
		&agent.Status,
		&agent.ThreatScore,
		&logsJSON,
		&agent.LastSeen,
	)
	if err != nil {
		return nil, err
	}

	if len(logsJSON) > 0 {
		if err := json.Unmarshal(logsJSON, &agent.RecentLogs); err != nil {
			return nil, fmt.Errorf("failed to decode agent logs: %w", err)
		}
	}
	return &agent, nil
}
