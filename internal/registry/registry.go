// Package registry maintains agent state driven by heartbeats.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shieldhive/internal/store"
	"shieldhive/pkg/api"
)

// Store is the persistence surface the registry needs.
type Store interface {
	store.TxBeginner
	store.AgentStore
}

// PendingCounter reports how many jobs are waiting for an agent. The
// heartbeat response piggybacks this count so agents know whether to poll.
type PendingCounter interface {
	PendingCount(ctx context.Context, agentID string) (int64, error)
}

// Registry upserts agent state on heartbeat and produces masked views.
type Registry struct {
	store Store
	jobs  PendingCounter
	now   func() time.Time
}

// New creates an agent registry.
func New(s Store, jobs PendingCounter) *Registry {
	return &Registry{store: s, jobs: jobs, now: time.Now}
}

// Heartbeat upserts the agent record: first contact creates it Online,
// subsequent contacts refresh address/location (only when supplied), reset
// status to Online, and stamp last_seen. Supplied log lines are folded into
// the agent's bounded log buffer. Returns the agent's pending-job count.
// remoteIP is the connection's source address; it stands in for a missing
// self-reported address only when the record is first created, so an agent
// that stops reporting its address keeps the stored one.
func (r *Registry) Heartbeat(ctx context.Context, agentID, ipAddress, remoteIP, location string, logs []string) (int64, error) {
	if agentID == "" {
		return 0, store.Required("agent_id")
	}

	now := r.now().UTC()

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin heartbeat tx: %w", err)
	}
	defer tx.Rollback()

	agent, err := r.store.GetAgentForUpdate(ctx, tx, agentID)
	switch {
	case err == store.ErrNotFound:
		agent = &store.Agent{
			AgentID:   agentID,
			IPAddress: ipAddress,
			Location:  location,
			Status:    store.AgentStatusOnline,
			LastSeen:  now,
		}
		if agent.IPAddress == "" {
			agent.IPAddress = remoteIP
		}
		if agent.Location == "" {
			agent.Location = "Unknown"
		}
		agent.RecentLogs = foldLogs(nil, logs, now)
		if err := r.store.CreateAgent(ctx, tx, agent); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	default:
		if ipAddress != "" {
			agent.IPAddress = ipAddress
		}
		if location != "" {
			agent.Location = location
		}
		agent.Status = store.AgentStatusOnline
		agent.LastSeen = now
		agent.RecentLogs = foldLogs(agent.RecentLogs, logs, now)
		if err := r.store.UpdateAgent(ctx, tx, agent); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit heartbeat: %w", err)
	}

	return r.jobs.PendingCount(ctx, agentID)
}

// List returns masked views of all agents, most recently seen first.
func (r *Registry) List(ctx context.Context) ([]api.AgentView, error) {
	agents, err := r.store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]api.AgentView, 0, len(agents))
	for _, agent := range agents {
		views = append(views, MaskedView(agent))
	}
	return views, nil
}

// MaskedView projects an agent for external consumption with its IP masked.
func MaskedView(agent store.Agent) api.AgentView {
	return api.AgentView{
		AgentID:     agent.AgentID,
		IPAddress:   MaskIP(agent.IPAddress),
		Location:    agent.Location,
		Status:      string(agent.Status),
		ThreatScore: agent.ThreatScore,
		LastSeen:    agent.LastSeen.UTC().Format(time.RFC3339),
	}
}

// MaskIP redacts the last two octets of a dotted-quad address:
// 192.168.1.100 -> 192.168.***.***. Non-IPv4 strings pass through unchanged;
// an absent address renders as "N/A".
func MaskIP(ip string) string {
	if ip == "" {
		return "N/A"
	}
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return fmt.Sprintf("%s.%s.***.***", parts[0], parts[1])
	}
	return ip
}

// foldLogs prepends the last MaxAgentLogs supplied lines onto the buffer,
// newest first, and trims to capacity.
func foldLogs(existing []store.AgentLogEntry, lines []string, now time.Time) []store.AgentLogEntry {
	if len(lines) > store.MaxAgentLogs {
		lines = lines[len(lines)-store.MaxAgentLogs:]
	}

	logs := existing
	for _, line := range lines {
		entry := store.AgentLogEntry{Timestamp: now, Message: line}
		logs = append([]store.AgentLogEntry{entry}, logs...)
	}
	if len(logs) > store.MaxAgentLogs {
		logs = logs[:store.MaxAgentLogs]
	}
	return logs
}
