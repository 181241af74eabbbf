package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"shieldhive/internal/store"
)

var agentCols = []string{"id", "agent_id", "ip_address", "location", "status", "threat_score", "recent_logs", "last_seen"}

func TestGetAgentForUpdate_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, agent_id, ip_address, location, status, threat_score, recent_logs, last_seen FROM agents WHERE agent_id = $1")).
		WithArgs("SHIELD-404").
		WillReturnRows(sqlmock.NewRows(agentCols))

	_, err := s.GetAgentForUpdate(context.Background(), nil, "SHIELD-404")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetAgentForUpdate_LocksRowInsideTx(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE agent_id = $1 FOR UPDATE")).
		WithArgs("SHIELD-001").
		WillReturnRows(sqlmock.NewRows(agentCols).
			AddRow(1, "SHIELD-001", "10.0.0.4", "Berlin", "Online", 12,
				[]byte(`[{"timestamp":"2024-06-01T12:00:00Z","message":"scan ok"}]`), lastSeen))

	tx, err := s.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	agent, err := s.GetAgentForUpdate(context.Background(), tx, "SHIELD-001")
	if err != nil {
		t.Fatalf("GetAgentForUpdate failed: %v", err)
	}
	if agent.AgentID != "SHIELD-001" || agent.Status != store.AgentStatusOnline {
		t.Errorf("unexpected agent: %+v", agent)
	}
	if len(agent.RecentLogs) != 1 || agent.RecentLogs[0].Message != "scan ok" {
		t.Errorf("logs not decoded: %+v", agent.RecentLogs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateAgent(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO agents")).
		WithArgs("SHIELD-001", "10.0.0.4", "Berlin", store.AgentStatusOnline, 0, []byte("null"), lastSeen).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	agent := &store.Agent{
		AgentID:   "SHIELD-001",
		IPAddress: "10.0.0.4",
		Location:  "Berlin",
		Status:    store.AgentStatusOnline,
		LastSeen:  lastSeen,
	}
	if err := s.CreateAgent(context.Background(), nil, agent); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}
	if agent.ID != 42 {
		t.Errorf("got id %d, want 42", agent.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateAgent(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE agents")).
		WithArgs("10.0.0.5", "Berlin", store.AgentStatusOnline, 30, []byte(`[{"timestamp":"2024-06-01T12:00:00Z","message":"alert"}]`), lastSeen, "SHIELD-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	agent := &store.Agent{
		AgentID:     "SHIELD-001",
		IPAddress:   "10.0.0.5",
		Location:    "Berlin",
		Status:      store.AgentStatusOnline,
		ThreatScore: 30,
		RecentLogs:  []store.AgentLogEntry{{Timestamp: lastSeen, Message: "alert"}},
		LastSeen:    lastSeen,
	}
	if err := s.UpdateAgent(context.Background(), nil, agent); err != nil {
		t.Fatalf("UpdateAgent failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListAgents(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM agents ORDER BY last_seen DESC")).
		WillReturnRows(sqlmock.NewRows(agentCols).
			AddRow(2, "SHIELD-002", "10.0.0.5", "Paris", "Online", 0, []byte(`[]`), lastSeen).
			AddRow(1, "SHIELD-001", "10.0.0.4", "Berlin", "Offline", 12, []byte(`null`), lastSeen.Add(-time.Hour)))

	agents, err := s.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("ListAgents failed: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("got %d agents, want 2", len(agents))
	}
	if agents[0].AgentID != "SHIELD-002" {
		t.Errorf("got first agent %s, want most recently seen", agents[0].AgentID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkAgentsOffline(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	cutoff := time.Date(2024, 6, 1, 11, 55, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE agents")).
		WithArgs(store.AgentStatusOffline, store.AgentStatusOnline, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.MarkAgentsOffline(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("MarkAgentsOffline failed: %v", err)
	}
	if n != 3 {
		t.Errorf("got %d rows, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
