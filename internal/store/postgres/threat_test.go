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

var threatCols = []string{"id", "file_hash", "threat_name", "report_count", "validated", "last_known_score", "last_known_reasons", "ai_analysis", "last_seen"}

func TestGetThreatForUpdate_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM threats WHERE file_hash = $1")).
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows(threatCols))

	_, err := s.GetThreatForUpdate(context.Background(), nil, "deadbeef")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateThreat(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO threats")).
		WithArgs("deadbeef", "Trojan.Generic", 1, false, 85, "dropper behavior", store.PendingAnalysis, lastSeen).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	threat := &store.Threat{
		FileHash:    "deadbeef",
		ThreatName:  "Trojan.Generic",
		ReportCount: 1,
		Score:       85,
		Reasons:     "dropper behavior",
		Analysis:    store.PendingAnalysis,
		LastSeen:    lastSeen,
	}
	id, err := s.CreateThreat(context.Background(), nil, threat)
	if err != nil {
		t.Fatalf("CreateThreat failed: %v", err)
	}
	if id != 9 || threat.ID != 9 {
		t.Errorf("got id %d/%d, want 9", id, threat.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateThreatReport(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE threats")).
		WithArgs(3, 40, "rescored", lastSeen, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	threat := &store.Threat{
		ID:          9,
		ReportCount: 3,
		Score:       40,
		Reasons:     "rescored",
		LastSeen:    lastSeen,
	}
	if err := s.UpdateThreatReport(context.Background(), nil, threat); err != nil {
		t.Fatalf("UpdateThreatReport failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetThreatAnalysis(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE threats SET ai_analysis = $1 WHERE id = $2")).
		WithArgs("A credential-stealing dropper.", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.SetThreatAnalysis(context.Background(), 9, "A credential-stealing dropper."); err != nil {
		t.Fatalf("SetThreatAnalysis failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListThreats(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM threats ORDER BY last_seen DESC LIMIT $1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(threatCols).
			AddRow(2, "cafef00d", "Worm.Net", 4, true, 92, "lateral movement", "Spreads over SMB.", lastSeen).
			AddRow(1, "deadbeef", "Trojan.Generic", 1, false, 85, "dropper", store.PendingAnalysis, lastSeen.Add(-time.Hour)))

	threats, err := s.ListThreats(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListThreats failed: %v", err)
	}
	if len(threats) != 2 {
		t.Fatalf("got %d threats, want 2", len(threats))
	}
	if threats[0].FileHash != "cafef00d" || !threats[0].Validated {
		t.Errorf("unexpected first threat: %+v", threats[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCountHighSeverity(t *testing.T) {
	s, mock := newMockStore(t)
	defer closeStore(t, s, mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM threats WHERE last_known_score >= $1")).
		WithArgs(70).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := s.CountHighSeverity(context.Background(), 70)
	if err != nil {
		t.Fatalf("CountHighSeverity failed: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
