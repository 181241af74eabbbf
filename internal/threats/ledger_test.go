package threats

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"shieldhive/internal/store"
)

type mockTx struct {
	committed  bool
	rolledBack bool
}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (m *mockTx) Commit() error   { m.committed = true; return nil }
func (m *mockTx) Rollback() error { m.rolledBack = true; return nil }

// In-memory threat store double keyed by fingerprint.
type memThreats struct {
	byHash    map[string]*store.Threat
	nextID    int64
	tx        *mockTx
	analyses  map[int64]string
	highCount int64
}

func newMemThreats() *memThreats {
	return &memThreats{
		byHash:   make(map[string]*store.Threat),
		analyses: make(map[int64]string),
		nextID:   100,
	}
}

func (m *memThreats) BeginTx(ctx context.Context) (store.Tx, error) {
	m.tx = &mockTx{}
	return m.tx, nil
}

func (m *memThreats) GetThreatForUpdate(ctx context.Context, tx store.DBTransaction, fileHash string) (*store.Threat, error) {
	t, ok := m.byHash[fileHash]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memThreats) CreateThreat(ctx context.Context, tx store.DBTransaction, threat *store.Threat) (int64, error) {
	m.nextID++
	threat.ID = m.nextID
	cp := *threat
	m.byHash[threat.FileHash] = &cp
	return threat.ID, nil
}

func (m *memThreats) UpdateThreatReport(ctx context.Context, tx store.DBTransaction, threat *store.Threat) error {
	cp := *threat
	m.byHash[threat.FileHash] = &cp
	return nil
}

func (m *memThreats) SetThreatAnalysis(ctx context.Context, id int64, analysis string) error {
	m.analyses[id] = analysis
	return nil
}

func (m *memThreats) ListThreats(ctx context.Context, limit int) ([]store.Threat, error) {
	var out []store.Threat
	for _, t := range m.byHash {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memThreats) CountThreats(ctx context.Context) (int64, error) {
	return int64(len(m.byHash)), nil
}

func (m *memThreats) CountValidatedThreats(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *memThreats) CountHighSeverity(ctx context.Context, threshold int) (int64, error) {
	return m.highCount, nil
}

func newTestLedger(m *memThreats) *Ledger {
	l := New(m)
	l.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestReport_EmptyHash(t *testing.T) {
	l := newTestLedger(newMemThreats())

	_, err := l.Report(context.Background(), "", "Trojan.Generic", intPtr(85), nil)
	if !store.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReport_FirstSighting(t *testing.T) {
	m := newMemThreats()
	l := newTestLedger(m)

	threat, err := l.Report(context.Background(), "abc123", "Trojan.Generic", intPtr(85), strPtr("Suspicious behavior"))
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if threat.ReportCount != 1 {
		t.Errorf("got report_count %d, want 1", threat.ReportCount)
	}
	if threat.Analysis != store.PendingAnalysis {
		t.Errorf("got analysis %q, want pending placeholder", threat.Analysis)
	}
	if !m.tx.committed {
		t.Error("transaction was not committed")
	}
}

func TestReport_UnnamedThreatDefaultsToUnknown(t *testing.T) {
	l := newTestLedger(newMemThreats())

	threat, err := l.Report(context.Background(), "abc123", "", intPtr(10), nil)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if threat.ThreatName != "Unknown" {
		t.Errorf("got name %q, want Unknown", threat.ThreatName)
	}
}

func TestReport_CountMonotonicAndIDStable(t *testing.T) {
	l := newTestLedger(newMemThreats())
	ctx := context.Background()

	var firstID int64
	for i := 1; i <= 3; i++ {
		threat, err := l.Report(ctx, "abc123", "Trojan.Generic", intPtr(50+i), strPtr("r"))
		if err != nil {
			t.Fatalf("report %d failed: %v", i, err)
		}
		if threat.ReportCount != i {
			t.Errorf("report %d: got count %d, want %d", i, threat.ReportCount, i)
		}
		if i == 1 {
			firstID = threat.ID
		} else if threat.ID != firstID {
			t.Errorf("report %d: id changed from %d to %d", i, firstID, threat.ID)
		}
	}
}

func TestReport_LastWriteWins(t *testing.T) {
	m := newMemThreats()
	l := newTestLedger(m)
	ctx := context.Background()

	if _, err := l.Report(ctx, "abc123", "Trojan.Generic", intPtr(90), strPtr("dropper")); err != nil {
		t.Fatalf("first report failed: %v", err)
	}
	threat, err := l.Report(ctx, "abc123", "Trojan.Generic", intPtr(30), strPtr("rescored benign-ish"))
	if err != nil {
		t.Fatalf("second report failed: %v", err)
	}

	// Lower score overwrites the higher one; no max/average smoothing.
	if threat.Score != 30 {
		t.Errorf("got score %d, want 30", threat.Score)
	}
	if threat.Reasons != "rescored benign-ish" {
		t.Errorf("got reasons %q, want latest", threat.Reasons)
	}
}

func TestReport_AbsentFieldsKeepStoredValues(t *testing.T) {
	m := newMemThreats()
	l := newTestLedger(m)
	ctx := context.Background()

	if _, err := l.Report(ctx, "abc123", "Trojan.Generic", intPtr(95), strPtr("ransomware behavior")); err != nil {
		t.Fatalf("first report failed: %v", err)
	}
	threat, err := l.Report(ctx, "abc123", "Trojan.Generic", nil, nil)
	if err != nil {
		t.Fatalf("minimal repeat report failed: %v", err)
	}

	if threat.ReportCount != 2 {
		t.Errorf("got count %d, want 2", threat.ReportCount)
	}
	// A sighting without a score or reasons must not demote the threat.
	if threat.Score != 95 {
		t.Errorf("got score %d, want stored 95", threat.Score)
	}
	if threat.Reasons != "ransomware behavior" {
		t.Errorf("got reasons %q, want stored value", threat.Reasons)
	}
}

func TestReport_ExplicitZeroScoreOverwrites(t *testing.T) {
	l := newTestLedger(newMemThreats())
	ctx := context.Background()

	if _, err := l.Report(ctx, "abc123", "Trojan.Generic", intPtr(95), strPtr("dropper")); err != nil {
		t.Fatalf("first report failed: %v", err)
	}
	threat, err := l.Report(ctx, "abc123", "Trojan.Generic", intPtr(0), strPtr(""))
	if err != nil {
		t.Fatalf("second report failed: %v", err)
	}

	if threat.Score != 0 || threat.Reasons != "" {
		t.Errorf("explicit zero values must still win: score=%d reasons=%q", threat.Score, threat.Reasons)
	}
}

func TestHighSeverityCount_DefaultThreshold(t *testing.T) {
	m := newMemThreats()
	m.highCount = 4
	l := newTestLedger(m)

	n, err := l.HighSeverityCount(context.Background(), 0)
	if err != nil {
		t.Fatalf("HighSeverityCount failed: %v", err)
	}
	if n != 4 {
		t.Errorf("got %d, want 4", n)
	}
}
