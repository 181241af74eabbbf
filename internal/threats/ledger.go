// Package threats maintains the deduplicated threat ledger.
package threats

import (
	"context"
	"fmt"
	"time"

	"shieldhive/internal/store"
)

// DefaultHighSeverity is the score at which a threat counts as high severity.
const DefaultHighSeverity = 70

// Store is the persistence surface the ledger needs.
type Store interface {
	store.TxBeginner
	store.ThreatStore
}

// Ledger deduplicates threat reports by content fingerprint.
type Ledger struct {
	store Store
	now   func() time.Time
}

// New creates a threat ledger.
func New(s Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// Report records a sighting of the given file hash. First sighting creates
// the threat with report_count 1; repeats increment the count and overwrite
// score and reasons with the newly supplied values. Last write wins on
// purpose: scanners re-score the same sample as their heuristics evolve, and
// the freshest verdict is the one operators act on. A nil score or reasons
// means the scanner did not supply one, and the stored value sticks.
func (l *Ledger) Report(ctx context.Context, fileHash, threatName string, score *int, reasons *string) (*store.Threat, error) {
	if fileHash == "" {
		return nil, store.Required("file_hash")
	}

	now := l.now().UTC()

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin report tx: %w", err)
	}
	defer tx.Rollback()

	threat, err := l.store.GetThreatForUpdate(ctx, tx, fileHash)
	switch {
	case err == store.ErrNotFound:
		if threatName == "" {
			threatName = "Unknown"
		}
		threat = &store.Threat{
			FileHash:    fileHash,
			ThreatName:  threatName,
			ReportCount: 1,
			Analysis:    store.PendingAnalysis,
			LastSeen:    now,
		}
		if score != nil {
			threat.Score = *score
		}
		if reasons != nil {
			threat.Reasons = *reasons
		}
		if _, err := l.store.CreateThreat(ctx, tx, threat); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		threat.ReportCount++
		if score != nil {
			threat.Score = *score
		}
		if reasons != nil {
			threat.Reasons = *reasons
		}
		threat.LastSeen = now
		if err := l.store.UpdateThreatReport(ctx, tx, threat); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit threat report: %w", err)
	}
	return threat, nil
}

// HighSeverityCount returns how many threats score at or above the threshold.
// A threshold of zero or below falls back to DefaultHighSeverity.
func (l *Ledger) HighSeverityCount(ctx context.Context, threshold int) (int64, error) {
	if threshold <= 0 {
		threshold = DefaultHighSeverity
	}
	return l.store.CountHighSeverity(ctx, threshold)
}

// Recent returns up to limit threats, most recently seen first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]store.Threat, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.store.ListThreats(ctx, limit)
}

// StoreAnalysis attaches a generated narrative to a threat record.
func (l *Ledger) StoreAnalysis(ctx context.Context, threatID int64, analysis string) error {
	return l.store.SetThreatAnalysis(ctx, threatID, analysis)
}
