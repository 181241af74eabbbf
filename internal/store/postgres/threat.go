package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shieldhive/internal/store"
)

const threatColumns = "id, file_hash, threat_name, report_count, validated, last_known_score, last_known_reasons, ai_analysis, last_seen"

// GetThreatForUpdate loads a threat by fingerprint. Inside a transaction the
// row is locked so concurrent reports of the same hash serialize and the
// report count never skips.
func (s *Store) GetThreatForUpdate(ctx context.Context, tx store.DBTransaction, fileHash string) (*store.Threat, error) {
	query := fmt.Sprintf("SELECT %s FROM threats WHERE file_hash = $1", threatColumns)
	if tx != nil {
		query += " FOR UPDATE"
	}

	threat, err := scanThreat(s.getExecutor(tx).QueryRowContext(ctx, query, fileHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load threat: %w", err)
	}
	return threat, nil
}

// CreateThreat inserts a first-sighting threat row.
func (s *Store) CreateThreat(ctx context.Context, tx store.DBTransaction, threat *store.Threat) (int64, error) {
	query := `
		INSERT INTO threats (file_hash, threat_name, report_count, validated, last_known_score, last_known_reasons, ai_analysis, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		threat.FileHash,
		threat.ThreatName,
		threat.ReportCount,
		threat.Validated,
		threat.Score,
		threat.Reasons,
		threat.Analysis,
		threat.LastSeen,
	).Scan(&threat.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to create threat: %w", err)
	}
	return threat.ID, nil
}

// UpdateThreatReport persists the incremented count and last-write-wins
// score/reasons of an existing threat.
func (s *Store) UpdateThreatReport(ctx context.Context, tx store.DBTransaction, threat *store.Threat) error {
	query := `
		UPDATE threats
		SET report_count = $1, last_known_score = $2, last_known_reasons = $3, last_seen = $4
		WHERE id = $5
	`
	_, err := s.getExecutor(tx).ExecContext(ctx, query,
		threat.ReportCount,
		threat.Score,
		threat.Reasons,
		threat.LastSeen,
		threat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update threat %d: %w", threat.ID, err)
	}
	return nil
}

// SetThreatAnalysis stores the generated narrative for a threat.
func (s *Store) SetThreatAnalysis(ctx context.Context, id int64, analysis string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE threats SET ai_analysis = $1 WHERE id = $2", analysis, id)
	if err != nil {
		return fmt.Errorf("failed to store analysis for threat %d: %w", id, err)
	}
	return nil
}

// ListThreats returns up to limit threats, most recently seen first.
func (s *Store) ListThreats(ctx context.Context, limit int) ([]store.Threat, error) {
	query := fmt.Sprintf("SELECT %s FROM threats ORDER BY last_seen DESC LIMIT $1", threatColumns)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}
	defer rows.Close()

	var threats []store.Threat
	for rows.Next() {
		threat, err := scanThreat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan threat: %w", err)
		}
		threats = append(threats, *threat)
	}
	return threats, rows.Err()
}

// CountThreats returns the total number of tracked fingerprints.
func (s *Store) CountThreats(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM threats").Scan(&count)
	return count, err
}

// CountValidatedThreats returns the number of validated threats.
func (s *Store) CountValidatedThreats(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM threats WHERE validated = TRUE").Scan(&count)
	return count, err
}

// CountHighSeverity returns how many threats score at or above the threshold.
func (s *Store) CountHighSeverity(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM threats WHERE last_known_score >= $1", threshold).Scan(&count)
	return count, err
}

func scanThreat(row scanner) (*store.Threat, error) {
	var threat store.Threat
	err := row.Scan(
		&threat.ID,
		&threat.FileHash,
		&threat.ThreatName,
		&threat.ReportCount,
		&threat.Validated,
		&threat.Score,
		&threat.Reasons,
		&threat.Analysis,
		&threat.LastSeen,
	)
	if err != nil {
		return nil, err
	}
	return &threat, nil
}
