package postgres

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return &Store{db: db}, mock
}

func closeStore(t *testing.T, s *Store, mock sqlmock.Sqlmock) {
	t.Helper()
	mock.ExpectClose()
	if err := s.Close(); err != nil && err != sql.ErrConnDone {
		t.Errorf("close failed: %v", err)
	}
}
