package testutil

import (
	"database/sql"
	"testing"

	"github.com/dispatchly/smartsched/internal/db"
)

// NewTestDB opens a fresh in-memory SQLite database with the full schema
// applied. It is closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW returns a real SQLiteUnitOfWork over the test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
