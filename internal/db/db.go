package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// busyTimeoutMs bounds how long a write waits on a locked database before
// surfacing SQLITE_BUSY. Dispatch commands and a running events tail can
// share one WAL file.
const busyTimeoutMs = 5000

// OpenDB opens the SQLite database at path, creating parent directories for
// file-backed databases, and brings the schema up to date. ":memory:" yields
// a fresh private database.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A second pooled connection to ":memory:" would open a separate empty
	// database, so pin the pool to one connection.
	if path == ":memory:" {
		database.SetMaxOpenConns(1)
	}

	// WAL keeps readers unblocked during assignment writes; foreign keys
	// guard the job, contractor, and assignment references.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMs),
	}
	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database, nil
}
