package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// retryWrite retries a write until it lands, backing off briefly between
// attempts. Covers both SQLITE_BUSY and optimistic version conflicts.
func retryWrite(fn func() error) error {
	const maxAttempts = 50
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Millisecond * time.Duration(attempt%10+1))
	}
	return err
}

// TestConcurrentAccess_ReadDuringWrite verifies that blocking-window queries
// do not block or see half-written rows while assignments are being created.
// SQLite WAL mode allows concurrent readers with a single writer, which is the
// normal operating mode for a dispatch desk receiving bookings.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	assignmentRepo := NewSQLiteAssignmentRepo(database)
	jobID, contractorID := seedAssignmentParents(t, database)

	from := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	var wg sync.WaitGroup

	// Writer goroutine: book 20 half-hour slots sequentially.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			w := testutil.UTCWindow(
				fmt.Sprintf("2025-06-16T%02d:00:00Z", i),
				fmt.Sprintf("2025-06-16T%02d:30:00Z", i),
			)
			a := testutil.NewTestAssignment(jobID, contractorID, w)
			if err := retryWrite(func() error { return assignmentRepo.Create(ctx, a) }); err != nil {
				t.Errorf("writer: create assignment %d: %v", i, err)
				return
			}
		}
	}()

	// Reader goroutines: repeatedly query the day while writes happen.
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				blocking, err := assignmentRepo.ListBlockingByContractor(ctx, contractorID, from, to)
				if err != nil {
					t.Errorf("reader %d: list blocking: %v", reader, err)
					return
				}
				// Rows should be a consistent snapshot (not half-written).
				for _, a := range blocking {
					if a.ID == "" || a.ContractorID == "" {
						t.Errorf("reader %d: got assignment with empty ID", reader)
					}
					if !a.Window.End.After(a.Window.Start) {
						t.Errorf("reader %d: got inverted window", reader)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	// Final check: all 20 bookings should be present.
	blocking, err := assignmentRepo.ListBlockingByContractor(ctx, contractorID, from, to)
	require.NoError(t, err)
	assert.Equal(t, 20, len(blocking))
}

// TestConcurrentAccess_SequentialWritesConcurrentReads verifies that building
// up state through sequential writes while multiple readers query concurrently
// produces correct, consistent results with no data races.
func TestConcurrentAccess_SequentialWritesConcurrentReads(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	contractorRepo := NewSQLiteContractorRepo(database)
	jobRepo := NewSQLiteJobRepo(database)
	assignmentRepo := NewSQLiteAssignmentRepo(database)

	const bookings = 10

	// Phase 1: sequentially create contractors + jobs + assignments. This
	// simulates normal dispatch usage (one booking at a time).
	for i := 0; i < bookings; i++ {
		c := testutil.NewTestContractor(fmt.Sprintf("Contractor-%d", i))
		require.NoError(t, contractorRepo.Create(ctx, c))

		j := testutil.NewTestJob("hvac_repair", testutil.WithRegion(fmt.Sprintf("region-%d", i)))
		require.NoError(t, jobRepo.Create(ctx, j))

		a := testutil.NewTestAssignment(j.ID, c.ID,
			testutil.UTCWindow("2025-06-16T14:00:00Z", "2025-06-16T16:00:00Z"))
		require.NoError(t, assignmentRepo.Create(ctx, a))
	}

	// Phase 2: launch many concurrent readers to stress-test read consistency.
	var wg sync.WaitGroup
	const readers = 20

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()

			contractors, err := contractorRepo.List(ctx, true)
			if err != nil {
				t.Errorf("reader %d: list contractors: %v", reader, err)
				return
			}
			if len(contractors) != bookings {
				t.Errorf("reader %d: expected %d contractors, got %d", reader, bookings, len(contractors))
			}

			jobs, err := jobRepo.List(ctx, "", "")
			if err != nil {
				t.Errorf("reader %d: list jobs: %v", reader, err)
				return
			}
			if len(jobs) != bookings {
				t.Errorf("reader %d: expected %d jobs, got %d", reader, bookings, len(jobs))
			}

			count, err := assignmentRepo.CountBlocking(ctx)
			if err != nil {
				t.Errorf("reader %d: count blocking: %v", reader, err)
				return
			}
			if count != bookings {
				t.Errorf("reader %d: expected %d blocking assignments, got %d", reader, bookings, count)
			}
		}(r)
	}

	wg.Wait()
}

// TestConcurrentAccess_VersionGuard_NoLostUpdates drives many writers through
// the optimistic version check on a single assignment. Every writer retries
// until its update lands, so the final version counts each write exactly once.
func TestConcurrentAccess_VersionGuard_NoLostUpdates(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	assignmentRepo := NewSQLiteAssignmentRepo(database)
	jobID, contractorID := seedAssignmentParents(t, database)

	a := testutil.NewTestAssignment(jobID, contractorID,
		testutil.UTCWindow("2025-06-16T14:00:00Z", "2025-06-16T16:00:00Z"))
	require.NoError(t, assignmentRepo.Create(ctx, a))

	const workers = 10
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := retryWrite(func() error {
				current, err := assignmentRepo.GetByID(ctx, a.ID)
				if err != nil {
					return err
				}
				current.UpdatedAt = time.Now().UTC()
				return assignmentRepo.Update(ctx, current)
			})
			if err != nil {
				errCh <- err
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	final, err := assignmentRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+workers, final.Version, "each writer should land exactly once")
}
