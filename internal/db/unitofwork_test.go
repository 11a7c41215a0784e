package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func insertContractor(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO contractors (id, name, lat, lng, timezone, working_hours, created_at, updated_at)
		VALUES (?, 'Ava Chen', 40.71, -74.0, 'America/New_York', '[]', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`, id)
	return err
}

// contractorExists reads through WithinTx; a fresh transaction sees only
// committed rows.
func contractorExists(uow *db.SQLiteUnitOfWork, id string) bool {
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		row := tx.QueryRowContext(ctx, `SELECT 1 FROM contractors WHERE id = ?`, id)
		var one int
		if err := row.Scan(&one); err != nil {
			return nil // not found
		}
		found = true
		return nil
	})
	return found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertContractor(ctx, tx, "c1")
	})
	require.NoError(t, err)

	assert.True(t, contractorExists(uow, "c1"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertContractor(ctx, tx, "c2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	assert.False(t, contractorExists(uow, "c2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertContractor(ctx, tx, "c3")
			panic("boom")
		})
	})

	assert.False(t, contractorExists(uow, "c3"), "row should not exist after panic rollback")
}

func TestWithinTx_MultiTableAtomicity(t *testing.T) {
	uow := openTestUoW(t)

	// Insert a job and its assignment in one transaction, then fail.
	// Neither row may survive.
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertContractor(ctx, tx, "c4"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO jobs (id, type, duration_min, window_start, window_end, lat, lng, timezone, created_at, updated_at)
			VALUES ('j4', 'hvac_repair', 120, '2025-01-13T14:00:00Z', '2025-01-13T22:00:00Z', 40.71, -74.0, 'America/New_York', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO assignments (id, job_id, contractor_id, start_utc, end_utc, created_at, updated_at)
			VALUES ('a4', 'j4', 'c4', '2025-01-13T14:00:00Z', '2025-01-13T16:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`); err != nil {
			return err
		}
		return fmt.Errorf("abort after writes")
	})
	require.Error(t, err)

	var jobs, assignments int
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&jobs); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments`).Scan(&assignments)
	})
	assert.Zero(t, jobs, "job insert should roll back with the batch")
	assert.Zero(t, assignments, "assignment insert should roll back with the batch")
}
