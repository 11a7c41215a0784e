package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/dispatchly/smartsched/internal/db"
)

// FailOnNthExecUoW injects an error on the Nth write inside the transaction.
// Rollback tests use it to fail multi-write operations partway through, e.g.
// after the assignment insert but before the job update.
//
// Writes are counted from 1; reads pass through uncounted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	if err := fn(ctx, &execCounter{DBTX: tx, failOn: u.FailOn, injected: u.Err}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type execCounter struct {
	db.DBTX
	writes   atomic.Int32
	failOn   int32
	injected error
}

func (c *execCounter) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.writes.Add(1) == c.failOn {
		return nil, c.injected
	}
	return c.DBTX.ExecContext(ctx, query, args...)
}
