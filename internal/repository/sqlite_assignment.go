package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

// assignmentColumns is the canonical SELECT column list for assignments.
const assignmentColumns = `id, job_id, contractor_id, start_utc, end_utc,
		status, source, audit_id, version, created_at, updated_at`

// blockingStatuses matches assignments that count against availability,
// conflict, and fatigue checks.
const blockingStatuses = `('pending','confirmed','in_progress')`

// SQLiteAssignmentRepo implements AssignmentRepo using a SQLite database.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

// NewSQLiteAssignmentRepo creates a new SQLiteAssignmentRepo.
func NewSQLiteAssignmentRepo(conn db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: conn}
}

func (r *SQLiteAssignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	if a.Version == 0 {
		a.Version = 1
	}
	query := `INSERT INTO assignments (id, job_id, contractor_id, start_utc, end_utc,
		status, source, audit_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.JobID,
		a.ContractorID,
		a.Window.Start.Format(time.RFC3339),
		a.Window.End.Format(time.RFC3339),
		string(a.Status),
		string(a.Source),
		a.AuditID,
		a.Version,
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanAssignment(row)
}

func (r *SQLiteAssignmentRepo) ListByJob(ctx context.Context, jobID string) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE job_id = ? ORDER BY start_utc`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments by job: %w", err)
	}
	defer rows.Close()
	return r.scanAssignments(rows)
}

// ListBlockingByContractor returns non-terminal assignments overlapping the
// half-open range [from, to), ordered by start.
func (r *SQLiteAssignmentRepo) ListBlockingByContractor(ctx context.Context, contractorID string, from, to time.Time) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments
		WHERE contractor_id = ?
		  AND status IN ` + blockingStatuses + `
		  AND start_utc < ?
		  AND end_utc > ?
		ORDER BY start_utc`
	rows, err := r.db.QueryContext(ctx, query,
		contractorID,
		to.UTC().Format(time.RFC3339),
		from.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("listing blocking assignments: %w", err)
	}
	defer rows.Close()
	return r.scanAssignments(rows)
}

// Update writes the assignment back, guarded by the version it was loaded at.
func (r *SQLiteAssignmentRepo) Update(ctx context.Context, a *domain.Assignment) error {
	query := `UPDATE assignments SET job_id = ?, contractor_id = ?, start_utc = ?, end_utc = ?,
		status = ?, source = ?, audit_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		a.JobID,
		a.ContractorID,
		a.Window.Start.Format(time.RFC3339),
		a.Window.End.Format(time.RFC3339),
		string(a.Status),
		string(a.Source),
		a.AuditID,
		a.UpdatedAt.Format(time.RFC3339),
		a.ID,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("updating assignment: %w", err)
	}
	if err := requireVersionedWrite(ctx, r.db, res, "assignments", "assignment", a.ID); err != nil {
		return err
	}
	a.Version++
	return nil
}

func (r *SQLiteAssignmentRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM assignments WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting assignment: %w", err)
	}
	return nil
}

// CountStartingInRange counts blocking assignments starting in [from, to).
func (r *SQLiteAssignmentRepo) CountStartingInRange(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments
		WHERE status IN `+blockingStatuses+` AND start_utc >= ? AND start_utc < ?`,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting assignments in range: %w", err)
	}
	return count, nil
}

func (r *SQLiteAssignmentRepo) CountBlocking(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE status IN `+blockingStatuses).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting blocking assignments: %w", err)
	}
	return count, nil
}

// scanAssignment scans a single assignment from a *sql.Row.
func (r *SQLiteAssignmentRepo) scanAssignment(row *sql.Row) (*domain.Assignment, error) {
	var a domain.Assignment
	var startStr, endStr, statusStr, sourceStr string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&a.ID, &a.JobID, &a.ContractorID, &startStr, &endStr,
		&statusStr, &sourceStr, &a.AuditID, &a.Version, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("assignment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning assignment: %w", err)
	}
	return r.populateAssignment(&a, startStr, endStr, statusStr, sourceStr, createdAtStr, updatedAtStr)
}

// scanAssignments scans multiple assignments from *sql.Rows.
func (r *SQLiteAssignmentRepo) scanAssignments(rows *sql.Rows) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		var startStr, endStr, statusStr, sourceStr string
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&a.ID, &a.JobID, &a.ContractorID, &startStr, &endStr,
			&statusStr, &sourceStr, &a.AuditID, &a.Version, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment row: %w", err)
		}
		populated, err := r.populateAssignment(&a, startStr, endStr, statusStr, sourceStr, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		out = append(out, populated)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return out, nil
}

// populateAssignment fills in parsed fields after scanning raw values.
func (r *SQLiteAssignmentRepo) populateAssignment(
	a *domain.Assignment,
	startStr, endStr, statusStr, sourceStr string,
	createdAtStr, updatedAtStr string,
) (*domain.Assignment, error) {
	a.Status = domain.AssignmentStatus(statusStr)
	a.Source = domain.AssignmentSource(sourceStr)

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start_utc: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return nil, fmt.Errorf("parsing end_utc: %w", err)
	}
	a.Window, err = domain.NewTimeWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("rebuilding assignment window: %w", err)
	}

	a.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return a, nil
}
