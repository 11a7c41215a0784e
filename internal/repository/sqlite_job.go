package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

const dateLayout = "2006-01-02"

// jobColumns is the canonical SELECT column list for jobs.
const jobColumns = `id, type, priority, status, region, region_multiplier,
		duration_min, window_start, window_end, desired_date,
		lat, lng, address, city, state, postal_code, country, timezone,
		required_skills, last_audit_id, version, created_at, updated_at`

// SQLiteJobRepo implements JobRepo using a SQLite database.
type SQLiteJobRepo struct {
	db db.DBTX
}

// NewSQLiteJobRepo creates a new SQLiteJobRepo.
func NewSQLiteJobRepo(conn db.DBTX) *SQLiteJobRepo {
	return &SQLiteJobRepo{db: conn}
}

func (r *SQLiteJobRepo) Create(ctx context.Context, j *domain.Job) error {
	if j.Version == 0 {
		j.Version = 1
	}
	skillsJSON, err := marshalJSON("required skills", j.RequiredSkills)
	if err != nil {
		return err
	}

	query := `INSERT INTO jobs (id, type, priority, status, region, region_multiplier,
		duration_min, window_start, window_end, desired_date,
		lat, lng, address, city, state, postal_code, country, timezone,
		required_skills, last_audit_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		j.ID,
		j.Type,
		string(j.Priority),
		string(j.Status),
		j.Region,
		j.RegionMultiplier,
		j.DurationMinutes,
		j.ServiceWindow.Start.Format(time.RFC3339),
		j.ServiceWindow.End.Format(time.RFC3339),
		nullableTimeToString(j.DesiredDate, dateLayout),
		j.Location.Lat,
		j.Location.Lng,
		j.Location.Address,
		j.Location.City,
		j.Location.State,
		j.Location.PostalCode,
		j.Location.Country,
		j.Location.Timezone,
		skillsJSON,
		j.LastAuditID,
		j.Version,
		j.CreatedAt.Format(time.RFC3339),
		j.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// GetByID loads a job and hydrates its assignment ID references. List does
// not hydrate them; callers needing assignments go through AssignmentRepo.
func (r *SQLiteJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	j, err := r.scanJob(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM assignments WHERE job_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("listing job assignment ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var aid string
		if err := rows.Scan(&aid); err != nil {
			return nil, fmt.Errorf("scanning assignment id: %w", err)
		}
		j.AssignmentIDs = append(j.AssignmentIDs, aid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignment ids: %w", err)
	}
	return j, nil
}

func (r *SQLiteJobRepo) List(ctx context.Context, status, region string) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	var args []any
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if region != "" {
		query += ` AND region = ?`
		args = append(args, region)
	}
	query += ` ORDER BY window_start`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()
	return r.scanJobs(rows)
}

// Update writes the job back, guarded by the version it was loaded at.
func (r *SQLiteJobRepo) Update(ctx context.Context, j *domain.Job) error {
	skillsJSON, err := marshalJSON("required skills", j.RequiredSkills)
	if err != nil {
		return err
	}

	query := `UPDATE jobs SET type = ?, priority = ?, status = ?, region = ?, region_multiplier = ?,
		duration_min = ?, window_start = ?, window_end = ?, desired_date = ?,
		lat = ?, lng = ?, address = ?, city = ?, state = ?, postal_code = ?, country = ?, timezone = ?,
		required_skills = ?, last_audit_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		j.Type,
		string(j.Priority),
		string(j.Status),
		j.Region,
		j.RegionMultiplier,
		j.DurationMinutes,
		j.ServiceWindow.Start.Format(time.RFC3339),
		j.ServiceWindow.End.Format(time.RFC3339),
		nullableTimeToString(j.DesiredDate, dateLayout),
		j.Location.Lat,
		j.Location.Lng,
		j.Location.Address,
		j.Location.City,
		j.Location.State,
		j.Location.PostalCode,
		j.Location.Country,
		j.Location.Timezone,
		skillsJSON,
		j.LastAuditID,
		j.UpdatedAt.Format(time.RFC3339),
		j.ID,
		j.Version,
	)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	if err := requireVersionedWrite(ctx, r.db, res, "jobs", "job", j.ID); err != nil {
		return err
	}
	j.Version++
	return nil
}

func (r *SQLiteJobRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM jobs WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}
	return nil
}

func (r *SQLiteJobRepo) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting jobs by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.JobStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		out[domain.JobStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return out, nil
}

func (r *SQLiteJobRepo) CountByPriority(ctx context.Context) (map[domain.JobPriority]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT priority, COUNT(*) FROM jobs GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("counting jobs by priority: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.JobPriority]int)
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("scanning priority count: %w", err)
		}
		out[domain.JobPriority(priority)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating priority counts: %w", err)
	}
	return out, nil
}

// CountByStatusSince counts jobs in the given status whose last update falls
// at or after since. Status changes stamp updated_at, so this approximates
// "entered the status since".
func (r *SQLiteJobRepo) CountByStatusSince(ctx context.Context, status domain.JobStatus, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE status = ? AND updated_at >= ?`,
		string(status), since.UTC().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting jobs by status since: %w", err)
	}
	return count, nil
}

// scanJob scans a single job from a *sql.Row.
func (r *SQLiteJobRepo) scanJob(row *sql.Row) (*domain.Job, error) {
	var j domain.Job
	var priorityStr, statusStr string
	var windowStartStr, windowEndStr string
	var desiredDateStr sql.NullString
	var skillsJSON string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&j.ID, &j.Type, &priorityStr, &statusStr, &j.Region, &j.RegionMultiplier,
		&j.DurationMinutes, &windowStartStr, &windowEndStr, &desiredDateStr,
		&j.Location.Lat, &j.Location.Lng, &j.Location.Address, &j.Location.City,
		&j.Location.State, &j.Location.PostalCode, &j.Location.Country, &j.Location.Timezone,
		&skillsJSON, &j.LastAuditID, &j.Version, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	return r.populateJob(&j, priorityStr, statusStr, windowStartStr, windowEndStr, desiredDateStr, skillsJSON, createdAtStr, updatedAtStr)
}

// scanJobs scans multiple jobs from *sql.Rows.
func (r *SQLiteJobRepo) scanJobs(rows *sql.Rows) ([]*domain.Job, error) {
	var out []*domain.Job
	for rows.Next() {
		var j domain.Job
		var priorityStr, statusStr string
		var windowStartStr, windowEndStr string
		var desiredDateStr sql.NullString
		var skillsJSON string
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&j.ID, &j.Type, &priorityStr, &statusStr, &j.Region, &j.RegionMultiplier,
			&j.DurationMinutes, &windowStartStr, &windowEndStr, &desiredDateStr,
			&j.Location.Lat, &j.Location.Lng, &j.Location.Address, &j.Location.City,
			&j.Location.State, &j.Location.PostalCode, &j.Location.Country, &j.Location.Timezone,
			&skillsJSON, &j.LastAuditID, &j.Version, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		populated, err := r.populateJob(&j, priorityStr, statusStr, windowStartStr, windowEndStr, desiredDateStr, skillsJSON, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		out = append(out, populated)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return out, nil
}

// populateJob fills in parsed fields after scanning raw values.
func (r *SQLiteJobRepo) populateJob(
	j *domain.Job,
	priorityStr, statusStr string,
	windowStartStr, windowEndStr string,
	desiredDateStr sql.NullString,
	skillsJSON string,
	createdAtStr, updatedAtStr string,
) (*domain.Job, error) {
	j.Priority = domain.JobPriority(priorityStr)
	j.Status = domain.JobStatus(statusStr)
	j.DesiredDate = parseNullableTime(desiredDateStr, dateLayout)

	if err := unmarshalJSON("required skills", skillsJSON, &j.RequiredSkills); err != nil {
		return nil, err
	}

	start, err := time.Parse(time.RFC3339, windowStartStr)
	if err != nil {
		return nil, fmt.Errorf("parsing window_start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, windowEndStr)
	if err != nil {
		return nil, fmt.Errorf("parsing window_end: %w", err)
	}
	j.ServiceWindow, err = domain.NewTimeWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("rebuilding service window: %w", err)
	}

	j.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	j.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return j, nil
}
