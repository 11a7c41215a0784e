package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

// contractorColumns is the canonical SELECT column list for contractors.
const contractorColumns = `id, name, lat, lng, address, city, state, postal_code, country,
		timezone, working_hours, calendar, skills, rating, max_jobs_per_day,
		active, version, created_at, updated_at`

// SQLiteContractorRepo implements ContractorRepo using a SQLite database.
type SQLiteContractorRepo struct {
	db db.DBTX
}

// NewSQLiteContractorRepo creates a new SQLiteContractorRepo.
func NewSQLiteContractorRepo(conn db.DBTX) *SQLiteContractorRepo {
	return &SQLiteContractorRepo{db: conn}
}

func (r *SQLiteContractorRepo) Create(ctx context.Context, c *domain.Contractor) error {
	if c.Version == 0 {
		c.Version = 1
	}
	hoursJSON, err := marshalJSON("working hours", c.WorkingHours)
	if err != nil {
		return err
	}
	calendarJSON, err := marshalJSON("calendar", c.Calendar)
	if err != nil {
		return err
	}
	skillsJSON, err := marshalJSON("skills", c.Skills)
	if err != nil {
		return err
	}

	query := `INSERT INTO contractors (id, name, lat, lng, address, city, state, postal_code, country,
		timezone, working_hours, calendar, skills, rating, max_jobs_per_day,
		active, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.HomeBase.Lat,
		c.HomeBase.Lng,
		c.HomeBase.Address,
		c.HomeBase.City,
		c.HomeBase.State,
		c.HomeBase.PostalCode,
		c.HomeBase.Country,
		c.HomeBase.Timezone,
		hoursJSON,
		calendarJSON,
		skillsJSON,
		c.Rating,
		c.MaxJobsPerDay,
		boolToInt(c.Active),
		c.Version,
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting contractor: %w", err)
	}
	return nil
}

func (r *SQLiteContractorRepo) GetByID(ctx context.Context, id string) (*domain.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanContractor(row)
}

func (r *SQLiteContractorRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors ORDER BY name`
	if activeOnly {
		query = `SELECT ` + contractorColumns + ` FROM contractors WHERE active = 1 ORDER BY name`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing contractors: %w", err)
	}
	defer rows.Close()
	return r.scanContractors(rows)
}

// Update writes the contractor back, guarded by the version it was loaded at.
// A stale version yields ErrVersionConflict and leaves the row untouched.
func (r *SQLiteContractorRepo) Update(ctx context.Context, c *domain.Contractor) error {
	hoursJSON, err := marshalJSON("working hours", c.WorkingHours)
	if err != nil {
		return err
	}
	calendarJSON, err := marshalJSON("calendar", c.Calendar)
	if err != nil {
		return err
	}
	skillsJSON, err := marshalJSON("skills", c.Skills)
	if err != nil {
		return err
	}

	query := `UPDATE contractors SET name = ?, lat = ?, lng = ?, address = ?, city = ?, state = ?,
		postal_code = ?, country = ?, timezone = ?, working_hours = ?, calendar = ?, skills = ?,
		rating = ?, max_jobs_per_day = ?, active = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.HomeBase.Lat,
		c.HomeBase.Lng,
		c.HomeBase.Address,
		c.HomeBase.City,
		c.HomeBase.State,
		c.HomeBase.PostalCode,
		c.HomeBase.Country,
		c.HomeBase.Timezone,
		hoursJSON,
		calendarJSON,
		skillsJSON,
		c.Rating,
		c.MaxJobsPerDay,
		boolToInt(c.Active),
		c.UpdatedAt.Format(time.RFC3339),
		c.ID,
		c.Version,
	)
	if err != nil {
		return fmt.Errorf("updating contractor: %w", err)
	}
	if err := requireVersionedWrite(ctx, r.db, res, "contractors", "contractor", c.ID); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (r *SQLiteContractorRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM contractors WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting contractor: %w", err)
	}
	return nil
}

func (r *SQLiteContractorRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contractors WHERE active = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active contractors: %w", err)
	}
	return count, nil
}

// scanContractor scans a single contractor from a *sql.Row.
func (r *SQLiteContractorRepo) scanContractor(row *sql.Row) (*domain.Contractor, error) {
	var c domain.Contractor
	var hoursJSON, calendarJSON, skillsJSON string
	var activeInt int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&c.ID, &c.Name, &c.HomeBase.Lat, &c.HomeBase.Lng,
		&c.HomeBase.Address, &c.HomeBase.City, &c.HomeBase.State,
		&c.HomeBase.PostalCode, &c.HomeBase.Country, &c.HomeBase.Timezone,
		&hoursJSON, &calendarJSON, &skillsJSON,
		&c.Rating, &c.MaxJobsPerDay,
		&activeInt, &c.Version, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("contractor: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning contractor: %w", err)
	}
	return r.populateContractor(&c, hoursJSON, calendarJSON, skillsJSON, activeInt, createdAtStr, updatedAtStr)
}

// scanContractors scans multiple contractors from *sql.Rows.
func (r *SQLiteContractorRepo) scanContractors(rows *sql.Rows) ([]*domain.Contractor, error) {
	var out []*domain.Contractor
	for rows.Next() {
		var c domain.Contractor
		var hoursJSON, calendarJSON, skillsJSON string
		var activeInt int
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&c.ID, &c.Name, &c.HomeBase.Lat, &c.HomeBase.Lng,
			&c.HomeBase.Address, &c.HomeBase.City, &c.HomeBase.State,
			&c.HomeBase.PostalCode, &c.HomeBase.Country, &c.HomeBase.Timezone,
			&hoursJSON, &calendarJSON, &skillsJSON,
			&c.Rating, &c.MaxJobsPerDay,
			&activeInt, &c.Version, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning contractor row: %w", err)
		}
		populated, err := r.populateContractor(&c, hoursJSON, calendarJSON, skillsJSON, activeInt, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		out = append(out, populated)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contractors: %w", err)
	}
	return out, nil
}

// populateContractor fills in parsed fields after scanning raw values.
func (r *SQLiteContractorRepo) populateContractor(
	c *domain.Contractor,
	hoursJSON, calendarJSON, skillsJSON string,
	activeInt int,
	createdAtStr, updatedAtStr string,
) (*domain.Contractor, error) {
	if err := unmarshalJSON("working hours", hoursJSON, &c.WorkingHours); err != nil {
		return nil, err
	}
	if err := unmarshalJSON("calendar", calendarJSON, &c.Calendar); err != nil {
		return nil, err
	}
	if err := unmarshalJSON("skills", skillsJSON, &c.Skills); err != nil {
		return nil, err
	}
	c.Active = intToBool(activeInt)

	var parseErr error
	c.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	c.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return c, nil
}
