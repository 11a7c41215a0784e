package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

// SQLiteSystemConfigurationRepo implements SystemConfigurationRepo using a
// SQLite database. Configurations are append-only; the highest version wins.
type SQLiteSystemConfigurationRepo struct {
	db db.DBTX
}

// NewSQLiteSystemConfigurationRepo creates a new SQLiteSystemConfigurationRepo.
func NewSQLiteSystemConfigurationRepo(conn db.DBTX) *SQLiteSystemConfigurationRepo {
	return &SQLiteSystemConfigurationRepo{db: conn}
}

func (r *SQLiteSystemConfigurationRepo) Create(ctx context.Context, c *domain.SystemConfiguration) error {
	jobTypesJSON, err := marshalJSON("allowed job types", c.AllowedJobTypes)
	if err != nil {
		return err
	}
	skillsJSON, err := marshalJSON("allowed skills", c.AllowedSkills)
	if err != nil {
		return err
	}
	query := `INSERT INTO system_configurations (id, version, allowed_job_types, allowed_skills, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.Version,
		jobTypesJSON,
		skillsJSON,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting system configuration: %w", err)
	}
	return nil
}

// GetLatest returns the highest-versioned configuration. ErrNotFound when no
// configuration has been written yet; callers treat that as allow-all.
func (r *SQLiteSystemConfigurationRepo) GetLatest(ctx context.Context) (*domain.SystemConfiguration, error) {
	query := `SELECT id, version, allowed_job_types, allowed_skills, created_at
		FROM system_configurations ORDER BY version DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	var c domain.SystemConfiguration
	var jobTypesJSON, skillsJSON, createdAtStr string
	err := row.Scan(&c.ID, &c.Version, &jobTypesJSON, &skillsJSON, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("system configuration: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning system configuration: %w", err)
	}
	if err := unmarshalJSON("allowed job types", jobTypesJSON, &c.AllowedJobTypes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON("allowed skills", skillsJSON, &c.AllowedSkills); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}
