package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

const weightsColumns = `id, version, availability, rating, distance,
		tie_breakers, rotation, is_active, created_at`

// SQLiteWeightsConfigRepo implements WeightsConfigRepo using a SQLite
// database. A partial unique index keeps at most one row active.
type SQLiteWeightsConfigRepo struct {
	db db.DBTX
}

// NewSQLiteWeightsConfigRepo creates a new SQLiteWeightsConfigRepo.
func NewSQLiteWeightsConfigRepo(conn db.DBTX) *SQLiteWeightsConfigRepo {
	return &SQLiteWeightsConfigRepo{db: conn}
}

func (r *SQLiteWeightsConfigRepo) Create(ctx context.Context, c *domain.WeightsConfig) error {
	tieBreakersJSON, err := marshalJSON("tie breakers", c.TieBreakers)
	if err != nil {
		return err
	}
	rotationJSON, err := marshalJSON("rotation", c.Rotation)
	if err != nil {
		return err
	}
	query := `INSERT INTO weights_configs (id, version, availability, rating, distance,
		tie_breakers, rotation, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.Version,
		c.Weights.Availability,
		c.Weights.Rating,
		c.Weights.Distance,
		tieBreakersJSON,
		rotationJSON,
		boolToInt(c.IsActive),
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting weights config: %w", err)
	}
	return nil
}

func (r *SQLiteWeightsConfigRepo) GetActive(ctx context.Context) (*domain.WeightsConfig, error) {
	query := `SELECT ` + weightsColumns + ` FROM weights_configs WHERE is_active = 1 LIMIT 1`
	return r.scanWeights(r.db.QueryRowContext(ctx, query))
}

func (r *SQLiteWeightsConfigRepo) GetByVersion(ctx context.Context, version int) (*domain.WeightsConfig, error) {
	query := `SELECT ` + weightsColumns + ` FROM weights_configs WHERE version = ?`
	return r.scanWeights(r.db.QueryRowContext(ctx, query, version))
}

func (r *SQLiteWeightsConfigRepo) List(ctx context.Context) ([]*domain.WeightsConfig, error) {
	query := `SELECT ` + weightsColumns + ` FROM weights_configs ORDER BY version DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing weights configs: %w", err)
	}
	defer rows.Close()

	var out []*domain.WeightsConfig
	for rows.Next() {
		var c domain.WeightsConfig
		var tieBreakersJSON, rotationJSON, createdAtStr string
		var activeInt int
		if err := rows.Scan(
			&c.ID, &c.Version, &c.Weights.Availability, &c.Weights.Rating, &c.Weights.Distance,
			&tieBreakersJSON, &rotationJSON, &activeInt, &createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning weights row: %w", err)
		}
		populated, err := r.populateWeights(&c, tieBreakersJSON, rotationJSON, activeInt, createdAtStr)
		if err != nil {
			return nil, err
		}
		out = append(out, populated)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weights configs: %w", err)
	}
	return out, nil
}

// Activate flips the active flag to the config with the given version. The
// two updates are not atomic on their own; callers wrap them in a
// transaction.
func (r *SQLiteWeightsConfigRepo) Activate(ctx context.Context, version int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE weights_configs SET is_active = 0 WHERE is_active = 1`); err != nil {
		return fmt.Errorf("deactivating weights config: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE weights_configs SET is_active = 1 WHERE version = ?`, version)
	if err != nil {
		return fmt.Errorf("activating weights config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking weights activation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("weights config version %d: %w", version, ErrNotFound)
	}
	return nil
}

func (r *SQLiteWeightsConfigRepo) scanWeights(row *sql.Row) (*domain.WeightsConfig, error) {
	var c domain.WeightsConfig
	var tieBreakersJSON, rotationJSON, createdAtStr string
	var activeInt int
	err := row.Scan(
		&c.ID, &c.Version, &c.Weights.Availability, &c.Weights.Rating, &c.Weights.Distance,
		&tieBreakersJSON, &rotationJSON, &activeInt, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("weights config: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning weights config: %w", err)
	}
	return r.populateWeights(&c, tieBreakersJSON, rotationJSON, activeInt, createdAtStr)
}

func (r *SQLiteWeightsConfigRepo) populateWeights(
	c *domain.WeightsConfig,
	tieBreakersJSON, rotationJSON string,
	activeInt int,
	createdAtStr string,
) (*domain.WeightsConfig, error) {
	if err := unmarshalJSON("tie breakers", tieBreakersJSON, &c.TieBreakers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON("rotation", rotationJSON, &c.Rotation); err != nil {
		return nil, err
	}
	c.IsActive = intToBool(activeInt)

	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return c, nil
}
