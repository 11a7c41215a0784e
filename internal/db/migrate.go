package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateSeedWeights(db); err != nil {
		return fmt.Errorf("seeding default weights config: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS contractors (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		lat              REAL NOT NULL,
		lng              REAL NOT NULL,
		address          TEXT NOT NULL DEFAULT '',
		city             TEXT NOT NULL DEFAULT '',
		state            TEXT NOT NULL DEFAULT '',
		postal_code      TEXT NOT NULL DEFAULT '',
		country          TEXT NOT NULL DEFAULT '',
		timezone         TEXT NOT NULL,
		working_hours    TEXT NOT NULL,
		calendar         TEXT NOT NULL DEFAULT '{}',
		skills           TEXT NOT NULL DEFAULT '[]',
		rating           REAL NOT NULL DEFAULT 50,
		max_jobs_per_day INTEGER NOT NULL DEFAULT 0,
		active           INTEGER NOT NULL DEFAULT 1,
		version          INTEGER NOT NULL DEFAULT 1,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_contractors_active ON contractors(active)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		type            TEXT NOT NULL,
		priority        TEXT NOT NULL DEFAULT 'normal'
		                CHECK(priority IN ('normal','high','rush')),
		status          TEXT NOT NULL DEFAULT 'scheduled'
		                CHECK(status IN ('scheduled','in_progress','completed','cancelled')),
		region          TEXT NOT NULL DEFAULT 'default',
		duration_min    INTEGER NOT NULL CHECK(duration_min > 0),
		window_start    TEXT NOT NULL,
		window_end      TEXT NOT NULL,
		desired_date    TEXT,
		lat             REAL NOT NULL,
		lng             REAL NOT NULL,
		address         TEXT NOT NULL DEFAULT '',
		city            TEXT NOT NULL DEFAULT '',
		state           TEXT NOT NULL DEFAULT '',
		postal_code     TEXT NOT NULL DEFAULT '',
		country         TEXT NOT NULL DEFAULT '',
		timezone        TEXT NOT NULL,
		required_skills TEXT NOT NULL DEFAULT '[]',
		last_audit_id   TEXT NOT NULL DEFAULT '',
		version         INTEGER NOT NULL DEFAULT 1,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_region ON jobs(region)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_window ON jobs(window_start, window_end)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id            TEXT PRIMARY KEY,
		job_id        TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		contractor_id TEXT NOT NULL REFERENCES contractors(id) ON DELETE CASCADE,
		start_utc     TEXT NOT NULL,
		end_utc       TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending'
		              CHECK(status IN ('pending','confirmed','in_progress','completed','cancelled')),
		source        TEXT NOT NULL DEFAULT 'auto'
		              CHECK(source IN ('auto','manual')),
		audit_id      TEXT NOT NULL DEFAULT '',
		version       INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_assignments_job ON assignments(job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_contractor ON assignments(contractor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_window ON assignments(contractor_id, start_utc, end_utc)`,

	`CREATE TABLE IF NOT EXISTS audit_recommendations (
		id                     TEXT PRIMARY KEY,
		request_id             TEXT NOT NULL,
		job_id                 TEXT NOT NULL,
		actor_id               TEXT NOT NULL DEFAULT '',
		request_json           TEXT NOT NULL,
		candidates_json        TEXT NOT NULL,
		config_version         INTEGER NOT NULL,
		selected_contractor_id TEXT NOT NULL DEFAULT '',
		created_at             TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_job ON audit_recommendations(job_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_audit_request ON audit_recommendations(request_id)`,

	`CREATE TABLE IF NOT EXISTS event_log (
		id           TEXT PRIMARY KEY,
		event_type   TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		published_at TEXT NOT NULL,
		published_to TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_event_log_type ON event_log(event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_event_log_published ON event_log(published_at)`,

	`CREATE TABLE IF NOT EXISTS system_configurations (
		id                TEXT PRIMARY KEY,
		version           INTEGER NOT NULL UNIQUE,
		allowed_job_types TEXT NOT NULL DEFAULT '[]',
		allowed_skills    TEXT NOT NULL DEFAULT '[]',
		created_at        TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS weights_configs (
		id           TEXT PRIMARY KEY,
		version      INTEGER NOT NULL UNIQUE CHECK(version >= 1),
		availability REAL NOT NULL,
		rating       REAL NOT NULL,
		distance     REAL NOT NULL,
		tie_breakers TEXT NOT NULL DEFAULT '[]',
		rotation     TEXT NOT NULL DEFAULT '{}',
		is_active    INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	// At most one active config at a time.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_weights_active ON weights_configs(is_active) WHERE is_active = 1`,

	// Regional dispatch multiplier added after the first buffer-formula rollout.
	`ALTER TABLE jobs ADD COLUMN region_multiplier REAL NOT NULL DEFAULT 1.0`,
}

// migrateSeedWeights writes the default scoring weights when the table is
// empty so a fresh database can rank immediately.
func migrateSeedWeights(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weights_configs`).Scan(&count); err != nil {
		return fmt.Errorf("counting weights configs: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `INSERT INTO weights_configs (
		id, version, availability, rating, distance, tie_breakers, rotation, is_active, created_at
	) VALUES (
		'default', 1, 0.4, 0.3, 0.3,
		'["earliest_start","utilization","next_leg_travel"]',
		'{"enabled":true,"boost":5,"underUtilizationThreshold":0.5}',
		1, strftime('%Y-%m-%dT%H:%M:%SZ','now')
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("inserting default weights: %w", err)
	}
	return nil
}
