package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacyV1ToCurrentSchema simulates upgrading an existing
// database that was created with an older schema version. Verifies that:
// 1. Data inserted under the old schema survives migration
// 2. New columns are added with correct defaults
// 3. New tables are created and seeded
// 4. Indexes and constraints are applied correctly
func TestMigrate_UpgradePath_LegacyV1ToCurrentSchema(t *testing.T) {
	// Create a raw DB without using OpenDB (to manually control schema).
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	// Apply a "legacy" schema: jobs WITHOUT region_multiplier, and no
	// weights_configs table at all. This represents the most common upgrade
	// path: a deployment from before scoring weights became configurable.
	legacyStatements := []string{
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
		`CREATE TABLE IF NOT EXISTS event_log (
			id           TEXT PRIMARY KEY,
			event_type   TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			published_at TEXT NOT NULL,
			published_to TEXT NOT NULL DEFAULT '[]'
		)`,
	}

	for i, stmt := range legacyStatements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "legacy statement %d failed", i)
	}

	// Insert legacy data BEFORE running migrations.
	_, err = db.Exec(`INSERT INTO contractors (id, name, lat, lng, timezone, working_hours, skills, rating, created_at, updated_at)
		VALUES ('c1', 'Ava Chen', 40.71, -74.0, 'America/New_York', '[{"day":1,"startMinute":540,"endMinute":1020,"timezone":"America/New_York"}]', '["hvac"]', 82.5, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO jobs (id, type, duration_min, window_start, window_end, lat, lng, timezone, required_skills, created_at, updated_at)
		VALUES ('j1', 'hvac_repair', 120, '2025-01-13T14:00:00Z', '2025-01-13T22:00:00Z', 40.70, -73.99, 'America/New_York', '["hvac"]', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO assignments (id, job_id, contractor_id, start_utc, end_utc, status, created_at, updated_at)
		VALUES ('a1', 'j1', 'c1', '2025-01-13T14:00:00Z', '2025-01-13T16:00:00Z', 'confirmed', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO event_log (id, event_type, payload_json, published_at)
		VALUES ('e1', 'JobAssigned', '{}', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	// === Run current migrations on legacy DB ===
	err = Migrate(db)
	require.NoError(t, err, "migration on legacy schema should succeed")

	// === Verify data survived ===
	var contractorName string
	var rating float64
	err = db.QueryRow(`SELECT name, rating FROM contractors WHERE id = 'c1'`).Scan(&contractorName, &rating)
	require.NoError(t, err)
	assert.Equal(t, "Ava Chen", contractorName, "contractor should survive migration")
	assert.Equal(t, 82.5, rating)

	var jobType string
	var durationMin int
	err = db.QueryRow(`SELECT type, duration_min FROM jobs WHERE id = 'j1'`).Scan(&jobType, &durationMin)
	require.NoError(t, err)
	assert.Equal(t, "hvac_repair", jobType, "job should survive migration")
	assert.Equal(t, 120, durationMin)

	var assignStatus string
	err = db.QueryRow(`SELECT status FROM assignments WHERE id = 'a1'`).Scan(&assignStatus)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", assignStatus, "assignment should survive migration")

	var eventType string
	err = db.QueryRow(`SELECT event_type FROM event_log WHERE id = 'e1'`).Scan(&eventType)
	require.NoError(t, err)
	assert.Equal(t, "JobAssigned", eventType, "event log entry should survive migration")

	// === Verify new columns added with defaults ===

	// jobs.region_multiplier should default to 1.0.
	var multiplier float64
	err = db.QueryRow(`SELECT region_multiplier FROM jobs WHERE id = 'j1'`).Scan(&multiplier)
	require.NoError(t, err)
	assert.Equal(t, 1.0, multiplier, "legacy job should get default region_multiplier")

	// === Verify new tables created and seeded ===

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='weights_configs'`).Scan(&name)
	require.NoError(t, err, "weights_configs table should be created")

	var seedVersion, seedActive int
	err = db.QueryRow(`SELECT version, is_active FROM weights_configs WHERE id = 'default'`).Scan(&seedVersion, &seedActive)
	require.NoError(t, err, "default weights should be seeded into the new table")
	assert.Equal(t, 1, seedVersion)
	assert.Equal(t, 1, seedActive)

	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='audit_recommendations'`).Scan(&name)
	require.NoError(t, err, "audit_recommendations table should be created")

	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='system_configurations'`).Scan(&name)
	require.NoError(t, err, "system_configurations table should be created")

	// === Verify new indexes and constraints apply ===

	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_assignments_window'`).Scan(&name)
	require.NoError(t, err, "assignment window index should be created")

	// The single-active invariant holds on the upgraded DB too.
	_, err = db.Exec(`INSERT INTO weights_configs (id, version, availability, rating, distance, is_active, created_at)
		VALUES ('w2', 2, 0.4, 0.3, 0.3, 1, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "second active weights config should be rejected after upgrade")

	// === Verify idempotency: running Migrate again should not break anything ===
	err = Migrate(db)
	require.NoError(t, err, "re-running Migrate on already-migrated DB should succeed")

	// Data should still be intact.
	var nameAfter string
	err = db.QueryRow(`SELECT name FROM contractors WHERE id = 'c1'`).Scan(&nameAfter)
	require.NoError(t, err)
	assert.Equal(t, "Ava Chen", nameAfter)
}
