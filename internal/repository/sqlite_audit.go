package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

const auditColumns = `id, request_id, job_id, actor_id, request_json,
		candidates_json, config_version, selected_contractor_id, created_at`

// SQLiteAuditRepo implements AuditRecommendationRepo using a SQLite database.
type SQLiteAuditRepo struct {
	db db.DBTX
}

// NewSQLiteAuditRepo creates a new SQLiteAuditRepo.
func NewSQLiteAuditRepo(conn db.DBTX) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: conn}
}

func (r *SQLiteAuditRepo) Create(ctx context.Context, rec *domain.AuditRecommendation) error {
	query := `INSERT INTO audit_recommendations (id, request_id, job_id, actor_id,
		request_json, candidates_json, config_version, selected_contractor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.RequestID,
		rec.JobID,
		rec.ActorID,
		rec.RequestJSON,
		rec.CandidatesJSON,
		rec.ConfigVersion,
		rec.SelectedContractorID,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting audit recommendation: %w", err)
	}
	return nil
}

func (r *SQLiteAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditRecommendation, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_recommendations WHERE id = ?`
	return r.scanAudit(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteAuditRepo) GetByRequestID(ctx context.Context, requestID string) (*domain.AuditRecommendation, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_recommendations WHERE request_id = ?`
	return r.scanAudit(r.db.QueryRowContext(ctx, query, requestID))
}

func (r *SQLiteAuditRepo) ListByJob(ctx context.Context, jobID string) ([]*domain.AuditRecommendation, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_recommendations WHERE job_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing audit recommendations: %w", err)
	}
	defer rows.Close()

	var out []*domain.AuditRecommendation
	for rows.Next() {
		var rec domain.AuditRecommendation
		var createdAtStr string
		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.JobID, &rec.ActorID,
			&rec.RequestJSON, &rec.CandidatesJSON, &rec.ConfigVersion,
			&rec.SelectedContractorID, &createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}
	return out, nil
}

// SetSelectedContractor stamps the contractor chosen against a recommendation.
// The record is otherwise immutable.
func (r *SQLiteAuditRepo) SetSelectedContractor(ctx context.Context, id, contractorID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE audit_recommendations SET selected_contractor_id = ? WHERE id = ?`,
		contractorID, id,
	)
	if err != nil {
		return fmt.Errorf("stamping selected contractor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking audit update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("audit recommendation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteAuditRepo) scanAudit(row *sql.Row) (*domain.AuditRecommendation, error) {
	var rec domain.AuditRecommendation
	var createdAtStr string
	err := row.Scan(
		&rec.ID, &rec.RequestID, &rec.JobID, &rec.ActorID,
		&rec.RequestJSON, &rec.CandidatesJSON, &rec.ConfigVersion,
		&rec.SelectedContractorID, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("audit recommendation: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning audit recommendation: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &rec, nil
}
