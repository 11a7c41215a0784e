package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when an optimistic-concurrency update finds
// the row's version no longer matches the aggregate's. The caller reloads and
// retries or surfaces the conflict.
var ErrVersionConflict = errors.New("version conflict")

type ContractorRepo interface {
	Create(ctx context.Context, c *domain.Contractor) error
	GetByID(ctx context.Context, id string) (*domain.Contractor, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Contractor, error)
	Update(ctx context.Context, c *domain.Contractor) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int, error)
}

type JobRepo interface {
	Create(ctx context.Context, j *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	// List filters by status and region; empty strings match everything.
	List(ctx context.Context, status, region string) ([]*domain.Job, error)
	Update(ctx context.Context, j *domain.Job) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error)
	CountByPriority(ctx context.Context) (map[domain.JobPriority]int, error)
	CountByStatusSince(ctx context.Context, status domain.JobStatus, since time.Time) (int, error)
}

type AssignmentRepo interface {
	Create(ctx context.Context, a *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.Assignment, error)
	// ListBlockingByContractor returns assignments in non-terminal statuses
	// whose windows overlap [from, to). Completed and cancelled rows never
	// block and are excluded.
	ListBlockingByContractor(ctx context.Context, contractorID string, from, to time.Time) ([]*domain.Assignment, error)
	Update(ctx context.Context, a *domain.Assignment) error
	Delete(ctx context.Context, id string) error
	CountStartingInRange(ctx context.Context, from, to time.Time) (int, error)
	CountBlocking(ctx context.Context) (int, error)
}

type AuditRecommendationRepo interface {
	Create(ctx context.Context, r *domain.AuditRecommendation) error
	GetByID(ctx context.Context, id string) (*domain.AuditRecommendation, error)
	GetByRequestID(ctx context.Context, requestID string) (*domain.AuditRecommendation, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.AuditRecommendation, error)
	SetSelectedContractor(ctx context.Context, id, contractorID string) error
}

type EventLogRepo interface {
	Append(ctx context.Context, e *domain.EventLogEntry) error
	// ListRecent returns the newest entries first, optionally filtered by
	// event type (empty matches all).
	ListRecent(ctx context.Context, eventType string, limit int) ([]*domain.EventLogEntry, error)
}

type SystemConfigurationRepo interface {
	Create(ctx context.Context, c *domain.SystemConfiguration) error
	GetLatest(ctx context.Context) (*domain.SystemConfiguration, error)
}

type WeightsConfigRepo interface {
	Create(ctx context.Context, c *domain.WeightsConfig) error
	GetActive(ctx context.Context) (*domain.WeightsConfig, error)
	GetByVersion(ctx context.Context, version int) (*domain.WeightsConfig, error)
	List(ctx context.Context) ([]*domain.WeightsConfig, error)
	// Activate deactivates the current active config and activates the one
	// with the given version. Callers run it inside a transaction.
	Activate(ctx context.Context, version int) error
}
