package app

import (
	"context"

	"github.com/dispatchly/smartsched/internal/domain"
)

type RecommendUseCase interface {
	Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error)
}

type JobUseCase interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	// ListJobs filters by status and region; empty strings match everything.
	ListJobs(ctx context.Context, status, region string) ([]*domain.Job, error)
	AssignJob(ctx context.Context, req AssignRequest) (*AssignResponse, error)
	RescheduleJob(ctx context.Context, req RescheduleRequest) (*domain.Job, error)
	CancelJob(ctx context.Context, req CancelRequest) (*domain.Job, error)
}

type ContractorUseCase interface {
	CreateContractor(ctx context.Context, req CreateContractorRequest) (*domain.Contractor, error)
	GetContractor(ctx context.Context, id string) (*domain.Contractor, error)
	ListContractors(ctx context.Context) ([]*domain.Contractor, error)
}

type StatsUseCase interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

type ConfigUseCase interface {
	ActiveWeights(ctx context.Context) (*domain.WeightsConfig, error)
	ApplyWeights(ctx context.Context, cfg domain.WeightsConfig) (*domain.WeightsConfig, error)
}
