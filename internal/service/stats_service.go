package service

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
)

const statsCacheKey = "dashboard"

type statsService struct {
	jobs        repository.JobRepo
	assignments repository.AssignmentRepo
	contractors repository.ContractorRepo
	cache       *gocache.Cache
}

// NewStatsService serves dashboard aggregates, memoized for the given TTL so
// a polling dashboard does not hammer the count queries.
func NewStatsService(
	jobs repository.JobRepo,
	assignments repository.AssignmentRepo,
	contractors repository.ContractorRepo,
	ttl time.Duration,
) app.StatsUseCase {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &statsService{
		jobs:        jobs,
		assignments: assignments,
		contractors: contractors,
		cache:       gocache.New(ttl, 2*ttl),
	}
}

func (s *statsService) GetStats(ctx context.Context) (*app.DashboardStats, error) {
	if cached, ok := s.cache.Get(statsCacheKey); ok {
		return cached.(*app.DashboardStats), nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(statsCacheKey, stats)
	return stats, nil
}

func (s *statsService) compute(ctx context.Context) (*app.DashboardStats, error) {
	now := time.Now().UTC()
	stats := &app.DashboardStats{
		ComputedAt:     now,
		JobsByStatus:   map[string]int{},
		JobsByPriority: map[string]int{},
	}

	byStatus, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting jobs by status: %w", err)
	}
	for status, n := range byStatus {
		stats.JobsByStatus[string(status)] = n
		stats.TotalJobs += n
	}

	byPriority, err := s.jobs.CountByPriority(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting jobs by priority: %w", err)
	}
	for priority, n := range byPriority {
		stats.JobsByPriority[string(priority)] = n
	}

	contractors, err := s.contractors.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing contractors: %w", err)
	}
	stats.TotalContractors = len(contractors)
	stats.ActiveContractors, err = s.contractors.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting active contractors: %w", err)
	}

	stats.AssignmentsNext24h, err = s.assignments.CountStartingInRange(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("counting upcoming assignments: %w", err)
	}

	weekAgo := now.AddDate(0, 0, -7)
	stats.CompletedLast7Days, err = s.jobs.CountByStatusSince(ctx, domain.JobCompleted, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("counting completed jobs: %w", err)
	}
	stats.CancelledLast7Days, err = s.jobs.CountByStatusSince(ctx, domain.JobCancelled, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("counting cancelled jobs: %w", err)
	}

	if stats.ActiveContractors > 0 {
		blocking, err := s.assignments.CountBlocking(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting blocking assignments: %w", err)
		}
		stats.AvgAssignmentsPerContractor = float64(blocking) / float64(stats.ActiveContractors)
	}
	return stats, nil
}
