package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/dispatchly/smartsched/internal/testutil"
)

func seedStatsData(t *testing.T) (repository.JobRepo, repository.AssignmentRepo, repository.ContractorRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	jobs := repository.NewSQLiteJobRepo(database)
	assignments := repository.NewSQLiteAssignmentRepo(database)
	contractors := repository.NewSQLiteContractorRepo(database)
	ctx := context.Background()

	alice := testutil.NewTestContractor("Alice")
	require.NoError(t, contractors.Create(ctx, alice))
	require.NoError(t, contractors.Create(ctx, testutil.NewTestContractor("Zed", testutil.Inactive())))

	scheduled := testutil.NewTestJob("hvac-repair")
	require.NoError(t, jobs.Create(ctx, scheduled))
	require.NoError(t, jobs.Create(ctx, testutil.NewTestJob("hvac-install", testutil.WithPriority(domain.PriorityRush))))
	require.NoError(t, jobs.Create(ctx, testutil.NewTestJob("hvac-repair", testutil.WithJobStatus(domain.JobCompleted))))
	require.NoError(t, jobs.Create(ctx, testutil.NewTestJob("hvac-repair", testutil.WithJobStatus(domain.JobCancelled))))

	// One blocking assignment starting in two hours.
	now := time.Now().UTC()
	upcoming := testutil.NewTestAssignment(scheduled.ID, alice.ID,
		domain.MustWindow(now.Add(2*time.Hour), now.Add(4*time.Hour)))
	require.NoError(t, assignments.Create(ctx, upcoming))

	return jobs, assignments, contractors
}

func TestGetStats_ComputesAggregates(t *testing.T) {
	jobs, assignments, contractors := seedStatsData(t)
	svc := NewStatsService(jobs, assignments, contractors, time.Hour)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalJobs)
	assert.Equal(t, 2, stats.JobsByStatus["scheduled"])
	assert.Equal(t, 1, stats.JobsByStatus["completed"])
	assert.Equal(t, 1, stats.JobsByStatus["cancelled"])
	assert.Equal(t, 3, stats.JobsByPriority["normal"])
	assert.Equal(t, 1, stats.JobsByPriority["rush"])

	assert.Equal(t, 2, stats.TotalContractors)
	assert.Equal(t, 1, stats.ActiveContractors)

	assert.Equal(t, 1, stats.AssignmentsNext24h)
	assert.Equal(t, 1, stats.CompletedLast7Days)
	assert.Equal(t, 1, stats.CancelledLast7Days)
	assert.Equal(t, 1.0, stats.AvgAssignmentsPerContractor, "one blocking assignment over one active contractor")
	assert.False(t, stats.ComputedAt.IsZero())
}

func TestGetStats_ServesCachedSnapshotWithinTTL(t *testing.T) {
	jobs, assignments, contractors := seedStatsData(t)
	svc := NewStatsService(jobs, assignments, contractors, time.Hour)
	ctx := context.Background()

	first, err := svc.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, first.TotalJobs)

	require.NoError(t, jobs.Create(ctx, testutil.NewTestJob("hvac-repair")))

	second, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, second.TotalJobs, "within the TTL the cached snapshot is served")
	assert.Equal(t, first.ComputedAt, second.ComputedAt)
}

func TestGetStats_RecomputesAfterTTL(t *testing.T) {
	jobs, assignments, contractors := seedStatsData(t)
	svc := NewStatsService(jobs, assignments, contractors, 50*time.Millisecond)
	ctx := context.Background()

	first, err := svc.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, first.TotalJobs)

	require.NoError(t, jobs.Create(ctx, testutil.NewTestJob("hvac-repair")))

	assert.Eventually(t, func() bool {
		stats, err := svc.GetStats(ctx)
		return err == nil && stats.TotalJobs == 5
	}, 2*time.Second, 20*time.Millisecond, "expired cache should recompute")
}
