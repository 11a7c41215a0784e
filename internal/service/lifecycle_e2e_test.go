package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/realtime"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/dispatchly/smartsched/internal/testutil"
)

// lifecycleEnv wires every service over one database with a real hub and
// event log, the same shape main assembles.
type lifecycleEnv struct {
	hub         *realtime.Hub
	eventLog    repository.EventLogRepo
	contractors repository.ContractorRepo
	jobs        repository.JobRepo
	assignments repository.AssignmentRepo
	audits      repository.AuditRecommendationRepo

	contractorSvc app.ContractorUseCase
	jobSvc        app.JobUseCase
	recommendSvc  app.RecommendUseCase
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	contractors := repository.NewSQLiteContractorRepo(database)
	jobs := repository.NewSQLiteJobRepo(database)
	assignments := repository.NewSQLiteAssignmentRepo(database)
	audits := repository.NewSQLiteAuditRepo(database)
	weights := repository.NewSQLiteWeightsConfigRepo(database)
	sysconfigs := repository.NewSQLiteSystemConfigurationRepo(database)
	eventLog := repository.NewSQLiteEventLogRepo(database)
	uow := testutil.NewTestUoW(database)

	hub := realtime.NewHub()
	publisher := realtime.NewPublisher(hub, eventLog, nil)
	provider := config.NewWeightsProvider(weights, time.Minute)
	cfg := config.DefaultConfig()

	return &lifecycleEnv{
		hub:         hub,
		eventLog:    eventLog,
		contractors: contractors,
		jobs:        jobs,
		assignments: assignments,
		audits:      audits,
		contractorSvc: NewContractorService(contractors, sysconfigs, nil),
		jobSvc: NewJobService(
			uow, jobs, contractors, assignments, sysconfigs,
			nil, publisher, cfg,
		),
		recommendSvc: NewRecommendService(
			contractors, jobs, assignments, audits,
			provider, stubEstimator{}, publisher, cfg,
		),
	}
}

func nextMessage(t *testing.T, sub *realtime.Subscription) realtime.Message {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a realtime message")
		return realtime.Message{}
	}
}

func decodePayload(t *testing.T, msg realtime.Message) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

// TestJobLifecycle_EndToEnd walks one job through the full flow: register a
// contractor → create the job → recommend with fan-out → assign the offered
// slot against the audit record → reschedule → cancel, watching the dispatch
// stream and the event log at each mutation.
func TestJobLifecycle_EndToEnd(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	sub := env.hub.Subscribe(16, realtime.DispatchGroup("default"))
	defer sub.Close()

	// === Step 1: Register a contractor from wall-clock inputs ===
	var hours []app.WorkingHoursInput
	for d := time.Monday; d <= time.Friday; d++ {
		hours = append(hours, app.WorkingHoursInput{Day: d, Start: "09:00", End: "17:00"})
	}
	alice, err := env.contractorSvc.CreateContractor(ctx, app.CreateContractorRequest{
		Name:         "Alice Rivera",
		HomeBase:     domain.GeoLocation{Lat: 40.7128, Lng: -74.0060, Timezone: "America/New_York"},
		WorkingHours: hours,
		Skills:       []string{"HVAC"},
		Rating:       88,
	})
	require.NoError(t, err)
	require.True(t, alice.Active)

	// === Step 2: Create a job inside her Monday shift ===
	job, err := env.jobSvc.CreateJob(ctx, app.CreateJobRequest{
		Type:            "hvac_repair",
		DurationMinutes: 120,
		WindowStart:     time.Date(2025, 6, 16, 13, 0, 0, 0, time.UTC),
		WindowEnd:       time.Date(2025, 6, 16, 21, 0, 0, 0, time.UTC),
		RequiredSkills:  []string{"hvac"},
		Location:        domain.GeoLocation{Lat: 40.7061, Lng: -74.0087, Timezone: "America/New_York"},
	})
	require.NoError(t, err)
	assert.Equal(t, "default", job.Region)

	// === Step 3: Recommend with fan-out enabled ===
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	req := app.NewRecommendRequest(job.ID)
	req.ActorID = "dispatcher-1"
	req.Publish = true
	req.Now = &now

	resp, err := env.recommendSvc.Recommend(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, alice.ID, resp.BestRecommendationContractorID)
	require.NotEmpty(t, resp.Candidates[0].Slots)

	msg := nextMessage(t, sub)
	assert.Equal(t, domain.EventRecommendationReady, msg.EventName)
	assert.Equal(t, realtime.DispatchGroup("default"), msg.Group)
	assert.Equal(t, resp.RequestID, decodePayload(t, msg)["requestId"])

	// The audit record lands on its own goroutine.
	require.Eventually(t, func() bool {
		_, err := env.audits.GetByRequestID(ctx, resp.RequestID)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	audit, err := env.audits.GetByRequestID(ctx, resp.RequestID)
	require.NoError(t, err)

	// === Step 4: Assign the first offered slot against that audit ===
	slot := resp.Candidates[0].Slots[0]
	assignResp, err := env.jobSvc.AssignJob(ctx, app.AssignRequest{
		JobID:        job.ID,
		ContractorID: alice.ID,
		Start:        slot.Window.Start,
		End:          slot.Window.End,
		ActorID:      "dispatcher-1",
		AuditID:      audit.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentConfirmed, assignResp.Assignment.Status)
	assert.Equal(t, audit.ID, assignResp.Job.LastAuditID)

	msg = nextMessage(t, sub)
	assert.Equal(t, domain.EventJobAssigned, msg.EventName)
	payload := decodePayload(t, msg)
	assert.Equal(t, alice.ID, payload["contractorId"])
	assert.Equal(t, audit.ID, payload["auditId"])

	stamped, err := env.audits.GetByRequestID(ctx, resp.RequestID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stamped.SelectedContractorID)

	// === Step 5: Reschedule — the assignment follows the window ===
	newWindow := testutil.UTCWindow("2025-06-16T15:00:00Z", "2025-06-16T17:00:00Z")
	moved, err := env.jobSvc.RescheduleJob(ctx, app.RescheduleRequest{
		JobID:    job.ID,
		NewStart: newWindow.Start,
		NewEnd:   newWindow.End,
		ActorID:  "dispatcher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, newWindow.Start, moved.ServiceWindow.Start)
	assert.Equal(t, newWindow.End, moved.ServiceWindow.End)

	msg = nextMessage(t, sub)
	assert.Equal(t, domain.EventJobRescheduled, msg.EventName)

	assignment, err := env.assignments.GetByID(ctx, assignResp.Assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, newWindow.Start, assignment.Window.Start)
	assert.Equal(t, newWindow.End, assignment.Window.End)
	assert.Equal(t, domain.AssignmentConfirmed, assignment.Status)

	// === Step 6: Cancel — assignment released, reason on the wire ===
	cancelled, err := env.jobSvc.CancelJob(ctx, app.CancelRequest{
		JobID:   job.ID,
		Reason:  "customer cancelled",
		ActorID: "dispatcher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobCancelled, cancelled.Status)

	msg = nextMessage(t, sub)
	assert.Equal(t, domain.EventJobCancelled, msg.EventName)
	assert.Equal(t, "customer cancelled", decodePayload(t, msg)["reason"])

	assignment, err = env.assignments.GetByID(ctx, assignResp.Assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCancelled, assignment.Status)

	// === Step 7: Event log holds one row per delivered group ===
	all, err := env.eventLog.ListRecent(ctx, "", 50)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	assigned, err := env.eventLog.ListRecent(ctx, domain.EventJobAssigned, 10)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.ElementsMatch(t,
		[]string{realtime.DispatchGroup("default"), realtime.ContractorGroup(alice.ID)},
		[]string{assigned[0].PublishedTo[0], assigned[1].PublishedTo[0]})

	ready, err := env.eventLog.ListRecent(ctx, domain.EventRecommendationReady, 10)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, []string{realtime.DispatchGroup("default")}, ready[0].PublishedTo)
}

// TestLifecycle_ContractorStreamGetsAssignmentsOnly pins the group targeting:
// a contractor's private stream sees assignments touching them but not the
// dispatch-only recommendation traffic.
func TestLifecycle_ContractorStreamGetsAssignmentsOnly(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	alice := testutil.NewTestContractor("Alice")
	require.NoError(t, env.contractors.Create(ctx, alice))
	job := testutil.NewTestJob("hvac_repair")
	require.NoError(t, env.jobs.Create(ctx, job))

	sub := env.hub.Subscribe(8, realtime.ContractorGroup(alice.ID))
	defer sub.Close()

	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	req := app.NewRecommendRequest(job.ID)
	req.Publish = true
	req.Now = &now
	_, err := env.recommendSvc.Recommend(ctx, req)
	require.NoError(t, err)

	_, err = env.jobSvc.AssignJob(ctx, app.AssignRequest{
		JobID:        job.ID,
		ContractorID: alice.ID,
		Start:        time.Date(2025, 6, 16, 14, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 6, 16, 16, 0, 0, 0, time.UTC),
		ActorID:      "dispatcher-1",
	})
	require.NoError(t, err)

	// Were the recommendation broadcast to her stream it would arrive first.
	msg := nextMessage(t, sub)
	assert.Equal(t, domain.EventJobAssigned, msg.EventName)
}
