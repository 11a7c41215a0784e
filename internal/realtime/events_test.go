package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchly/smartsched/internal/domain"
)

func mustWindow(t *testing.T, start, end time.Time) domain.TimeWindow {
	t.Helper()
	w, err := domain.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func decodePayload(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(payload, &m))
	return m
}

func TestEncode_RecommendationReady(t *testing.T) {
	out, err := encode(domain.RecommendationReadyEvent{
		JobID:         "job-1",
		RequestID:     "req-9",
		Region:        "nyc-metro",
		ConfigVersion: 3,
		At:            time.Date(2025, 6, 16, 14, 30, 0, 250_000_000, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "RecommendationReady", out.name)
	assert.Equal(t, []string{"dispatch/nyc-metro"}, out.groups)

	m := decodePayload(t, out.payload)
	assert.Equal(t, "RecommendationReady", m["type"])
	assert.Equal(t, "job-1", m["jobId"])
	assert.Equal(t, "req-9", m["requestId"])
	assert.Equal(t, "nyc-metro", m["region"])
	assert.Equal(t, float64(3), m["configVersion"])
	assert.Equal(t, "2025-06-16T14:30:00.250Z", m["generatedAt"])
}

func TestEncode_JobAssigned(t *testing.T) {
	window := mustWindow(t,
		time.Date(2025, 6, 17, 13, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 17, 15, 0, 0, 0, time.UTC),
	)
	out, err := encode(domain.JobAssignedEvent{
		JobID:        "job-1",
		ContractorID: "con-7",
		AssignmentID: "asg-4",
		Window:       window,
		Region:       "nyc-metro",
		Source:       domain.SourceManual,
		AuditID:      "audit-2",
		At:           time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "JobAssigned", out.name)
	assert.Equal(t, []string{"dispatch/nyc-metro", "contractor/con-7"}, out.groups)

	m := decodePayload(t, out.payload)
	assert.Equal(t, "JobAssigned", m["type"])
	assert.Equal(t, "job-1", m["jobId"])
	assert.Equal(t, "con-7", m["contractorId"])
	assert.Equal(t, "asg-4", m["assignmentId"])
	assert.Equal(t, "2025-06-17T13:00:00.000Z", m["startUtc"])
	assert.Equal(t, "2025-06-17T15:00:00.000Z", m["endUtc"])
	assert.Equal(t, "manual", m["source"])
	assert.Equal(t, "audit-2", m["auditId"])
}

func TestEncode_JobRescheduled_FansOutToAssignedContractors(t *testing.T) {
	prev := mustWindow(t,
		time.Date(2025, 6, 17, 13, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 17, 15, 0, 0, 0, time.UTC),
	)
	next := mustWindow(t,
		time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 18, 11, 0, 0, 0, time.UTC),
	)
	out, err := encode(domain.JobRescheduledEvent{
		JobID:         "job-1",
		Previous:      prev,
		New:           next,
		Region:        "nyc-metro",
		ContractorIDs: []string{"con-1", "con-2"},
		At:            time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"dispatch/nyc-metro",
		"contractor/con-1",
		"contractor/con-2",
	}, out.groups)

	m := decodePayload(t, out.payload)
	assert.Equal(t, "JobRescheduled", m["type"])
	assert.Equal(t, "2025-06-17T13:00:00.000Z", m["previousStartUtc"])
	assert.Equal(t, "2025-06-17T15:00:00.000Z", m["previousEndUtc"])
	assert.Equal(t, "2025-06-18T09:00:00.000Z", m["newStartUtc"])
	assert.Equal(t, "2025-06-18T11:00:00.000Z", m["newEndUtc"])
}

func TestEncode_JobCancelled(t *testing.T) {
	out, err := encode(domain.JobCancelledEvent{
		JobID:         "job-1",
		Reason:        "customer request",
		Region:        "nyc-metro",
		ContractorIDs: []string{"con-1"},
		At:            time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dispatch/nyc-metro", "contractor/con-1"}, out.groups)

	m := decodePayload(t, out.payload)
	assert.Equal(t, "JobCancelled", m["type"])
	assert.Equal(t, "customer request", m["reason"])
	assert.Equal(t, "nyc-metro", m["region"])
}

func TestEncode_CancelledWithoutContractorsStaysOnDispatch(t *testing.T) {
	out, err := encode(domain.JobCancelledEvent{
		JobID:  "job-1",
		Reason: "never assigned",
		Region: "west",
		At:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dispatch/west"}, out.groups)
}

type fakeEvent struct{}

func (fakeEvent) EventType() string     { return "Fake" }
func (fakeEvent) OccurredAt() time.Time { return time.Now() }

func TestEncode_UnknownEventRejected(t *testing.T) {
	_, err := encode(fakeEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestWireTime_NormalizesToUTC(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 09:30 CDT is 14:30 UTC.
	local := time.Date(2025, 6, 16, 9, 30, 0, 0, chicago)
	assert.Equal(t, "2025-06-16T14:30:00.000Z", wireTime(local))
}
