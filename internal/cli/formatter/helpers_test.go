package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dispatchly/smartsched/internal/domain"
)

func TestFormatWindow_CollapsesSharedDate(t *testing.T) {
	w := domain.TimeWindow{
		Start: time.Date(2025, 6, 16, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 16, 15, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, "2025-06-16 13:00–15:30Z", FormatWindow(w))
}

func TestFormatWindow_KeepsBothDatesWhenSpanningMidnight(t *testing.T) {
	w := domain.TimeWindow{
		Start: time.Date(2025, 6, 16, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 17, 2, 0, 0, 0, time.UTC),
	}

	out := FormatWindow(w)

	assert.Contains(t, out, "2025-06-16 22:00")
	assert.Contains(t, out, "2025-06-17 02:00Z")
}

func TestLocalWindow_ConvertsAndNamesZone(t *testing.T) {
	w := domain.TimeWindow{
		Start: time.Date(2025, 6, 16, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 16, 15, 0, 0, 0, time.UTC),
	}

	out := LocalWindow(w, "America/New_York")

	// EDT is UTC-4 in June.
	assert.Contains(t, out, "09:00–11:00")
	assert.Contains(t, out, "America/New_York")
}

func TestLocalWindow_BadZoneFallsBackToUTC(t *testing.T) {
	w := domain.TimeWindow{
		Start: time.Date(2025, 6, 16, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 16, 15, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, FormatWindow(w), LocalWindow(w, "Mars/Olympus"))
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{
		0:   "0m",
		45:  "45m",
		60:  "1h",
		90:  "1h 30m",
		480: "8h",
	}
	for min, want := range cases {
		assert.Equal(t, want, FormatMinutes(min))
	}
}

func TestFormatKm(t *testing.T) {
	assert.Equal(t, "5.2 km", FormatKm(5234))
	assert.Equal(t, "0.0 km", FormatKm(0))
}

func TestTruncID_CapsAtEightChars(t *testing.T) {
	out := TruncID("39f351b6-2b6e-4f0e-a1d2-b8e3a40b1f07")

	assert.Contains(t, out, "39f351b6")
	assert.NotContains(t, out, "39f351b6-")
}

func TestHumanTimestamp(t *testing.T) {
	assert.Equal(t, "Just now", HumanTimestamp(time.Now().Add(-10*time.Second)))
	assert.Equal(t, "5m ago", HumanTimestamp(time.Now().Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", HumanTimestamp(time.Now().Add(-3*time.Hour)))
	assert.Equal(t, "Jan 2, 2025", HumanTimestamp(time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)))
}

func TestRenderUtilization_FillsProportionally(t *testing.T) {
	out := RenderUtilization(0.5, 10)

	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "█████░░░░░")
}

func TestRenderUtilization_ClampsOutOfRange(t *testing.T) {
	assert.Contains(t, RenderUtilization(1.7, 10), "100%")
	assert.Contains(t, RenderUtilization(-0.3, 10), "0%")
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"ID", "NAME"},
		[][]string{
			{"a1", "Alice Rivera"},
			{"b2", "Bo"},
		},
	)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Alice Rivera")
	assert.Contains(t, out, "Bo")
	assert.Contains(t, out, "─")
}

func TestJobStatusPill_CoversEveryStatus(t *testing.T) {
	for status, want := range map[domain.JobStatus]string{
		domain.JobScheduled:  "Scheduled",
		domain.JobInProgress: "In Progress",
		domain.JobCompleted:  "Completed",
		domain.JobCancelled:  "Cancelled",
	} {
		assert.Contains(t, JobStatusPill(status), want)
	}
}

func TestPriorityBadge(t *testing.T) {
	assert.Contains(t, PriorityBadge(domain.PriorityRush), "RUSH")
	assert.Contains(t, PriorityBadge(domain.PriorityHigh), "HIGH")
	assert.Contains(t, PriorityBadge(domain.PriorityNormal), "NORMAL")
}
