package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchly/smartsched/internal/domain"
)

const nyc = "America/New_York"

func mondayHours(t *testing.T) []domain.WorkingHours {
	t.Helper()
	wh, err := domain.NewWorkingHours(time.Monday, 9*60, 17*60, nyc)
	require.NoError(t, err)
	return []domain.WorkingHours{wh}
}

func weekdayHours(t *testing.T, days ...time.Weekday) []domain.WorkingHours {
	t.Helper()
	var out []domain.WorkingHours
	for _, d := range days {
		wh, err := domain.NewWorkingHours(d, 9*60, 17*60, nyc)
		require.NoError(t, err)
		out = append(out, wh)
	}
	return out
}

// 2025-01-13 is a Monday; EST puts 09:00-17:00 local at 14:00-22:00Z.
func mondayWindow() domain.TimeWindow {
	return domain.MustWindow(
		time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC),
	)
}

func TestAvailable_BasicExpansion(t *testing.T) {
	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		MinMinutes:     60,
		ContractorZone: nyc,
		JobZone:        nyc,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mondayWindow(), got[0])
}

func TestAvailable_ClipsToServiceWindow(t *testing.T) {
	service := domain.MustWindow(
		time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 20, 0, 0, 0, time.UTC),
	)
	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  service,
		MinMinutes:     0,
		ContractorZone: nyc,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, service, got[0])
}

func TestAvailable_SubtractsBlocking(t *testing.T) {
	blocking := []domain.TimeWindow{
		domain.MustWindow(
			time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 13, 18, 0, 0, 0, time.UTC),
		),
	}
	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		Blocking:       blocking,
		MinMinutes:     0,
		ContractorZone: nyc,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, time.Date(2025, 1, 13, 16, 0, 0, 0, time.UTC), got[0].End)
	assert.Equal(t, time.Date(2025, 1, 13, 18, 0, 0, 0, time.UTC), got[1].Start)
	assert.Equal(t, time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC), got[1].End)
}

func TestAvailable_MinMinutesFiltersShortPieces(t *testing.T) {
	// Block leaves a 60 min head and a 300 min tail.
	blocking := []domain.TimeWindow{
		domain.MustWindow(
			time.Date(2025, 1, 13, 15, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 13, 17, 0, 0, 0, time.UTC),
		),
	}
	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		Blocking:       blocking,
		MinMinutes:     120,
		ContractorZone: nyc,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2025, 1, 13, 17, 0, 0, 0, time.UTC), got[0].Start)
}

func TestAvailable_HolidaySkipsDay(t *testing.T) {
	cal := &domain.ContractorCalendar{Holidays: []string{"2025-01-13"}}
	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		MinMinutes:     0,
		ContractorZone: nyc,
		Calendar:       cal,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAvailable_OverrideReplacesWeeklyEntries(t *testing.T) {
	// Override Monday to 12:00-14:00 local (17:00-19:00Z).
	ov, err := domain.NewOverride("2025-01-13", 12*60, 14*60, "")
	require.NoError(t, err)
	cal := &domain.ContractorCalendar{Exceptions: []domain.CalendarException{ov}}

	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		MinMinutes:     0,
		ContractorZone: nyc,
		Calendar:       cal,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2025, 1, 13, 17, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, 120, got[0].Minutes())
}

func TestAvailable_AdjacentBlockDoesNotSplit(t *testing.T) {
	// Blocking window touching the start: [14:00,15:00) against [14:00,22:00).
	blocking := []domain.TimeWindow{
		domain.MustWindow(
			time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
		),
	}
	got, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		Blocking:       blocking,
		MinMinutes:     0,
		ContractorZone: nyc,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mondayWindow(), got[0], "touching block must not eat into the window")
}

func TestAvailable_MultipleDays(t *testing.T) {
	service := domain.MustWindow(
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
	)
	got, err := Available(AvailabilityInput{
		WorkingHours:   weekdayHours(t, time.Monday, time.Tuesday, time.Wednesday),
		ServiceWindow:  service,
		MinMinutes:     0,
		ContractorZone: nyc,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].End.Before(got[i].Start) || got[i-1].End.Equal(got[i].Start))
	}
}

func TestAvailable_UnknownZoneFails(t *testing.T) {
	_, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		ContractorZone: "Nowhere/City",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
}

func TestAvailable_NegativeMinMinutesFails(t *testing.T) {
	_, err := Available(AvailabilityInput{
		WorkingHours:   mondayHours(t),
		ServiceWindow:  mondayWindow(),
		MinMinutes:     -1,
		ContractorZone: nyc,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
