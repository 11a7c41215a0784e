package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContractor() *Contractor {
	wh, _ := NewWorkingHours(time.Monday, 540, 1020, "America/New_York")
	return &Contractor{
		ID:       "c-1",
		Name:     "Ada Marsh",
		HomeBase: GeoLocation{Lat: 40.7128, Lng: -74.0060, Timezone: "America/New_York"},
		WorkingHours: []WorkingHours{wh},
		Skills:       []string{"hvac", "flooring"},
		Rating:       80,
		Active:       true,
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{" HVAC ", "hvac", "Flooring", "", "  "})
	assert.Equal(t, []string{"flooring", "hvac"}, got)
}

func TestHasSkills_CaseInsensitive(t *testing.T) {
	c := validContractor()
	assert.True(t, c.HasSkills([]string{"HVAC"}))
	assert.True(t, c.HasSkills([]string{"hvac", "FLOORING"}))
	assert.False(t, c.HasSkills([]string{"plumbing"}))
	assert.True(t, c.HasSkills(nil), "empty requirement is always satisfied")
}

func TestContractorValidate_OK(t *testing.T) {
	assert.NoError(t, validContractor().Validate())
}

func TestContractorValidate_NoWorkingHours(t *testing.T) {
	c := validContractor()
	c.WorkingHours = nil
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestContractorValidate_BadRating(t *testing.T) {
	c := validContractor()
	c.Rating = 101
	assert.ErrorIs(t, c.Validate(), ErrInvalidRange)

	c.Rating = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidRange)
}

func TestContractorValidate_BadCoordinates(t *testing.T) {
	c := validContractor()
	c.HomeBase.Lat = 95
	assert.ErrorIs(t, c.Validate(), ErrInvalidCoordinates)
}

func TestContractorZone_PrefersHomeBase(t *testing.T) {
	c := validContractor()
	assert.Equal(t, "America/New_York", c.Zone())

	c.HomeBase.Timezone = ""
	assert.Equal(t, "America/New_York", c.Zone(), "falls back to working hours zone")
}

func TestCalendar_IsHoliday(t *testing.T) {
	cal := ContractorCalendar{Holidays: []string{"2025-01-13"}}
	assert.True(t, cal.IsHoliday("2025-01-13"))
	assert.False(t, cal.IsHoliday("2025-01-14"))

	ex, err := NewHoliday("2025-01-15", "")
	require.NoError(t, err)
	cal.Exceptions = append(cal.Exceptions, ex)
	assert.True(t, cal.IsHoliday("2025-01-15"))
}

func TestCalendar_OverrideFor(t *testing.T) {
	ov, err := NewOverride("2025-01-13", 600, 840, "")
	require.NoError(t, err)
	cal := ContractorCalendar{Exceptions: []CalendarException{ov}}

	got, ok := cal.OverrideFor("2025-01-13")
	require.True(t, ok)
	assert.Equal(t, 600, got.StartMinute)

	_, ok = cal.OverrideFor("2025-01-14")
	assert.False(t, ok)
}

func TestCalendar_BreakMinutesDefault(t *testing.T) {
	assert.Equal(t, 30, ContractorCalendar{}.BreakMinutes())
	assert.Equal(t, 45, ContractorCalendar{DailyBreakMinutes: 45}.BreakMinutes())
}
