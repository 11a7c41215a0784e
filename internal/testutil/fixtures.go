package testutil

import (
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/google/uuid"
)

// Fixtures anchor on Monday 2025-06-16 in America/New_York (EDT, UTC-4) so
// the default contractor's 09:00-17:00 weekday shift is 13:00-21:00 UTC and
// none of the dates straddle a DST transition.

// UTCWindow parses two RFC3339 instants into a window. Panics on bad input;
// fixtures use known-good literals.
func UTCWindow(start, end string) domain.TimeWindow {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		panic(err)
	}
	return domain.MustWindow(s, e)
}

// WeekdayHours builds Monday through Friday working-hours entries with the
// same local interval.
func WeekdayHours(startMinute, endMinute int, timezone string) []domain.WorkingHours {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	hours := make([]domain.WorkingHours, 0, len(days))
	for _, d := range days {
		hours = append(hours, domain.WorkingHours{
			Day:         d,
			StartMinute: startMinute,
			EndMinute:   endMinute,
			Timezone:    timezone,
		})
	}
	return hours
}

// Contractor options
type ContractorOption func(*domain.Contractor)

func WithSkills(skills ...string) ContractorOption {
	return func(c *domain.Contractor) {
		c.Skills = domain.NormalizeSkills(skills)
	}
}

func WithRating(r float64) ContractorOption {
	return func(c *domain.Contractor) {
		c.Rating = r
	}
}

func WithWorkingHours(hours ...domain.WorkingHours) ContractorOption {
	return func(c *domain.Contractor) {
		c.WorkingHours = hours
	}
}

func WithHomeBase(lat, lng float64, timezone string) ContractorOption {
	return func(c *domain.Contractor) {
		c.HomeBase.Lat = lat
		c.HomeBase.Lng = lng
		c.HomeBase.Timezone = timezone
	}
}

func WithCalendar(cal domain.ContractorCalendar) ContractorOption {
	return func(c *domain.Contractor) {
		c.Calendar = cal
	}
}

func WithHolidays(dates ...string) ContractorOption {
	return func(c *domain.Contractor) {
		c.Calendar.Holidays = append(c.Calendar.Holidays, dates...)
	}
}

func WithMaxJobsPerDay(n int) ContractorOption {
	return func(c *domain.Contractor) {
		c.MaxJobsPerDay = n
	}
}

func Inactive() ContractorOption {
	return func(c *domain.Contractor) {
		c.Active = false
	}
}

// NewTestContractor builds an active NYC contractor working weekdays
// 09:00-17:00 local with an hvac skill tag.
func NewTestContractor(name string, opts ...ContractorOption) *domain.Contractor {
	now := time.Now().UTC()
	c := &domain.Contractor{
		ID:   uuid.New().String(),
		Name: name,
		HomeBase: domain.GeoLocation{
			Lat:      40.7128,
			Lng:      -74.006,
			City:     "New York",
			Timezone: "America/New_York",
		},
		WorkingHours:  WeekdayHours(9*60, 17*60, "America/New_York"),
		Skills:        []string{"hvac"},
		Rating:        80,
		MaxJobsPerDay: 0,
		Active:        true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Job options
type JobOption func(*domain.Job)

func WithPriority(p domain.JobPriority) JobOption {
	return func(j *domain.Job) {
		j.Priority = p
	}
}

func WithJobStatus(s domain.JobStatus) JobOption {
	return func(j *domain.Job) {
		j.Status = s
	}
}

func WithServiceWindow(w domain.TimeWindow) JobOption {
	return func(j *domain.Job) {
		j.ServiceWindow = w
	}
}

func WithDuration(minutes int) JobOption {
	return func(j *domain.Job) {
		j.DurationMinutes = minutes
	}
}

func WithRequiredSkills(skills ...string) JobOption {
	return func(j *domain.Job) {
		j.RequiredSkills = domain.NormalizeSkills(skills)
	}
}

func WithJobLocation(lat, lng float64, timezone string) JobOption {
	return func(j *domain.Job) {
		j.Location.Lat = lat
		j.Location.Lng = lng
		j.Location.Timezone = timezone
	}
}

func WithRegion(region string) JobOption {
	return func(j *domain.Job) {
		j.Region = region
	}
}

func WithDesiredDate(d time.Time) JobOption {
	return func(j *domain.Job) {
		j.DesiredDate = &d
	}
}

// NewTestJob builds a scheduled two-hour job in lower Manhattan with a
// Monday 2025-06-16 09:00-17:00 EDT service window.
func NewTestJob(jobType string, opts ...JobOption) *domain.Job {
	now := time.Now().UTC()
	j := &domain.Job{
		ID:               uuid.New().String(),
		Type:             jobType,
		Priority:         domain.PriorityNormal,
		Status:           domain.JobScheduled,
		Region:           "default",
		RegionMultiplier: 1,
		DurationMinutes:  120,
		ServiceWindow:    UTCWindow("2025-06-16T13:00:00Z", "2025-06-16T21:00:00Z"),
		Location: domain.GeoLocation{
			Lat:      40.7061,
			Lng:      -74.0087,
			City:     "New York",
			Timezone: "America/New_York",
		},
		RequiredSkills: []string{"hvac"},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Assignment options
type AssignmentOption func(*domain.Assignment)

func WithAssignmentStatus(s domain.AssignmentStatus) AssignmentOption {
	return func(a *domain.Assignment) {
		a.Status = s
	}
}

func WithSource(s domain.AssignmentSource) AssignmentOption {
	return func(a *domain.Assignment) {
		a.Source = s
	}
}

func WithAuditID(id string) AssignmentOption {
	return func(a *domain.Assignment) {
		a.AuditID = id
	}
}

// NewTestAssignment builds a pending auto assignment over the given window.
func NewTestAssignment(jobID, contractorID string, w domain.TimeWindow, opts ...AssignmentOption) *domain.Assignment {
	now := time.Now().UTC()
	a := &domain.Assignment{
		ID:           uuid.New().String(),
		JobID:        jobID,
		ContractorID: contractorID,
		Window:       w,
		Status:       domain.AssignmentPending,
		Source:       domain.SourceAuto,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
