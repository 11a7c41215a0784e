package app

import (
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

type CreateJobRequest struct {
	Type            string
	DurationMinutes int
	Priority        string
	Region          string

	// RegionMultiplier scales travel buffers for dense areas; zero means
	// the neutral 1.0.
	RegionMultiplier float64

	WindowStart    time.Time
	WindowEnd      time.Time
	DesiredDate    *time.Time
	RequiredSkills []string

	// Location must carry coordinates or enough address for geocoding;
	// the timezone is resolved from coordinates when absent.
	Location domain.GeoLocation
}

type AssignRequest struct {
	JobID        string
	ContractorID string
	Start        time.Time
	End          time.Time
	Source       domain.AssignmentSource
	ActorID      string

	// AuditID overrides the job's most recent recommendation reference
	// when the caller assigns against a specific audit record.
	AuditID string
}

type AssignResponse struct {
	Assignment *domain.Assignment
	Job        *domain.Job
}

type RescheduleRequest struct {
	JobID    string
	NewStart time.Time
	NewEnd   time.Time
	ActorID  string
}

type CancelRequest struct {
	JobID   string
	Reason  string
	ActorID string
}

type CreateContractorRequest struct {
	Name          string
	HomeBase      domain.GeoLocation
	WorkingHours  []WorkingHoursInput
	Skills        []string
	Rating        float64
	MaxJobsPerDay int
	Holidays      []string
	Overrides     []OverrideInput
}

// WorkingHoursInput is one weekly entry with wall-clock strings, parsed and
// validated at the service boundary.
type WorkingHoursInput struct {
	Day      time.Weekday
	Start    string // "09:00"
	End      string // "17:00"
	Timezone string
}

type OverrideInput struct {
	Date  string // YYYY-MM-DD
	Start string
	End   string
	Note  string
}
