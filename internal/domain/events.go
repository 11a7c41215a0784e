package domain

import "time"

// Event type discriminators carried on the wire.
const (
	EventRecommendationReady = "RecommendationReady"
	EventJobAssigned         = "JobAssigned"
	EventJobRescheduled      = "JobRescheduled"
	EventJobCancelled        = "JobCancelled"
)

// Event is a domain event recorded on an aggregate outbox and handed to the
// realtime publisher after the owning transaction commits.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// RecommendationReadyEvent announces a freshly computed ranking to the
// dispatch group for the job's region.
type RecommendationReadyEvent struct {
	JobID         string
	RequestID     string
	Region        string
	ConfigVersion int
	At            time.Time
}

func (e RecommendationReadyEvent) EventType() string    { return EventRecommendationReady }
func (e RecommendationReadyEvent) OccurredAt() time.Time { return e.At }

// JobAssignedEvent announces a new assignment to the dispatch group and the
// assigned contractor's group.
type JobAssignedEvent struct {
	JobID        string
	ContractorID string
	AssignmentID string
	Window       TimeWindow
	Region       string
	Source       AssignmentSource
	AuditID      string
	At           time.Time
}

func (e JobAssignedEvent) EventType() string    { return EventJobAssigned }
func (e JobAssignedEvent) OccurredAt() time.Time { return e.At }

// JobRescheduledEvent announces a service-window move to the dispatch group
// and every still-assigned contractor's group.
type JobRescheduledEvent struct {
	JobID         string
	Previous      TimeWindow
	New           TimeWindow
	Region        string
	ContractorIDs []string
	At            time.Time
}

func (e JobRescheduledEvent) EventType() string    { return EventJobRescheduled }
func (e JobRescheduledEvent) OccurredAt() time.Time { return e.At }

// JobCancelledEvent announces a cancellation to the dispatch group and every
// still-assigned contractor's group.
type JobCancelledEvent struct {
	JobID         string
	Reason        string
	Region        string
	ContractorIDs []string
	At            time.Time
}

func (e JobCancelledEvent) EventType() string    { return EventJobCancelled }
func (e JobCancelledEvent) OccurredAt() time.Time { return e.At }
