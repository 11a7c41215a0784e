package domain

import (
	"fmt"
	"time"
)

// Job is a unit of field work to be matched to a contractor. Assignments and
// audit records are referenced by ID only; the repository layer resolves them.
type Job struct {
	ID       string
	Type     string
	Priority JobPriority
	Status   JobStatus
	Region   string

	// RegionMultiplier scales travel buffers before clamping. 1.0 is
	// neutral; dense metros run higher.
	RegionMultiplier float64

	// Scheduling inputs
	DurationMinutes int
	ServiceWindow   TimeWindow
	DesiredDate     *time.Time
	Location        GeoLocation
	RequiredSkills  []string

	AssignmentIDs []string
	LastAuditID   string

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	events []Event
}

// Validate enforces job invariants on create and update.
func (j *Job) Validate() error {
	if j.Type == "" {
		return fmt.Errorf("job type is required: %w", ErrInvalidRange)
	}
	if j.DurationMinutes <= 0 {
		return fmt.Errorf("duration %d must be positive: %w", j.DurationMinutes, ErrInvalidRange)
	}
	if j.ServiceWindow.IsZero() {
		return fmt.Errorf("job %s has no service window: %w", j.ID, ErrInvalidRange)
	}
	if _, ok := ValidJobPriorities[j.Priority]; !ok {
		return fmt.Errorf("priority %q: %w", j.Priority, ErrInvalidRange)
	}
	if j.RegionMultiplier <= 0 {
		return fmt.Errorf("region multiplier %v must be positive: %w", j.RegionMultiplier, ErrInvalidRange)
	}
	if err := j.Location.Validate(); err != nil {
		return err
	}
	return nil
}

// IsRush reports whether the job bypasses the soft daily-hours cap.
func (j *Job) IsRush() bool {
	return j.Priority == PriorityRush
}

// Assign links a pending assignment to the job and records the JobAssigned
// event. The audit ID, when present, becomes the job's most recent audit
// reference.
func (j *Job) Assign(a *Assignment, auditID string, now time.Time) {
	j.AssignmentIDs = append(j.AssignmentIDs, a.ID)
	if auditID != "" {
		j.LastAuditID = auditID
	}
	j.UpdatedAt = now.UTC()
	j.record(JobAssignedEvent{
		JobID:        j.ID,
		ContractorID: a.ContractorID,
		AssignmentID: a.ID,
		Window:       a.Window,
		Region:       j.Region,
		Source:       a.Source,
		AuditID:      auditID,
		At:           now.UTC(),
	})
}

// Reschedule moves the service window. Terminal jobs reject the move. The
// contractor IDs of the still-active assignments ride along on the event for
// per-contractor fan-out.
func (j *Job) Reschedule(w TimeWindow, contractorIDs []string, now time.Time) error {
	if j.Status.Terminal() {
		return fmt.Errorf("job %s is %s: %w", j.ID, j.Status, ErrInvalidTransition)
	}
	prev := j.ServiceWindow
	j.ServiceWindow = w
	j.UpdatedAt = now.UTC()
	j.record(JobRescheduledEvent{
		JobID:         j.ID,
		Previous:      prev,
		New:           w,
		Region:        j.Region,
		ContractorIDs: contractorIDs,
		At:            now.UTC(),
	})
	return nil
}

// Cancel terminates the job and records the JobCancelled event. An empty
// reason falls back to the conventional placeholder.
func (j *Job) Cancel(reason string, contractorIDs []string, now time.Time) error {
	if err := j.transitionTo(JobCancelled, now); err != nil {
		return err
	}
	if reason == "" {
		reason = "No reason provided"
	}
	j.record(JobCancelledEvent{
		JobID:         j.ID,
		Reason:        reason,
		Region:        j.Region,
		ContractorIDs: contractorIDs,
		At:            now.UTC(),
	})
	return nil
}

// Start advances Scheduled to InProgress.
func (j *Job) Start(now time.Time) error {
	return j.transitionTo(JobInProgress, now)
}

// Complete advances InProgress to Completed.
func (j *Job) Complete(now time.Time) error {
	return j.transitionTo(JobCompleted, now)
}

func (j *Job) transitionTo(next JobStatus, now time.Time) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("job %s: %s to %s: %w", j.ID, j.Status, next, ErrInvalidTransition)
	}
	j.Status = next
	j.UpdatedAt = now.UTC()
	return nil
}

func (j *Job) record(e Event) {
	j.events = append(j.events, e)
}

// DrainEvents returns the pending domain events and clears the outbox. The
// mutation handler drains after commit and hands the events to the publisher.
func (j *Job) DrainEvents() []Event {
	out := j.events
	j.events = nil
	return out
}
