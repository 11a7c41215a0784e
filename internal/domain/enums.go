package domain

type JobStatus string

const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// jobTransitions is the allowed job status graph. Completed and Cancelled
// are terminal.
var jobTransitions = map[JobStatus][]JobStatus{
	JobScheduled:  {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
}

// CanTransitionTo reports whether the job status graph permits moving to the
// given status.
func (s JobStatus) CanTransitionTo(to JobStatus) bool {
	for _, next := range jobTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentConfirmed  AssignmentStatus = "confirmed"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

// assignmentTransitions: Pending→Confirmed→InProgress→Completed, plus
// Cancelled from any non-terminal state.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentPending:    {AssignmentConfirmed, AssignmentCancelled},
	AssignmentConfirmed:  {AssignmentInProgress, AssignmentCancelled},
	AssignmentInProgress: {AssignmentCompleted, AssignmentCancelled},
}

func (s AssignmentStatus) CanTransitionTo(to AssignmentStatus) bool {
	for _, next := range assignmentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

type JobPriority string

const (
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
	PriorityRush   JobPriority = "rush"
)

// ValidJobPriorities is the canonical set of accepted priority strings.
var ValidJobPriorities = map[JobPriority]bool{
	PriorityNormal: true, PriorityHigh: true, PriorityRush: true,
}

type AssignmentSource string

const (
	SourceAuto   AssignmentSource = "auto"
	SourceManual AssignmentSource = "manual"
)

type SlotType string

const (
	SlotEarliest          SlotType = "earliest"
	SlotLowestTravel      SlotType = "lowest_travel"
	SlotHighestConfidence SlotType = "highest_confidence"
)

type ExceptionType string

const (
	ExceptionHoliday  ExceptionType = "holiday"
	ExceptionOverride ExceptionType = "override"
)
