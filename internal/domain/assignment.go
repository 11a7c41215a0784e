package domain

import (
	"fmt"
	"time"
)

// Assignment binds one job to one contractor over a concrete UTC window.
type Assignment struct {
	ID           string
	JobID        string
	ContractorID string
	Window       TimeWindow
	Status       AssignmentStatus
	Source       AssignmentSource
	AuditID      string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAssignment creates a pending assignment. Manual assignments start
// directly in Confirmed.
func NewAssignment(id, jobID, contractorID string, w TimeWindow, source AssignmentSource, now time.Time) *Assignment {
	status := AssignmentPending
	if source == SourceManual {
		status = AssignmentConfirmed
	}
	return &Assignment{
		ID:           id,
		JobID:        jobID,
		ContractorID: contractorID,
		Window:       w,
		Status:       status,
		Source:       source,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// Blocking reports whether the assignment counts against availability,
// conflict, and fatigue checks. Completed and cancelled assignments are
// history and never block.
func (a *Assignment) Blocking() bool {
	return !a.Status.Terminal()
}

// SetWindow moves the assignment window. Terminal assignments are locked.
func (a *Assignment) SetWindow(w TimeWindow, now time.Time) error {
	if a.Status.Terminal() {
		return fmt.Errorf("assignment %s is %s: %w", a.ID, a.Status, ErrWindowLocked)
	}
	a.Window = w
	a.UpdatedAt = now.UTC()
	return nil
}

// Confirm advances Pending to Confirmed.
func (a *Assignment) Confirm(now time.Time) error {
	return a.transitionTo(AssignmentConfirmed, now)
}

// Start advances Confirmed to InProgress.
func (a *Assignment) Start(now time.Time) error {
	return a.transitionTo(AssignmentInProgress, now)
}

// Complete advances InProgress to Completed.
func (a *Assignment) Complete(now time.Time) error {
	return a.transitionTo(AssignmentCompleted, now)
}

// Cancel terminates the assignment from any non-terminal state.
func (a *Assignment) Cancel(now time.Time) error {
	return a.transitionTo(AssignmentCancelled, now)
}

func (a *Assignment) transitionTo(next AssignmentStatus, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("assignment %s: %s to %s: %w", a.ID, a.Status, next, ErrInvalidTransition)
	}
	a.Status = next
	a.UpdatedAt = now.UTC()
	return nil
}
