package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/dispatchly/smartsched/internal/scheduler"
)

// mapRepoErr lifts repository sentinels into the typed taxonomy. Anything
// else passes through wrapped so unexpected failures stay visible.
func mapRepoErr(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return app.NotFound(entity, id)
	case errors.Is(err, repository.ErrVersionConflict):
		return app.VersionConflict(entity, id)
	default:
		return fmt.Errorf("loading %s %s: %w", entity, id, err)
	}
}

// blockingRange pads a window by one day on each side. That is wide enough to
// pick up every assignment that can matter to the checks: same-local-day
// totals never reach past an adjacent UTC date, and a consecutive-jobs chain
// abuts the proposed start with sub-15-minute gaps.
func blockingRange(w domain.TimeWindow) (time.Time, time.Time) {
	return w.Start.AddDate(0, 0, -1), w.End.AddDate(0, 0, 1)
}

// blockingWindows projects assignments onto their time windows.
func blockingWindows(assignments []*domain.Assignment) []domain.TimeWindow {
	out := make([]domain.TimeWindow, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, a.Window)
	}
	return out
}

// overlapping returns the first assignment whose window intersects w, or nil.
// The assignment with the given ID is ignored so a reschedule never conflicts
// with itself.
func overlapping(assignments []*domain.Assignment, w domain.TimeWindow, excludeID string) *domain.Assignment {
	for _, a := range assignments {
		if a.ID == excludeID {
			continue
		}
		if a.Window.Overlaps(w) {
			return a
		}
	}
	return nil
}

// contractorZone is the scheduling zone for fatigue math: the contractor's
// own zone, falling back to the job site's.
func contractorZone(c *domain.Contractor, j *domain.Job) string {
	if z := c.Zone(); z != "" {
		return z
	}
	return j.Location.Timezone
}

// windowCovered reports whether the window sits wholly inside the
// contractor's working hours net of the blocking windows. Running the
// availability engine with the window itself as the service bound and its
// full length as the minimum means any returned piece must be the window.
func windowCovered(c *domain.Contractor, j *domain.Job, w domain.TimeWindow, blocking []domain.TimeWindow) (bool, error) {
	windows, err := scheduler.Available(scheduler.AvailabilityInput{
		WorkingHours:   c.WorkingHours,
		ServiceWindow:  w,
		Blocking:       blocking,
		MinMinutes:     w.Minutes(),
		ContractorZone: c.Zone(),
		JobZone:        j.Location.Timezone,
		Calendar:       &c.Calendar,
	})
	if err != nil {
		return false, err
	}
	return len(windows) > 0, nil
}

// sameDayUtilization is the assigned share of the contractor's working
// minutes on the local date of at: 0 on a free day, 1 when fully booked.
// Days without working hours report 0.
func sameDayUtilization(c *domain.Contractor, at time.Time, blocking []domain.TimeWindow) float64 {
	zone := c.Zone()
	if zone == "" {
		return 0
	}
	loc, err := domain.LoadZone(zone)
	if err != nil {
		return 0
	}
	day := domain.LocalDate(at, loc)

	availableMin := 0
	if override, ok := c.Calendar.OverrideFor(day.Format("2006-01-02")); ok {
		if ws, err := override.Windows(loc); err == nil {
			for _, w := range ws {
				availableMin += w.Minutes()
			}
		}
	} else if !c.Calendar.IsHoliday(day.Format("2006-01-02")) {
		for _, wh := range c.WorkingHours {
			if wh.Day != day.Weekday() {
				continue
			}
			if w, err := wh.WindowOn(day, loc); err == nil {
				availableMin += w.Minutes()
			}
		}
	}
	if availableMin == 0 {
		return 0
	}

	assignedMin := 0
	for _, w := range blocking {
		if domain.LocalDate(w.Start, loc).Equal(day) {
			assignedMin += w.Minutes()
		}
	}

	u := float64(assignedMin) / float64(availableMin)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
