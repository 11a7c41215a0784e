package scheduler

import (
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

// AvailabilityInput describes one contractor's schedule evaluated against a
// job's service window. Blocking windows are the contractor's non-terminal
// assignments.
type AvailabilityInput struct {
	WorkingHours   []domain.WorkingHours
	ServiceWindow  domain.TimeWindow
	Blocking       []domain.TimeWindow
	MinMinutes     int
	ContractorZone string
	JobZone        string
	Calendar       *domain.ContractorCalendar
}

// Available expands the weekly schedule across the service window in
// contractor-local time, applies holidays and overrides, clips to the service
// window, subtracts blocking windows, and returns the usable sub-windows.
//
// Output windows are UTC, pairwise disjoint, ordered ascending by start, and
// each at least MinMinutes long.
func Available(in AvailabilityInput) ([]domain.TimeWindow, error) {
	if in.MinMinutes < 0 {
		return nil, fmt.Errorf("minMinutes %d: %w", in.MinMinutes, domain.ErrInvalidRange)
	}
	zone := in.ContractorZone
	if zone == "" {
		zone = in.JobZone
	}
	loc, err := domain.LoadZone(zone)
	if err != nil {
		return nil, err
	}

	var pieces []domain.TimeWindow

	// Walk local calendar dates covering the service window. The extra
	// leading day catches overnight entries that wrap into the window.
	first := domain.LocalDate(in.ServiceWindow.Start, loc).AddDate(0, 0, -1)
	last := domain.LocalDate(in.ServiceWindow.End, loc)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dayWindows, err := windowsForDate(in, day, loc)
		if err != nil {
			return nil, err
		}
		for _, w := range dayWindows {
			if clipped, ok := w.Clip(in.ServiceWindow); ok {
				pieces = append(pieces, clipped)
			}
		}
	}

	merged := domain.MergeWindows(pieces)
	free := domain.SubtractAll(merged, in.Blocking)

	var out []domain.TimeWindow
	for _, w := range free {
		if w.Minutes() >= in.MinMinutes {
			out = append(out, w)
		}
	}
	return out, nil
}

// windowsForDate materializes the schedule for one local calendar date:
// holidays yield nothing, an override replaces the weekly entries, otherwise
// every weekly entry matching the weekday applies.
func windowsForDate(in AvailabilityInput, day time.Time, loc *time.Location) ([]domain.TimeWindow, error) {
	dateStr := day.Format("2006-01-02")
	if in.Calendar != nil {
		if in.Calendar.IsHoliday(dateStr) {
			return nil, nil
		}
		if override, ok := in.Calendar.OverrideFor(dateStr); ok {
			return override.Windows(loc)
		}
	}

	var out []domain.TimeWindow
	for _, entry := range in.WorkingHours {
		if entry.Day != day.Weekday() {
			continue
		}
		entryLoc := loc
		if entry.Timezone != "" {
			l, err := domain.LoadZone(entry.Timezone)
			if err != nil {
				return nil, err
			}
			entryLoc = l
		}
		// Re-anchor the calendar date in the entry's own zone so a
		// per-entry zone never shifts the date across midnight.
		anchored := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, entryLoc)
		w, err := entry.WindowOn(anchored, entryLoc)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
