package domain

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// ParseClock converts an "HH:MM" wall-clock string to a minute-of-day offset.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, ErrInvalidRange)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: %w", s, ErrInvalidRange)
	}
	return h*60 + m, nil
}

// FormatClock renders a minute-of-day offset as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// WorkingHours is one weekly availability entry: a wall-clock interval on one
// weekday, interpreted in the contractor's timezone.
type WorkingHours struct {
	Day         time.Weekday `json:"dayOfWeek"`
	StartMinute int          `json:"startMinute"`
	EndMinute   int          `json:"endMinute"`
	Timezone    string       `json:"timezone"`
}

// NewWorkingHours validates one weekly entry. Weekly entries must not wrap
// midnight; overnight shifts are modeled as two entries or an override.
func NewWorkingHours(day time.Weekday, startMinute, endMinute int, timezone string) (WorkingHours, error) {
	if day < time.Sunday || day > time.Saturday {
		return WorkingHours{}, fmt.Errorf("day %d: %w", day, ErrInvalidRange)
	}
	if startMinute < 0 || startMinute >= minutesPerDay || endMinute <= 0 || endMinute > minutesPerDay {
		return WorkingHours{}, fmt.Errorf("minutes [%d,%d): %w", startMinute, endMinute, ErrInvalidRange)
	}
	if startMinute >= endMinute {
		return WorkingHours{}, fmt.Errorf("start %d not before end %d: %w", startMinute, endMinute, ErrInvalidRange)
	}
	if _, err := LoadZone(timezone); err != nil {
		return WorkingHours{}, err
	}
	return WorkingHours{Day: day, StartMinute: startMinute, EndMinute: endMinute, Timezone: timezone}, nil
}

// WindowOn materializes the entry as a UTC window on the given local calendar
// date. The date is interpreted in loc, so DST transitions fall out of the
// local-to-UTC conversion naturally. An end at or before the start wraps
// past midnight into the next local day.
func (h WorkingHours) WindowOn(localDate time.Time, loc *time.Location) (TimeWindow, error) {
	y, mo, d := localDate.In(loc).Date()
	start := time.Date(y, mo, d, h.StartMinute/60, h.StartMinute%60, 0, 0, loc)

	endDay := time.Date(y, mo, d, 0, 0, 0, 0, loc)
	endMinute := h.EndMinute
	if endMinute >= minutesPerDay || endMinute <= h.StartMinute {
		endDay = endDay.AddDate(0, 0, 1)
		endMinute = endMinute % minutesPerDay
	}
	ey, em, ed := endDay.Date()
	end := time.Date(ey, em, ed, endMinute/60, endMinute%60, 0, 0, loc)
	return NewTimeWindow(start.UTC(), end.UTC())
}

// CalendarException modifies one local calendar date: a holiday removes the
// day entirely, an override replaces its weekly entries.
type CalendarException struct {
	Date        string        `json:"date"` // local calendar date, YYYY-MM-DD
	Type        ExceptionType `json:"type"`
	StartMinute int           `json:"startMinute,omitempty"`
	EndMinute   int           `json:"endMinute,omitempty"`
	Note        string        `json:"note,omitempty"`
}

// NewHoliday marks a local calendar date fully unavailable.
func NewHoliday(date string, note string) (CalendarException, error) {
	if err := validateLocalDate(date); err != nil {
		return CalendarException{}, err
	}
	return CalendarException{Date: date, Type: ExceptionHoliday, Note: note}, nil
}

// NewOverride replaces the weekly entries on one local calendar date with a
// single interval. Overrides may wrap midnight (start >= end means the
// interval runs into the next day).
func NewOverride(date string, startMinute, endMinute int, note string) (CalendarException, error) {
	if err := validateLocalDate(date); err != nil {
		return CalendarException{}, err
	}
	if startMinute < 0 || startMinute >= minutesPerDay || endMinute < 0 || endMinute > minutesPerDay {
		return CalendarException{}, fmt.Errorf("override minutes [%d,%d): %w", startMinute, endMinute, ErrInvalidRange)
	}
	return CalendarException{Date: date, Type: ExceptionOverride, StartMinute: startMinute, EndMinute: endMinute, Note: note}, nil
}

// WrapsMidnight reports whether an override interval crosses into the next
// local day.
func (e CalendarException) WrapsMidnight() bool {
	return e.Type == ExceptionOverride && e.StartMinute >= e.EndMinute
}

// Windows materializes an override as UTC windows anchored on its local date.
// A midnight-wrapping override yields a single window ending on the next day.
// Holidays yield nothing.
func (e CalendarException) Windows(loc *time.Location) ([]TimeWindow, error) {
	if e.Type != ExceptionOverride {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", e.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("exception date %q: %w", e.Date, ErrInvalidRange)
	}
	y, mo, d := day.Date()
	start := time.Date(y, mo, d, e.StartMinute/60, e.StartMinute%60, 0, 0, loc)
	endDay := day
	if e.WrapsMidnight() {
		endDay = day.AddDate(0, 0, 1)
	}
	ey, em, ed := endDay.Date()
	end := time.Date(ey, em, ed, e.EndMinute/60, e.EndMinute%60, 0, 0, loc)
	w, err := NewTimeWindow(start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return []TimeWindow{w}, nil
}

func validateLocalDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date %q: %w", date, ErrInvalidRange)
	}
	return nil
}
