package domain

import (
	"fmt"
	"time"
)

// LoadZone resolves an IANA timezone name. Offset-only or empty names are
// rejected so downstream local-time math always has DST rules available.
func LoadZone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("timezone %q: %w", name, ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, ErrInvalidTimezone)
	}
	return loc, nil
}

// LocalDate returns the calendar date of t in loc, normalized to midnight.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// SameLocalDay reports whether a and b fall on the same calendar date in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	return LocalDate(a, loc).Equal(LocalDate(b, loc))
}
