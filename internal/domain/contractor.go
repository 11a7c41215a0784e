package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-set/v2"
)

// DefaultDailyBreakMinutes is the qualifying break length between consecutive
// jobs when the contractor calendar does not override it.
const DefaultDailyBreakMinutes = 30

// ContractorCalendar holds per-date deviations from the weekly schedule.
type ContractorCalendar struct {
	Holidays          []string            `json:"holidays,omitempty"` // local dates, YYYY-MM-DD
	Exceptions        []CalendarException `json:"exceptions,omitempty"`
	DailyBreakMinutes int                 `json:"dailyBreakMinutes"`
}

// BreakMinutes returns the configured daily break, defaulting when unset.
func (c ContractorCalendar) BreakMinutes() int {
	if c.DailyBreakMinutes <= 0 {
		return DefaultDailyBreakMinutes
	}
	return c.DailyBreakMinutes
}

// IsHoliday reports whether the local date is blocked outright, either via the
// holiday list or a holiday-typed exception.
func (c ContractorCalendar) IsHoliday(localDate string) bool {
	for _, d := range c.Holidays {
		if d == localDate {
			return true
		}
	}
	for _, e := range c.Exceptions {
		if e.Type == ExceptionHoliday && e.Date == localDate {
			return true
		}
	}
	return false
}

// OverrideFor returns the override exception for the local date, if any.
func (c ContractorCalendar) OverrideFor(localDate string) (CalendarException, bool) {
	for _, e := range c.Exceptions {
		if e.Type == ExceptionOverride && e.Date == localDate {
			return e, true
		}
	}
	return CalendarException{}, false
}

type Contractor struct {
	ID       string
	Name     string
	HomeBase GeoLocation

	// Schedule
	WorkingHours []WorkingHours
	Calendar     ContractorCalendar

	// Matching
	Skills        []string
	Rating        float64 // 0..100
	MaxJobsPerDay int

	Active    bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeSkills trims, lower-cases, and deduplicates skill tags, returning
// them sorted for stable persistence and comparison.
func NormalizeSkills(skills []string) []string {
	s := set.New[string](len(skills))
	for _, raw := range skills {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag != "" {
			s.Insert(tag)
		}
	}
	out := s.Slice()
	sort.Strings(out)
	return out
}

// HasSkills reports whether the contractor's normalized skill set contains
// every required skill. Required tags are normalized before the subset check.
func (c *Contractor) HasSkills(required []string) bool {
	have := set.From(NormalizeSkills(c.Skills))
	return have.Subset(set.From(NormalizeSkills(required)))
}

// Validate enforces the contractor invariants: a name, at least one weekly
// working-hours entry, valid coordinates, rating in range. Skills are assumed
// already normalized via NormalizeSkills on write.
func (c *Contractor) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contractor name is required: %w", ErrInvalidRange)
	}
	if len(c.WorkingHours) == 0 {
		return fmt.Errorf("contractor %s has no working hours: %w", c.ID, ErrInvalidRange)
	}
	for _, wh := range c.WorkingHours {
		if _, err := NewWorkingHours(wh.Day, wh.StartMinute, wh.EndMinute, wh.Timezone); err != nil {
			return err
		}
	}
	if err := c.HomeBase.Validate(); err != nil {
		return err
	}
	if c.Rating < 0 || c.Rating > 100 {
		return fmt.Errorf("rating %v outside [0,100]: %w", c.Rating, ErrInvalidRange)
	}
	if c.MaxJobsPerDay < 0 {
		return fmt.Errorf("maxJobsPerDay %d: %w", c.MaxJobsPerDay, ErrInvalidRange)
	}
	return nil
}

// Zone returns the contractor's scheduling timezone: the home-base zone when
// resolved, else the first working-hours entry's zone.
func (c *Contractor) Zone() string {
	if c.HomeBase.Timezone != "" {
		return c.HomeBase.Timezone
	}
	if len(c.WorkingHours) > 0 {
		return c.WorkingHours[0].Timezone
	}
	return ""
}
