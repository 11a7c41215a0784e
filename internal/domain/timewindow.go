package domain

import (
	"fmt"
	"sort"
	"time"
)

// TimeWindow is a half-open UTC interval [Start, End). All scheduling
// arithmetic is minute-precise; construction truncates both endpoints to
// the minute.
type TimeWindow struct {
	Start time.Time `json:"startUtc"`
	End   time.Time `json:"endUtc"`
}

// NewTimeWindow builds a window from two instants. Both are normalized to
// UTC and truncated to minute precision. Fails with ErrInvalidRange when
// start is not strictly before end.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	s := start.UTC().Truncate(time.Minute)
	e := end.UTC().Truncate(time.Minute)
	if !s.Before(e) {
		return TimeWindow{}, fmt.Errorf("window [%s, %s): %w", s.Format(time.RFC3339), e.Format(time.RFC3339), ErrInvalidRange)
	}
	return TimeWindow{Start: s, End: e}, nil
}

// MustWindow is NewTimeWindow for fixtures and tests with known-good inputs.
func MustWindow(start, end time.Time) TimeWindow {
	w, err := NewTimeWindow(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Minutes returns the window length in whole minutes.
func (w TimeWindow) Minutes() int {
	return int(w.End.Sub(w.Start) / time.Minute)
}

func (w TimeWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls inside the half-open interval.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether the two half-open intervals intersect.
// Adjacent touches do not overlap: [a,b) ∩ [b,c) = ∅.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Clip intersects the window with bound. The second return is false when
// the intersection is empty.
func (w TimeWindow) Clip(bound TimeWindow) (TimeWindow, bool) {
	start := maxTime(w.Start, bound.Start)
	end := minTime(w.End, bound.End)
	if !start.Before(end) {
		return TimeWindow{}, false
	}
	return TimeWindow{Start: start, End: end}, true
}

// Subtract removes block from the window, returning zero, one, or two
// remaining pieces in ascending order.
func (w TimeWindow) Subtract(block TimeWindow) []TimeWindow {
	if !w.Overlaps(block) {
		return []TimeWindow{w}
	}
	var out []TimeWindow
	if w.Start.Before(block.Start) {
		out = append(out, TimeWindow{Start: w.Start, End: block.Start})
	}
	if block.End.Before(w.End) {
		out = append(out, TimeWindow{Start: block.End, End: w.End})
	}
	return out
}

// SubtractAll removes every blocking window from each of the given windows,
// returning the surviving pieces ordered ascending by start.
func SubtractAll(windows, blocks []TimeWindow) []TimeWindow {
	pieces := windows
	for _, b := range blocks {
		var next []TimeWindow
		for _, p := range pieces {
			next = append(next, p.Subtract(b)...)
		}
		pieces = next
	}
	SortWindows(pieces)
	return pieces
}

// MergeWindows unions overlapping and touching windows into maximal disjoint
// intervals, ordered ascending by start. The input is not modified.
func MergeWindows(windows []TimeWindow) []TimeWindow {
	if len(windows) == 0 {
		return nil
	}
	sorted := make([]TimeWindow, len(windows))
	copy(sorted, windows)
	SortWindows(sorted)

	out := []TimeWindow{sorted[0]}
	for _, w := range sorted[1:] {
		last := &out[len(out)-1]
		if w.Start.After(last.End) {
			out = append(out, w)
			continue
		}
		last.End = maxTime(last.End, w.End)
	}
	return out
}

// SortWindows orders windows ascending by start, then by end.
func SortWindows(windows []TimeWindow) {
	sort.SliceStable(windows, func(i, j int) bool {
		if !windows[i].Start.Equal(windows[j].Start) {
			return windows[i].Start.Before(windows[j].Start)
		}
		return windows[i].End.Before(windows[j].End)
	})
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
