package scheduler

import (
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

// FatiguePolicy bounds a contractor's daily load.
type FatiguePolicy struct {
	HardStopHours      float64
	SoftCapHours       float64
	MaxConsecutiveJobs int
	MinBreakMinutes    int
	MaxJobsPerDay      int // 0 means unlimited
}

// DefaultFatiguePolicy mirrors the shipped configuration: 12 h hard stop,
// 10 h soft cap, at most 4 back-to-back jobs, 15 min qualifying break.
func DefaultFatiguePolicy() FatiguePolicy {
	return FatiguePolicy{
		HardStopHours:      12,
		SoftCapHours:       10,
		MaxConsecutiveJobs: 4,
		MinBreakMinutes:    15,
	}
}

type FatigueInput struct {
	Proposed domain.TimeWindow
	Existing []domain.TimeWindow
	Zone     string
	IsRush   bool
	Policy   FatiguePolicy
}

// FatigueResult reports feasibility with the rejection reason when the
// proposed slot would overload the contractor.
type FatigueResult struct {
	Feasible             bool
	Reason               string
	RequiredBreakMinutes int
}

func feasible() FatigueResult {
	return FatigueResult{Feasible: true}
}

// CheckFatigue evaluates the daily-hours caps and the consecutive-jobs rule
// for one proposed window. A window's full duration counts toward the
// contractor-local date of its start.
func CheckFatigue(in FatigueInput) (FatigueResult, error) {
	loc, err := domain.LoadZone(in.Zone)
	if err != nil {
		return FatigueResult{}, err
	}
	return checkFatigueIn(in, loc), nil
}

// CheckFatigueSpan evaluates a multi-day slot: each daily piece is checked
// against the caps on its own local date, and the consecutive-jobs rule runs
// against the first piece.
func CheckFatigueSpan(daily []domain.TimeWindow, existing []domain.TimeWindow, zone string, isRush bool, policy FatiguePolicy) (FatigueResult, error) {
	loc, err := domain.LoadZone(zone)
	if err != nil {
		return FatigueResult{}, err
	}
	for _, piece := range daily {
		if res := checkDailyLoad(piece, existing, loc, isRush, policy); !res.Feasible {
			return res, nil
		}
	}
	if len(daily) > 0 {
		if res := checkConsecutive(daily[0], existing, policy); !res.Feasible {
			return res, nil
		}
	}
	return feasible(), nil
}

func checkFatigueIn(in FatigueInput, loc *time.Location) FatigueResult {
	if res := checkDailyLoad(in.Proposed, in.Existing, loc, in.IsRush, in.Policy); !res.Feasible {
		return res
	}
	return checkConsecutive(in.Proposed, in.Existing, in.Policy)
}

func checkDailyLoad(proposed domain.TimeWindow, existing []domain.TimeWindow, loc *time.Location, isRush bool, policy FatiguePolicy) FatigueResult {
	day := domain.LocalDate(proposed.Start, loc)
	totalMin := proposed.Minutes()
	jobs := 1
	for _, w := range existing {
		if domain.LocalDate(w.Start, loc).Equal(day) {
			totalMin += w.Minutes()
			jobs++
		}
	}

	hours := float64(totalMin) / 60.0
	if hours > policy.HardStopHours {
		return FatigueResult{
			Feasible: false,
			Reason:   "hard stop: daily hours would exceed the limit",
		}
	}
	if hours > policy.SoftCapHours && !isRush {
		return FatigueResult{
			Feasible: false,
			Reason:   "soft cap: daily hours exceeded for non-rush work",
		}
	}
	if policy.MaxJobsPerDay > 0 && jobs > policy.MaxJobsPerDay {
		return FatigueResult{
			Feasible: false,
			Reason:   "max jobs per day reached",
		}
	}
	return feasible()
}

// checkConsecutive walks backward from the proposed start through the chain
// of assignments separated by less than the qualifying break.
func checkConsecutive(proposed domain.TimeWindow, existing []domain.TimeWindow, policy FatiguePolicy) FatigueResult {
	if policy.MaxConsecutiveJobs <= 0 {
		return feasible()
	}
	minBreak := time.Duration(policy.MinBreakMinutes) * time.Minute

	count := 1 // the proposed job itself
	cursor := proposed.Start
	for {
		prev, ok := chainPredecessor(cursor, existing, minBreak)
		if !ok {
			break
		}
		count++
		if count > policy.MaxConsecutiveJobs {
			return FatigueResult{
				Feasible:             false,
				Reason:               "consecutive jobs without a qualifying break",
				RequiredBreakMinutes: policy.MinBreakMinutes,
			}
		}
		cursor = prev.Start
	}
	return feasible()
}

// chainPredecessor finds the latest window ending within [cursor-minBreak,
// cursor], i.e. abutting the cursor with a gap shorter than the break.
func chainPredecessor(cursor time.Time, existing []domain.TimeWindow, minBreak time.Duration) (domain.TimeWindow, bool) {
	var best domain.TimeWindow
	found := false
	for _, w := range existing {
		if w.End.After(cursor) {
			continue
		}
		gap := cursor.Sub(w.End)
		if gap >= minBreak {
			continue
		}
		if !found || w.End.After(best.End) {
			best = w
			found = true
		}
	}
	return best, found
}
