package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/domain"
)

// ScoringInput is one candidate contractor's measured dimensions for a single
// recommendation request.
type ScoringInput struct {
	ContractorID   string
	ContractorName string
	Rating         float64 // 0..100
	DistanceMeters float64
	SlotCount      int
	TotalMinutes   int
	Utilization    float64 // same-day assigned/available, 0..1
	EarliestStart  time.Time
	NextLegETAMin  *int // nil when unknown
	Weights        domain.ScoringWeights
	Rotation       domain.RotationConfig
}

type ScoredCandidate struct {
	Input      ScoringInput
	FinalScore float64
	Factors    []app.FactorScore
	Slots      []domain.GeneratedSlot
	Degraded   bool
}

// ScoreCandidate combines the weighted factor scores and the rotation boost
// into a final 0..100 score. The factor list preserves canonical order so the
// downstream rationale and audit snapshots are reproducible.
func ScoreCandidate(input ScoringInput) ScoredCandidate {
	result := ScoredCandidate{Input: input}

	var score float64
	factors := []func(ScoringInput) (float64, *app.FactorScore){
		scoreAvailability,
		scoreRating,
		scoreDistance,
		scoreRotation,
	}
	for _, f := range factors {
		delta, fs := f(input)
		score += delta
		if fs != nil {
			result.Factors = append(result.Factors, *fs)
		}
	}

	result.FinalScore = clampScore(score)
	return result
}

// scoreAvailability rewards both the number of usable windows and the total
// open minutes: count saturates at 10 windows, minutes at a full 8-hour day.
func scoreAvailability(input ScoringInput) (float64, *app.FactorScore) {
	countPart := math.Min(100, float64(input.SlotCount)/5.0*50.0)
	minutesPart := math.Min(50, float64(input.TotalMinutes)/(8.0*60.0)*50.0)
	raw := math.Min(100, countPart+minutesPart)
	delta := raw * input.Weights.Availability
	return delta, &app.FactorScore{
		Code:     app.FactorAvailability,
		Raw:      raw,
		Weighted: delta,
		Message:  fmt.Sprintf("%d usable windows, %d min open", input.SlotCount, input.TotalMinutes),
	}
}

func scoreRating(input ScoringInput) (float64, *app.FactorScore) {
	raw := math.Max(0, math.Min(100, input.Rating))
	delta := raw * input.Weights.Rating
	return delta, &app.FactorScore{
		Code:     app.FactorRating,
		Raw:      raw,
		Weighted: delta,
		Message:  fmt.Sprintf("rating %.0f/100", raw),
	}
}

// scoreDistance decays exponentially with distance: full marks at the job
// site, nothing past 100 km.
func scoreDistance(input ScoringInput) (float64, *app.FactorScore) {
	var raw float64
	switch {
	case input.DistanceMeters <= 0:
		raw = 100
	case input.DistanceMeters > 100_000:
		raw = 0
	default:
		raw = 100 * math.Exp(-input.DistanceMeters/15_000)
	}
	delta := raw * input.Weights.Distance
	return delta, &app.FactorScore{
		Code:     app.FactorDistance,
		Raw:      raw,
		Weighted: delta,
		Message:  fmt.Sprintf("%.1f km from job", input.DistanceMeters/1000),
	}
}

// scoreRotation adds the linearly decaying under-utilization boost. At or
// above the threshold there is no boost.
func scoreRotation(input ScoringInput) (float64, *app.FactorScore) {
	if !input.Rotation.Enabled {
		return 0, nil
	}
	u := math.Max(0, math.Min(1, input.Utilization))
	threshold := input.Rotation.UnderUtilizationThreshold
	if threshold <= 0 || u >= threshold {
		return 0, nil
	}
	boost := input.Rotation.Boost * (1 - u/threshold)
	return boost, &app.FactorScore{
		Code:     app.FactorRotationBoost,
		Raw:      boost,
		Weighted: boost,
		Message:  fmt.Sprintf("utilization %.2f under threshold %.2f", u, threshold),
	}
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}
