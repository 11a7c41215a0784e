package scheduler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dispatchly/smartsched/internal/app"
)

func TestRationale_DominantFactorLeads(t *testing.T) {
	c := ScoredCandidate{
		FinalScore: 63.5,
		Factors: []app.FactorScore{
			{Code: app.FactorAvailability, Raw: 45, Weighted: 18, Message: "2 usable windows, 240 min open"},
			{Code: app.FactorRating, Raw: 80, Weighted: 24, Message: "rating 80/100"},
			{Code: app.FactorDistance, Raw: 71.7, Weighted: 21.5, Message: "5.0 km from job"},
		},
	}

	got := Rationale(c)
	assert.Equal(t,
		"rating leads with 24.0 of 63.5 (rating 80/100); availability 18.0; proximity 21.5",
		got)
}

func TestRationale_RotationBoostLabeled(t *testing.T) {
	c := ScoredCandidate{
		FinalScore: 52.5,
		Factors: []app.FactorScore{
			{Code: app.FactorAvailability, Raw: 100, Weighted: 40, Message: "10 usable windows, 600 min open"},
			{Code: app.FactorRotationBoost, Raw: 2.5, Weighted: 2.5, Message: "utilization 0.25 under threshold 0.50"},
		},
	}

	got := Rationale(c)
	assert.True(t, strings.HasPrefix(got, "availability leads with 40.0"), got)
	assert.Contains(t, got, "rotation boost 2.5")
}

func TestRationale_DeterministicForIdenticalInput(t *testing.T) {
	c := ScoredCandidate{
		FinalScore: 80,
		Factors: []app.FactorScore{
			{Code: app.FactorAvailability, Raw: 90, Weighted: 36, Message: "4 usable windows, 480 min open"},
			{Code: app.FactorRating, Raw: 60, Weighted: 18, Message: "rating 60/100"},
			{Code: app.FactorDistance, Raw: 87.5, Weighted: 26.3, Message: "2.0 km from job"},
		},
	}
	assert.Equal(t, Rationale(c), Rationale(c))
}

func TestRationale_TruncatesAt200(t *testing.T) {
	c := ScoredCandidate{
		FinalScore: 90,
		Factors: []app.FactorScore{
			{Code: app.FactorRating, Raw: 90, Weighted: 90, Message: strings.Repeat("x", 300)},
		},
	}
	assert.Len(t, Rationale(c), 200)
}

func TestRationale_NoFactors(t *testing.T) {
	assert.Equal(t, "no scoring factors", Rationale(ScoredCandidate{}))
}
