package scheduler

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func rankOrder(cands ...ScoredCandidate) []string {
	CanonicalRank(cands)
	return lo.Map(cands, func(c ScoredCandidate, _ int) string { return c.Input.ContractorID })
}

func scored(id string, score float64) ScoredCandidate {
	return ScoredCandidate{
		Input:      ScoringInput{ContractorID: id, EarliestStart: time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC)},
		FinalScore: score,
	}
}

func TestCanonicalRank_HigherScoreFirst(t *testing.T) {
	got := rankOrder(scored("low", 70), scored("high", 90), scored("mid", 80))
	assert.Equal(t, []string{"high", "mid", "low"}, got)
}

func TestCanonicalRank_RoundsToTwoDecimalsBeforeComparing(t *testing.T) {
	// 80.004 and 80.001 both round to 80.00 and fall to the tie-breakers;
	// 80.006 rounds to 80.01 and stays ahead on score alone.
	a := scored("a", 80.004)
	b := scored("b", 80.001)
	b.Input.EarliestStart = a.Input.EarliestStart.Add(-time.Hour)
	c := scored("c", 80.006)

	got := rankOrder(a, b, c)
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestCanonicalRank_EarlierStartBreaksScoreTie(t *testing.T) {
	a := scored("a", 75)
	b := scored("b", 75)
	b.Input.EarliestStart = a.Input.EarliestStart.Add(-30 * time.Minute)

	assert.Equal(t, []string{"b", "a"}, rankOrder(a, b))
}

func TestCanonicalRank_LowerUtilizationBreaksStartTie(t *testing.T) {
	a := scored("a", 75)
	a.Input.Utilization = 0.5
	b := scored("b", 75)
	b.Input.Utilization = 0.2

	assert.Equal(t, []string{"b", "a"}, rankOrder(a, b))
}

func TestCanonicalRank_ShorterNextLegBreaksUtilizationTie(t *testing.T) {
	near, far := 10, 35
	a := scored("a", 75)
	a.Input.NextLegETAMin = &far
	b := scored("b", 75)
	b.Input.NextLegETAMin = &near
	unknown := scored("u", 75)

	// An unknown leg sorts after every known one.
	assert.Equal(t, []string{"b", "a", "u"}, rankOrder(unknown, a, b))
}

func TestCanonicalRank_ContractorIDIsTheFinalTieBreaker(t *testing.T) {
	assert.Equal(t, []string{"c-1", "c-2", "c-3"},
		rankOrder(scored("c-2", 75), scored("c-3", 75), scored("c-1", 75)))
}

func TestCanonicalRank_PermutationInvariant(t *testing.T) {
	build := func() []ScoredCandidate {
		a := scored("a", 90)
		b := scored("b", 85)
		c := scored("c", 85)
		c.Input.EarliestStart = c.Input.EarliestStart.Add(time.Hour)
		d := scored("d", 60)
		return []ScoredCandidate{a, b, c, d}
	}

	forward := build()
	CanonicalRank(forward)

	backward := build()
	lo.Reverse(backward)
	CanonicalRank(backward)

	ids := func(cands []ScoredCandidate) []string {
		return lo.Map(cands, func(c ScoredCandidate, _ int) string { return c.Input.ContractorID })
	}
	assert.Equal(t, ids(forward), ids(backward))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(forward))
}
