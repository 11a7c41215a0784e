package scheduler

import (
	"math"
	"sort"
)

// roundTo2 is the tie-grouping precision: candidates whose final scores match
// to two decimals fall through to the tie-breakers.
func roundTo2(s float64) float64 {
	return math.Round(s*100) / 100
}

// CanonicalRank orders scored candidates by the deterministic canonical rules:
// 1. Final score rounded to 2 decimals: higher first
// 2. Earliest feasible start: ascending
// 3. Same-day utilization: ascending
// 4. Next-leg travel minutes: ascending, unknown last
// 5. Contractor ID: lexical ascending
func CanonicalRank(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		ra, rb := roundTo2(a.FinalScore), roundTo2(b.FinalScore)
		if ra != rb {
			return ra > rb
		}

		if !a.Input.EarliestStart.Equal(b.Input.EarliestStart) {
			return a.Input.EarliestStart.Before(b.Input.EarliestStart)
		}

		if a.Input.Utilization != b.Input.Utilization {
			return a.Input.Utilization < b.Input.Utilization
		}

		legA, legB := nextLegMinutes(a), nextLegMinutes(b)
		if legA != legB {
			return legA < legB
		}

		return a.Input.ContractorID < b.Input.ContractorID
	})
}

func nextLegMinutes(c ScoredCandidate) float64 {
	if c.Input.NextLegETAMin == nil {
		return math.Inf(1)
	}
	return float64(*c.Input.NextLegETAMin)
}
