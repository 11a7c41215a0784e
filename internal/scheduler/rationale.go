package scheduler

import (
	"fmt"
	"strings"

	"github.com/dispatchly/smartsched/internal/app"
)

// rationaleMaxLen is a strict postcondition on the generated string.
const rationaleMaxLen = 200

func factorLabel(code app.FactorCode) string {
	switch code {
	case app.FactorAvailability:
		return "availability"
	case app.FactorRating:
		return "rating"
	case app.FactorDistance:
		return "proximity"
	case app.FactorRotationBoost:
		return "rotation boost"
	default:
		return strings.ToLower(string(code))
	}
}

// Rationale renders the deterministic explanation string for one candidate:
// the factor with the largest weighted contribution leads, the remaining
// factors follow in canonical order. Identical inputs produce identical
// output, truncated at 200 characters.
func Rationale(c ScoredCandidate) string {
	if len(c.Factors) == 0 {
		return "no scoring factors"
	}

	dominant := c.Factors[0]
	for _, f := range c.Factors[1:] {
		if f.Weighted > dominant.Weighted {
			dominant = f
		}
	}

	parts := []string{fmt.Sprintf("%s leads with %.1f of %.1f (%s)",
		factorLabel(dominant.Code), dominant.Weighted, c.FinalScore, dominant.Message)}
	for _, f := range c.Factors {
		if f.Code == dominant.Code {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.1f", factorLabel(f.Code), f.Weighted))
	}

	s := strings.Join(parts, "; ")
	if len(s) > rationaleMaxLen {
		s = s[:rationaleMaxLen]
	}
	return s
}
