package app

type FactorCode string

const (
	FactorAvailability  FactorCode = "AVAILABILITY"
	FactorRating        FactorCode = "RATING"
	FactorDistance      FactorCode = "DISTANCE"
	FactorRotationBoost FactorCode = "ROTATION_BOOST"
)

// FactorScore is one scored dimension of a candidate: the raw 0..100 factor
// value and its weighted contribution to the final score.
type FactorScore struct {
	Code     FactorCode `json:"code"`
	Raw      float64    `json:"raw"`
	Weighted float64    `json:"weighted"`
	Message  string     `json:"message"`
}

// SkipCode explains why a contractor was filtered out before scoring.
type SkipCode string

const (
	SkipMissingSkills  SkipCode = "MISSING_SKILLS"
	SkipNoAvailability SkipCode = "NO_AVAILABILITY"
	SkipInactive       SkipCode = "INACTIVE"
)

// SkippedContractor is reported alongside the ranking for explainability.
type SkippedContractor struct {
	ContractorID string   `json:"contractorId"`
	Code         SkipCode `json:"code"`
	Message      string   `json:"message"`
}
