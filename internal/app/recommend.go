package app

import (
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

// MaxRecommendations caps the candidate list regardless of the request.
const MaxRecommendations = 50

type RecommendRequest struct {
	JobID      string
	MaxResults int
	ActorID    string

	// Publish controls the RecommendationReady fan-out. Explicit
	// recalculations opt in; incidental reads leave it false to avoid
	// notification loops.
	Publish bool

	// Now pins the evaluation instant for reproducible runs; nil means
	// the wall clock.
	Now *time.Time
}

func NewRecommendRequest(jobID string) RecommendRequest {
	return RecommendRequest{JobID: jobID, MaxResults: 10}
}

// CandidateView is one ranked contractor with its offered slots and the full
// scoring breakdown.
type CandidateView struct {
	ContractorID   string
	ContractorName string
	FinalScore     float64
	Factors        []FactorScore
	Rationale      string
	Slots          []domain.GeneratedSlot
	DistanceMeters float64
	TravelETAMin   *int
	Utilization    float64
	Degraded       bool
}

type RecommendResponse struct {
	RequestID                      string
	JobID                          string
	GeneratedAt                    time.Time
	ConfigVersion                  int
	BestRecommendationContractorID string
	Candidates                     []CandidateView
	Skipped                        []SkippedContractor
	Degraded                       bool
}
