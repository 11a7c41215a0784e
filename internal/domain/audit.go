package domain

import "time"

// AuditRecommendation is an immutable snapshot of one recommendation request
// and its ranked outcome. SelectedContractorID is the single post-hoc field,
// stamped when an assignment is later created against the record.
type AuditRecommendation struct {
	ID                   string
	RequestID            string
	JobID                string
	ActorID              string
	RequestJSON          string
	CandidatesJSON       string
	ConfigVersion        int
	SelectedContractorID string
	CreatedAt            time.Time
}

// Select stamps the contractor chosen against this recommendation.
func (r *AuditRecommendation) Select(contractorID string) {
	r.SelectedContractorID = contractorID
}
