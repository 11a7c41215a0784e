// Package realtime serializes domain events into their wire form and fans
// them out to subscriber groups. Publishing is fire-and-forget: failures are
// reported to an observer, never to the mutation that raised the event.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

// wireTimeLayout is ISO-8601 UTC with millisecond precision.
const wireTimeLayout = "2006-01-02T15:04:05.000Z"

// DispatchGroup names the dispatch stream for a region.
func DispatchGroup(region string) string {
	return "dispatch/" + region
}

// ContractorGroup names a contractor's private stream.
func ContractorGroup(contractorID string) string {
	return "contractor/" + contractorID
}

// Wire payloads. Keys are camelCase and every payload opens with the type
// discriminator; subscribers tolerate unknown fields but dispatch on type.
type recommendationReadyPayload struct {
	Type          string `json:"type"`
	JobID         string `json:"jobId"`
	RequestID     string `json:"requestId"`
	Region        string `json:"region"`
	ConfigVersion int    `json:"configVersion"`
	GeneratedAt   string `json:"generatedAt"`
}

type jobAssignedPayload struct {
	Type         string `json:"type"`
	JobID        string `json:"jobId"`
	ContractorID string `json:"contractorId"`
	AssignmentID string `json:"assignmentId"`
	StartUTC     string `json:"startUtc"`
	EndUTC       string `json:"endUtc"`
	Region       string `json:"region"`
	Source       string `json:"source"`
	AuditID      string `json:"auditId"`
}

type jobRescheduledPayload struct {
	Type             string `json:"type"`
	JobID            string `json:"jobId"`
	PreviousStartUTC string `json:"previousStartUtc"`
	PreviousEndUTC   string `json:"previousEndUtc"`
	NewStartUTC      string `json:"newStartUtc"`
	NewEndUTC        string `json:"newEndUtc"`
	Region           string `json:"region"`
}

type jobCancelledPayload struct {
	Type   string `json:"type"`
	JobID  string `json:"jobId"`
	Reason string `json:"reason"`
	Region string `json:"region"`
}

// outbound is a serialized event together with its target groups.
type outbound struct {
	name    string
	payload []byte
	groups  []string
}

func encode(e domain.Event) (outbound, error) {
	switch ev := e.(type) {
	case domain.RecommendationReadyEvent:
		payload, err := json.Marshal(recommendationReadyPayload{
			Type:          domain.EventRecommendationReady,
			JobID:         ev.JobID,
			RequestID:     ev.RequestID,
			Region:        ev.Region,
			ConfigVersion: ev.ConfigVersion,
			GeneratedAt:   wireTime(ev.At),
		})
		return outbound{
			name:    domain.EventRecommendationReady,
			payload: payload,
			groups:  []string{DispatchGroup(ev.Region)},
		}, err

	case domain.JobAssignedEvent:
		payload, err := json.Marshal(jobAssignedPayload{
			Type:         domain.EventJobAssigned,
			JobID:        ev.JobID,
			ContractorID: ev.ContractorID,
			AssignmentID: ev.AssignmentID,
			StartUTC:     wireTime(ev.Window.Start),
			EndUTC:       wireTime(ev.Window.End),
			Region:       ev.Region,
			Source:       string(ev.Source),
			AuditID:      ev.AuditID,
		})
		return outbound{
			name:    domain.EventJobAssigned,
			payload: payload,
			groups: []string{
				DispatchGroup(ev.Region),
				ContractorGroup(ev.ContractorID),
			},
		}, err

	case domain.JobRescheduledEvent:
		payload, err := json.Marshal(jobRescheduledPayload{
			Type:             domain.EventJobRescheduled,
			JobID:            ev.JobID,
			PreviousStartUTC: wireTime(ev.Previous.Start),
			PreviousEndUTC:   wireTime(ev.Previous.End),
			NewStartUTC:      wireTime(ev.New.Start),
			NewEndUTC:        wireTime(ev.New.End),
			Region:           ev.Region,
		})
		return outbound{
			name:    domain.EventJobRescheduled,
			payload: payload,
			groups:  withContractorGroups(ev.Region, ev.ContractorIDs),
		}, err

	case domain.JobCancelledEvent:
		payload, err := json.Marshal(jobCancelledPayload{
			Type:   domain.EventJobCancelled,
			JobID:  ev.JobID,
			Reason: ev.Reason,
			Region: ev.Region,
		})
		return outbound{
			name:    domain.EventJobCancelled,
			payload: payload,
			groups:  withContractorGroups(ev.Region, ev.ContractorIDs),
		}, err

	default:
		return outbound{}, fmt.Errorf("unknown event type %T", e)
	}
}

func withContractorGroups(region string, contractorIDs []string) []string {
	groups := make([]string, 0, 1+len(contractorIDs))
	groups = append(groups, DispatchGroup(region))
	for _, id := range contractorIDs {
		groups = append(groups, ContractorGroup(id))
	}
	return groups
}

func wireTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}
