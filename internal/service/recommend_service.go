package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/dispatchly/smartsched/internal/routing"
	"github.com/dispatchly/smartsched/internal/scheduler"
)

// defaultMaxResults caps the candidate list when the request does not ask for
// a specific size.
const defaultMaxResults = 10

type recommendService struct {
	contractors repository.ContractorRepo
	jobs        repository.JobRepo
	assignments repository.AssignmentRepo
	audits      repository.AuditRecommendationRepo
	weights     *config.WeightsProvider
	travel      TravelEstimator
	publisher   EventPublisher
	cfg         config.Config
	observer    UseCaseObserver
}

func NewRecommendService(
	contractors repository.ContractorRepo,
	jobs repository.JobRepo,
	assignments repository.AssignmentRepo,
	audits repository.AuditRecommendationRepo,
	weights *config.WeightsProvider,
	travel TravelEstimator,
	publisher EventPublisher,
	cfg config.Config,
	observers ...UseCaseObserver,
) app.RecommendUseCase {
	return &recommendService{
		contractors: contractors,
		jobs:        jobs,
		assignments: assignments,
		audits:      audits,
		weights:     weights,
		travel:      travel,
		publisher:   publisher,
		cfg:         cfg,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// Recommend runs the full pipeline for one job: load, hard-filter the
// contractor pool, batch the travel estimates, generate slots, score, rank,
// and assemble the response. The audit record persists asynchronously and the
// RecommendationReady fan-out happens only when the request opts in.
func (s *recommendService) Recommend(ctx context.Context, req app.RecommendRequest) (resp *app.RecommendResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"job_id": req.JobID}
	defer func() { observeCompletion(ctx, s.observer, "recommend", startedAt, fields, err) }()

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > app.MaxRecommendations {
		maxResults = app.MaxRecommendations
	}

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, mapRepoErr(err, "job", req.JobID)
	}
	if job.Status.Terminal() {
		return nil, app.InvalidState("job %s is %s", job.ID, job.Status)
	}

	weights, err := s.weights.Active(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.NotFound("weights config", "active")
		}
		return nil, app.FromDomain(err)
	}

	all, err := s.contractors.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("loading contractors: %w", err)
	}
	fields["contractors"] = len(all)

	pool, skipped := hardFilter(all, job.RequiredSkills)

	var estimates []routing.Estimate
	if len(pool) > 0 {
		pairs := lo.Map(pool, func(c *domain.Contractor, _ int) routing.Pair {
			return routing.Pair{From: c.HomeBase, To: job.Location}
		})
		estimates, err = s.travel.Matrix(ctx, pairs)
		if err != nil {
			return nil, fmt.Errorf("estimating travel: %w", err)
		}
	}

	degraded := false
	var scored []scheduler.ScoredCandidate
	from, to := blockingRange(job.ServiceWindow)
	for i, c := range pool {
		blocking, err := s.assignments.ListBlockingByContractor(ctx, c.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("loading assignments for contractor %s: %w", c.ID, err)
		}

		cand, skip, err := s.evaluate(job, c, estimates[i], blockingWindows(blocking), weights)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		if skip != nil {
			skipped = append(skipped, *skip)
			continue
		}
		if cand.Degraded {
			degraded = true
		}
		scored = append(scored, *cand)
	}

	scheduler.CanonicalRank(scored)
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	candidates := lo.Map(scored, func(c scheduler.ScoredCandidate, _ int) app.CandidateView {
		return app.CandidateView{
			ContractorID:   c.Input.ContractorID,
			ContractorName: c.Input.ContractorName,
			FinalScore:     c.FinalScore,
			Factors:        c.Factors,
			Rationale:      scheduler.Rationale(c),
			Slots:          c.Slots,
			DistanceMeters: c.Input.DistanceMeters,
			TravelETAMin:   c.Input.NextLegETAMin,
			Utilization:    c.Input.Utilization,
			Degraded:       c.Degraded,
		}
	})

	resp = &app.RecommendResponse{
		RequestID:     uuid.New().String(),
		JobID:         job.ID,
		GeneratedAt:   now,
		ConfigVersion: weights.Version,
		Candidates:    candidates,
		Skipped:       skipped,
		Degraded:      degraded,
	}
	if len(candidates) > 0 {
		resp.BestRecommendationContractorID = candidates[0].ContractorID
	}
	fields["candidates"] = len(candidates)
	fields["request_id"] = resp.RequestID

	s.persistAuditAsync(ctx, req, resp)

	if req.Publish {
		s.publisher.Publish(ctx, []domain.Event{domain.RecommendationReadyEvent{
			JobID:         job.ID,
			RequestID:     resp.RequestID,
			Region:        job.Region,
			ConfigVersion: weights.Version,
			At:            now,
		}})
	}
	return resp, nil
}

// hardFilter drops inactive contractors and those missing a required skill
// before any expensive work, recording the skip reason for each.
func hardFilter(all []*domain.Contractor, requiredSkills []string) ([]*domain.Contractor, []app.SkippedContractor) {
	required := domain.NormalizeSkills(requiredSkills)

	var pool []*domain.Contractor
	var skipped []app.SkippedContractor
	for _, c := range all {
		switch {
		case !c.Active:
			skipped = append(skipped, app.SkippedContractor{
				ContractorID: c.ID,
				Code:         app.SkipInactive,
				Message:      fmt.Sprintf("%s is inactive", c.Name),
			})
		case !c.HasSkills(required):
			skipped = append(skipped, app.SkippedContractor{
				ContractorID: c.ID,
				Code:         app.SkipMissingSkills,
				Message:      fmt.Sprintf("%s lacks required skills %v", c.Name, required),
			})
		default:
			pool = append(pool, c)
		}
	}
	return pool, skipped
}

// evaluate turns one pooled contractor into a scored candidate, or a skip
// when no feasible slot exists in the service window.
func (s *recommendService) evaluate(
	job *domain.Job,
	c *domain.Contractor,
	est routing.Estimate,
	blocking []domain.TimeWindow,
	weights *domain.WeightsConfig,
) (*scheduler.ScoredCandidate, *app.SkippedContractor, error) {
	eta := est.Minutes
	fatigue := s.cfg.FatiguePolicy()
	fatigue.MaxJobsPerDay = c.MaxJobsPerDay

	slots, err := scheduler.GenerateSlots(scheduler.SlotRequest{
		WorkingHours:     c.WorkingHours,
		ServiceWindow:    job.ServiceWindow,
		Existing:         blocking,
		DurationMinutes:  job.DurationMinutes,
		ContractorZone:   c.Zone(),
		JobZone:          job.Location.Timezone,
		Calendar:         &c.Calendar,
		BaseETAMin:       &eta,
		Rating:           c.Rating,
		IsRush:           job.IsRush(),
		RegionMultiplier: job.RegionMultiplier,
		Buffers:          s.cfg.BufferPolicy(),
		Fatigue:          fatigue,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(slots) == 0 {
		return nil, &app.SkippedContractor{
			ContractorID: c.ID,
			Code:         app.SkipNoAvailability,
			Message:      fmt.Sprintf("%s has no feasible slot in the service window", c.Name),
		}, nil
	}

	// The availability factor scores the raw open windows, not the offered
	// slots: how many pieces could hold the job and how much total time is
	// open across them.
	windows, err := scheduler.Available(scheduler.AvailabilityInput{
		WorkingHours:   c.WorkingHours,
		ServiceWindow:  job.ServiceWindow,
		Blocking:       blocking,
		MinMinutes:     job.DurationMinutes,
		ContractorZone: c.Zone(),
		JobZone:        job.Location.Timezone,
		Calendar:       &c.Calendar,
	})
	if err != nil {
		return nil, nil, err
	}
	totalMinutes := 0
	for _, w := range windows {
		totalMinutes += w.Minutes()
	}

	earliest := slots[0].Window.Start
	for _, sl := range slots[1:] {
		if sl.Window.Start.Before(earliest) {
			earliest = sl.Window.Start
		}
	}

	cand := scheduler.ScoreCandidate(scheduler.ScoringInput{
		ContractorID:   c.ID,
		ContractorName: c.Name,
		Rating:         c.Rating,
		DistanceMeters: est.Meters,
		SlotCount:      len(windows),
		TotalMinutes:   totalMinutes,
		Utilization:    sameDayUtilization(c, earliest, blocking),
		EarliestStart:  earliest,
		NextLegETAMin:  &eta,
		Weights:        weights.Weights,
		Rotation:       weights.Rotation,
	})
	cand.Slots = slots
	cand.Degraded = est.Degraded
	return &cand, nil, nil
}

// persistAuditAsync snapshots the request and ranked outcome without blocking
// the response. The write survives caller cancellation; a failure is reported
// to the observer and otherwise swallowed.
func (s *recommendService) persistAuditAsync(ctx context.Context, req app.RecommendRequest, resp *app.RecommendResponse) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		requestJSON = []byte("{}")
	}
	candidatesJSON, err := json.Marshal(resp.Candidates)
	if err != nil {
		candidatesJSON = []byte("[]")
	}
	record := &domain.AuditRecommendation{
		ID:             uuid.New().String(),
		RequestID:      resp.RequestID,
		JobID:          resp.JobID,
		ActorID:        req.ActorID,
		RequestJSON:    string(requestJSON),
		CandidatesJSON: string(candidatesJSON),
		ConfigVersion:  resp.ConfigVersion,
		CreatedAt:      resp.GeneratedAt,
	}

	audit := context.WithoutCancel(ctx)
	go func() {
		if err := s.audits.Create(audit, record); err != nil {
			fields := map[string]any{"request_id": record.RequestID}
			observeCompletion(audit, s.observer, "recommend-audit", record.CreatedAt, fields, err)
		}
	}()
}
