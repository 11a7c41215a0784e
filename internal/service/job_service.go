package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/dispatchly/smartsched/internal/routing"
	"github.com/dispatchly/smartsched/internal/scheduler"
)

type jobService struct {
	uow         db.UnitOfWork
	jobs        repository.JobRepo
	contractors repository.ContractorRepo
	assignments repository.AssignmentRepo
	sysconfigs  repository.SystemConfigurationRepo
	geo         GeoResolver
	publisher   EventPublisher
	cfg         config.Config
	observer    UseCaseObserver
}

func NewJobService(
	uow db.UnitOfWork,
	jobs repository.JobRepo,
	contractors repository.ContractorRepo,
	assignments repository.AssignmentRepo,
	sysconfigs repository.SystemConfigurationRepo,
	geo GeoResolver,
	publisher EventPublisher,
	cfg config.Config,
	observers ...UseCaseObserver,
) app.JobUseCase {
	return &jobService{
		uow:         uow,
		jobs:        jobs,
		contractors: contractors,
		assignments: assignments,
		sysconfigs:  sysconfigs,
		geo:         geo,
		publisher:   publisher,
		cfg:         cfg,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *jobService) CreateJob(ctx context.Context, req app.CreateJobRequest) (*domain.Job, error) {
	window, err := domain.NewTimeWindow(req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, app.FromDomain(err)
	}

	loc, err := s.resolveLocation(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	if err := s.checkJobType(ctx, req.Type); err != nil {
		return nil, err
	}

	priority := domain.JobPriority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityNormal
	}
	region := req.Region
	if region == "" {
		region = "default"
	}
	multiplier := req.RegionMultiplier
	if multiplier == 0 {
		multiplier = 1
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:               uuid.New().String(),
		Type:             req.Type,
		Priority:         priority,
		Status:           domain.JobScheduled,
		Region:           region,
		RegionMultiplier: multiplier,
		DurationMinutes:  req.DurationMinutes,
		ServiceWindow:    window,
		DesiredDate:      req.DesiredDate,
		Location:         loc,
		RequiredSkills:   domain.NormalizeSkills(req.RequiredSkills),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := job.Validate(); err != nil {
		return nil, app.FromDomain(err)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	return job, nil
}

// resolveLocation fills in coordinates from the address and the timezone from
// the coordinates. A failed timezone lookup is tolerated; the availability
// engine falls back to the contractor's zone.
func (s *jobService) resolveLocation(ctx context.Context, loc domain.GeoLocation) (domain.GeoLocation, error) {
	if loc.Lat == 0 && loc.Lng == 0 {
		if s.geo == nil || loc.Address == "" {
			return loc, app.InvalidArgument("job location needs coordinates or an address")
		}
		resolved, err := s.geo.Geocode(ctx, loc.Address)
		if err != nil {
			if errors.Is(err, routing.ErrBadResponse) {
				return loc, app.InvalidArgument("no match for address %q", loc.Address)
			}
			return loc, app.UpstreamUnavailable("geocoding", err)
		}
		tz := loc.Timezone
		loc = *resolved
		if tz != "" {
			loc.Timezone = tz
		}
	}
	if err := loc.Validate(); err != nil {
		return loc, app.FromDomain(err)
	}
	if loc.Timezone == "" && s.geo != nil {
		if tz, err := s.geo.TimezoneAt(ctx, loc.Lat, loc.Lng); err == nil {
			loc.Timezone = tz
		}
	}
	return loc, nil
}

// checkJobType validates the type against the latest catalog. No catalog
// means no restriction.
func (s *jobService) checkJobType(ctx context.Context, jobType string) error {
	catalog, err := s.sysconfigs.GetLatest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading system configuration: %w", err)
	}
	if !catalog.AllowsJobType(jobType) {
		return app.InvalidArgument("job type %q is not in the allowed catalog", jobType)
	}
	return nil
}

func (s *jobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "job", id)
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context, status, region string) ([]*domain.Job, error) {
	switch domain.JobStatus(status) {
	case "", domain.JobScheduled, domain.JobInProgress, domain.JobCompleted, domain.JobCancelled:
	default:
		return nil, app.InvalidArgument("unknown job status %q", status)
	}
	jobs, err := s.jobs.List(ctx, status, region)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// AssignJob validates the requested window against the contractor's calendar,
// existing assignments, and the fatigue caps, then persists the assignment
// and the updated job in one transaction. Events publish after commit.
func (s *jobService) AssignJob(ctx context.Context, req app.AssignRequest) (resp *app.AssignResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"job_id": req.JobID, "contractor_id": req.ContractorID}
	defer func() { observeCompletion(ctx, s.observer, "assign-job", startedAt, fields, err) }()

	window, err := domain.NewTimeWindow(req.Start, req.End)
	if err != nil {
		return nil, app.FromDomain(err)
	}
	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	now := time.Now().UTC()

	var (
		assignment *domain.Assignment
		job        *domain.Job
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txJobs := repository.NewSQLiteJobRepo(tx)
		txContractors := repository.NewSQLiteContractorRepo(tx)
		txAssignments := repository.NewSQLiteAssignmentRepo(tx)
		txAudits := repository.NewSQLiteAuditRepo(tx)

		var err error
		job, err = txJobs.GetByID(ctx, req.JobID)
		if err != nil {
			return mapRepoErr(err, "job", req.JobID)
		}
		if job.Status.Terminal() {
			return app.InvalidState("job %s is %s", job.ID, job.Status)
		}
		contractor, err := txContractors.GetByID(ctx, req.ContractorID)
		if err != nil {
			return mapRepoErr(err, "contractor", req.ContractorID)
		}

		from, to := blockingRange(window)
		blocking, err := txAssignments.ListBlockingByContractor(ctx, contractor.ID, from, to)
		if err != nil {
			return fmt.Errorf("loading assignments for contractor %s: %w", contractor.ID, err)
		}

		// Direct overlap wins over the availability verdict so the caller
		// learns which assignment is in the way.
		if conflict := overlapping(blocking, window, ""); conflict != nil {
			return app.ConflictingAssignment(conflict.ID)
		}
		covered, err := windowCovered(contractor, job, window, blockingWindows(blocking))
		if err != nil {
			return app.FromDomain(err)
		}
		if !covered {
			return app.NotAvailable(fmt.Sprintf(
				"%s is not available %s to %s",
				contractor.Name,
				window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339),
			))
		}
		fatiguePolicy := s.cfg.FatiguePolicy()
		fatiguePolicy.MaxJobsPerDay = contractor.MaxJobsPerDay
		fatigue, err := scheduler.CheckFatigue(scheduler.FatigueInput{
			Proposed: window,
			Existing: blockingWindows(blocking),
			Zone:     contractorZone(contractor, job),
			IsRush:   job.IsRush(),
			Policy:   fatiguePolicy,
		})
		if err != nil {
			return app.FromDomain(err)
		}
		if !fatigue.Feasible {
			return app.NotAvailable(fatigue.Reason)
		}

		assignment = domain.NewAssignment(uuid.New().String(), job.ID, contractor.ID, window, source, now)
		auditID := req.AuditID
		if auditID == "" {
			auditID = job.LastAuditID
		}
		assignment.AuditID = auditID

		if err := txAssignments.Create(ctx, assignment); err != nil {
			return fmt.Errorf("creating assignment: %w", err)
		}
		job.Assign(assignment, auditID, now)
		if err := txJobs.Update(ctx, job); err != nil {
			return mapRepoErr(err, "job", job.ID)
		}
		if auditID != "" {
			// A stale audit reference is tolerated; the assignment lands
			// without the stamp.
			if err := txAudits.SetSelectedContractor(ctx, auditID, contractor.ID); err != nil &&
				!errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("stamping audit %s: %w", auditID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["assignment_id"] = assignment.ID
	s.publisher.Publish(ctx, job.DrainEvents())
	return &app.AssignResponse{Assignment: assignment, Job: job}, nil
}

// RescheduleJob moves the service window and drags every active assignment
// along. Each assigned contractor is re-validated against the new window
// first; a collision with one of their other assignments reports the
// conflicting ID.
func (s *jobService) RescheduleJob(ctx context.Context, req app.RescheduleRequest) (job *domain.Job, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"job_id": req.JobID}
	defer func() { observeCompletion(ctx, s.observer, "reschedule-job", startedAt, fields, err) }()

	window, err := domain.NewTimeWindow(req.NewStart, req.NewEnd)
	if err != nil {
		return nil, app.FromDomain(err)
	}
	now := time.Now().UTC()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txJobs := repository.NewSQLiteJobRepo(tx)
		txContractors := repository.NewSQLiteContractorRepo(tx)
		txAssignments := repository.NewSQLiteAssignmentRepo(tx)

		var err error
		job, err = txJobs.GetByID(ctx, req.JobID)
		if err != nil {
			return mapRepoErr(err, "job", req.JobID)
		}
		if job.Status.Terminal() {
			return app.InvalidState("job %s is %s", job.ID, job.Status)
		}

		all, err := txAssignments.ListByJob(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("loading assignments for job %s: %w", job.ID, err)
		}
		active := lo.Filter(all, func(a *domain.Assignment, _ int) bool { return a.Blocking() })

		for _, a := range active {
			contractor, err := txContractors.GetByID(ctx, a.ContractorID)
			if err != nil {
				return mapRepoErr(err, "contractor", a.ContractorID)
			}
			from, to := blockingRange(window)
			blocking, err := txAssignments.ListBlockingByContractor(ctx, contractor.ID, from, to)
			if err != nil {
				return fmt.Errorf("loading assignments for contractor %s: %w", contractor.ID, err)
			}
			// The assignment being moved never conflicts with itself.
			if conflict := overlapping(blocking, window, a.ID); conflict != nil {
				return app.ConflictingAssignment(conflict.ID)
			}
			others := lo.Filter(blocking, func(b *domain.Assignment, _ int) bool { return b.ID != a.ID })
			covered, err := windowCovered(contractor, job, window, blockingWindows(others))
			if err != nil {
				return app.FromDomain(err)
			}
			if !covered {
				return app.InvalidState(
					"%s working hours do not cover %s to %s",
					contractor.Name,
					window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339),
				)
			}
		}

		contractorIDs := lo.Uniq(lo.Map(active, func(a *domain.Assignment, _ int) string {
			return a.ContractorID
		}))
		if err := job.Reschedule(window, contractorIDs, now); err != nil {
			return app.FromDomain(err)
		}
		for _, a := range active {
			if err := a.SetWindow(window, now); err != nil {
				return app.FromDomain(err)
			}
			if err := txAssignments.Update(ctx, a); err != nil {
				return mapRepoErr(err, "assignment", a.ID)
			}
		}
		if err := txJobs.Update(ctx, job); err != nil {
			return mapRepoErr(err, "job", job.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, job.DrainEvents())
	return job, nil
}

// CancelJob terminates the job and its non-terminal assignments. Completed
// assignments stay untouched as history.
func (s *jobService) CancelJob(ctx context.Context, req app.CancelRequest) (job *domain.Job, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"job_id": req.JobID}
	defer func() { observeCompletion(ctx, s.observer, "cancel-job", startedAt, fields, err) }()

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txJobs := repository.NewSQLiteJobRepo(tx)
		txAssignments := repository.NewSQLiteAssignmentRepo(tx)

		var err error
		job, err = txJobs.GetByID(ctx, req.JobID)
		if err != nil {
			return mapRepoErr(err, "job", req.JobID)
		}

		all, err := txAssignments.ListByJob(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("loading assignments for job %s: %w", job.ID, err)
		}
		active := lo.Filter(all, func(a *domain.Assignment, _ int) bool { return a.Blocking() })
		contractorIDs := lo.Uniq(lo.Map(active, func(a *domain.Assignment, _ int) string {
			return a.ContractorID
		}))

		if err := job.Cancel(req.Reason, contractorIDs, now); err != nil {
			return app.FromDomain(err)
		}
		for _, a := range active {
			if err := a.Cancel(now); err != nil {
				return app.FromDomain(err)
			}
			if err := txAssignments.Update(ctx, a); err != nil {
				return mapRepoErr(err, "assignment", a.ID)
			}
		}
		if err := txJobs.Update(ctx, job); err != nil {
			return mapRepoErr(err, "job", job.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, job.DrainEvents())
	return job, nil
}
