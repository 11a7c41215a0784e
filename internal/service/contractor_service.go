package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
)

type contractorService struct {
	contractors repository.ContractorRepo
	sysconfigs  repository.SystemConfigurationRepo
	geo         GeoResolver
}

func NewContractorService(
	contractors repository.ContractorRepo,
	sysconfigs repository.SystemConfigurationRepo,
	geo GeoResolver,
) app.ContractorUseCase {
	return &contractorService{contractors: contractors, sysconfigs: sysconfigs, geo: geo}
}

// CreateContractor parses the wall-clock schedule inputs, checks the skill
// catalog, and registers the contractor as active.
func (s *contractorService) CreateContractor(ctx context.Context, req app.CreateContractorRequest) (*domain.Contractor, error) {
	skills := domain.NormalizeSkills(req.Skills)
	if err := s.checkSkills(ctx, skills); err != nil {
		return nil, err
	}

	homeBase := req.HomeBase
	if err := homeBase.Validate(); err != nil {
		return nil, app.FromDomain(err)
	}
	if homeBase.Timezone == "" && s.geo != nil && (homeBase.Lat != 0 || homeBase.Lng != 0) {
		if tz, err := s.geo.TimezoneAt(ctx, homeBase.Lat, homeBase.Lng); err == nil {
			homeBase.Timezone = tz
		}
	}

	hours := make([]domain.WorkingHours, 0, len(req.WorkingHours))
	for _, in := range req.WorkingHours {
		startMin, err := domain.ParseClock(in.Start)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		endMin, err := domain.ParseClock(in.End)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		tz := in.Timezone
		if tz == "" {
			tz = homeBase.Timezone
		}
		wh, err := domain.NewWorkingHours(in.Day, startMin, endMin, tz)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		hours = append(hours, wh)
	}

	calendar := domain.ContractorCalendar{}
	for _, date := range req.Holidays {
		h, err := domain.NewHoliday(date, "")
		if err != nil {
			return nil, app.FromDomain(err)
		}
		calendar.Exceptions = append(calendar.Exceptions, h)
	}
	for _, in := range req.Overrides {
		startMin, err := domain.ParseClock(in.Start)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		endMin, err := domain.ParseClock(in.End)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		ov, err := domain.NewOverride(in.Date, startMin, endMin, in.Note)
		if err != nil {
			return nil, app.FromDomain(err)
		}
		calendar.Exceptions = append(calendar.Exceptions, ov)
	}

	now := time.Now().UTC()
	contractor := &domain.Contractor{
		ID:            uuid.New().String(),
		Name:          req.Name,
		HomeBase:      homeBase,
		WorkingHours:  hours,
		Calendar:      calendar,
		Skills:        skills,
		Rating:        req.Rating,
		MaxJobsPerDay: req.MaxJobsPerDay,
		Active:        true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := contractor.Validate(); err != nil {
		return nil, app.FromDomain(err)
	}

	if err := s.contractors.Create(ctx, contractor); err != nil {
		return nil, fmt.Errorf("creating contractor: %w", err)
	}
	return contractor, nil
}

func (s *contractorService) checkSkills(ctx context.Context, skills []string) error {
	catalog, err := s.sysconfigs.GetLatest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading system configuration: %w", err)
	}
	for _, skill := range skills {
		if !catalog.AllowsSkill(skill) {
			return app.InvalidArgument("skill %q is not in the allowed catalog", skill)
		}
	}
	return nil
}

func (s *contractorService) GetContractor(ctx context.Context, id string) (*domain.Contractor, error) {
	c, err := s.contractors.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "contractor", id)
	}
	return c, nil
}

func (s *contractorService) ListContractors(ctx context.Context) ([]*domain.Contractor, error) {
	list, err := s.contractors.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing contractors: %w", err)
	}
	return list, nil
}
