package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
)

type configService struct {
	uow      db.UnitOfWork
	provider *config.WeightsProvider
}

func NewConfigService(uow db.UnitOfWork, provider *config.WeightsProvider) app.ConfigUseCase {
	return &configService{uow: uow, provider: provider}
}

func (s *configService) ActiveWeights(ctx context.Context) (*domain.WeightsConfig, error) {
	active, err := s.provider.Active(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.NotFound("weights config", "active")
		}
		return nil, app.FromDomain(err)
	}
	return active, nil
}

// ApplyWeights persists a new weights version and flips activation to it in
// one transaction, then drops the provider cache so the next recommendation
// run sees the new version.
func (s *configService) ApplyWeights(ctx context.Context, c domain.WeightsConfig) (*domain.WeightsConfig, error) {
	if err := c.Validate(); err != nil {
		return nil, app.FromDomain(err)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.IsActive = true
	c.CreatedAt = time.Now().UTC()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txWeights := repository.NewSQLiteWeightsConfigRepo(tx)

		_, err := txWeights.GetByVersion(ctx, c.Version)
		if err == nil {
			return app.InvalidState("weights version %d already exists", c.Version)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("checking weights version %d: %w", c.Version, err)
		}
		if err := txWeights.Create(ctx, &c); err != nil {
			return fmt.Errorf("creating weights version %d: %w", c.Version, err)
		}
		return txWeights.Activate(ctx, c.Version)
	})
	if err != nil {
		return nil, err
	}

	s.provider.Invalidate()
	return s.ActiveWeights(ctx)
}
