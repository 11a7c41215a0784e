package config

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultActiveWeightsTTL bounds how stale the cached active config may get
// when activation happens through another process.
const DefaultActiveWeightsTTL = 30 * time.Second

// WeightsProvider serves scoring configurations with an in-process cache.
// Version snapshots are immutable once written so they cache without expiry;
// the active pointer caches briefly and is dropped on Invalidate. Concurrent
// cache fills collapse into a single repository read.
type WeightsProvider struct {
	repo      repository.WeightsConfigRepo
	activeTTL time.Duration
	versions  *cache.Cache
	group     singleflight.Group

	mu        sync.RWMutex
	active    *domain.WeightsConfig
	fetchedAt time.Time
}

// NewWeightsProvider creates a provider over the given repository. A
// non-positive TTL falls back to DefaultActiveWeightsTTL.
func NewWeightsProvider(repo repository.WeightsConfigRepo, activeTTL time.Duration) *WeightsProvider {
	if activeTTL <= 0 {
		activeTTL = DefaultActiveWeightsTTL
	}
	return &WeightsProvider{
		repo:      repo,
		activeTTL: activeTTL,
		versions:  cache.New(cache.NoExpiration, 0),
	}
}

// Active returns the currently active configuration, validated.
func (p *WeightsProvider) Active(ctx context.Context) (*domain.WeightsConfig, error) {
	p.mu.RLock()
	if p.active != nil && time.Since(p.fetchedAt) < p.activeTTL {
		cfg := p.active
		p.mu.RUnlock()
		return cfg, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.group.Do("active", func() (any, error) {
		cfg, err := p.repo.GetActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading active weights: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("active weights v%d: %w", cfg.Version, err)
		}
		p.mu.Lock()
		p.active = cfg
		p.fetchedAt = time.Now()
		p.mu.Unlock()
		p.versions.SetDefault(strconv.Itoa(cfg.Version), cfg)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.WeightsConfig), nil
}

// ByVersion returns the configuration snapshot for one version, serving
// repeats from the cache.
func (p *WeightsProvider) ByVersion(ctx context.Context, version int) (*domain.WeightsConfig, error) {
	key := strconv.Itoa(version)
	if v, ok := p.versions.Get(key); ok {
		return v.(*domain.WeightsConfig), nil
	}

	v, err, _ := p.group.Do("version:"+key, func() (any, error) {
		cfg, err := p.repo.GetByVersion(ctx, version)
		if err != nil {
			return nil, fmt.Errorf("loading weights v%d: %w", version, err)
		}
		p.versions.SetDefault(key, cfg)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.WeightsConfig), nil
}

// Invalidate drops everything cached. Callers invoke it after activating or
// writing a configuration so the next read observes the change, including the
// flipped IsActive flags on version snapshots.
func (p *WeightsProvider) Invalidate() {
	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
	p.versions.Flush()
}
