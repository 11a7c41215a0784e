package routing

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/domain"
)

// Provider resolves travel estimates on top of a Client, adding an
// in-process TTL cache, batched matrix calls with a concurrency cap, and a
// haversine fallback. Gateway failures degrade the affected legs instead of
// failing the lookup; the only error a caller sees is its own context
// expiring.
type Provider struct {
	client Client
	cfg    config.RoutingConfig
	cache  *cache.Cache
	sem    *semaphore.Weighted
}

// NewProvider creates a Provider. Cached estimates expire after ttl; a
// non-positive ttl keeps them forever.
func NewProvider(client Client, cfg config.RoutingConfig, ttl time.Duration) *Provider {
	conc := cfg.MatrixConcurrency
	if conc <= 0 {
		conc = 1
	}
	pairCache := cache.New(cache.NoExpiration, 0)
	if ttl > 0 {
		pairCache = cache.New(ttl, 2*ttl)
	}
	return &Provider{
		client: client,
		cfg:    cfg,
		cache:  pairCache,
		sem:    semaphore.NewWeighted(int64(conc)),
	}
}

// ETA resolves a single travel leg.
func (p *Provider) ETA(ctx context.Context, from, to domain.GeoLocation) (Estimate, error) {
	ests, err := p.Matrix(ctx, []Pair{{From: from, To: to}})
	if err != nil {
		return Estimate{}, err
	}
	return ests[0], nil
}

// Matrix resolves an estimate for every pair, index-aligned with the input.
// Cached legs are served directly; misses are batched and resolved
// concurrently, and any batch the gateway cannot answer falls back to
// great-circle estimates.
func (p *Provider) Matrix(ctx context.Context, pairs []Pair) ([]Estimate, error) {
	results := make([]Estimate, len(pairs))

	var misses []int
	for i, pair := range pairs {
		if est, ok := p.lookup(pair); ok {
			results[i] = est
		} else {
			misses = append(misses, i)
		}
	}
	if len(misses) == 0 {
		return results, nil
	}

	batchSize := p.cfg.MatrixBatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	for _, batch := range lo.Chunk(misses, batchSize) {
		batch := batch
		grp.Go(func() error {
			return p.resolveBatch(grpCtx, pairs, batch, results)
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveBatch fills results at the given indexes. Batches write to disjoint
// indexes, so the shared slice needs no locking.
func (p *Provider) resolveBatch(ctx context.Context, pairs []Pair, idx []int, results []Estimate) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	batch := lo.Map(idx, func(i int, _ int) Pair { return pairs[i] })
	ests, err := p.client.Matrix(ctx, batch)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Degraded legs are not cached so the gateway gets retried on
		// the next lookup.
		for _, i := range idx {
			results[i] = p.degrade(pairs[i])
		}
		return nil
	}
	for k, i := range idx {
		results[i] = ests[k]
		p.store(pairs[i], ests[k])
	}
	return nil
}

func (p *Provider) degrade(pair Pair) Estimate {
	return Fallback(pair.From, pair.To, p.cfg.FallbackSpeedKmh)
}

func (p *Provider) lookup(pair Pair) (Estimate, bool) {
	key, err := pairKey(pair)
	if err != nil {
		return Estimate{}, false
	}
	if v, found := p.cache.Get(key); found {
		if est, ok := v.(Estimate); ok {
			return est, true
		}
	}
	return Estimate{}, false
}

func (p *Provider) store(pair Pair, est Estimate) {
	key, err := pairKey(pair)
	if err != nil {
		return
	}
	p.cache.SetDefault(key, est)
}

// gridKey snaps coordinates to a ~100m grid so nearby lookups share a
// cached estimate.
type gridKey struct {
	FromLat float64
	FromLng float64
	ToLat   float64
	ToLng   float64
}

func pairKey(p Pair) (string, error) {
	k := gridKey{
		FromLat: snapGrid(p.From.Lat),
		FromLng: snapGrid(p.From.Lng),
		ToLat:   snapGrid(p.To.Lat),
		ToLng:   snapGrid(p.To.Lng),
	}
	h, err := hashstructure.Hash(k, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(h, 10), nil
}

func snapGrid(deg float64) float64 {
	return math.Round(deg*1000) / 1000
}
