package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/sony/gobreaker"

	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/domain"
)

const (
	matrixPath   = "/v2/matrix/driving-car"
	geocodePath  = "/geocode/search"
	timezonePath = "/timezone"
	healthPath   = "/health"

	retryBaseDelay = 200 * time.Millisecond
	retryMaxJitter = 150 * time.Millisecond
)

// orsClient implements Client against an OpenRouteService-compatible gateway.
type orsClient struct {
	cfg      config.RoutingConfig
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	observer Observer
}

// NewORSClient creates a Client for the gateway named in cfg. A nil observer
// discards call events.
func NewORSClient(cfg config.RoutingConfig, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "routing",
		Timeout: cfg.BreakerCooldown(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
	})
	return &orsClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		breaker:  breaker,
		observer: observer,
	}
}

// matrixRequest is the JSON body sent to POST /v2/matrix/driving-car.
type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]float64 `json:"durations"`
	Distances [][]float64 `json:"distances"`
}

func (c *orsClient) Matrix(ctx context.Context, pairs []Pair) ([]Estimate, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	// Origins occupy locations[0:n), destinations locations[n:2n), so the
	// estimate for pair i is the matrix diagonal [i][i].
	n := len(pairs)
	locations := make([][]float64, 0, 2*n)
	sources := make([]int, n)
	destinations := make([]int, n)
	for i, p := range pairs {
		locations = append(locations, []float64{p.From.Lng, p.From.Lat})
		sources[i] = i
		destinations[i] = n + i
	}
	for _, p := range pairs {
		locations = append(locations, []float64{p.To.Lng, p.To.Lat})
	}

	body := matrixRequest{
		Locations:    locations,
		Sources:      sources,
		Destinations: destinations,
		Metrics:      []string{"distance", "duration"},
	}

	var resp matrixResponse
	err := c.call(ctx, "matrix", n, func(ctx context.Context) error {
		resp = matrixResponse{}
		if err := c.postJSON(ctx, matrixPath, body, &resp); err != nil {
			return err
		}
		return validateMatrix(resp, n)
	})
	if err != nil {
		return nil, err
	}

	ests := make([]Estimate, n)
	for i := range pairs {
		ests[i] = Estimate{
			Meters:  resp.Distances[i][i],
			Minutes: int(math.Round(resp.Durations[i][i] / 60)),
			Source:  SourcePrimary,
		}
	}
	return ests, nil
}

func validateMatrix(resp matrixResponse, n int) error {
	if len(resp.Durations) < n || len(resp.Distances) < n {
		return fmt.Errorf("%w: matrix covers %d durations and %d distances for %d legs",
			ErrBadResponse, len(resp.Durations), len(resp.Distances), n)
	}
	for i := 0; i < n; i++ {
		if len(resp.Durations[i]) <= i || len(resp.Distances[i]) <= i {
			return fmt.Errorf("%w: matrix row %d truncated", ErrBadResponse, i)
		}
	}
	return nil
}

// geocodeResponse is the GeoJSON feature collection returned by the gateway.
type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label      string `json:"label"`
			Locality   string `json:"locality"`
			Region     string `json:"region"`
			PostalCode string `json:"postalcode"`
			Country    string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

func (c *orsClient) Geocode(ctx context.Context, address string) (*domain.GeoLocation, error) {
	q := url.Values{}
	q.Set("text", address)
	q.Set("size", "1")

	var resp geocodeResponse
	err := c.call(ctx, "geocode", 0, func(ctx context.Context) error {
		resp = geocodeResponse{}
		return c.getJSON(ctx, geocodePath+"?"+q.Encode(), &resp)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, fmt.Errorf("%w: no geocode match for %q", ErrBadResponse, address)
	}
	f := resp.Features[0]
	if len(f.Geometry.Coordinates) != 2 {
		return nil, fmt.Errorf("%w: malformed geocode coordinates", ErrBadResponse)
	}
	return &domain.GeoLocation{
		Lat:        f.Geometry.Coordinates[1],
		Lng:        f.Geometry.Coordinates[0],
		Address:    address,
		City:       f.Properties.Locality,
		State:      f.Properties.Region,
		PostalCode: f.Properties.PostalCode,
		Country:    f.Properties.Country,
	}, nil
}

type timezoneResponse struct {
	Timezone string `json:"timezone"`
}

func (c *orsClient) TimezoneAt(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var resp timezoneResponse
	err := c.call(ctx, "timezone", 0, func(ctx context.Context) error {
		resp = timezoneResponse{}
		return c.getJSON(ctx, timezonePath+"?"+q.Encode(), &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.Timezone == "" {
		return "", fmt.Errorf("%w: empty timezone", ErrBadResponse)
	}
	return resp.Timezone, nil
}

func (c *orsClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// call runs fn under the shared timeout, circuit breaker, and retry policy,
// then reports the outcome to the observer.
func (c *orsClient) call(ctx context.Context, op string, pairs int, fn func(context.Context) error) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	attempts := 1 + c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, retry.Do(
			func() error { return fn(ctx) },
			retry.Context(ctx),
			retry.Attempts(uint(attempts)),
			retry.Delay(retryBaseDelay),
			retry.MaxJitter(retryMaxJitter),
			retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				var se *statusError
				if errors.As(err, &se) {
					return se.retryable()
				}
				return !errors.Is(err, ErrBadResponse)
			}),
		)
	})

	latency := time.Since(start).Milliseconds()
	if err == nil {
		c.observer.OnCallComplete(CallEvent{
			Operation: op,
			Pairs:     pairs,
			LatencyMs: latency,
			Success:   true,
		})
		return nil
	}

	err = c.classify(ctx, err)
	c.observer.OnCallComplete(CallEvent{
		Operation: op,
		Pairs:     pairs,
		LatencyMs: latency,
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *orsClient) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: circuit open", ErrUnavailable)
	case ctx.Err() != nil:
		return ErrTimeout
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, ErrBadResponse):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func (c *orsClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *orsClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.send(req, out)
}

func (c *orsClient) send(req *http.Request, out interface{}) error {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// statusError is a non-200 gateway reply.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("routing gateway returned status %d: %s", e.code, e.body)
}

// retryable reports whether the status is worth another attempt. Client
// errors other than 429 are deterministic.
func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrBadResponse):
		return "BAD_RESPONSE"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
