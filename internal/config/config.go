package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dispatchly/smartsched/internal/scheduler"
)

// FatigueConfig bounds a contractor's daily load.
type FatigueConfig struct {
	HardStopHours      float64
	SoftCapHours       float64
	MaxConsecutiveJobs int
	MinBreakMinutes    int
}

// BufferConfig sizes travel buffers from ETA minutes.
type BufferConfig struct {
	Ratio          float64
	MinMinutes     int
	MaxMinutes     int
	DefaultMinutes int
}

// RoutingConfig holds the ETA/distance client parameters.
type RoutingConfig struct {
	Endpoint          string
	APIKey            string
	TimeoutMs         int
	MaxRetries        int
	MatrixBatchSize   int
	MatrixConcurrency int
	BreakerFailures   int
	BreakerCooldownMs int
	FallbackSpeedKmh  float64
}

// CacheConfig holds the in-process cache TTLs.
type CacheConfig struct {
	ETATTLMinutes   int
	StatsTTLSeconds int
}

// Config holds all runtime configuration for the scheduler core. Values are
// immutable after Load; Store swaps whole values on reload.
type Config struct {
	DBPath  string
	Fatigue FatigueConfig
	Buffer  BufferConfig
	Routing RoutingConfig
	Cache   CacheConfig
}

// DefaultConfig returns a Config with the shipped defaults.
func DefaultConfig() Config {
	return Config{
		DBPath: defaultDBPath(),
		Fatigue: FatigueConfig{
			HardStopHours:      12,
			SoftCapHours:       10,
			MaxConsecutiveJobs: 4,
			MinBreakMinutes:    15,
		},
		Buffer: BufferConfig{
			Ratio:          0.25,
			MinMinutes:     10,
			MaxMinutes:     45,
			DefaultMinutes: 15,
		},
		Routing: RoutingConfig{
			Endpoint:          "https://api.openrouteservice.org",
			TimeoutMs:         3500,
			MaxRetries:        2,
			MatrixBatchSize:   25,
			MatrixConcurrency: 4,
			BreakerFailures:   5,
			BreakerCooldownMs: 30000,
			FallbackSpeedKmh:  50,
		},
		Cache: CacheConfig{
			ETATTLMinutes:   15,
			StatsTTLSeconds: 60,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "smartsched.db"
	}
	return home + "/.smartsched/smartsched.db"
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset or invalid values.
func Load() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SMARTSCHED_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	applyFloatEnv(&cfg.Fatigue.HardStopHours, "SMARTSCHED_FATIGUE_HARD_STOP_HOURS")
	applyFloatEnv(&cfg.Fatigue.SoftCapHours, "SMARTSCHED_FATIGUE_SOFT_CAP_HOURS")
	applyIntEnv(&cfg.Fatigue.MaxConsecutiveJobs, "SMARTSCHED_FATIGUE_MAX_CONSECUTIVE_JOBS")
	applyIntEnv(&cfg.Fatigue.MinBreakMinutes, "SMARTSCHED_FATIGUE_MIN_BREAK_MINUTES")

	applyFloatEnv(&cfg.Buffer.Ratio, "SMARTSCHED_BUFFER_RATIO")
	applyIntEnv(&cfg.Buffer.MinMinutes, "SMARTSCHED_BUFFER_MIN_MINUTES")
	applyIntEnv(&cfg.Buffer.MaxMinutes, "SMARTSCHED_BUFFER_MAX_MINUTES")
	applyIntEnv(&cfg.Buffer.DefaultMinutes, "SMARTSCHED_BUFFER_DEFAULT_MINUTES")

	if v := os.Getenv("SMARTSCHED_ROUTING_ENDPOINT"); v != "" {
		cfg.Routing.Endpoint = v
	}
	if v := os.Getenv("SMARTSCHED_ROUTING_API_KEY"); v != "" {
		cfg.Routing.APIKey = v
	}
	applyIntEnv(&cfg.Routing.TimeoutMs, "SMARTSCHED_ROUTING_TIMEOUT_MS")
	applyIntEnv(&cfg.Routing.MaxRetries, "SMARTSCHED_ROUTING_MAX_RETRIES")
	applyIntEnv(&cfg.Routing.MatrixBatchSize, "SMARTSCHED_MATRIX_BATCH_SIZE")
	applyIntEnv(&cfg.Routing.MatrixConcurrency, "SMARTSCHED_MATRIX_CONCURRENCY")
	applyIntEnv(&cfg.Routing.BreakerFailures, "SMARTSCHED_BREAKER_FAILURES")
	applyIntEnv(&cfg.Routing.BreakerCooldownMs, "SMARTSCHED_BREAKER_COOLDOWN_MS")
	applyFloatEnv(&cfg.Routing.FallbackSpeedKmh, "SMARTSCHED_FALLBACK_SPEED_KMH")

	applyIntEnv(&cfg.Cache.ETATTLMinutes, "SMARTSCHED_ETA_CACHE_TTL_MINUTES")
	applyIntEnv(&cfg.Cache.StatsTTLSeconds, "SMARTSCHED_STATS_CACHE_TTL_SECONDS")

	return cfg
}

func applyIntEnv(target *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*target = n
	}
}

func applyFloatEnv(target *float64, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
		*target = f
	}
}

// FatiguePolicy converts the fatigue section into the engine's policy value.
// MaxJobsPerDay stays zero; it is a per-contractor setting filled by callers.
func (c Config) FatiguePolicy() scheduler.FatiguePolicy {
	return scheduler.FatiguePolicy{
		HardStopHours:      c.Fatigue.HardStopHours,
		SoftCapHours:       c.Fatigue.SoftCapHours,
		MaxConsecutiveJobs: c.Fatigue.MaxConsecutiveJobs,
		MinBreakMinutes:    c.Fatigue.MinBreakMinutes,
	}
}

// BufferPolicy converts the buffer section into the engine's policy value.
func (c Config) BufferPolicy() scheduler.BufferPolicy {
	return scheduler.BufferPolicy{
		Ratio:      c.Buffer.Ratio,
		MinMinutes: c.Buffer.MinMinutes,
		MaxMinutes: c.Buffer.MaxMinutes,
	}
}

// Timeout returns the routing HTTP timeout as a duration.
func (c RoutingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// BreakerCooldown returns the circuit-breaker open interval as a duration.
func (c RoutingConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownMs) * time.Millisecond
}

// ETATTL returns the ETA cache TTL as a duration.
func (c CacheConfig) ETATTL() time.Duration {
	return time.Duration(c.ETATTLMinutes) * time.Minute
}

// StatsTTL returns the dashboard statistics cache TTL as a duration.
func (c CacheConfig) StatsTTL() time.Duration {
	return time.Duration(c.StatsTTLSeconds) * time.Second
}
