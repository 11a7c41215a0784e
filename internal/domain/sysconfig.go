package domain

import (
	"fmt"
	"math"
	"time"
)

// SystemConfiguration is the versioned catalog of allowed job types and
// skills. Mutation handlers validate incoming jobs and contractors against the
// latest version.
type SystemConfiguration struct {
	ID              string
	Version         int
	AllowedJobTypes []string
	AllowedSkills   []string
	CreatedAt       time.Time
}

// AllowsJobType reports whether the job type is in the catalog. An empty
// catalog allows everything.
func (c *SystemConfiguration) AllowsJobType(jobType string) bool {
	if len(c.AllowedJobTypes) == 0 {
		return true
	}
	for _, t := range c.AllowedJobTypes {
		if t == jobType {
			return true
		}
	}
	return false
}

// AllowsSkill reports whether the normalized skill tag is in the catalog. An
// empty catalog allows everything.
func (c *SystemConfiguration) AllowsSkill(skill string) bool {
	if len(c.AllowedSkills) == 0 {
		return true
	}
	for _, s := range c.AllowedSkills {
		if s == skill {
			return true
		}
	}
	return false
}

// RotationConfig nudges work toward underutilized contractors.
type RotationConfig struct {
	Enabled                   bool    `json:"enabled"`
	Boost                     float64 `json:"boost"`                     // 0..20
	UnderUtilizationThreshold float64 `json:"underUtilizationThreshold"` // (0,1)
}

// ScoringWeights are the weighted-combine coefficients. Each weight sits in
// [0,1] and the three must sum to 1 within a small tolerance.
type ScoringWeights struct {
	Availability float64 `json:"availability"`
	Rating       float64 `json:"rating"`
	Distance     float64 `json:"distance"`
}

// WeightsConfig is one versioned scoring configuration. Exactly one config is
// active at a time; the repository layer enforces the exclusivity.
type WeightsConfig struct {
	ID          string
	Version     int
	Weights     ScoringWeights
	TieBreakers []string
	Rotation    RotationConfig
	IsActive    bool
	CreatedAt   time.Time
}

const weightSumTolerance = 1e-6

// Validate rejects out-of-range weights and rotation settings at load time.
func (c *WeightsConfig) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("weights version %d must be >= 1: %w", c.Version, ErrInvalidConfig)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"availability", c.Weights.Availability},
		{"rating", c.Weights.Rating},
		{"distance", c.Weights.Distance},
	} {
		if w.value < 0 || w.value > 1 || math.IsNaN(w.value) {
			return fmt.Errorf("weight %s=%v outside [0,1]: %w", w.name, w.value, ErrInvalidConfig)
		}
	}
	sum := c.Weights.Availability + c.Weights.Rating + c.Weights.Distance
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum %v, want 1.0: %w", sum, ErrInvalidConfig)
	}
	if c.Rotation.Enabled {
		if c.Rotation.Boost < 0 || c.Rotation.Boost > 20 {
			return fmt.Errorf("rotation boost %v outside [0,20]: %w", c.Rotation.Boost, ErrInvalidConfig)
		}
		if c.Rotation.UnderUtilizationThreshold <= 0 || c.Rotation.UnderUtilizationThreshold >= 1 {
			return fmt.Errorf("rotation threshold %v outside (0,1): %w", c.Rotation.UnderUtilizationThreshold, ErrInvalidConfig)
		}
	}
	return nil
}

// DefaultWeights is the seed configuration used before any explicit config is
// written.
func DefaultWeights() WeightsConfig {
	return WeightsConfig{
		Version: 1,
		Weights: ScoringWeights{
			Availability: 0.4,
			Rating:       0.3,
			Distance:     0.3,
		},
		TieBreakers: []string{"earliest_start", "utilization", "next_leg_travel"},
		Rotation: RotationConfig{
			Enabled:                   true,
			Boost:                     5,
			UnderUtilizationThreshold: 0.5,
		},
		IsActive: true,
	}
}
