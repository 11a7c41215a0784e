package scheduler

import (
	"fmt"
	"math"

	"github.com/dispatchly/smartsched/internal/domain"
)

// BufferPolicy sizes travel buffers from ETA minutes. The ratio scales the
// ETA, the result is clamped into [MinMinutes, MaxMinutes].
type BufferPolicy struct {
	Ratio      float64
	MinMinutes int
	MaxMinutes int
}

// DefaultBufferPolicy mirrors the shipped configuration: a quarter of the
// ETA, clamped to [10, 45].
func DefaultBufferPolicy() BufferPolicy {
	return BufferPolicy{Ratio: 0.25, MinMinutes: 10, MaxMinutes: 45}
}

// DefaultBufferMinutes pads slot sizing when no ETA is known at all.
const DefaultBufferMinutes = 15

// bufferFromETA is the shared formula: clamp(round(eta*ratio*multiplier),
// min, max). The regional multiplier applies before clamping.
func bufferFromETA(etaMinutes int, multiplier float64, p BufferPolicy) (int, error) {
	if etaMinutes < 0 {
		return 0, fmt.Errorf("eta %d minutes: %w", etaMinutes, domain.ErrInvalidRange)
	}
	if multiplier <= 0 {
		return 0, fmt.Errorf("regional multiplier %v: %w", multiplier, domain.ErrInvalidRange)
	}
	raw := math.Round(float64(etaMinutes) * p.Ratio * multiplier)
	if raw < float64(p.MinMinutes) {
		return p.MinMinutes, nil
	}
	if raw > float64(p.MaxMinutes) {
		return p.MaxMinutes, nil
	}
	return int(raw), nil
}

// BaseToFirstBuffer sizes the buffer between the contractor's base and the
// first job of the day.
func BaseToFirstBuffer(etaMinutes int, multiplier float64, p BufferPolicy) (int, error) {
	return bufferFromETA(etaMinutes, multiplier, p)
}

// JobToJobBuffer sizes the buffer between two consecutive jobs.
func JobToJobBuffer(etaMinutes int, multiplier float64, p BufferPolicy) (int, error) {
	return bufferFromETA(etaMinutes, multiplier, p)
}

// LastToBaseBuffer sizes the buffer between the last job and the return to
// base.
func LastToBaseBuffer(etaMinutes int, multiplier float64, p BufferPolicy) (int, error) {
	return bufferFromETA(etaMinutes, multiplier, p)
}
