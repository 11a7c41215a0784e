package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchly/smartsched/internal/domain"
)

func TestBufferFromETA_Boundaries(t *testing.T) {
	p := DefaultBufferPolicy()

	tests := []struct {
		name string
		eta  int
		want int
	}{
		{"zero eta clamps to min", 0, 10},
		{"short eta clamps to min", 20, 10},
		{"eta 40 sits exactly at min", 40, 10},
		{"mid-range eta scales", 100, 25},
		{"eta 180 sits exactly at max", 180, 45},
		{"eta 200 clamps to max", 200, 45},
		{"huge eta clamps to max", 1000, 45},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BaseToFirstBuffer(tc.eta, 1, p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBufferFromETA_RoundsBeforeClamping(t *testing.T) {
	p := DefaultBufferPolicy()

	// 90 * 0.25 = 22.5 rounds to 23 (half away from zero).
	got, err := JobToJobBuffer(90, 1, p)
	require.NoError(t, err)
	assert.Equal(t, 23, got)
}

func TestBufferFromETA_RegionalMultiplier(t *testing.T) {
	p := DefaultBufferPolicy()

	// Multiplier applies before clamping: 100*0.25*1.5 = 37.5 -> 38.
	got, err := LastToBaseBuffer(100, 1.5, p)
	require.NoError(t, err)
	assert.Equal(t, 38, got)

	// A large multiplier still clamps at the max.
	got, err = LastToBaseBuffer(100, 3, p)
	require.NoError(t, err)
	assert.Equal(t, 45, got)
}

func TestBufferFromETA_InvalidInputs(t *testing.T) {
	p := DefaultBufferPolicy()

	_, err := BaseToFirstBuffer(-1, 1, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = BaseToFirstBuffer(60, 0, p)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = BaseToFirstBuffer(60, -0.5, p)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestBufferFromETA_MonotonicInETA(t *testing.T) {
	p := DefaultBufferPolicy()

	prev := 0
	for eta := 0; eta <= 300; eta += 5 {
		got, err := JobToJobBuffer(eta, 1, p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "buffer must not shrink as eta grows (eta=%d)", eta)
		assert.GreaterOrEqual(t, got, p.MinMinutes)
		assert.LessOrEqual(t, got, p.MaxMinutes)
		prev = got
	}
}

func TestBufferHelpers_ShareTheFormula(t *testing.T) {
	p := DefaultBufferPolicy()

	a, err := BaseToFirstBuffer(120, 1, p)
	require.NoError(t, err)
	b, err := JobToJobBuffer(120, 1, p)
	require.NoError(t, err)
	c, err := LastToBaseBuffer(120, 1, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}
