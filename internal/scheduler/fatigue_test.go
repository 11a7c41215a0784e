package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchly/smartsched/internal/domain"
)

func utcWindow(startH, startM, endH, endM int) domain.TimeWindow {
	return domain.MustWindow(
		time.Date(2025, 1, 13, startH, startM, 0, 0, time.UTC),
		time.Date(2025, 1, 13, endH, endM, 0, 0, time.UTC),
	)
}

func TestCheckFatigue_SoftCapNonRush(t *testing.T) {
	// 9 h existing plus a 2 h proposal crossing midnight: 11 h on the
	// start date, over the 10 h soft cap but under the 12 h hard stop.
	existing := []domain.TimeWindow{utcWindow(14, 0, 23, 0)}
	proposed := domain.MustWindow(
		time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 14, 1, 0, 0, 0, time.UTC),
	)

	res, err := CheckFatigue(FatigueInput{
		Proposed: proposed,
		Existing: existing,
		Zone:     "UTC",
		IsRush:   false,
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Contains(t, res.Reason, "soft cap")

	rush, err := CheckFatigue(FatigueInput{
		Proposed: proposed,
		Existing: existing,
		Zone:     "UTC",
		IsRush:   true,
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.True(t, rush.Feasible, "rush bypasses the soft cap")
}

func TestCheckFatigue_HardStopAppliesEvenForRush(t *testing.T) {
	existing := []domain.TimeWindow{utcWindow(8, 0, 19, 0)} // 11 h
	proposed := utcWindow(19, 30, 21, 30)                   // +2 h -> 13 h

	res, err := CheckFatigue(FatigueInput{
		Proposed: proposed,
		Existing: existing,
		Zone:     "UTC",
		IsRush:   true,
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Contains(t, res.Reason, "hard stop")
}

func TestCheckFatigue_HardStopBoundary(t *testing.T) {
	policy := DefaultFatiguePolicy()

	// 719 min of prior work plus 1 min proposed: 720 min = 12 h exactly,
	// not over the strict threshold.
	existing := []domain.TimeWindow{utcWindow(6, 0, 17, 59)}
	res, err := CheckFatigue(FatigueInput{
		Proposed: utcWindow(18, 30, 18, 31),
		Existing: existing,
		Zone:     "UTC",
		IsRush:   true,
		Policy:   policy,
	})
	require.NoError(t, err)
	assert.True(t, res.Feasible, "exactly 12 h is allowed")

	// One more minute tips over the hard stop.
	res, err = CheckFatigue(FatigueInput{
		Proposed: utcWindow(18, 30, 18, 32),
		Existing: existing,
		Zone:     "UTC",
		IsRush:   true,
		Policy:   policy,
	})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Contains(t, res.Reason, "hard stop")
}

func TestCheckFatigue_ConsecutiveChain(t *testing.T) {
	// Four back-to-back one-hour jobs from 14:00Z.
	existing := []domain.TimeWindow{
		utcWindow(14, 0, 15, 0),
		utcWindow(15, 0, 16, 0),
		utcWindow(16, 0, 17, 0),
		utcWindow(17, 0, 18, 0),
	}

	res, err := CheckFatigue(FatigueInput{
		Proposed: utcWindow(18, 0, 19, 0),
		Existing: existing,
		Zone:     "UTC",
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Contains(t, res.Reason, "consecutive")
	assert.Equal(t, 15, res.RequiredBreakMinutes)

	// A 20 min gap breaks the chain.
	res, err = CheckFatigue(FatigueInput{
		Proposed: utcWindow(18, 20, 19, 20),
		Existing: existing,
		Zone:     "UTC",
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.True(t, res.Feasible)
}

func TestCheckFatigue_ExactBreakQualifies(t *testing.T) {
	existing := []domain.TimeWindow{
		utcWindow(14, 0, 15, 0),
		utcWindow(15, 0, 16, 0),
		utcWindow(16, 0, 17, 0),
		utcWindow(17, 0, 18, 0),
	}

	// A gap of exactly the minimum break is a qualifying break.
	res, err := CheckFatigue(FatigueInput{
		Proposed: utcWindow(18, 15, 19, 15),
		Existing: existing,
		Zone:     "UTC",
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.True(t, res.Feasible)
}

func TestCheckFatigue_LocalDayAttribution(t *testing.T) {
	// 23:00Z on Jan 13 is 18:00 EST on Jan 13; 9 h already worked that
	// local day pushes the 2 h proposal over the soft cap.
	existing := []domain.TimeWindow{utcWindow(14, 0, 23, 0)}
	proposed := domain.MustWindow(
		time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 14, 1, 0, 0, 0, time.UTC),
	)

	res, err := CheckFatigue(FatigueInput{
		Proposed: proposed,
		Existing: existing,
		Zone:     nyc,
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.False(t, res.Feasible)

	// In a zone where the proposal starts the NEXT local day, its hours
	// do not stack onto the existing total.
	tokyo, err := CheckFatigue(FatigueInput{
		Proposed: proposed,
		Existing: existing,
		Zone:     "Asia/Tokyo",
		Policy:   DefaultFatiguePolicy(),
	})
	require.NoError(t, err)
	assert.True(t, tokyo.Feasible)
}

func TestCheckFatigue_MaxJobsPerDay(t *testing.T) {
	policy := DefaultFatiguePolicy()
	policy.MaxJobsPerDay = 2

	existing := []domain.TimeWindow{
		utcWindow(9, 0, 10, 0),
		utcWindow(12, 0, 13, 0),
	}
	res, err := CheckFatigue(FatigueInput{
		Proposed: utcWindow(15, 0, 16, 0),
		Existing: existing,
		Zone:     "UTC",
		Policy:   policy,
	})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Contains(t, res.Reason, "max jobs")
}

func TestCheckFatigue_UnknownZone(t *testing.T) {
	_, err := CheckFatigue(FatigueInput{
		Proposed: utcWindow(9, 0, 10, 0),
		Zone:     "Not/AZone",
		Policy:   DefaultFatiguePolicy(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
}

func TestCheckFatigueSpan_PerDayAttribution(t *testing.T) {
	daily := []domain.TimeWindow{
		domain.MustWindow(
			time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC),
		),
		domain.MustWindow(
			time.Date(2025, 1, 14, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 14, 22, 0, 0, 0, time.UTC),
		),
	}

	// Two 8 h days pass; the same 16 h on one day would not.
	res, err := CheckFatigueSpan(daily, nil, "UTC", false, DefaultFatiguePolicy())
	require.NoError(t, err)
	assert.True(t, res.Feasible)
}
