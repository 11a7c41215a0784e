package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/dispatchly/smartsched/internal/domain"
)

// quarterHourPad widens the availability minimum so quarter-hour rounding of
// the slot start can never push the job past the window end.
const quarterHourPad = 15

// SlotRequest drives slot generation for one contractor and one job.
type SlotRequest struct {
	WorkingHours    []domain.WorkingHours
	ServiceWindow   domain.TimeWindow
	Existing        []domain.TimeWindow
	DurationMinutes int
	ContractorZone  string
	JobZone         string
	Calendar        *domain.ContractorCalendar

	// BaseETAMin is base-to-job travel; PrevETAMin is the previous-job leg.
	// Both nil means no travel data and the default buffer padding.
	BaseETAMin *int
	PrevETAMin *int

	Rating           float64
	IsRush           bool
	RegionMultiplier float64
	Buffers          BufferPolicy
	Fatigue          FatiguePolicy
}

// NewSlotRequest seeds the request with the shipped defaults: neutral rating,
// unit regional multiplier, standard buffer and fatigue policies.
func NewSlotRequest(serviceWindow domain.TimeWindow, durationMinutes int) SlotRequest {
	return SlotRequest{
		ServiceWindow:    serviceWindow,
		DurationMinutes:  durationMinutes,
		Rating:           50,
		RegionMultiplier: 1,
		Buffers:          DefaultBufferPolicy(),
		Fatigue:          DefaultFatiguePolicy(),
	}
}

// GenerateSlots produces up to three labeled slots for the request, falling
// back to a 2- or 3-day split when no single day fits the whole duration.
// Every returned slot carries at least one daily window and has passed the
// fatigue checks.
func GenerateSlots(req SlotRequest) ([]domain.GeneratedSlot, error) {
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("duration %d minutes: %w", req.DurationMinutes, domain.ErrInvalidRange)
	}
	multiplier := req.RegionMultiplier
	if multiplier == 0 {
		multiplier = 1
	}

	buffer := DefaultBufferMinutes
	etaKnown := false
	switch {
	case req.BaseETAMin != nil:
		b, err := BaseToFirstBuffer(*req.BaseETAMin, multiplier, req.Buffers)
		if err != nil {
			return nil, err
		}
		buffer, etaKnown = b, true
	case req.PrevETAMin != nil:
		b, err := JobToJobBuffer(*req.PrevETAMin, multiplier, req.Buffers)
		if err != nil {
			return nil, err
		}
		buffer, etaKnown = b, true
	}

	windows, err := Available(AvailabilityInput{
		WorkingHours:   req.WorkingHours,
		ServiceWindow:  req.ServiceWindow,
		Blocking:       req.Existing,
		MinMinutes:     buffer + req.DurationMinutes + quarterHourPad,
		ContractorZone: req.ContractorZone,
		JobZone:        req.JobZone,
		Calendar:       req.Calendar,
	})
	if err != nil {
		return nil, err
	}

	loc, err := domain.LoadZone(contractorZoneOf(req))
	if err != nil {
		return nil, err
	}

	if len(windows) == 0 {
		return multiDaySlots(req, loc)
	}

	slots := singleDaySlots(req, windows, buffer, etaKnown, loc)
	slots = lo.UniqBy(slots, func(s domain.GeneratedSlot) string {
		return s.Window.Start.Format(time.RFC3339) + "|" + string(s.Type)
	})
	return slots, nil
}

func contractorZoneOf(req SlotRequest) string {
	if req.ContractorZone != "" {
		return req.ContractorZone
	}
	return req.JobZone
}

// singleDaySlots emits up to three labeled slots: the earliest feasible
// window, the one minimizing the applicable travel leg, and the one with the
// highest confidence.
func singleDaySlots(req SlotRequest, windows []domain.TimeWindow, buffer int, etaKnown bool, loc *time.Location) []domain.GeneratedSlot {
	type feasibleWindow struct {
		window domain.TimeWindow
		slot   domain.TimeWindow
		eta    *int
	}

	var feasibles []feasibleWindow
	for _, w := range windows {
		slot, ok := slotWithin(w, req.DurationMinutes, buffer, etaKnown)
		if !ok {
			continue
		}
		res, err := CheckFatigue(FatigueInput{
			Proposed: slot,
			Existing: req.Existing,
			Zone:     contractorZoneOf(req),
			IsRush:   req.IsRush,
			Policy:   req.Fatigue,
		})
		if err != nil || !res.Feasible {
			continue
		}
		feasibles = append(feasibles, feasibleWindow{window: w, slot: slot, eta: applicableETA(w, req, loc)})
	}
	if len(feasibles) == 0 {
		return nil
	}

	build := func(f feasibleWindow, typ domain.SlotType) domain.GeneratedSlot {
		return domain.GeneratedSlot{
			Window:       f.slot,
			DailyWindows: []domain.TimeWindow{f.slot},
			Type:         typ,
			Confidence:   confidence(f.window.Minutes(), f.eta, req.Rating),
			TravelETAMin: f.eta,
		}
	}

	// Earliest: availability output is already ordered ascending.
	slots := []domain.GeneratedSlot{build(feasibles[0], domain.SlotEarliest)}

	// LowestTravel: minimize the applicable leg, earliest start on ties.
	// Without any travel data the label would be meaningless.
	lowest := -1
	for i, f := range feasibles {
		if f.eta == nil {
			continue
		}
		if lowest == -1 || *f.eta < *feasibles[lowest].eta {
			lowest = i
		}
	}
	if lowest >= 0 {
		slots = append(slots, build(feasibles[lowest], domain.SlotLowestTravel))
	}

	// HighestConfidence: maximize confidence, earliest start on ties.
	best := 0
	for i, f := range feasibles[1:] {
		if confidence(f.window.Minutes(), f.eta, req.Rating) > confidence(feasibles[best].window.Minutes(), feasibles[best].eta, req.Rating) {
			best = i + 1
		}
	}
	slots = append(slots, build(feasibles[best], domain.SlotHighestConfidence))

	return slots
}

// slotWithin places the job inside an available window. The start shifts by
// the travel buffer only when real travel data produced it; the quarter-hour
// grid then rounds forward.
func slotWithin(w domain.TimeWindow, durationMinutes, buffer int, etaKnown bool) (domain.TimeWindow, bool) {
	start := w.Start
	if etaKnown {
		start = start.Add(time.Duration(buffer) * time.Minute)
	}
	start = roundUpQuarter(start)
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if end.After(w.End) {
		return domain.TimeWindow{}, false
	}
	return domain.TimeWindow{Start: start, End: end}, true
}

// applicableETA picks the travel leg that would precede work in this window:
// the previous-job leg when an assignment ends earlier on the same local day,
// else the base leg.
func applicableETA(w domain.TimeWindow, req SlotRequest, loc *time.Location) *int {
	for _, e := range req.Existing {
		if !e.End.After(w.Start) && domain.SameLocalDay(e.End, w.Start, loc) {
			return req.PrevETAMin
		}
	}
	return req.BaseETAMin
}

// confidence scores a window on its slack, the travel leg, and the
// contractor rating, anchored at 50.
func confidence(windowMinutes int, eta *int, rating float64) float64 {
	etaMin := 0.0
	if eta != nil {
		etaMin = float64(*eta)
	}
	c := 50 +
		0.2*math.Min(100, float64(windowMinutes)/10) +
		0.2*math.Max(0, 100-etaMin/2) +
		0.6*rating
	return clampScore(c)
}

func roundUpQuarter(t time.Time) time.Time {
	const q = 15 * time.Minute
	rounded := t.Truncate(q)
	if rounded.Equal(t) {
		return t
	}
	return rounded.Add(q)
}

// multiDaySlots splits the duration across 2 or 3 consecutive working dates
// when no single day can hold it. The earliest feasible split wins and is
// returned as a single slot whose daily windows carry the per-day pieces.
func multiDaySlots(req SlotRequest, loc *time.Location) ([]domain.GeneratedSlot, error) {
	windows, err := Available(AvailabilityInput{
		WorkingHours:   req.WorkingHours,
		ServiceWindow:  req.ServiceWindow,
		Blocking:       req.Existing,
		MinMinutes:     0,
		ContractorZone: req.ContractorZone,
		JobZone:        req.JobZone,
		Calendar:       req.Calendar,
	})
	if err != nil || len(windows) == 0 {
		return nil, err
	}

	byDate := make(map[time.Time][]domain.TimeWindow)
	var dates []time.Time
	for _, w := range windows {
		d := domain.LocalDate(w.Start, loc)
		if _, seen := byDate[d]; !seen {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], w)
	}

	for _, span := range []int{2, 3} {
		for i := 0; i+span <= len(dates); i++ {
			run := dates[i : i+span]
			if !consecutiveDates(run) {
				continue
			}
			slot, ok := tryDailySplit(run, byDate, req)
			if !ok {
				continue
			}
			res, err := CheckFatigueSpan(slot.DailyWindows, req.Existing, contractorZoneOf(req), req.IsRush, req.Fatigue)
			if err != nil {
				return nil, err
			}
			if !res.Feasible {
				continue
			}
			slot.Confidence = confidence(slot.TotalMinutes(), req.BaseETAMin, req.Rating)
			slot.TravelETAMin = req.BaseETAMin
			return []domain.GeneratedSlot{slot}, nil
		}
	}
	return nil, nil
}

func consecutiveDates(dates []time.Time) bool {
	for i := 1; i < len(dates); i++ {
		if !dates[i].Equal(dates[i-1].AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// tryDailySplit spreads the duration evenly over the run, the last day taking
// the remainder. Each piece starts at its day's first free moment on the
// quarter-hour grid and must fit that window.
func tryDailySplit(run []time.Time, byDate map[time.Time][]domain.TimeWindow, req SlotRequest) (domain.GeneratedSlot, bool) {
	span := len(run)
	perDay := req.DurationMinutes / span
	lastDay := perDay + req.DurationMinutes%span
	if perDay == 0 {
		return domain.GeneratedSlot{}, false
	}

	daily := make([]domain.TimeWindow, 0, span)
	for i, date := range run {
		need := perDay
		if i == span-1 {
			need = lastDay
		}

		placed := false
		for _, w := range byDate[date] {
			start := roundUpQuarter(w.Start)
			end := start.Add(time.Duration(need) * time.Minute)
			if end.After(w.End) {
				continue
			}
			daily = append(daily, domain.TimeWindow{Start: start, End: end})
			placed = true
			break
		}
		if !placed {
			return domain.GeneratedSlot{}, false
		}
	}

	return domain.GeneratedSlot{
		Window:       domain.TimeWindow{Start: daily[0].Start, End: daily[len(daily)-1].End},
		DailyWindows: daily,
		Type:         domain.SlotEarliest,
	}, true
}

