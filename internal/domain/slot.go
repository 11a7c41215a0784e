package domain

// GeneratedSlot is one concrete offer produced by the slot generator. Even a
// single-day slot carries DailyWindows with one entry; multi-day slots hold
// one window per consecutive local day.
type GeneratedSlot struct {
	Window       TimeWindow   `json:"window"`
	DailyWindows []TimeWindow `json:"dailyWindows"`
	Type         SlotType     `json:"type"`
	Confidence   float64      `json:"confidence"` // 0..100
	TravelETAMin *int         `json:"travelEtaMin,omitempty"`
	Degraded     bool         `json:"degraded,omitempty"`
}

// MultiDay reports whether the slot spans more than one local day.
func (s GeneratedSlot) MultiDay() bool {
	return len(s.DailyWindows) > 1
}

// TotalMinutes sums the daily windows.
func (s GeneratedSlot) TotalMinutes() int {
	total := 0
	for _, w := range s.DailyWindows {
		total += w.Minutes()
	}
	return total
}
