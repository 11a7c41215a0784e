package formatter

import (
	"fmt"
	"strings"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/domain"
)

const utilizationBarWidth = 20

// FormatRecommendation renders a ranked candidate list with the scoring
// breakdown, offered slots, and the skipped-contractor tail.
func FormatRecommendation(resp *app.RecommendResponse) string {
	var b strings.Builder

	shortJob := resp.JobID
	if len(shortJob) > 8 {
		shortJob = shortJob[:8]
	}
	b.WriteString(Header(fmt.Sprintf("Recommendations for %s", shortJob)))
	if resp.Degraded {
		b.WriteString("  " + DegradedBadge())
	}
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("request %s  weights v%d  %s",
		TruncID(resp.RequestID), resp.ConfigVersion, resp.GeneratedAt.UTC().Format("2006-01-02 15:04:05Z"))))
	b.WriteString("\n\n")

	if len(resp.Candidates) == 0 {
		b.WriteString(Dim("No eligible contractors.") + "\n")
	}

	for i, cand := range resp.Candidates {
		b.WriteString(formatCandidate(i+1, cand, cand.ContractorID == resp.BestRecommendationContractorID))
		if i < len(resp.Candidates)-1 {
			b.WriteString("\n")
		}
	}

	if len(resp.Skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Skipped"))
		b.WriteString("\n\n")
		for _, s := range resp.Skipped {
			b.WriteString(fmt.Sprintf("  %s %s %s\n",
				TruncID(s.ContractorID),
				StyleYellow.Render(string(s.Code)),
				Dim(s.Message),
			))
		}
	}

	return b.String()
}

func formatCandidate(rank int, cand app.CandidateView, best bool) string {
	var b strings.Builder

	name := StyleFg.Render(cand.ContractorName)
	if best {
		name = StyleGreen.Render(cand.ContractorName + " ★")
	}
	line := fmt.Sprintf("%s %s  %s", Bold(fmt.Sprintf("%d.", rank)), name, Score(cand.FinalScore))
	if cand.Degraded {
		line += "  " + DegradedBadge()
	}
	b.WriteString(line + "\n")

	detail := fmt.Sprintf("%s away", FormatKm(cand.DistanceMeters))
	if cand.TravelETAMin != nil {
		detail += fmt.Sprintf(", %s drive", FormatMinutes(*cand.TravelETAMin))
	}
	b.WriteString("   " + Dim(detail) + "\n")
	b.WriteString(fmt.Sprintf("   %s %s\n", Dim("Load:"), RenderUtilization(cand.Utilization, utilizationBarWidth)))

	for _, f := range cand.Factors {
		b.WriteString(fmt.Sprintf("   %s %s raw %.1f weighted %.1f\n",
			Dim(fmt.Sprintf("%-14s", string(f.Code))),
			Dim("|"),
			f.Raw,
			f.Weighted,
		))
	}
	if cand.Rationale != "" {
		b.WriteString("   " + StyleBlue.Render(cand.Rationale) + "\n")
	}

	if len(cand.Slots) > 0 {
		b.WriteString("\n")
		headers := []string{"SLOT", "WINDOW", "CONFIDENCE", "ETA"}
		rows := make([][]string, 0, len(cand.Slots))
		for _, s := range cand.Slots {
			rows = append(rows, []string{
				slotLabel(s),
				slotWindow(s),
				fmt.Sprintf("%.0f%%", s.Confidence),
				slotETA(s),
			})
		}
		table := RenderTable(headers, rows)
		for _, l := range strings.Split(strings.TrimRight(table, "\n"), "\n") {
			b.WriteString("   " + l + "\n")
		}
	}

	return b.String()
}

func slotLabel(s domain.GeneratedSlot) string {
	var label string
	switch s.Type {
	case domain.SlotEarliest:
		label = "earliest"
	case domain.SlotLowestTravel:
		label = "lowest travel"
	case domain.SlotHighestConfidence:
		label = "highest confidence"
	default:
		label = string(s.Type)
	}
	if s.MultiDay() {
		label += fmt.Sprintf(" (%dd)", len(s.DailyWindows))
	}
	return label
}

func slotWindow(s domain.GeneratedSlot) string {
	if !s.MultiDay() {
		return FormatWindow(s.Window)
	}
	parts := make([]string, 0, len(s.DailyWindows))
	for _, w := range s.DailyWindows {
		parts = append(parts, FormatWindow(w))
	}
	return strings.Join(parts, " + ")
}

func slotETA(s domain.GeneratedSlot) string {
	if s.TravelETAMin == nil {
		return Dim("-")
	}
	return FormatMinutes(*s.TravelETAMin)
}
