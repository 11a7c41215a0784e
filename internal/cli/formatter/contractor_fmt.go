package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
)

// FormatContractorList renders the roster as a table.
func FormatContractorList(contractors []*domain.Contractor) string {
	if len(contractors) == 0 {
		return Dim("No contractors registered.") + "\n"
	}

	headers := []string{"ID", "NAME", "SKILLS", "RATING", "ZONE", "STATUS"}
	rows := make([][]string, 0, len(contractors))
	for _, c := range contractors {
		rows = append(rows, []string{
			TruncID(c.ID),
			c.Name,
			strings.Join(c.Skills, ", "),
			fmt.Sprintf("%.0f", c.Rating),
			c.Zone(),
			ActivePill(c.Active),
		})
	}

	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Contractors (%d)", len(contractors))))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatContractor renders a full contractor profile with the weekly
// schedule and any calendar exceptions.
func FormatContractor(c *domain.Contractor) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n", Bold(c.Name), ActivePill(c.Active)))
	b.WriteString(Dim(fmt.Sprintf("ID: %s", c.ID)) + "\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Rating:"), Score(c.Rating)))
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Skills:"), strings.Join(c.Skills, ", ")))
	if c.MaxJobsPerDay > 0 {
		b.WriteString(fmt.Sprintf("%s %d per day\n", Dim("Job cap:"), c.MaxJobsPerDay))
	}
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Base:"), formatLocation(c.HomeBase)))
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Zone:"), c.Zone()))

	b.WriteString("\n")
	b.WriteString(Header("Weekly Hours"))
	b.WriteString("\n\n")
	b.WriteString(formatWeeklyHours(c.WorkingHours))

	b.WriteString("\n" + Dim(fmt.Sprintf("Daily break: %s", FormatMinutes(c.Calendar.BreakMinutes()))) + "\n")

	if len(c.Calendar.Holidays) > 0 || len(c.Calendar.Exceptions) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Calendar Exceptions"))
		b.WriteString("\n\n")
		b.WriteString(formatExceptions(c.Calendar))
	}

	return RenderBox("Contractor", b.String())
}

func formatLocation(loc domain.GeoLocation) string {
	parts := make([]string, 0, 3)
	if loc.Address != "" {
		parts = append(parts, loc.Address)
	}
	if loc.City != "" {
		parts = append(parts, loc.City)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lng)
	}
	return fmt.Sprintf("%s (%.4f, %.4f)", strings.Join(parts, ", "), loc.Lat, loc.Lng)
}

func formatWeeklyHours(hours []domain.WorkingHours) string {
	byDay := make(map[time.Weekday][]domain.WorkingHours)
	for _, h := range hours {
		byDay[h.Day] = append(byDay[h.Day], h)
	}

	var b strings.Builder
	for d := time.Sunday; d <= time.Saturday; d++ {
		spans := byDay[d]
		label := fmt.Sprintf("%-4s", d.String()[:3])
		if len(spans) == 0 {
			b.WriteString(fmt.Sprintf("  %s %s\n", Dim(label), Dim("off")))
			continue
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].StartMinute < spans[j].StartMinute })
		rendered := make([]string, 0, len(spans))
		for _, s := range spans {
			rendered = append(rendered, fmt.Sprintf("%s-%s",
				domain.FormatClock(s.StartMinute), domain.FormatClock(s.EndMinute)))
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", Dim(label), strings.Join(rendered, ", ")))
	}
	return b.String()
}

func formatExceptions(cal domain.ContractorCalendar) string {
	var b strings.Builder
	for _, day := range cal.Holidays {
		b.WriteString(fmt.Sprintf("  %s %s\n", day, Dim("holiday")))
	}
	for _, e := range cal.Exceptions {
		switch e.Type {
		case domain.ExceptionHoliday:
			line := fmt.Sprintf("  %s %s", e.Date, Dim("holiday"))
			if e.Note != "" {
				line += " " + Dim("("+e.Note+")")
			}
			b.WriteString(line + "\n")
		case domain.ExceptionOverride:
			span := fmt.Sprintf("%s-%s", domain.FormatClock(e.StartMinute), domain.FormatClock(e.EndMinute))
			if e.WrapsMidnight() {
				span += Dim(" (overnight)")
			}
			line := fmt.Sprintf("  %s %s", e.Date, span)
			if e.Note != "" {
				line += " " + Dim("("+e.Note+")")
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
