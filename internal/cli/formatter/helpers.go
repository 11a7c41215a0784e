package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dispatchly/smartsched/internal/domain"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// JobStatusPill returns a colored status indicator for a job.
func JobStatusPill(status domain.JobStatus) string {
	switch status {
	case domain.JobScheduled:
		return StyleBlue.Render("○ Scheduled")
	case domain.JobInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.JobCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.JobCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

// AssignmentStatusPill returns a colored status indicator for an assignment.
func AssignmentStatusPill(status domain.AssignmentStatus) string {
	switch status {
	case domain.AssignmentPending:
		return StyleYellow.Render("○ Pending")
	case domain.AssignmentConfirmed:
		return StyleBlue.Render("● Confirmed")
	case domain.AssignmentInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.AssignmentCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.AssignmentCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

// ActivePill marks a contractor as taking work or not.
func ActivePill(active bool) string {
	if active {
		return StyleGreen.Render("● Active")
	}
	return StyleDim.Render("○ Inactive")
}

// PriorityBadge returns a colored priority label.
func PriorityBadge(p domain.JobPriority) string {
	switch p {
	case domain.PriorityRush:
		return StyleRed.Render("RUSH")
	case domain.PriorityHigh:
		return StyleYellow.Render("HIGH")
	default:
		return StyleFg.Render("NORMAL")
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatWindow renders a service window as a compact UTC range, collapsing
// the date when both ends share it.
func FormatWindow(w domain.TimeWindow) string {
	start := w.Start.UTC()
	end := w.End.UTC()
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s %s–%s",
			start.Format("2006-01-02"),
			start.Format("15:04"),
			end.Format("15:04Z"))
	}
	return fmt.Sprintf("%s – %s",
		start.Format("2006-01-02 15:04"),
		end.Format("2006-01-02 15:04Z"))
}

// LocalWindow renders a window converted to the given IANA zone; a bad zone
// name falls back to UTC.
func LocalWindow(w domain.TimeWindow, zone string) string {
	loc, err := domain.LoadZone(zone)
	if err != nil {
		return FormatWindow(w)
	}
	local := domain.TimeWindow{Start: w.Start.In(loc), End: w.End.In(loc)}
	return fmt.Sprintf("%s %s–%s %s",
		local.Start.Format("2006-01-02"),
		local.Start.Format("15:04"),
		local.End.Format("15:04"),
		Dim(zone))
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatKm renders a distance in meters as kilometres with one decimal.
func FormatKm(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/1000)
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}
