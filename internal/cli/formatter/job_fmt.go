package formatter

import (
	"fmt"
	"strings"

	"github.com/dispatchly/smartsched/internal/domain"
)

// FormatJobList renders jobs as a table, most useful piped through a pager
// for larger backlogs.
func FormatJobList(jobs []*domain.Job) string {
	if len(jobs) == 0 {
		return Dim("No jobs found.") + "\n"
	}

	headers := []string{"ID", "TYPE", "PRIORITY", "WINDOW", "DURATION", "REGION", "STATUS"}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			TruncID(j.ID),
			j.Type,
			PriorityBadge(j.Priority),
			FormatWindow(j.ServiceWindow),
			FormatMinutes(j.DurationMinutes),
			j.Region,
			JobStatusPill(j.Status),
		})
	}

	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Jobs (%d)", len(jobs))))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatJob renders one job in full, with its assignment history when
// provided.
func FormatJob(j *domain.Job, assignments []*domain.Assignment) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s  %s\n", Bold(j.Type), PriorityBadge(j.Priority), JobStatusPill(j.Status)))
	b.WriteString(Dim(fmt.Sprintf("ID: %s", j.ID)) + "\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Window:"), FormatWindow(j.ServiceWindow)))
	if j.DesiredDate != nil {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim("Desired:"), j.DesiredDate.Format("2006-01-02")))
	}
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Duration:"), FormatMinutes(j.DurationMinutes)))
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Region:"), j.Region))
	if j.RegionMultiplier != 1.0 {
		b.WriteString(fmt.Sprintf("%s %.2fx travel buffer\n", Dim("Multiplier:"), j.RegionMultiplier))
	}
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Site:"), formatLocation(j.Location)))
	if len(j.RequiredSkills) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim("Requires:"), strings.Join(j.RequiredSkills, ", ")))
	}
	if j.LastAuditID != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim("Last audit:"), TruncID(j.LastAuditID)))
	}

	if len(assignments) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Assignments"))
		b.WriteString("\n\n")
		headers := []string{"ID", "CONTRACTOR", "WINDOW", "SOURCE", "STATUS"}
		rows := make([][]string, 0, len(assignments))
		for _, a := range assignments {
			rows = append(rows, []string{
				TruncID(a.ID),
				TruncID(a.ContractorID),
				FormatWindow(a.Window),
				string(a.Source),
				AssignmentStatusPill(a.Status),
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}

	return RenderBox("Job", b.String())
}
