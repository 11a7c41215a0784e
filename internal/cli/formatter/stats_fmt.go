package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dispatchly/smartsched/internal/app"
)

// FormatStats renders the dispatch dashboard snapshot.
func FormatStats(stats *app.DashboardStats) string {
	var b strings.Builder

	b.WriteString(Header("Dispatch Dashboard"))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("computed %s", HumanTimestamp(stats.ComputedAt))))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %d  %s %d/%d active\n",
		Dim("Jobs:"), stats.TotalJobs,
		Dim("Contractors:"), stats.ActiveContractors, stats.TotalContractors,
	))
	b.WriteString("\n")

	b.WriteString(countTable("BY STATUS", stats.JobsByStatus))
	b.WriteString("\n")
	b.WriteString(countTable("BY PRIORITY", stats.JobsByPriority))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %d\n", Dim("Assignments next 24h:"), stats.AssignmentsNext24h))
	b.WriteString(fmt.Sprintf("%s %s  %s %s\n",
		Dim("Completed last 7d:"), StyleGreen.Render(fmt.Sprintf("%d", stats.CompletedLast7Days)),
		Dim("Cancelled:"), StyleRed.Render(fmt.Sprintf("%d", stats.CancelledLast7Days)),
	))
	b.WriteString(fmt.Sprintf("%s %.1f\n", Dim("Avg assignments per contractor:"), stats.AvgAssignmentsPerContractor))

	return RenderBox("Stats", b.String())
}

func countTable(title string, counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(Dim(title) + "\n")
	if len(keys) == 0 {
		b.WriteString("  " + Dim("none") + "\n")
		return b.String()
	}
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", k, counts[k]))
	}
	return b.String()
}
