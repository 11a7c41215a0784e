package app

import "time"

// DashboardStats is the aggregate snapshot served to dispatch dashboards.
// Values are computed on demand and cached briefly; ComputedAt exposes the
// snapshot's age to clients.
type DashboardStats struct {
	ComputedAt time.Time

	TotalJobs      int
	JobsByStatus   map[string]int
	JobsByPriority map[string]int

	TotalContractors  int
	ActiveContractors int

	AssignmentsNext24h          int
	CompletedLast7Days          int
	CancelledLast7Days          int
	AvgAssignmentsPerContractor float64
}
