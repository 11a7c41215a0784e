package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/domain"
)

// newSeedCmd loads a small demo roster and backlog for local exploration.
// Each run inserts fresh rows; point SMARTSCHED_DB_PATH at a scratch file.
func newSeedCmd(appRef *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo contractors and jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			weekdays := func(days ...time.Weekday) []app.WorkingHoursInput {
				var hours []app.WorkingHoursInput
				for _, d := range days {
					hours = append(hours, app.WorkingHoursInput{Day: d, Start: "09:00", End: "17:00"})
				}
				return hours
			}

			contractors := []app.CreateContractorRequest{
				{
					Name:         "Alice Rivera",
					HomeBase:     domain.GeoLocation{Lat: 40.7128, Lng: -74.0060, City: "New York", Timezone: "America/New_York"},
					WorkingHours: weekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
					Skills:       []string{"hvac", "electrical"},
					Rating:       88,
				},
				{
					Name:          "Bob Okafor",
					HomeBase:      domain.GeoLocation{Lat: 40.6782, Lng: -73.9442, City: "Brooklyn", Timezone: "America/New_York"},
					WorkingHours:  weekdays(time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday),
					Skills:        []string{"plumbing", "hvac"},
					Rating:        74,
					MaxJobsPerDay: 2,
				},
				{
					Name:         "Carol Nguyen",
					HomeBase:     domain.GeoLocation{Lat: 40.7282, Lng: -73.7949, City: "Queens", Timezone: "America/New_York"},
					WorkingHours: weekdays(time.Monday, time.Tuesday, time.Wednesday),
					Skills:       []string{"electrical"},
					Rating:       92,
				},
			}

			for _, req := range contractors {
				c, err := appRef.Contractors.CreateContractor(ctx, req)
				if err != nil {
					return fmt.Errorf("seeding contractor %s: %w", req.Name, err)
				}
				fmt.Fprintf(out, "Seeded contractor %s (%s)\n", c.Name, c.ID)
			}

			// Windows land on upcoming days so recommend runs out of the box.
			day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
			jobs := []app.CreateJobRequest{
				{
					Type:            "hvac_repair",
					DurationMinutes: 120,
					Priority:        string(domain.PriorityNormal),
					WindowStart:     day.Add(13 * time.Hour),
					WindowEnd:       day.Add(21 * time.Hour),
					RequiredSkills:  []string{"hvac"},
					Location:        domain.GeoLocation{Lat: 40.7580, Lng: -73.9855, Address: "1560 Broadway", City: "New York"},
				},
				{
					Type:             "plumbing_emergency",
					DurationMinutes:  90,
					Priority:         string(domain.PriorityRush),
					Region:           "brooklyn",
					RegionMultiplier: 1.5,
					WindowStart:      day.Add(24 * time.Hour).Add(12 * time.Hour),
					WindowEnd:        day.Add(24 * time.Hour).Add(18 * time.Hour),
					RequiredSkills:   []string{"plumbing"},
					Location:         domain.GeoLocation{Lat: 40.6892, Lng: -73.9821, Address: "1 Boerum Pl", City: "Brooklyn"},
				},
				{
					Type:            "panel_upgrade",
					DurationMinutes: 480,
					Priority:        string(domain.PriorityHigh),
					WindowStart:     day.Add(48 * time.Hour).Add(13 * time.Hour),
					WindowEnd:       day.Add(96 * time.Hour).Add(22 * time.Hour),
					RequiredSkills:  []string{"electrical"},
					Location:        domain.GeoLocation{Lat: 40.7484, Lng: -73.9857, Address: "350 5th Ave", City: "New York"},
				},
			}

			for _, req := range jobs {
				j, err := appRef.Jobs.CreateJob(ctx, req)
				if err != nil {
					return fmt.Errorf("seeding job %s: %w", req.Type, err)
				}
				fmt.Fprintf(out, "Seeded job %s (%s)\n", j.Type, j.ID)
			}

			fmt.Fprintln(out, "\nTry: smartsched job list, then smartsched recommend <job-id>")
			return nil
		},
	}
}
