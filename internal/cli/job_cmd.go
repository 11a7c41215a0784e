package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
)

func newJobCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage jobs",
	}

	cmd.AddCommand(
		newJobCreateCmd(app),
		newJobListCmd(app),
		newJobInspectCmd(app),
	)

	return cmd
}

func newJobCreateCmd(appRef *App) *cobra.Command {
	var (
		jobType, priority, region string
		start, end, desired       string
		address, city             string
		lat, lng, multiplier      float64
		duration                  int
		skills                    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			windowStart, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", start, err)
			}
			windowEnd, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", end, err)
			}

			req := app.CreateJobRequest{
				Type:             jobType,
				DurationMinutes:  duration,
				Priority:         priority,
				Region:           region,
				RegionMultiplier: multiplier,
				WindowStart:      windowStart,
				WindowEnd:        windowEnd,
				RequiredSkills:   skills,
				Location:         geoLocation(lat, lng, address, city, ""),
			}
			if desired != "" {
				d, err := time.Parse("2006-01-02", desired)
				if err != nil {
					return fmt.Errorf("invalid desired date %q: %w", desired, err)
				}
				req.DesiredDate = &d
			}

			j, err := appRef.Jobs.CreateJob(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created job %s (%s, %s)\n",
				j.ID, j.Type, formatter.FormatWindow(j.ServiceWindow))
			return nil
		},
	}

	cmd.Flags().StringVar(&jobType, "type", "", "Job type (e.g. hvac_repair)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Estimated duration in minutes")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: normal, high, or rush")
	cmd.Flags().StringVar(&region, "region", "", `Routing region (default "default")`)
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "Regional travel-buffer multiplier (0 = neutral)")
	cmd.Flags().StringVar(&start, "start", "", "Service window start (RFC3339)")
	cmd.Flags().StringVar(&end, "end", "", "Service window end (RFC3339)")
	cmd.Flags().StringVar(&desired, "desired", "", "Preferred date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Required skill tags")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Site latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Site longitude")
	cmd.Flags().StringVar(&address, "address", "", "Site address (geocoded when coordinates are absent)")
	cmd.Flags().StringVar(&city, "city", "", "Site city")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("duration")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newJobListCmd(appRef *App) *cobra.Command {
	var status, region string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := appRef.Jobs.ListJobs(context.Background(), status, region)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatJobList(jobs))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&region, "region", "", "Filter by region")

	return cmd
}

func newJobInspectCmd(appRef *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show job details and assignment history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveJobID(ctx, appRef, args[0])
			if err != nil {
				return err
			}
			j, err := appRef.Jobs.GetJob(ctx, id)
			if err != nil {
				return err
			}
			assignments, err := appRef.Assignments.ListByJob(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatJob(j, assignments))
			return nil
		},
	}
}
