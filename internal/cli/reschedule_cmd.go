package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
)

func newRescheduleCmd(appRef *App) *cobra.Command {
	var start, end, actor string

	cmd := &cobra.Command{
		Use:   "reschedule JOB_ID",
		Short: "Move a job's service window and its active assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			jobID, err := resolveJobID(ctx, appRef, args[0])
			if err != nil {
				return err
			}
			newStart, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", start, err)
			}
			newEnd, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", end, err)
			}

			job, err := appRef.Jobs.RescheduleJob(ctx, app.RescheduleRequest{
				JobID:    jobID,
				NewStart: newStart,
				NewEnd:   newEnd,
				ActorID:  actor,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rescheduled %s to %s\n",
				formatter.TruncID(job.ID), formatter.FormatWindow(job.ServiceWindow))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "New window start (RFC3339)")
	cmd.Flags().StringVar(&end, "end", "", "New window end (RFC3339)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting dispatcher")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
