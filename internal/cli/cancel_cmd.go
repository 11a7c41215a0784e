package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
)

func newCancelCmd(appRef *App) *cobra.Command {
	var reason, actor string

	cmd := &cobra.Command{
		Use:   "cancel JOB_ID",
		Short: "Cancel a job and its active assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			jobID, err := resolveJobID(ctx, appRef, args[0])
			if err != nil {
				return err
			}

			job, err := appRef.Jobs.CancelJob(ctx, app.CancelRequest{
				JobID:   jobID,
				Reason:  reason,
				ActorID: actor,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s\n", formatter.TruncID(job.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason recorded on the event")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting dispatcher")

	return cmd
}
