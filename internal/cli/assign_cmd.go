package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
	"github.com/dispatchly/smartsched/internal/domain"
)

func newAssignCmd(appRef *App) *cobra.Command {
	var (
		start, end, source, actor, auditID string
	)

	cmd := &cobra.Command{
		Use:   "assign JOB_ID CONTRACTOR_ID",
		Short: "Assign a contractor to a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			jobID, err := resolveJobID(ctx, appRef, args[0])
			if err != nil {
				return err
			}
			contractorID, err := resolveContractorID(ctx, appRef, args[1])
			if err != nil {
				return err
			}
			windowStart, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", start, err)
			}
			windowEnd, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", end, err)
			}

			assignSource := domain.AssignmentSource(source)
			switch assignSource {
			case domain.SourceAuto, domain.SourceManual:
			default:
				return fmt.Errorf("invalid source %q, want auto or manual", source)
			}

			resp, err := appRef.Jobs.AssignJob(ctx, app.AssignRequest{
				JobID:        jobID,
				ContractorID: contractorID,
				Start:        windowStart,
				End:          windowEnd,
				Source:       assignSource,
				ActorID:      actor,
				AuditID:      auditID,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s (%s, %s)\n",
				formatter.TruncID(resp.Assignment.ContractorID),
				formatter.TruncID(resp.Job.ID),
				formatter.FormatWindow(resp.Assignment.Window),
				formatter.AssignmentStatusPill(resp.Assignment.Status),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Assignment window start (RFC3339)")
	cmd.Flags().StringVar(&end, "end", "", "Assignment window end (RFC3339)")
	cmd.Flags().StringVar(&source, "source", "manual", "Assignment source: auto (pending) or manual (confirmed)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting dispatcher")
	cmd.Flags().StringVar(&auditID, "audit", "", "Recommendation audit record to stamp the selection onto")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
