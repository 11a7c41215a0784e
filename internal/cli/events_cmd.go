package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/cli/formatter"
	"github.com/dispatchly/smartsched/internal/realtime"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published events",
	}

	cmd.AddCommand(
		newEventsListCmd(app),
		newEventsTailCmd(app),
	)

	return cmd
}

func newEventsListCmd(appRef *App) *cobra.Command {
	var (
		eventType string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent event-log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := appRef.EventLog.ListRecent(context.Background(), eventType, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventLogList(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "Filter by event type (e.g. JobAssigned)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")

	return cmd
}

// newEventsTailCmd streams live events from the in-process hub until
// interrupted. Without filters it receives every group.
func newEventsTailCmd(appRef *App) *cobra.Command {
	var (
		regions     []string
		contractors []string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream live events (Ctrl-C to stop)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var groups []string
			for _, r := range regions {
				groups = append(groups, realtime.DispatchGroup(r))
			}
			for _, id := range contractors {
				cid, err := resolveContractorID(ctx, appRef, id)
				if err != nil {
					return err
				}
				groups = append(groups, realtime.ContractorGroup(cid))
			}

			sub := appRef.Hub.Subscribe(64, groups...)
			defer sub.Close()

			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Listening for events..."))
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg, ok := <-sub.C():
					if !ok {
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEventLine(msg))
				}
			}
		},
	}

	cmd.Flags().StringSliceVar(&regions, "region", nil, "Dispatch region to follow, repeatable")
	cmd.Flags().StringSliceVar(&contractors, "contractor", nil, "Contractor stream to follow, repeatable")

	return cmd
}
