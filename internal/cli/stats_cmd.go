package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/cli/formatter"
)

func newStatsCmd(appRef *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dispatch dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := appRef.Stats.GetStats(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStats(stats))
			return nil
		},
	}
}
