package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
)

func newRecommendCmd(appRef *App) *cobra.Command {
	var (
		maxResults int
		publish    bool
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "recommend JOB_ID",
		Short: "Rank contractors and offer slots for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			jobID, err := resolveJobID(ctx, appRef, args[0])
			if err != nil {
				return err
			}

			req := app.NewRecommendRequest(jobID)
			req.MaxResults = maxResults
			req.Publish = publish
			req.ActorID = actor

			var stop func()
			if appRef.Interactive {
				stop = formatter.StartSpinner("Scoring contractors")
			}
			resp, err := appRef.Recommender.Recommend(ctx, req)
			if stop != nil {
				stop()
			}
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecommendation(resp))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max", 10, "Maximum candidates to return")
	cmd.Flags().BoolVar(&publish, "publish", false, "Broadcast RecommendationReady to the dispatch stream")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting dispatcher recorded on the audit trail")

	return cmd
}
