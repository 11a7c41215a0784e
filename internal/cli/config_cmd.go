package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
	"github.com/dispatchly/smartsched/internal/domain"
)

func overlayFloat(flags *pflag.FlagSet, name string, target *float64, value float64) {
	if flags.Changed(name) {
		*target = value
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change scoring configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigApplyCmd(app),
	)

	return cmd
}

func newConfigShowCmd(appRef *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active scoring weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appRef.Config.ActiveWeights(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatWeightsConfig(cfg))
			return nil
		},
	}
}

// newConfigApplyCmd starts from the active config, overlays the provided
// flags, and activates the result as the next version.
func newConfigApplyCmd(appRef *App) *cobra.Command {
	var (
		availability, rating, distance float64
		boost, threshold               float64
		rotation                       bool
		version                        int
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Activate a new weights version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			next := domain.DefaultWeights()
			active, err := appRef.Config.ActiveWeights(ctx)
			switch {
			case err == nil:
				next = *active
				next.ID = ""
				next.Version = active.Version + 1
			case app.IsCode(err, app.CodeNotFound):
				// First apply on an empty deployment starts from defaults.
			default:
				return err
			}

			// Only flags the dispatcher actually set overlay the active
			// config; an apply never silently reverts unrelated knobs.
			flags := cmd.Flags()
			overlayFloat(flags, "availability", &next.Weights.Availability, availability)
			overlayFloat(flags, "rating", &next.Weights.Rating, rating)
			overlayFloat(flags, "distance", &next.Weights.Distance, distance)
			overlayFloat(flags, "boost", &next.Rotation.Boost, boost)
			overlayFloat(flags, "threshold", &next.Rotation.UnderUtilizationThreshold, threshold)
			if flags.Changed("rotation") {
				next.Rotation.Enabled = rotation
			}
			if flags.Changed("version") {
				next.Version = version
			}

			applied, err := appRef.Config.ApplyWeights(ctx, next)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Activated weights v%d\n", applied.Version)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatWeightsConfig(applied))
			return nil
		},
	}

	cmd.Flags().Float64Var(&availability, "availability", 0, "Availability weight [0,1]")
	cmd.Flags().Float64Var(&rating, "rating", 0, "Rating weight [0,1]")
	cmd.Flags().Float64Var(&distance, "distance", 0, "Distance weight [0,1]")
	cmd.Flags().BoolVar(&rotation, "rotation", false, "Enable the under-utilization rotation boost")
	cmd.Flags().Float64Var(&boost, "boost", 0, "Rotation boost points [0,20]")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Utilization threshold (0,1) below which the boost applies")
	cmd.Flags().IntVar(&version, "version", 0, "Explicit version number (default: active + 1)")

	return cmd
}
