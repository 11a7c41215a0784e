package cli

import (
	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/realtime"
	"github.com/dispatchly/smartsched/internal/repository"
)

// App holds the use cases and read-side handles the CLI commands run
// against. Mutations go through the service interfaces; display-only
// surfaces (assignment history, the event log, the live tail) read the
// repositories and the hub directly.
type App struct {
	Contractors app.ContractorUseCase
	Jobs        app.JobUseCase
	Recommender app.RecommendUseCase
	Stats       app.StatsUseCase
	Config      app.ConfigUseCase

	Assignments repository.AssignmentRepo
	EventLog    repository.EventLogRepo
	Hub         *realtime.Hub

	// Interactive enables spinners and other terminal-only affordances.
	// Wiring sets it from an isatty check on stdout.
	Interactive bool
}

// NewRootCmd creates the top-level "smartsched" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "smartsched",
		Short:         "Field-service scheduling and contractor recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newContractorCmd(app),
		newJobCmd(app),
		newRecommendCmd(app),
		newAssignCmd(app),
		newRescheduleCmd(app),
		newCancelCmd(app),
		newStatsCmd(app),
		newConfigCmd(app),
		newEventsCmd(app),
		newSeedCmd(app),
	)

	return root
}
