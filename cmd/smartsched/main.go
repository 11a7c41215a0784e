package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/dispatchly/smartsched/internal/cli"
	"github.com/dispatchly/smartsched/internal/config"
	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/realtime"
	"github.com/dispatchly/smartsched/internal/repository"
	"github.com/dispatchly/smartsched/internal/routing"
	"github.com/dispatchly/smartsched/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	contractorRepo := repository.NewSQLiteContractorRepo(database)
	jobRepo := repository.NewSQLiteJobRepo(database)
	assignmentRepo := repository.NewSQLiteAssignmentRepo(database)
	auditRepo := repository.NewSQLiteAuditRepo(database)
	weightsRepo := repository.NewSQLiteWeightsConfigRepo(database)
	sysconfigRepo := repository.NewSQLiteSystemConfigurationRepo(database)
	eventLogRepo := repository.NewSQLiteEventLogRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Diagnostics go to stderr so styled command output stays clean on
	// stdout.
	orsClient := routing.NewORSClient(cfg.Routing, routing.NewLogObserver(os.Stderr))
	travel := routing.NewProvider(orsClient, cfg.Routing, cfg.Cache.ETATTL())

	hub := realtime.NewHub()
	publisher := realtime.NewPublisher(hub, eventLogRepo, realtime.NewLogPublishObserver(os.Stderr))

	weightsProvider := config.NewWeightsProvider(weightsRepo, time.Minute)
	observer := service.NewLogUseCaseObserver(os.Stderr)

	app := &cli.App{
		Contractors: service.NewContractorService(contractorRepo, sysconfigRepo, orsClient),
		Jobs: service.NewJobService(
			uow, jobRepo, contractorRepo, assignmentRepo, sysconfigRepo,
			orsClient, publisher, cfg, observer,
		),
		Recommender: service.NewRecommendService(
			contractorRepo, jobRepo, assignmentRepo, auditRepo,
			weightsProvider, travel, publisher, cfg, observer,
		),
		Stats:       service.NewStatsService(jobRepo, assignmentRepo, contractorRepo, cfg.Cache.StatsTTL()),
		Config:      service.NewConfigService(uow, weightsProvider),
		Assignments: assignmentRepo,
		EventLog:    eventLogRepo,
		Hub:         hub,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()),
	}

	return cli.NewRootCmd(app).Execute()
}
