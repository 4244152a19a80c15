// Package wire provides dependency injection for the warden application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"go.uber.org/zap"

	"github.com/example/warden/internal/adapters/pegasus"
	"github.com/example/warden/internal/adapters/remedy"
	"github.com/example/warden/internal/adapters/sqlite"
	"github.com/example/warden/internal/app"
	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/db"
	"github.com/example/warden/internal/logging"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

var (
	cfg             *config.Config
	logger          *zap.Logger
	supervisor      primary.Supervisor
	workflowService primary.WorkflowService
	anomalyService  primary.AnomalyService
	eventService    primary.EventService
	statusSource    secondary.StatusSource
	once            sync.Once
)

// SetConfig injects the loaded configuration. Must be called before the
// first service accessor; the root command does this in PersistentPreRun.
func SetConfig(c *config.Config) {
	cfg = c
}

// Config returns the active configuration without initializing services.
// Commands may adjust it (flag overrides) before the first service accessor
// runs; initialization snapshots whatever is set at that point.
func Config() *config.Config {
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	return cfg
}

// Logger returns the singleton logger instance.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// Supervisor returns the singleton supervision engine.
func Supervisor() primary.Supervisor {
	once.Do(initServices)
	return supervisor
}

// WorkflowService returns the singleton WorkflowService instance.
func WorkflowService() primary.WorkflowService {
	once.Do(initServices)
	return workflowService
}

// AnomalyService returns the singleton AnomalyService instance.
func AnomalyService() primary.AnomalyService {
	once.Do(initServices)
	return anomalyService
}

// EventService returns the singleton EventService instance.
func EventService() primary.EventService {
	once.Do(initServices)
	return eventService
}

// StatusSource returns the singleton status source for one-shot polls.
func StatusSource() secondary.StatusSource {
	once.Do(initServices)
	return statusSource
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	Config()

	var err error
	logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Secondary adapters
	source := pegasus.NewSource(cfg.StatusCommand, cfg.RemoveCommand)
	statusSource = source
	remedyClient := remedy.NewClient(cfg.Remediation.URL, cfg.Remediation.APIKey, cfg.RemediationTimeout())

	anomalyRepo := sqlite.NewAnomalyRepository(database)
	eventRepo := sqlite.NewWorkflowEventRepository(database)
	workflowRepo := sqlite.NewWorkflowRepository(database)

	// Supervision engine
	supervisor = app.NewEngine(app.WatcherDeps{
		Source:       source,
		Terminator:   source,
		Remedy:       remedyClient,
		AnomalyRepo:  anomalyRepo,
		EventRepo:    eventRepo,
		WorkflowRepo: workflowRepo,
	}, app.EngineOptions{
		PollInterval:      cfg.PollInterval(),
		DiscoveryInterval: cfg.DiscoveryInterval(),
		PollTimeout:       cfg.PollTimeout(),
		HeldThreshold:     cfg.HeldThreshold,
	}, logger)

	// Services (primary ports implementation)
	workflowService = app.NewWorkflowService(workflowRepo)
	anomalyService = app.NewAnomalyService(anomalyRepo)
	eventService = app.NewEventService(eventRepo)
}
