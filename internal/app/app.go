package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/handlers"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/services/enrichment"
	"github.com/papajo/clmonetizer-app/internal/services/ingest"
	"github.com/papajo/clmonetizer-app/internal/services/render"
	"github.com/papajo/clmonetizer-app/internal/services/scheduler"
	badgerstore "github.com/papajo/clmonetizer-app/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager    interfaces.StorageManager
	RenderService     interfaces.RenderService
	EnrichmentService interfaces.EnrichmentService
	IngestService     interfaces.IngestService
	SchedulerService  interfaces.SchedulerService

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	ScrapeHandler  *handlers.ScrapeHandler
	ListingHandler *handlers.ListingHandler
	LeadHandler    *handlers.LeadHandler
	StatsHandler   *handlers.StatsHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	storageManager, err := badgerstore.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	renderService, err := render.NewService(&cfg.Scraper, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize browser pool: %w", err)
	}
	app.RenderService = renderService

	enrichmentService, err := enrichment.NewService(ctx, cfg, logger)
	if err != nil {
		renderService.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize enrichment: %w", err)
	}
	app.EnrichmentService = enrichmentService

	app.IngestService = ingest.NewService(
		renderService,
		enrichmentService,
		storageManager,
		&cfg.Scraper,
		logger,
	)

	app.SchedulerService = scheduler.NewService(app.IngestService, &cfg.Scheduler, logger)

	app.APIHandler = handlers.NewAPIHandler(logger)
	app.ScrapeHandler = handlers.NewScrapeHandler(app.IngestService, storageManager.BatchStorage(), logger)
	app.ListingHandler = handlers.NewListingHandler(storageManager.ListingStorage(), logger)
	app.LeadHandler = handlers.NewLeadHandler(
		storageManager.LeadStorage(),
		storageManager.ListingStorage(),
		enrichmentService,
		logger,
	)
	app.StatsHandler = handlers.NewStatsHandler(storageManager, enrichmentService, logger)

	logger.Info().
		Str("ai_provider", enrichmentService.ProviderName()).
		Msg("Application initialized")

	return app, nil
}

// Start launches background components. The browser pool warm-up is
// best-effort: a failure is logged but the HTTP surface still comes up.
func (a *App) Start() error {
	warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.RenderService.WarmUp(warmCtx); err != nil {
		a.Logger.Warn().Err(err).Msg("Browser pool warm-up failed")
	}

	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return nil
}

// Shutdown stops background components and releases resources in reverse
// dependency order
func (a *App) Shutdown() {
	a.Logger.Info().Msg("Shutting down application...")

	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.RenderService != nil {
		if err := a.RenderService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Browser pool shutdown failed")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage shutdown failed")
		}
	}

	a.Logger.Info().Msg("Application stopped")
}
