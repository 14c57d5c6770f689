package app

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/handlers"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/services/links"
	"github.com/ternarybob/affilink/internal/services/maintenance"
	"github.com/ternarybob/affilink/internal/services/rewrite"
	"github.com/ternarybob/affilink/internal/services/scraper"
	"github.com/ternarybob/affilink/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	LinkStorage interfaces.LinkStorage

	ScraperService     *scraper.Service
	LinkService        *links.Service
	MaintenanceService *maintenance.Service

	APIHandler         *handlers.APIHandler
	LinkHandler        *handlers.LinkHandler
	MaintenanceHandler *handlers.MaintenanceHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, err
	}
	app.LinkStorage = badger.NewLinkStorage(db, logger)

	app.ScraperService = scraper.NewService(cfg.Scraper, logger)

	// The rewrite collaborator is a constructor-time decision: when it is not
	// configured the link service holds a nil interface and never probes for it.
	var rewriter interfaces.RewriteService
	if cfg.Rewrite.Enabled {
		claudeService, err := rewrite.NewClaudeService(&cfg.Rewrite, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Rewrite service disabled")
		} else {
			rewriter = claudeService
			logger.Info().Str("model", cfg.Rewrite.Model).Msg("Rewrite service enabled")
		}
	}

	app.LinkService = links.NewService(
		app.LinkStorage,
		app.ScraperService,
		rewriter,
		cfg.Links,
		cfg.Rewrite,
		logger,
	)

	app.MaintenanceService = maintenance.NewService(
		app.LinkStorage,
		app.ScraperService,
		cfg.Maintenance,
		logger,
	)

	app.APIHandler = handlers.NewAPIHandler()
	app.LinkHandler = handlers.NewLinkHandler(app.LinkService)
	app.MaintenanceHandler = handlers.NewMaintenanceHandler(app.MaintenanceService)

	logger.Info().Msg("Application initialized")

	return app, nil
}

// Close releases application resources
func (a *App) Close() error {
	a.MaintenanceService.Stop()
	return a.LinkStorage.Close()
}
