package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/analysis"
	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/eodhd"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/report"
	"github.com/ternarybob/marketbrief/internal/services/collector"
	"github.com/ternarybob/marketbrief/internal/services/mailer"
	"github.com/ternarybob/marketbrief/internal/services/market"
	"github.com/ternarybob/marketbrief/internal/services/news"
	"github.com/ternarybob/marketbrief/internal/services/pdf"
	"github.com/ternarybob/marketbrief/internal/services/scheduler"
	"github.com/ternarybob/marketbrief/internal/services/telegram"
	"github.com/ternarybob/marketbrief/internal/storage/badger"
	"github.com/ternarybob/marketbrief/internal/yahoo"
)

// App wires the report pipeline together with its storage and delivery channels.
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Data sources
	Provider  interfaces.MarketDataProvider
	Collector *collector.Service
	News      *news.Service

	// Report production
	Composer *report.Composer
	Renderer interfaces.DocumentRenderer

	// Delivery
	Notifier interfaces.StatusNotifier
	Senders  []interfaces.DocumentSender

	Pipeline  *Pipeline
	Scheduler *scheduler.Scheduler
}

// New opens storage and builds every service named in cfg.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		_ = app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info().
		Str("provider", app.Provider.Name()).
		Int("universe", app.Collector.UniverseSize()).
		Int("delivery_channels", len(app.Senders)).
		Bool("status_messages", app.Notifier != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the badgerhold run-history store.
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices wires data sources, composer, renderer and delivery channels
func (a *App) initServices() error {
	cfg := a.Config

	var eodhdClient *eodhd.Client
	if cfg.Provider.EODHDAPIKey != "" {
		eodhdClient = eodhd.NewClient(cfg.Provider.EODHDAPIKey,
			eodhd.WithBaseURL(cfg.Provider.EODHDBaseURL),
			eodhd.WithTimeout(cfg.Provider.RequestTimeout.Std()),
			eodhd.WithRateLimit(cfg.Provider.RateLimit),
			eodhd.WithLogger(a.Logger),
		)
	}

	// 1. Market data provider
	switch cfg.Provider.Name {
	case "eodhd":
		if eodhdClient == nil {
			return fmt.Errorf("eodhd provider selected without an API key")
		}
		a.Provider = market.NewEODHDProvider(eodhdClient, a.Logger)
	default:
		client := yahoo.NewClient(
			yahoo.WithBaseURL(cfg.Provider.YahooBaseURL),
			yahoo.WithTimeout(cfg.Provider.RequestTimeout.Std()),
			yahoo.WithRateLimit(cfg.Provider.RateLimit),
			yahoo.WithLogger(a.Logger),
		)
		a.Provider = market.NewYahooProvider(client, a.Logger)
	}

	// 2. Collector over the symbol universe
	universe, err := collector.LoadUniverse(cfg.Collector.UniverseFile)
	if err != nil {
		return fmt.Errorf("failed to load universe: %w", err)
	}

	var snapshots interfaces.SnapshotStorage
	if cfg.Collector.ReuseSnapshot {
		snapshots = a.StorageManager.SnapshotStorage()
	}
	a.Collector = collector.NewService(a.Provider, snapshots, cfg, universe, a.Logger)

	// 3. Headline providers
	providers := make([]interfaces.NewsProvider, 0, len(cfg.News.Sources)+1)
	for _, source := range cfg.News.Sources {
		providers = append(providers, news.NewScraper(source, cfg.News, a.Logger))
	}
	if cfg.News.UseEODHD && eodhdClient != nil {
		symbols := []string{
			common.ParseSymbol(cfg.Indices.Nifty).EODHDSymbol(),
			common.ParseSymbol(cfg.Indices.Sensex).EODHDSymbol(),
		}
		providers = append(providers, news.NewEODHDSource(eodhdClient, symbols, cfg.News.PerSourceLimit))
	}
	a.News = news.NewService(providers, cfg.News.MinLength, a.Logger)

	// 4. Composer and renderer
	scorer := analysis.NewRiskScorer(cfg.Risk)
	a.Composer = report.NewComposer(cfg.Report, scorer, report.WithLocation(cfg.Location()))
	a.Renderer = pdf.NewService(cfg.PDF, a.Logger)

	// 5. Delivery channels
	if cfg.Telegram.Enabled {
		tg := telegram.NewService(cfg.Telegram, a.Logger)
		a.Notifier = tg
		a.Senders = append(a.Senders, tg)
	}
	if cfg.Email.Enabled {
		a.Senders = append(a.Senders, mailer.NewService(cfg.Email, a.Logger))
	}

	a.Pipeline = NewPipeline(
		a.Collector,
		a.News,
		a.Composer,
		a.Renderer,
		a.Notifier,
		a.Senders,
		a.StorageManager.RunStorage(),
		cfg.Collector.MinStocks,
		cfg.Location(),
		a.Logger,
	)

	return nil
}

// RunOnce executes a single report pass
func (a *App) RunOnce(ctx context.Context, dryRun bool) (*models.RunRecord, error) {
	return a.Pipeline.Run(ctx, dryRun)
}

// StartScheduler runs the pipeline on the configured cron schedule
func (a *App) StartScheduler(dryRun bool) error {
	a.Scheduler = scheduler.NewScheduler(func(ctx context.Context) error {
		_, err := a.Pipeline.Run(ctx, dryRun)
		return err
	}, a.Config.Location(), a.Logger)

	return a.Scheduler.Start(a.Config.Scheduler.Schedule)
}

// History returns the most recent runs, newest first
func (a *App) History(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	return a.StorageManager.RunStorage().ListRuns(ctx, limit)
}

// Close stops the scheduler and closes storage
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
