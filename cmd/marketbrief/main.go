package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/app"
	"github.com/ternarybob/marketbrief/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
	daemon       = flag.Bool("daemon", false, "Run on the configured schedule instead of once")
	dryRun       = flag.Bool("dry-run", false, "Render the PDF without sending anything")
	history      = flag.Int("history", 0, "Print the last n runs and exit")
	outputDir    = flag.String("output", "", "PDF output directory (overrides config)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	common.InstallCrashHandler(common.LogDirectory())
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("marketbrief version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("marketbrief.toml"); err == nil {
			configFiles = append(configFiles, "marketbrief.toml")
		} else if _, err := os.Stat("deployments/local/marketbrief.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/marketbrief.toml")
		}
	}

	// 1. Load configuration (default -> file1 -> file2 -> ... -> env)
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	// 2. Apply command-line flag overrides (highest priority)
	common.ApplyFlagOverrides(config, *daemon, *outputDir)

	if err := common.ValidateConfig(config); err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Configuration is invalid")
		os.Exit(1)
	}

	// 3. Initialize logger with final configuration
	logger := common.InitLogger(config)

	// 4. Print banner with configuration and logger
	common.PrintBanner(config, logger)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("provider", config.Provider.Name).
		Str("on_failure", config.Indices.OnFailure).
		Bool("telegram", config.Telegram.Enabled).
		Bool("email", config.Email.Enabled).
		Msg("Resolved configuration (sanitized)")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, application, config, logger)

	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
	os.Exit(code)
}

func run(ctx context.Context, application *app.App, config *common.Config, logger arbor.ILogger) int {
	if *history > 0 {
		runs, err := application.History(ctx, *history)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load run history")
			return 1
		}
		printHistory(os.Stdout, runs, config.Location())
		return 0
	}

	if config.Scheduler.Enabled {
		if err := application.StartScheduler(*dryRun); err != nil {
			logger.Error().Err(err).Msg("Failed to start scheduler")
			return 1
		}

		logger.Info().Msg("Scheduler running - Press Ctrl+C to stop")
		<-ctx.Done()
		logger.Info().Msg("Interrupt signal received")
		return 0
	}

	record, err := application.RunOnce(ctx, *dryRun)
	if err != nil {
		logger.Error().Err(err).Str("status", record.Status).Msg("Report run did not complete")
		return 1
	}

	logger.Info().
		Str("document", record.DocumentPath).
		Bool("delivered", record.Delivered).
		Msg("Done")
	return 0
}
