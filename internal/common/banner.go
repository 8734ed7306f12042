package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved run mode
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Market Brief", GetFullVersion())

	mode := "once"
	if config.Scheduler.Enabled {
		mode = "scheduled"
	}

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("provider", config.Provider.Name).
		Str("mode", mode).
		Msg("Market Brief starting")
}
