package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config is the full marketbrief configuration tree.
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig   `toml:"logging"`
	Provider    ProviderConfig  `toml:"provider"`
	Indices     IndicesConfig   `toml:"indices"`
	Collector   CollectorConfig `toml:"collector"`
	News        NewsConfig      `toml:"news"`
	Risk        RiskConfig      `toml:"risk"`
	Report      ReportConfig    `toml:"report"`
	PDF         PDFConfig       `toml:"pdf"`
	Telegram    TelegramConfig  `toml:"telegram"`
	Email       EmailConfig     `toml:"email"`
	Storage     StorageConfig   `toml:"storage"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                             // "stdout", "file"
	File   string   `toml:"file"`                                               // Log file name inside ./logs
}

// ProviderConfig selects and tunes the market data source
type ProviderConfig struct {
	Name           string   `toml:"name" validate:"oneof=yahoo eodhd"` // "yahoo" (default) or "eodhd"
	EODHDAPIKey    string   `toml:"eodhd_api_key"`                     // Required when name = "eodhd"
	EODHDBaseURL   string   `toml:"eodhd_base_url"`
	YahooBaseURL   string   `toml:"yahoo_base_url"`
	RequestTimeout Duration `toml:"request_timeout"`
	RateLimit      int      `toml:"rate_limit" validate:"gte=1"`       // Requests per second
}

// IndicesConfig controls the NIFTY/SENSEX snapshot fetch
type IndicesConfig struct {
	Nifty       string        `toml:"nifty" validate:"required"`  // e.g. "INDX:NSEI"
	Sensex      string        `toml:"sensex" validate:"required"` // e.g. "INDX:BSESN"
	OnFailure   string        `toml:"on_failure" validate:"oneof=degrade fallback abort"`
	MaxAttempts int           `toml:"max_attempts" validate:"gte=1"`
	RetryDelay  Duration      `toml:"retry_delay"`                // Multiplied by attempt number
	HistoryDays int           `toml:"history_days" validate:"gte=2"`
	Fallback    FallbackIndex `toml:"fallback"`
}

// FallbackIndex holds the placeholder values used when on_failure = "fallback"
type FallbackIndex struct {
	NiftyCurrent   float64 `toml:"nifty_current"`
	NiftyPrevious  float64 `toml:"nifty_previous"`
	SensexCurrent  float64 `toml:"sensex_current"`
	SensexPrevious float64 `toml:"sensex_previous"`
}

// CollectorConfig controls the per-symbol snapshot fetch
type CollectorConfig struct {
	UniverseFile         string   `toml:"universe_file"`  // YAML symbol list, empty = built-in universe
	MinStocks            int      `toml:"min_stocks" validate:"gte=0"`
	HistoryDays          int      `toml:"history_days" validate:"gte=2"`
	MaxAttempts          int      `toml:"max_attempts" validate:"gte=1"`
	RetryDelay           Duration `toml:"retry_delay"`
	FundamentalsCacheTTL Duration `toml:"fundamentals_cache_ttl"`
	ReuseSnapshot        bool     `toml:"reuse_snapshot"` // Reuse today's stored snapshot on rerun
	Holidays             []string `toml:"holidays"`       // Exchange holidays, YYYY-MM-DD
}

// NewsConfig lists the headline sources
type NewsConfig struct {
	Sources        []NewsSource `toml:"sources" validate:"dive"`
	PerSourceLimit int          `toml:"per_source_limit" validate:"gte=1"`
	MinLength      int          `toml:"min_length"`
	RequestTimeout Duration     `toml:"request_timeout"`
	UserAgent      string       `toml:"user_agent"`
	UseEODHD       bool         `toml:"use_eodhd"` // Also pull EODHD news titles (requires API key)
}

// NewsSource is a single scraped page
type NewsSource struct {
	Name     string `toml:"name" validate:"required"`
	URL      string `toml:"url" validate:"required,url"`
	Selector string `toml:"selector" validate:"required"`
}

// RiskConfig holds the medium-risk scoring thresholds
type RiskConfig struct {
	Baseline    int     `toml:"baseline"`
	BetaLow     float64 `toml:"beta_low"`
	BetaHigh    float64 `toml:"beta_high"`
	PEMin       float64 `toml:"pe_min"`       // Reasonable band lower bound (exclusive)
	PEMax       float64 `toml:"pe_max"`       // Reasonable band upper bound (exclusive)
	PEExpensive float64 `toml:"pe_expensive"` // Above this P/E adds risk
	DividendMin float64 `toml:"dividend_min"` // Percent
	VolLow      float64 `toml:"vol_low"`      // Percent
	VolHigh     float64 `toml:"vol_high"`     // Percent
	MediumMin   int     `toml:"medium_min"`
	MediumMax   int     `toml:"medium_max" validate:"gtefield=MediumMin"`
}

// ReportConfig holds the composer knobs
type ReportConfig struct {
	Gainers         int     `toml:"gainers" validate:"gte=1"`
	Sectors         int     `toml:"sectors" validate:"gte=1"`
	Headlines       int     `toml:"headlines" validate:"gte=0"`
	HeadlineMaxLen  int     `toml:"headline_max_len" validate:"gte=4"`
	NameMaxLen      int     `toml:"name_max_len" validate:"gte=1"`
	PortfolioSize   int     `toml:"portfolio_size" validate:"gte=1"`
	StrongSentiment float64 `toml:"strong_sentiment"` // avg change % above which sentiment is strong
	StrategyBand    float64 `toml:"strategy_band"`    // avg change % for bullish/bearish strategy bias
	Currency        string  `toml:"currency"`
	Timezone        string  `toml:"timezone"`
	StopLossPct     float64 `toml:"stop_loss_pct"`
	Target1Pct      float64 `toml:"target1_pct"`
	Target2Pct      float64 `toml:"target2_pct"`
}

// PDFConfig controls the rendered document
type PDFConfig struct {
	OutputDir string `toml:"output_dir"`
	Title     string `toml:"title"`
}

// TelegramConfig contains Telegram Bot API delivery settings
type TelegramConfig struct {
	Enabled  bool     `toml:"enabled"`
	BotToken string   `toml:"bot_token"`
	ChatID   string   `toml:"chat_id"`
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
}

// EmailConfig contains SMTP delivery settings
type EmailConfig struct {
	Enabled    bool     `toml:"enabled"`
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	Username   string   `toml:"username"`
	Password   string   `toml:"password"`
	From       string   `toml:"from"`
	FromName   string   `toml:"from_name"`
	UseTLS     bool     `toml:"use_tls"`
	Recipients []string `toml:"recipients"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig locates the run-history store.
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup
}

// SchedulerConfig controls daemon mode
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron format with seconds
}

// NewDefaultConfig returns the built-in settings used before any file is read.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
			File:   "marketbrief.log",
		},
		Provider: ProviderConfig{
			Name:           "yahoo",
			RequestTimeout: Duration(30 * time.Second),
			RateLimit:      2, // Yahoo throttles aggressively
		},
		Indices: IndicesConfig{
			Nifty:       "INDX:NSEI",
			Sensex:      "INDX:BSESN",
			OnFailure:   "degrade",
			MaxAttempts: 3,
			RetryDelay:  Duration(5 * time.Second),
			HistoryDays: 30,
			Fallback: FallbackIndex{
				NiftyCurrent:   24500.00,
				NiftyPrevious:  24450.00,
				SensexCurrent:  81000.00,
				SensexPrevious: 80900.00,
			},
		},
		Collector: CollectorConfig{
			MinStocks:            20,
			HistoryDays:          30,
			MaxAttempts:          2,
			RetryDelay:           Duration(2 * time.Second),
			FundamentalsCacheTTL: Duration(6 * time.Hour),
			ReuseSnapshot:        true,
		},
		News: NewsConfig{
			Sources: []NewsSource{
				{
					Name:     "economictimes",
					URL:      "https://economictimes.indiatimes.com/markets/stocks/news",
					Selector: "div.eachStory h3 a",
				},
				{
					Name:     "moneycontrol",
					URL:      "https://www.moneycontrol.com/news/business/markets/",
					Selector: "li.clearfix h2 a",
				},
				{
					Name:     "livemint",
					URL:      "https://www.livemint.com/market/stock-market-news",
					Selector: "h2.headline a",
				},
			},
			PerSourceLimit: 10,
			MinLength:      20,
			RequestTimeout: Duration(15 * time.Second),
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Risk: RiskConfig{
			Baseline:    5,
			BetaLow:     0.8,
			BetaHigh:    1.2,
			PEMin:       0,
			PEMax:       25,
			PEExpensive: 40,
			DividendMin: 1,
			VolLow:      2,
			VolHigh:     4,
			MediumMin:   3,
			MediumMax:   7,
		},
		Report: ReportConfig{
			Gainers:         10,
			Sectors:         12,
			Headlines:       8,
			HeadlineMaxLen:  65,
			NameMaxLen:      30,
			PortfolioSize:   12,
			StrongSentiment: 1.0,
			StrategyBand:    0.5,
			Currency:        "₹",
			Timezone:        "Asia/Kolkata",
			StopLossPct:     5,
			Target1Pct:      8,
			Target2Pct:      15,
		},
		PDF: PDFConfig{
			OutputDir: "./reports",
			Title:     "DAILY INDIAN STOCK MARKET REPORT",
		},
		Telegram: TelegramConfig{
			Enabled: true,
			BaseURL: "https://api.telegram.org",
			Timeout: Duration(60 * time.Second),
		},
		Email: EmailConfig{
			Port:     587,
			UseTLS:   true,
			FromName: "Market Brief",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 45 15 * * 1-5", // 15:45 IST, after NSE close
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides reads MARKETBRIEF_* variables.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MARKETBRIEF_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Logging
	if level := os.Getenv("MARKETBRIEF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MARKETBRIEF_LOG_OUTPUT"); output != "" {
		outputs := splitList(output)
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Provider configuration
	if name := os.Getenv("MARKETBRIEF_PROVIDER"); name != "" {
		config.Provider.Name = strings.ToLower(name)
	}
	if apiKey := os.Getenv("MARKETBRIEF_EODHD_API_KEY"); apiKey != "" {
		config.Provider.EODHDAPIKey = apiKey
	} else if apiKey := os.Getenv("EODHD_API_KEY"); apiKey != "" {
		config.Provider.EODHDAPIKey = apiKey
	}
	if rateLimit := os.Getenv("MARKETBRIEF_PROVIDER_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.Provider.RateLimit = rl
		}
	}

	// Indices configuration
	if onFailure := os.Getenv("MARKETBRIEF_INDICES_ON_FAILURE"); onFailure != "" {
		config.Indices.OnFailure = strings.ToLower(onFailure)
	}
	if maxAttempts := os.Getenv("MARKETBRIEF_INDICES_MAX_ATTEMPTS"); maxAttempts != "" {
		if ma, err := strconv.Atoi(maxAttempts); err == nil {
			config.Indices.MaxAttempts = ma
		}
	}

	// Collector configuration
	if universe := os.Getenv("MARKETBRIEF_UNIVERSE_FILE"); universe != "" {
		config.Collector.UniverseFile = universe
	}
	if minStocks := os.Getenv("MARKETBRIEF_MIN_STOCKS"); minStocks != "" {
		if ms, err := strconv.Atoi(minStocks); err == nil {
			config.Collector.MinStocks = ms
		}
	}
	if reuse := os.Getenv("MARKETBRIEF_REUSE_SNAPSHOT"); reuse != "" {
		if r, err := strconv.ParseBool(reuse); err == nil {
			config.Collector.ReuseSnapshot = r
		}
	}

	// PDF configuration
	if outputDir := os.Getenv("MARKETBRIEF_PDF_OUTPUT_DIR"); outputDir != "" {
		config.PDF.OutputDir = outputDir
	}

	// Telegram configuration (TELEGRAM_* kept for existing deployments)
	if token := os.Getenv("MARKETBRIEF_TELEGRAM_BOT_TOKEN"); token != "" {
		config.Telegram.BotToken = token
	} else if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		config.Telegram.BotToken = token
	}
	if chatID := os.Getenv("MARKETBRIEF_TELEGRAM_CHAT_ID"); chatID != "" {
		config.Telegram.ChatID = chatID
	} else if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		config.Telegram.ChatID = chatID
	}
	if enabled := os.Getenv("MARKETBRIEF_TELEGRAM_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Telegram.Enabled = e
		}
	}

	// Email configuration
	if enabled := os.Getenv("MARKETBRIEF_EMAIL_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Email.Enabled = e
		}
	}
	if host := os.Getenv("MARKETBRIEF_SMTP_HOST"); host != "" {
		config.Email.Host = host
	}
	if port := os.Getenv("MARKETBRIEF_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Email.Port = p
		}
	}
	if username := os.Getenv("MARKETBRIEF_SMTP_USERNAME"); username != "" {
		config.Email.Username = username
	}
	if password := os.Getenv("MARKETBRIEF_SMTP_PASSWORD"); password != "" {
		config.Email.Password = password
	}
	if recipients := os.Getenv("MARKETBRIEF_EMAIL_RECIPIENTS"); recipients != "" {
		config.Email.Recipients = splitList(recipients)
	}

	// Run history
	if badgerPath := os.Getenv("MARKETBRIEF_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Scheduler configuration
	if schedule := os.Getenv("MARKETBRIEF_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}

// ApplyFlagOverrides layers CLI flags over the loaded file and env values.
func ApplyFlagOverrides(config *Config, daemon bool, outputDir string) {
	if daemon {
		config.Scheduler.Enabled = true
	}
	if outputDir != "" {
		config.PDF.OutputDir = outputDir
	}
}

// ValidateConfig checks struct tags and the cross-field rules tags cannot express
func ValidateConfig(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Provider.Name == "eodhd" && config.Provider.EODHDAPIKey == "" {
		return fmt.Errorf("invalid configuration: provider.eodhd_api_key is required when provider.name = \"eodhd\"")
	}
	if config.News.UseEODHD && config.Provider.EODHDAPIKey == "" {
		return fmt.Errorf("invalid configuration: news.use_eodhd requires provider.eodhd_api_key")
	}
	if config.Telegram.Enabled && (config.Telegram.BotToken == "" || config.Telegram.ChatID == "") {
		return fmt.Errorf("invalid configuration: telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	if config.Email.Enabled {
		if config.Email.Host == "" || config.Email.From == "" || len(config.Email.Recipients) == 0 {
			return fmt.Errorf("invalid configuration: email.host, email.from and email.recipients are required when email is enabled")
		}
	}
	if _, err := time.LoadLocation(config.Report.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: report.timezone %q: %w", config.Report.Timezone, err)
	}
	if _, err := ParseHolidays(config.Collector.Holidays, time.UTC); err != nil {
		return fmt.Errorf("invalid configuration: collector.holidays: %w", err)
	}
	if config.Scheduler.Enabled {
		if err := ValidateSchedule(config.Scheduler.Schedule); err != nil {
			return err
		}
	}

	return nil
}

// ValidateSchedule validates a six-field cron expression (seconds first)
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// IsProduction reports a "production" or "prod" environment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Location returns the report time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
