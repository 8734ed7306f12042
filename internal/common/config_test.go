package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MARKETBRIEF_PROVIDER", "MARKETBRIEF_EODHD_API_KEY", "EODHD_API_KEY",
		"MARKETBRIEF_INDICES_ON_FAILURE", "MARKETBRIEF_MIN_STOCKS",
		"MARKETBRIEF_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN",
		"MARKETBRIEF_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID", "MARKETBRIEF_TELEGRAM_ENABLED",
		"MARKETBRIEF_EMAIL_RECIPIENTS", "MARKETBRIEF_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketbrief.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFiles_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "yahoo", config.Provider.Name)
	assert.Equal(t, "degrade", config.Indices.OnFailure)
	assert.Equal(t, 3, config.Indices.MaxAttempts)
	assert.Equal(t, 20, config.Collector.MinStocks)
	assert.Equal(t, 65, config.Report.HeadlineMaxLen)
	assert.Equal(t, "0 45 15 * * 1-5", config.Scheduler.Schedule)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	clearEnv(t)

	first := writeConfig(t, `
[indices]
on_failure = "fallback"
retry_delay = "1s"

[collector]
min_stocks = 10
`)
	second := writeConfig(t, `
[collector]
min_stocks = 15
fundamentals_cache_ttl = "2h"
`)

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, "fallback", config.Indices.OnFailure)
	assert.Equal(t, time.Second, config.Indices.RetryDelay.Std())
	assert.Equal(t, 15, config.Collector.MinStocks)
	assert.Equal(t, 2*time.Hour, config.Collector.FundamentalsCacheTTL.Std())
}

func TestLoadFromFiles_LocalDeployment(t *testing.T) {
	clearEnv(t)

	config, err := LoadFromFiles(filepath.Join("..", "..", "deployments", "local", "marketbrief.toml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, config.Provider.RequestTimeout.Std())
	assert.Equal(t, 5*time.Second, config.Indices.RetryDelay.Std())
	assert.Equal(t, 2*time.Second, config.Collector.RetryDelay.Std())
	assert.Equal(t, 6*time.Hour, config.Collector.FundamentalsCacheTTL.Std())
	assert.Equal(t, 15*time.Second, config.News.RequestTimeout.Std())
	assert.Equal(t, 60*time.Second, config.Telegram.Timeout.Std())
	assert.Len(t, config.News.Sources, 2)
}

func TestLoadFromFiles_InvalidDuration(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
[telegram]
timeout = "soon"
`)

	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"45", 45 * time.Second, false},
		{"", 0, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("MARKETBRIEF_TELEGRAM_CHAT_ID", "-100")
	t.Setenv("MARKETBRIEF_INDICES_ON_FAILURE", "ABORT")
	t.Setenv("MARKETBRIEF_EMAIL_RECIPIENTS", "a@example.com, b@example.com")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "legacy-token", config.Telegram.BotToken)
	assert.Equal(t, "-100", config.Telegram.ChatID)
	assert.Equal(t, "abort", config.Indices.OnFailure)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, config.Email.Recipients)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		c := NewDefaultConfig()
		c.Telegram.BotToken = "token"
		c.Telegram.ChatID = "chat"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults with telegram credentials", mutate: func(c *Config) {}},
		{name: "telegram without token", mutate: func(c *Config) { c.Telegram.BotToken = "" }, wantErr: true},
		{name: "telegram disabled without token", mutate: func(c *Config) { c.Telegram.Enabled = false; c.Telegram.BotToken = "" }},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Name = "bloomberg" }, wantErr: true},
		{name: "eodhd without key", mutate: func(c *Config) { c.Provider.Name = "eodhd" }, wantErr: true},
		{name: "eodhd with key", mutate: func(c *Config) { c.Provider.Name = "eodhd"; c.Provider.EODHDAPIKey = "key" }},
		{name: "unknown on_failure", mutate: func(c *Config) { c.Indices.OnFailure = "ignore" }, wantErr: true},
		{name: "medium band inverted", mutate: func(c *Config) { c.Risk.MediumMax = 2 }, wantErr: true},
		{name: "email without recipients", mutate: func(c *Config) { c.Email.Enabled = true; c.Email.Host = "smtp"; c.Email.From = "a@b.c" }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Report.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "bad schedule when enabled", mutate: func(c *Config) { c.Scheduler.Enabled = true; c.Scheduler.Schedule = "45 15 * * *" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := ValidateConfig(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	c := NewDefaultConfig()
	ApplyFlagOverrides(c, true, "/tmp/out")
	assert.True(t, c.Scheduler.Enabled)
	assert.Equal(t, "/tmp/out", c.PDF.OutputDir)
}

func TestLocation(t *testing.T) {
	c := NewDefaultConfig()
	assert.Equal(t, "Asia/Kolkata", c.Location().String())

	c.Report.Timezone = "Nowhere/Invalid"
	assert.Equal(t, time.UTC, c.Location())
}
