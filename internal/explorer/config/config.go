package config

import (
	"time"

	"neuranest-explorer/pkg/config"
)

// Upstream holds the settings for the scoring/ingestion API the explorer consumes.
type Upstream struct {
	BaseURL             string        `mapstructure:"base_url"`
	Token               string        `mapstructure:"token"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RetryMax            int           `mapstructure:"retry_max"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Explorer holds engine-specific configuration.
type Explorer struct {
	PollInterval          time.Duration `mapstructure:"poll_interval"`
	PollTimeout           time.Duration `mapstructure:"poll_timeout"`
	MaxPollFailures       int           `mapstructure:"max_poll_failures"`
	SessionIdleTTL        time.Duration `mapstructure:"session_idle_ttl"`
	DrillDownCacheTTL     time.Duration `mapstructure:"drilldown_cache_ttl"`
	SnapshotCron          string        `mapstructure:"snapshot_cron"`
	SnapshotPageSize      int           `mapstructure:"snapshot_page_size"`
	SnapshotConcurrency   int           `mapstructure:"snapshot_concurrency"`
	IncludeExplainability bool          `mapstructure:"include_explainability"`
	InsightsLimit         int           `mapstructure:"insights_limit"`
}

// Telegram holds configuration for the import notifier. An empty BotToken disables it.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the explorer service and CLI.
type Config struct {
	App      config.App    `mapstructure:"app"`
	Logger   config.Logger `mapstructure:"logger"`
	Redis    config.Redis  `mapstructure:"redis"`
	API      config.API    `mapstructure:"api"`
	Upstream Upstream      `mapstructure:"upstream"`
	Explorer Explorer      `mapstructure:"explorer"`
	Telegram Telegram      `mapstructure:"telegram"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                        "neuranest-explorer",
		"logger.level":                    "info",
		"logger.encoding":                 "json",
		"api.port":                        8080,
		"redis.port":                      6379,
		"redis.pool_size":                 10,
		"redis.stream_max_len":            1000,
		"upstream.timeout":                "15s",
		"upstream.retry_max":              2,
		"upstream.max_request_per_minute": 600,
		"explorer.poll_interval":          "3s",
		"explorer.poll_timeout":           "10s",
		"explorer.max_poll_failures":      5,
		"explorer.session_idle_ttl":       "30m",
		"explorer.drilldown_cache_ttl":    "2m",
		"explorer.snapshot_cron":          "@every 5m",
		"explorer.snapshot_page_size":     200,
		"explorer.snapshot_concurrency":   4,
		"explorer.include_explainability": true,
		"explorer.insights_limit":         5,
	}
}

// Load loads the explorer configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
