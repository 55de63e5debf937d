package config

import (
	"time"

	redisclient "github.com/vietddude/nodewatch/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Platform PlatformConfig `yaml:"platform"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Notify   NotifyConfig   `yaml:"notify"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings for health and metrics.
type ServerConfig struct {
	Port int `yaml:"port" envconfig:"HEALTH_PORT"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"` // debug, info, warn, error
}

// PlatformConfig holds settings for the platform JSON-RPC endpoint.
type PlatformConfig struct {
	Name    string        `yaml:"name"`
	RPC     string        `yaml:"rpc"     envconfig:"RPC_API"`
	Timeout time.Duration `yaml:"timeout" envconfig:"RPC_TIMEOUT"`
	Retry   RetryConfig   `yaml:"retry"`
}

// RetryConfig controls the optional in-cycle retry of a failed fetch.
// MaxAttempts <= 1 disables retry.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"  envconfig:"RPC_RETRY_ATTEMPTS"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Jitter       time.Duration `yaml:"jitter"`
}

// MonitorConfig holds the tracked node set and polling cadence.
type MonitorConfig struct {
	NodeIDs  []string      `yaml:"node_ids" envconfig:"NODE_IDS"`
	Interval time.Duration `yaml:"interval" envconfig:"CHECK_INTERVAL"`
}

// NotifyConfig holds every notification sink. Any subset may be enabled.
type NotifyConfig struct {
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
	Redis   RedisConfig   `yaml:"redis"`
}

// DiscordConfig configures the bot-backed channel sink.
type DiscordConfig struct {
	Token     string `yaml:"token"      envconfig:"DISCORD_BOT_TOKEN"`
	ChannelID string `yaml:"channel_id" envconfig:"REPORT_CHANNEL_ID"`
}

func (c DiscordConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

// WebhookConfig configures a Discord-compatible incoming webhook sink.
type WebhookConfig struct {
	URL     string        `yaml:"url"     envconfig:"REPORT_WEBHOOK_URL"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

// RedisConfig configures the pub/sub sink.
type RedisConfig struct {
	redisclient.Config `yaml:",inline"`
	Channel            string `yaml:"channel" envconfig:"REPORT_REDIS_CHANNEL"`
}

func (c RedisConfig) Enabled() bool {
	return c.URL != "" && c.Channel != ""
}
