package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	DefaultInterval   = 5 * time.Minute
	DefaultRPCTimeout = 10 * time.Second
	DefaultPort       = 8080
)

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file so a deployment can be configured from the
// environment alone.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Platform.Name == "" {
		cfg.Platform.Name = "platform"
	}
	if cfg.Platform.Timeout == 0 {
		cfg.Platform.Timeout = DefaultRPCTimeout
	}
	if cfg.Platform.Retry.MaxAttempts <= 0 {
		cfg.Platform.Retry.MaxAttempts = 1
	}
	if cfg.Platform.Retry.InitialDelay == 0 {
		cfg.Platform.Retry.InitialDelay = 2 * time.Second
	}
	if cfg.Platform.Retry.MaxDelay == 0 {
		cfg.Platform.Retry.MaxDelay = 30 * time.Second
	}
	if cfg.Monitor.Interval == 0 {
		cfg.Monitor.Interval = DefaultInterval
	}
	if cfg.Notify.Webhook.Timeout == 0 {
		cfg.Notify.Webhook.Timeout = 5 * time.Second
	}
}

// Validate checks the settings the monitor cannot start without.
func (c *AppConfig) Validate() error {
	errs := c.validateSource()
	if !c.Notify.Discord.Enabled() && !c.Notify.Webhook.Enabled() && !c.Notify.Redis.Enabled() {
		errs = append(errs, errors.New("at least one notify sink must be configured"))
	}
	if c.Notify.Discord.Token != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, errors.New("notify.discord.channel_id is required when a token is set"))
	}
	return errors.Join(errs...)
}

// ValidateSource checks only the endpoint, node list and interval. Used by
// one-shot checks that print instead of notifying.
func (c *AppConfig) ValidateSource() error {
	return errors.Join(c.validateSource()...)
}

func (c *AppConfig) validateSource() []error {
	var errs []error
	if c.Platform.RPC == "" {
		errs = append(errs, errors.New("platform.rpc is required"))
	}
	if len(c.Monitor.NodeIDs) == 0 {
		errs = append(errs, errors.New("monitor.node_ids must not be empty"))
	}
	if c.Monitor.Interval < time.Second {
		errs = append(errs, fmt.Errorf("monitor.interval %s is too short", c.Monitor.Interval))
	}
	return errs
}
