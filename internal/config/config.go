package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/fairlens/riskwatch/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	Backend    BackendConfig    `mapstructure:"backend"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// BackendConfig holds scoring service configuration
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DashboardConfig holds refresh behavior and the mode default
type DashboardConfig struct {
	DefaultMode     string        `mapstructure:"default_mode"` // applies when the persisted slot is unset
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	PageSize        int           `mapstructure:"page_size"`
}

// SimulationConfig gates the statement-name fixture path of the assessor
type SimulationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Delay   time.Duration `mapstructure:"delay"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds storage and persistence configuration
type StorageConfig struct {
	MaxDecisions int    `mapstructure:"max_decisions"`
	DBPath       string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("RISKWATCH")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:10000")
	v.SetDefault("backend.timeout", "30s")

	// Dashboard defaults
	v.SetDefault("dashboard.default_mode", "live")
	v.SetDefault("dashboard.refresh_interval", "5m")
	v.SetDefault("dashboard.page_size", 20)

	// Simulation defaults
	v.SetDefault("simulation.enabled", false)
	v.SetDefault("simulation.delay", "1200ms")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.max_decisions", 1000)
	v.SetDefault("storage.db_path", "./data/riskwatch.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Backend config
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Backend.Timeout < 1*time.Second {
		return fmt.Errorf("backend.timeout must be at least 1 second")
	}

	// Validate Dashboard config
	if _, ok := models.ParseMode(c.Dashboard.DefaultMode); !ok {
		return fmt.Errorf("dashboard.default_mode must be one of: demo, live")
	}
	if c.Dashboard.RefreshInterval < 1*time.Minute {
		return fmt.Errorf("dashboard.refresh_interval must be at least 1 minute")
	}
	if c.Dashboard.PageSize < 1 || c.Dashboard.PageSize > 200 {
		return fmt.Errorf("dashboard.page_size must be between 1 and 200")
	}

	// Validate Simulation config
	if c.Simulation.Delay < 0 {
		return fmt.Errorf("simulation.delay must not be negative")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	if c.Storage.MaxDecisions < 1 {
		return fmt.Errorf("storage.max_decisions must be at least 1")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// DefaultMode returns the configured fallback dashboard mode.
func (c *Config) DefaultMode() models.Mode {
	m, ok := models.ParseMode(c.Dashboard.DefaultMode)
	if !ok {
		return models.ModeLive
	}
	return m
}
