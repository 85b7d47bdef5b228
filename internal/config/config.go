// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort   = 8080
	defaultServerHost   = "0.0.0.0"
	defaultReadTimeout  = 30 * time.Second
	defaultDatabasePath = "./data/telecast.db"
	defaultEnableWAL    = true
	defaultLogLevel     = "info"
	defaultLogPretty    = false
	defaultPollTimeout  = 60 * time.Second
	defaultProbeTimeout = 10 * time.Second
	envPrefix           = "TELECAST"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Telegram  TelegramConfig
	Streaming StreamingConfig
}

// ServerConfig holds HTTP server configuration.
// WriteTimeout of zero disables the write deadline; video transfers are
// long-lived and a fixed deadline would cut them off mid-stream.
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path      string
	EnableWAL bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// TelegramConfig holds the ingestor's bot configuration.
// An empty token starts the server without the ingestor.
type TelegramConfig struct {
	Token       string
	ChannelID   int64
	PollTimeout time.Duration
}

// StreamingConfig holds upstream relay configuration
type StreamingConfig struct {
	ProbeTimeout time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/telecast")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", time.Duration(0))

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.enablewal", defaultEnableWAL)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.channelid", int64(0))
	v.SetDefault("telegram.polltimeout", defaultPollTimeout)

	v.SetDefault("streaming.probetimeout", defaultProbeTimeout)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("invalid write timeout: %v (must be >= 0, 0 disables it)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Telegram.Token != "" && c.Telegram.ChannelID == 0 {
		return fmt.Errorf("telegram channel id is required when a bot token is configured")
	}
	if c.Telegram.PollTimeout <= 0 {
		return fmt.Errorf("invalid telegram poll timeout: %v (must be > 0)", c.Telegram.PollTimeout)
	}

	if c.Streaming.ProbeTimeout <= 0 {
		return fmt.Errorf("invalid upstream probe timeout: %v (must be > 0)", c.Streaming.ProbeTimeout)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
