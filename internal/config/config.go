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
	defaultServerPort        = 4000
	defaultServerHost        = "0.0.0.0"
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultDatabasePath      = "./data/syncparty.db"
	defaultLogLevel          = "info"
	defaultLogPretty         = false
	defaultUploadDir         = "./data/uploads"
	defaultMaxUploadBytes    = int64(3_000_000_000)
	defaultLinkFetchTimeout  = 3 * time.Second
	defaultWebsocketPath     = "/ws"
	defaultAllowedOriginsAll = "*"
	envPrefix                = "SYNCPARTY"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Uploads  UploadsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	WebsocketPath  string
	AllowedOrigins string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// UploadsConfig holds upload root and limits
type UploadsConfig struct {
	Dir              string
	MaxUploadBytes   int64
	LinkFetchTimeout time.Duration
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
	v.AddConfigPath("/etc/syncparty")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional, defaults and env vars cover everything
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
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
	v.SetDefault("server.writetimeout", defaultWriteTimeout)
	v.SetDefault("server.websocketpath", defaultWebsocketPath)
	v.SetDefault("server.allowedorigins", defaultAllowedOriginsAll)

	v.SetDefault("database.path", defaultDatabasePath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("uploads.dir", defaultUploadDir)
	v.SetDefault("uploads.maxuploadbytes", defaultMaxUploadBytes)
	v.SetDefault("uploads.linkfetchtimeout", defaultLinkFetchTimeout)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads dir must not be empty")
	}
	if c.Uploads.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be > 0)", c.Uploads.MaxUploadBytes)
	}
	if c.Uploads.LinkFetchTimeout <= 0 {
		return fmt.Errorf("invalid link fetch timeout: %v (must be > 0)", c.Uploads.LinkFetchTimeout)
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
