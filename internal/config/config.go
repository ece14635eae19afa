package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/schnell18/titra/internal/errors"
)

// Config holds all configuration options for the titra server
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Rules    RulesConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir      string `env:"TITRA_DB_DIR"`
	Filename string `env:"TITRA_DB_FILENAME"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Host            string        `env:"TITRA_HOST"`
	Port            int           `env:"TITRA_PORT"`
	ShutdownTimeout time.Duration `env:"TITRA_SHUTDOWN_TIMEOUT"`
}

// RulesConfig holds business-rule hook configuration
type RulesConfig struct {
	Timeout         time.Duration `env:"TITRA_RULES_TIMEOUT"`
	MaxHoursPerCard float64       `env:"TITRA_RULES_MAX_HOURS"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Dir:      filepath.Join(homeDir, ".titra"),
			Filename: "titra.db",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Rules: RulesConfig{
			Timeout:         time.Second,
			MaxHoursPerCard: 0, // disabled
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetListenAddr returns the host:port pair the server binds to
func (c *Config) GetListenAddr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	if dir := os.Getenv("TITRA_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TITRA_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if host := os.Getenv("TITRA_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("TITRA_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return errors.NewConfigurationError("TITRA_PORT")
		}
		c.Server.Port = parsed
	}
	if timeout := os.Getenv("TITRA_SHUTDOWN_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return errors.NewConfigurationError("TITRA_SHUTDOWN_TIMEOUT")
		}
		c.Server.ShutdownTimeout = parsed
	}
	if timeout := os.Getenv("TITRA_RULES_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return errors.NewConfigurationError("TITRA_RULES_TIMEOUT")
		}
		c.Rules.Timeout = parsed
	}
	if max := os.Getenv("TITRA_RULES_MAX_HOURS"); max != "" {
		parsed, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return errors.NewConfigurationError("TITRA_RULES_MAX_HOURS")
		}
		c.Rules.MaxHoursPerCard = parsed
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return errors.NewConfigurationError("database directory")
	}
	if c.Database.Filename == "" {
		return errors.NewConfigurationError("database filename")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.NewConfigurationError("server port")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.NewConfigurationError("shutdown timeout")
	}
	if c.Rules.MaxHoursPerCard < 0 {
		return errors.NewConfigurationError("max hours per card")
	}
	return nil
}

// Load builds the effective configuration: defaults overridden by
// environment variables, then validated.
func Load() (*Config, error) {
	config := NewConfig()
	if err := config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
