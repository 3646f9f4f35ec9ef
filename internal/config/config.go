// Package config provides configuration management for the Pitwall Picks scoring service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Scoring   ScoringConfig   `mapstructure:"scoring" validate:"required"`
	Standings StandingsConfig `mapstructure:"standings"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                 int     `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds   int     `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds  int     `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	TriggerRatePerSecond float64 `mapstructure:"trigger_rate_per_second" validate:"required,gt=0"`
	TriggerBurst         int     `mapstructure:"trigger_burst" validate:"required,gt=0"`
}

// ScoringConfig controls the points calculators
type ScoringConfig struct {
	Workers                int  `mapstructure:"workers" validate:"required,gt=0,lte=64"`
	ScorePredictionsOnSave bool `mapstructure:"score_predictions_on_save"`
}

// StandingsConfig controls the standings cache
type StandingsConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ListenAddr returns the HTTP listen address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// StandingsCacheTTL returns the standings cache lifetime
func (c *Config) StandingsCacheTTL() time.Duration {
	return time.Duration(c.Standings.CacheTTLSeconds) * time.Second
}
