package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for disparu-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis cache for resolved object names (optional)
	Redis RedisConfig `yaml:"redis"`

	// Name-resolution service configuration
	Resolver ResolverConfig `yaml:"resolver"`

	// Catalog behavior
	Catalog CatalogConfig `yaml:"catalog"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"disparu"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"disparu"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis cache configuration. An empty host disables the
// cache entirely.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// ResolverConfig holds configuration for the external object-name resolver
// backing astrocone searches.
type ResolverConfig struct {
	// BaseURL overrides the CDS Sesame endpoint (mainly for tests).
	BaseURL string `yaml:"base_url" env:"RESOLVER_BASE_URL" env-default:""`
	// TimeoutSeconds bounds every resolution request. Resolution failure
	// is never fatal for a query, but a slow resolver must not stall it.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"RESOLVER_TIMEOUT_SECONDS" env-default:"5"`
}

// Timeout returns the resolver request timeout as a duration.
func (r *ResolverConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CatalogConfig holds catalog behavior settings.
type CatalogConfig struct {
	// MatchRadiusArcsec is the candidate-to-source match tolerance.
	// The default is one ACS/WFC pixel.
	MatchRadiusArcsec float64 `yaml:"match_radius_arcsec" env:"MATCH_RADIUS_ARCSEC" env-default:"0.05"`
	// PageSize is the number of rows per page in catalog listings.
	PageSize int `yaml:"page_size" env:"CATALOG_PAGE_SIZE" env-default:"200"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
