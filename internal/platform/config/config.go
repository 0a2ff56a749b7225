// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
read first when present, so development setups do not need exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, reference data) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/osg-htc/institutions/internal/platform/constants"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the institutions API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8089"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the institution store ("postgres" or "memory").
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Empty disables the list cache.
	RedisURL     string        `env:"REDIS_URL"`
	ListCacheTTL time.Duration `env:"LIST_CACHE_TTL" envDefault:"5m"`

	// Reference datasets: local paths or s3://bucket/key locations.
	IPEDSDataLocation        string `env:"IPEDS_DATA_LOCATION"         envDefault:"./data/reference/hd2023.csv"`
	Carnegie2021DataLocation string `env:"CARNEGIE_2021_DATA_LOCATION" envDefault:"./data/reference/CCIHE2021-PublicData.xlsx"`
	Carnegie2025DataLocation string `env:"CARNEGIE_2025_DATA_LOCATION" envDefault:"./data/reference/2025-RAD-Public-Data-File.xlsx"`

	// Object Storage (S3-compatible) used for s3:// reference locations
	S3Region    string `env:"S3_REGION"     envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`

	// Public identifier policy
	PublicIDLength      int `env:"PUBLIC_ID_LENGTH"       envDefault:"12"`
	PublicIDMaxAttempts int `env:"PUBLIC_ID_MAX_ATTEMPTS" envDefault:"1000"`

	// AuthorHeader names the trusted proxy header carrying the authenticated subject.
	AuthorHeader string `env:"OIDC_SUBJECT_HEADER" envDefault:"oidc_claim_osgid"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Variables already present in the environment win over the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment into a [Config] and validates it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.PublicIDLength < constants.MinPublicIDLength {
		return fmt.Errorf("config: PUBLIC_ID_LENGTH must be at least %d", constants.MinPublicIDLength)
	}
	if c.PublicIDMaxAttempts < 1 {
		return errors.New("config: PUBLIC_ID_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UsesPostgres reports whether the PostgreSQL store is selected.
func (c *Config) UsesPostgres() bool {
	return c.StoreDriver == StoreDriverPostgres
}
