// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
merged into the process environment first when one exists.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Stripe) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the GalleManga API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) backing the cookie sessions
	RedisURL string `env:"REDIS_URL,required"`

	// Session signing and cookie settings
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"168h"`
	CookieSecure  bool          `env:"COOKIE_SECURE"   envDefault:"false"`

	// PublicBaseURL is the externally reachable origin used in checkout redirects.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Local upload storage
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"./public/uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"52428800"`

	// Payment provider (Stripe hosted checkout)
	StripeSecretKey  string `env:"STRIPE_SECRET_KEY,required"`
	CheckoutCurrency string `env:"CHECKOUT_CURRENCY" envDefault:"usd"`

	// Reconciliation of abandoned checkouts. An empty schedule disables the job.
	ReconcileSchedule string        `env:"RECONCILE_SCHEDULE" envDefault:"@every 5m"`
	ReconcileMinAge   time.Duration `env:"RECONCILE_MIN_AGE"  envDefault:"10m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load merges an optional .env file into the environment and parses it into a [Config].
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("config: UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the public origin plus any comma-separated EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.PublicBaseURL}
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, strings.TrimRight(origin, "/"))
		}
	}
	return origins
}
