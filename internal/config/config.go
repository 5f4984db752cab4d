// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"helpnest/internal/sitemap"
)

// Event backends accepted by EVENTS_BACKEND.
const (
	EventsValkey = "valkey"
	EventsNATS   = "nats"
	EventsNone   = "none"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache and Pub/Sub)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Sitemap generation
	SiteBaseURL         string
	SitemapCapacity     int
	SitemapDebounce     time.Duration
	SitemapMaxDelay     time.Duration
	SitemapMinInterval  time.Duration
	SitemapSchedule     time.Duration // 0 disables periodic regeneration
	SitemapFetchTimeout time.Duration
	SitemapTiersFile    string

	// Change notifications
	EventsBackend string
	EventsChannel string
	NATSURL       string

	// bcrypt hash of the operator token; empty disables the admin routes
	AdminTokenHash string

	// S3-compatible publishing target, optional
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Prefix    string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first when present; real environment variables win over it.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "helpnest"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "helpnest"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		SiteBaseURL:      envOrDefault("SITE_BASE_URL", "http://localhost:8080"),
		SitemapTiersFile: os.Getenv("SITEMAP_TIERS_FILE"),

		EventsBackend: envOrDefault("EVENTS_BACKEND", EventsValkey),
		EventsChannel: envOrDefault("EVENTS_CHANNEL", "helpnest.catalog.changed"),
		NATSURL:       envOrDefault("NATS_URL", "nats://localhost:4222"),

		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "helpnest-public"),
		S3Prefix:    os.Getenv("S3_PREFIX"),
	}

	var err error
	if cfg.SitemapCapacity, err = envInt("SITEMAP_CAPACITY", sitemap.DefaultCapacity); err != nil {
		return nil, err
	}
	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SITEMAP_DEBOUNCE", 5 * time.Second, &cfg.SitemapDebounce},
		{"SITEMAP_MAX_DELAY", time.Minute, &cfg.SitemapMaxDelay},
		{"SITEMAP_MIN_INTERVAL", 10 * time.Second, &cfg.SitemapMinInterval},
		{"SITEMAP_SCHEDULE", 6 * time.Hour, &cfg.SitemapSchedule},
		{"SITEMAP_FETCH_TIMEOUT", sitemap.DefaultFetchTimeout, &cfg.SitemapFetchTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = envDuration(d.key, d.fallback); err != nil {
			return nil, err
		}
	}

	if err := sitemap.CheckCapacity(cfg.SitemapCapacity); err != nil {
		return nil, fmt.Errorf("SITEMAP_CAPACITY: %w", err)
	}
	if cfg.SitemapMaxDelay < cfg.SitemapDebounce {
		return nil, fmt.Errorf("SITEMAP_MAX_DELAY (%s) must not be shorter than SITEMAP_DEBOUNCE (%s)",
			cfg.SitemapMaxDelay, cfg.SitemapDebounce)
	}
	switch cfg.EventsBackend {
	case EventsValkey, EventsNATS, EventsNone:
	default:
		return nil, fmt.Errorf("EVENTS_BACKEND must be one of valkey, nats, none; got %q", cfg.EventsBackend)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if !absoluteHTTP(cfg.SiteBaseURL) {
			return nil, fmt.Errorf("SITE_BASE_URL must be an absolute http(s) URL in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return c.ValkeyHost + ":" + c.ValkeyPort
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Enabled reports whether rendered documents should be published to S3.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// SitemapConfig returns the generator configuration, including the tier
// table override when SITEMAP_TIERS_FILE is set.
func (c *Config) SitemapConfig() (sitemap.Config, error) {
	tiers, err := LoadTierTable(c.SitemapTiersFile)
	if err != nil {
		return sitemap.Config{}, err
	}
	return sitemap.Config{
		BaseURL:      c.SiteBaseURL,
		Capacity:     c.SitemapCapacity,
		Tiers:        tiers,
		FetchTimeout: c.SitemapFetchTimeout,
	}, nil
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

// envDuration accepts Go duration strings ("90s", "6h") and bare integers,
// which are read as seconds.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if n, aerr := strconv.Atoi(v); aerr == nil {
		d, err = time.Duration(n)*time.Second, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must not be negative", key)
	}
	return d, nil
}
