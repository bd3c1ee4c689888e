package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// ESPN scoreboard API
	ESPNBaseURL string        `envconfig:"ESPN_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"`
	ESPNTimeout time.Duration `envconfig:"ESPN_TIMEOUT" default:"20s"`

	// Provider label stored on ingested rows
	Provider string `envconfig:"PROVIDER" default:"espn"`

	// Season label for rating application, e.g. "2026".
	// Empty means "derive from the current date" (season flips in May).
	Season string `envconfig:"SEASON" default:""`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"cbb_tracker"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"cbb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	NightlyRefreshCron string `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`
	ScoreboardPollSecs int    `envconfig:"SCOREBOARD_POLL_INTERVAL" default:"60"`

	// Caching TTL (in seconds)
	CacheTTLPredictions int `envconfig:"CACHE_TTL_PREDICTIONS" default:"600"` // 10 minutes

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if cfg.Season == "" {
		cfg.Season = currentSeason(time.Now())
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.ScoreboardPollSecs <= 0 {
		return fmt.Errorf("SCOREBOARD_POLL_INTERVAL must be positive")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PredictionTTL returns the prediction cache TTL as a duration
func (c *Config) PredictionTTL() time.Duration {
	return time.Duration(c.CacheTTLPredictions) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// currentSeason labels the season by the year it ends in: November tipoff
// through April belong to the following calendar year's label.
func currentSeason(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.May {
		year++
	}
	return fmt.Sprintf("%d", year)
}
