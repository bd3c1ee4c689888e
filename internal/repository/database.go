package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Teams   *TeamRepository
	Games   *GameRepository
	Ratings *RatingRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	// Configure connection pool
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Create connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	// Initialize database with repositories
	db := &Database{
		Pool: pool,
	}

	// Initialize repositories
	db.Teams = &TeamRepository{db: db}
	db.Games = &GameRepository{db: db}
	db.Ratings = &RatingRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// InTx runs fn inside a single transaction. A nil error commits; any error
// rolls the whole batch back so no partial state is visible.
func (db *Database) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables and uniqueness constraints the service
// relies on. The unique indexes on (provider, provider_team_id) and
// (provider, provider_game_id) are load-bearing for idempotent upserts.
func (db *Database) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id SERIAL PRIMARY KEY,
			provider TEXT NOT NULL,
			provider_team_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_team_provider_id UNIQUE (provider, provider_team_id)
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id SERIAL PRIMARY KEY,
			provider TEXT NOT NULL,
			provider_game_id TEXT NOT NULL,
			start_time_utc TIMESTAMPTZ,
			date_key TEXT NOT NULL,
			home_team_id INTEGER NOT NULL REFERENCES teams(id),
			away_team_id INTEGER NOT NULL REFERENCES teams(id),
			home_score INTEGER,
			away_score INTEGER,
			status TEXT NOT NULL DEFAULT 'scheduled',
			neutral_site BOOLEAN NOT NULL DEFAULT FALSE,
			rating_applied BOOLEAN NOT NULL DEFAULT FALSE,
			ingested_at_utc TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_game_provider_id UNIQUE (provider, provider_game_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_status_rating ON games (status, rating_applied)`,
		`CREATE INDEX IF NOT EXISTS idx_games_date_key ON games (date_key)`,
		`CREATE TABLE IF NOT EXISTS team_ratings (
			id SERIAL PRIMARY KEY,
			team_id INTEGER NOT NULL REFERENCES teams(id),
			season TEXT NOT NULL,
			elo DOUBLE PRECISION NOT NULL DEFAULT 1500.0,
			games_played INTEGER NOT NULL DEFAULT 0,
			last_updated_utc TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_rating_team_season UNIQUE (team_id, season)
		)`,
	}

	for _, stmt := range ddl {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
