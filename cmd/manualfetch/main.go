// Command manualfetch runs one ingest cycle by hand: fetch a scoreboard
// window, upsert its teams and games, and apply ratings to newly final games.
// Useful for backfilling a specific date range without running the worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/client"
	"github.com/jfoessettjr/cbb-tracker/internal/config"
	"github.com/jfoessettjr/cbb-tracker/internal/elo"
	"github.com/jfoessettjr/cbb-tracker/internal/ingest"
	"github.com/jfoessettjr/cbb-tracker/internal/repository"
	"github.com/jfoessettjr/cbb-tracker/internal/scheduler"

	"github.com/rs/zerolog/log"
)

func main() {
	dates := flag.String("dates", "", "scoreboard window, YYYYMMDD or YYYYMMDD-YYYYMMDD (default: yesterday-today)")
	skipRatings := flag.Bool("skip-ratings", false, "ingest only, do not apply ratings")
	flag.Parse()

	if *dates == "" {
		*dates = scheduler.DefaultDatesRange(time.Now().UTC())
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	espnClient := client.NewClient(cfg.ESPNBaseURL, cfg.ESPNTimeout)

	log.Info().Str("dates", *dates).Msg("Fetching scoreboard")
	payload, err := espnClient.FetchScoreboard(ctx, *dates)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch scoreboard")
	}

	ingestor := ingest.NewIngestor(db, cfg.Provider)
	ingestResult, err := ingestor.Ingest(ctx, payload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to ingest scoreboard")
	}
	log.Info().
		Int("events_seen", ingestResult.EventsSeen).
		Int("teams_touched", ingestResult.TeamsTouched).
		Int("games_upserted", ingestResult.GamesUpserted).
		Msg("Ingest complete")

	if *skipRatings {
		log.Info().Msg("Skipping rating application as requested")
		return
	}

	engine := elo.NewEngine(db)
	applyResult, err := engine.ApplyRatingsForFinalGames(ctx, cfg.Season)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply ratings")
	}
	log.Info().
		Int("final_games_found", applyResult.FinalGamesFound).
		Int("ratings_applied", applyResult.RatingsApplied).
		Msg("Manual fetch complete")
}
