package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/metrics"
	"github.com/jfoessettjr/cbb-tracker/internal/models"
	"github.com/jfoessettjr/cbb-tracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Ingestor reconciles normalized scoreboard facts into the database.
// One Ingest call is one transaction: either the whole batch of team and game
// upserts commits, or none of it does.
type Ingestor struct {
	db       *repository.Database
	provider string
}

// NewIngestor creates an ingestor writing rows under the given provider label
func NewIngestor(db *repository.Database, provider string) *Ingestor {
	return &Ingestor{db: db, provider: provider}
}

// Result reports what one ingestion batch did
type Result struct {
	EventsSeen    int `json:"events_seen"`
	TeamsTouched  int `json:"teams_touched"`
	GamesUpserted int `json:"games_upserted"`
}

// Ingest normalizes a scoreboard payload and upserts teams and games.
// Team display names are last-write-wins; game rows are created with
// rating_applied=false and subsequent updates never touch that flag.
func (in *Ingestor) Ingest(ctx context.Context, payload *models.ScoreboardResponse) (Result, error) {
	start := time.Now()

	var result Result
	if payload != nil {
		result.EventsSeen = len(payload.Events)
	}

	facts := NormalizeScoreboard(payload)

	err := in.db.InTx(ctx, func(tx pgx.Tx) error {
		for _, fact := range facts {
			homeTeam := &models.Team{
				Provider:       in.provider,
				ProviderTeamID: fact.HomeTeam.ProviderTeamID,
				Name:           fact.HomeTeam.Name,
			}
			awayTeam := &models.Team{
				Provider:       in.provider,
				ProviderTeamID: fact.AwayTeam.ProviderTeamID,
				Name:           fact.AwayTeam.Name,
			}

			if err := in.db.Teams.UpsertTx(ctx, tx, homeTeam); err != nil {
				return fmt.Errorf("home team %s: %w", fact.HomeTeam.ProviderTeamID, err)
			}
			if err := in.db.Teams.UpsertTx(ctx, tx, awayTeam); err != nil {
				return fmt.Errorf("away team %s: %w", fact.AwayTeam.ProviderTeamID, err)
			}
			result.TeamsTouched += 2

			game := &models.Game{
				Provider:       in.provider,
				ProviderGameID: fact.ProviderGameID,
				StartTimeUTC:   fact.StartTimeUTC,
				DateKey:        fact.DateKey,
				HomeTeamID:     homeTeam.ID,
				AwayTeamID:     awayTeam.ID,
				HomeScore:      fact.HomeScore,
				AwayScore:      fact.AwayScore,
				Status:         fact.Status,
				NeutralSite:    fact.NeutralSite,
			}

			if err := in.db.Games.UpsertTx(ctx, tx, game); err != nil {
				return fmt.Errorf("game %s: %w", fact.ProviderGameID, err)
			}
			result.GamesUpserted++
		}
		return nil
	})

	skipped := result.EventsSeen - len(facts)
	if err != nil {
		metrics.RecordIngestBatch("failure", result.EventsSeen, skipped, 0)
		return Result{}, fmt.Errorf("ingest batch failed: %w", err)
	}

	metrics.RecordIngestBatch("success", result.EventsSeen, skipped, result.GamesUpserted)

	log.Info().
		Int("events_seen", result.EventsSeen).
		Int("events_skipped", skipped).
		Int("teams_touched", result.TeamsTouched).
		Int("games_upserted", result.GamesUpserted).
		Dur("duration", time.Since(start)).
		Msg("Scoreboard batch ingested")

	return result, nil
}
