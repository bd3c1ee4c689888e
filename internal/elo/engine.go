package elo

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

// Engine applies rating updates to final games that have not been rated yet.
// One ApplyRatingsForFinalGames call is one transaction; the scan, every
// rating write, and every rating_applied flip commit together or not at all.
type Engine struct {
	db *repository.Database
}

// NewEngine creates a rating engine backed by the database
func NewEngine(db *repository.Database) *Engine {
	return &Engine{db: db}
}

// ApplyResult reports what one rating application scan did.
// RatingsApplied can be lower than FinalGamesFound when final games are still
// missing a score; those stay pending for a later scan.
type ApplyResult struct {
	FinalGamesFound int `json:"final_games_found"`
	RatingsApplied  int `json:"ratings_applied"`
}

// ApplyRatingsForFinalGames scans games with status=final and
// rating_applied=false, updates both teams' ratings for the given season,
// and marks each rated game applied. The transition to applied is one-way:
// nothing resets the flag, so a game is rated at most once ever.
func (e *Engine) ApplyRatingsForFinalGames(ctx context.Context, season string) (ApplyResult, error) {
	start := time.Now()

	var result ApplyResult
	err := e.db.InTx(ctx, func(tx pgx.Tx) error {
		games, err := e.db.Games.ListUnratedFinalTx(ctx, tx)
		if err != nil {
			return err
		}
		result.FinalGamesFound = len(games)

		now := time.Now().UTC()
		for _, game := range games {
			// Final without both scores: leave pending, not an error.
			if !game.HasScores() {
				log.Warn().
					Str("provider_game_id", game.ProviderGameID).
					Msg("Final game missing scores, skipping rating")
				continue
			}

			// A game row referencing a missing team violates the foreign-key
			// invariant ingestion guarantees; the error aborts the batch.
			home, err := e.db.Ratings.GetOrCreateTx(ctx, tx, game.HomeTeamID, season, DefaultElo)
			if err != nil {
				return fmt.Errorf("home rating for game %s: %w", game.ProviderGameID, err)
			}
			away, err := e.db.Ratings.GetOrCreateTx(ctx, tx, game.AwayTeamID, season, DefaultElo)
			if err != nil {
				return fmt.Errorf("away rating for game %s: %w", game.ProviderGameID, err)
			}

			applyGame(home, away, game, now)

			if err := e.db.Ratings.UpdateTx(ctx, tx, home); err != nil {
				return fmt.Errorf("update home rating for game %s: %w", game.ProviderGameID, err)
			}
			if err := e.db.Ratings.UpdateTx(ctx, tx, away); err != nil {
				return fmt.Errorf("update away rating for game %s: %w", game.ProviderGameID, err)
			}
			if err := e.db.Games.MarkRatingAppliedTx(ctx, tx, game.ID); err != nil {
				return fmt.Errorf("mark game %s applied: %w", game.ProviderGameID, err)
			}
			result.RatingsApplied++
		}
		return nil
	})

	if err != nil {
		metrics.RecordError("elo", "apply_batch")
		return ApplyResult{}, fmt.Errorf("rating application failed: %w", err)
	}

	metrics.RecordRatingsApplied(result.FinalGamesFound, result.RatingsApplied)

	log.Info().
		Str("season", season).
		Int("final_games_found", result.FinalGamesFound).
		Int("ratings_applied", result.RatingsApplied).
		Dur("duration", time.Since(start)).
		Msg("Rating application complete")

	return result, nil
}

// applyGame computes and applies both sides' rating updates in place.
// Each side uses its own K, chosen from its own pre-update games-played
// count, applied to its own actual-minus-expected term; with different
// experience tiers the two deltas do not cancel exactly, which is intended.
func applyGame(home, away *models.TeamRating, game *models.Game, now time.Time) {
	outcomeHome := Outcome(int(game.HomeScore.Int32), int(game.AwayScore.Int32))

	bonus := HomeAdvantage
	if game.NeutralSite {
		bonus = 0.0
	}

	expectedHome := ExpectedScore(home.Elo+bonus, away.Elo)
	expectedAway := 1.0 - expectedHome

	kHome := KFactor(home.GamesPlayed)
	kAway := KFactor(away.GamesPlayed)

	home.Elo += kHome * (outcomeHome - expectedHome)
	away.Elo += kAway * ((1.0 - outcomeHome) - expectedAway)

	home.GamesPlayed++
	away.GamesPlayed++
	home.LastUpdatedUTC = now
	away.LastUpdatedUTC = now
}
