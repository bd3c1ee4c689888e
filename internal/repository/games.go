package repository

import (
	"context"
	"fmt"

	"github.com/jfoessettjr/cbb-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `id, provider, provider_game_id, start_time_utc, date_key,
	       home_team_id, away_team_id, home_score, away_score,
	       status, neutral_site, rating_applied, ingested_at_utc, updated_at`

// UpsertTx inserts a game or updates all mutable fields of an existing one.
// rating_applied is deliberately absent from the DO UPDATE list: once the
// rating engine has marked a game applied, re-ingesting the same game (for
// example when re-fetching a date range that includes it) must not clear the
// flag. The caller's game struct is refreshed with the stored flag value.
func (r *GameRepository) UpsertTx(ctx context.Context, tx pgx.Tx, game *models.Game) error {
	query := `
		INSERT INTO games (
			provider, provider_game_id, start_time_utc, date_key,
			home_team_id, away_team_id, home_score, away_score,
			status, neutral_site, rating_applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		ON CONFLICT (provider, provider_game_id) DO UPDATE SET
			start_time_utc = EXCLUDED.start_time_utc,
			date_key = EXCLUDED.date_key,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			neutral_site = EXCLUDED.neutral_site,
			updated_at = NOW()
		RETURNING id, rating_applied, ingested_at_utc, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		game.Provider, game.ProviderGameID, game.StartTimeUTC, game.DateKey,
		game.HomeTeamID, game.AwayTeamID, game.HomeScore, game.AwayScore,
		game.Status, game.NeutralSite,
	).Scan(&game.ID, &game.RatingApplied, &game.IngestedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetByProviderID retrieves a game by its provider-assigned identifier
func (r *GameRepository) GetByProviderID(ctx context.Context, provider, providerGameID string) (*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM games
		WHERE provider = $1 AND provider_game_id = $2
	`, gameColumns)

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, provider, providerGameID).Scan(
		&game.ID, &game.Provider, &game.ProviderGameID, &game.StartTimeUTC, &game.DateKey,
		&game.HomeTeamID, &game.AwayTeamID, &game.HomeScore, &game.AwayScore,
		&game.Status, &game.NeutralSite, &game.RatingApplied, &game.IngestedAt, &game.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: provider=%s provider_game_id=%s", provider, providerGameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// ListUnratedFinalTx retrieves the games whose ratings have not been applied
// yet, on the caller's transaction so the scan and the updates it drives
// commit as one batch.
func (r *GameRepository) ListUnratedFinalTx(ctx context.Context, tx pgx.Tx) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM games
		WHERE status = $1 AND rating_applied = FALSE
		ORDER BY start_time_utc NULLS LAST, id
	`, gameColumns)

	rows, err := tx.Query(ctx, query, models.StatusFinal)
	if err != nil {
		return nil, fmt.Errorf("failed to list unrated final games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.ID, &game.Provider, &game.ProviderGameID, &game.StartTimeUTC, &game.DateKey,
			&game.HomeTeamID, &game.AwayTeamID, &game.HomeScore, &game.AwayScore,
			&game.Status, &game.NeutralSite, &game.RatingApplied, &game.IngestedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	log.Debug().Int("count", len(games)).Msg("Retrieved unrated final games")
	return games, nil
}

// MarkRatingAppliedTx flips rating_applied to true for a game. The transition
// is one-way; nothing in the codebase writes it back to false.
func (r *GameRepository) MarkRatingAppliedTx(ctx context.Context, tx pgx.Tx, gameID int) error {
	query := `
		UPDATE games
		SET rating_applied = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, gameID)
	if err != nil {
		return fmt.Errorf("failed to mark rating applied: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game not found: id=%d", gameID)
	}

	return nil
}

// ListByDateKey retrieves games for a UTC calendar date, newest first
func (r *GameRepository) ListByDateKey(ctx context.Context, dateKey string) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM games
		WHERE date_key = $1
		ORDER BY start_time_utc DESC NULLS LAST
	`, gameColumns)

	rows, err := r.db.Pool.Query(ctx, query, dateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by date: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.ID, &game.Provider, &game.ProviderGameID, &game.StartTimeUTC, &game.DateKey,
			&game.HomeTeamID, &game.AwayTeamID, &game.HomeScore, &game.AwayScore,
			&game.Status, &game.NeutralSite, &game.RatingApplied, &game.IngestedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// CountByStatus returns the number of games in a given lifecycle status
func (r *GameRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	query := `SELECT COUNT(*) FROM games WHERE status = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games by status: %w", err)
	}

	return count, nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
