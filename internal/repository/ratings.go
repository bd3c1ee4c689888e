package repository

import (
	"context"
	"fmt"

	"github.com/jfoessettjr/cbb-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RatingRepository handles team rating database operations
type RatingRepository struct {
	db *Database
}

// GetOrCreateTx fetches the rating row for (team, season), creating it at the
// baseline when absent. Create-on-miss is part of the contract: the insert is
// flushed immediately, so when both teams of a game are new, the second
// lookup in the same transaction sees a real row. baseline is supplied by the
// caller so the rating engine owns the constant.
func (r *RatingRepository) GetOrCreateTx(ctx context.Context, tx pgx.Tx, teamID int, season string, baseline float64) (*models.TeamRating, error) {
	query := `
		SELECT id, team_id, season, elo, games_played, last_updated_utc
		FROM team_ratings
		WHERE team_id = $1 AND season = $2
	`

	var rating models.TeamRating
	err := tx.QueryRow(ctx, query, teamID, season).Scan(
		&rating.ID, &rating.TeamID, &rating.Season,
		&rating.Elo, &rating.GamesPlayed, &rating.LastUpdatedUTC,
	)
	if err == nil {
		return &rating, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	insert := `
		INSERT INTO team_ratings (team_id, season, elo, games_played)
		VALUES ($1, $2, $3, 0)
		RETURNING id, team_id, season, elo, games_played, last_updated_utc
	`

	err = tx.QueryRow(ctx, insert, teamID, season, baseline).Scan(
		&rating.ID, &rating.TeamID, &rating.Season,
		&rating.Elo, &rating.GamesPlayed, &rating.LastUpdatedUTC,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	log.Debug().
		Int("team_id", teamID).
		Str("season", season).
		Msg("Rating created at baseline")

	return &rating, nil
}

// UpdateTx writes back a rating's mutable fields on the caller's transaction
func (r *RatingRepository) UpdateTx(ctx context.Context, tx pgx.Tx, rating *models.TeamRating) error {
	query := `
		UPDATE team_ratings
		SET elo = $1, games_played = $2, last_updated_utc = $3
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query,
		rating.Elo, rating.GamesPlayed, rating.LastUpdatedUTC, rating.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("rating not found: id=%d", rating.ID)
	}

	return nil
}

// Get retrieves the current rating for (team, season).
// Returns (nil, nil) when no rating exists yet; the prediction service
// interprets that as the baseline without creating a row.
func (r *RatingRepository) Get(ctx context.Context, teamID int, season string) (*models.TeamRating, error) {
	query := `
		SELECT id, team_id, season, elo, games_played, last_updated_utc
		FROM team_ratings
		WHERE team_id = $1 AND season = $2
	`

	var rating models.TeamRating
	err := r.db.Pool.QueryRow(ctx, query, teamID, season).Scan(
		&rating.ID, &rating.TeamID, &rating.Season,
		&rating.Elo, &rating.GamesPlayed, &rating.LastUpdatedUTC,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return &rating, nil
}

// ListBySeason retrieves ratings for a season ordered best-first.
// limit <= 0 returns all rows.
func (r *RatingRepository) ListBySeason(ctx context.Context, season string, limit int) ([]*models.TeamRating, error) {
	query := `
		SELECT id, team_id, season, elo, games_played, last_updated_utc
		FROM team_ratings
		WHERE season = $1
		ORDER BY elo DESC
	`
	args := []interface{}{season}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.TeamRating
	for rows.Next() {
		var rating models.TeamRating
		err := rows.Scan(
			&rating.ID, &rating.TeamID, &rating.Season,
			&rating.Elo, &rating.GamesPlayed, &rating.LastUpdatedUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return ratings, nil
}
