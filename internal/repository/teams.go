package repository

import (
	"context"
	"fmt"

	"github.com/jfoessettjr/cbb-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// UpsertTx inserts a team or, if (provider, provider_team_id) already exists,
// updates its display name last-write-wins. Runs on the caller's transaction
// so a whole ingestion batch commits atomically.
func (r *TeamRepository) UpsertTx(ctx context.Context, tx pgx.Tx, team *models.Team) error {
	query := `
		INSERT INTO teams (provider, provider_team_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_team_id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		team.Provider, team.ProviderTeamID, team.Name,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Str("provider_team_id", team.ProviderTeamID).
		Str("name", team.Name).
		Msg("Team upserted")

	return nil
}

// GetByID retrieves a team by its database ID
func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, provider, provider_team_id, name, created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Provider, &team.ProviderTeamID, &team.Name,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByProviderID retrieves a team by its provider-assigned identifier
func (r *TeamRepository) GetByProviderID(ctx context.Context, provider, providerTeamID string) (*models.Team, error) {
	query := `
		SELECT id, provider, provider_team_id, name, created_at, updated_at
		FROM teams
		WHERE provider = $1 AND provider_team_id = $2
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, provider, providerTeamID).Scan(
		&team.ID, &team.Provider, &team.ProviderTeamID, &team.Name,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: provider=%s provider_team_id=%s", provider, providerTeamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams ordered by name
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, provider, provider_team_id, name, created_at, updated_at
		FROM teams
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.Provider, &team.ProviderTeamID, &team.Name,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
