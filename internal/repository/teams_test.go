//go:build integration

package repository

import (
	"testing"

	"github.com/jfoessettjr/cbb-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_UpsertTx(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{
		Provider:       "espn",
		ProviderTeamID: "150",
		Name:           "Duke Blue Devils",
	}

	// Insert new team
	err := db.InTx(ctx, func(tx pgx.Tx) error {
		return db.Teams.UpsertTx(ctx, tx, team)
	})
	require.NoError(t, err, "Should successfully insert team")
	require.NotZero(t, team.ID, "Upsert should populate the database ID")

	// Verify team was created
	retrieved, err := db.Teams.GetByProviderID(ctx, "espn", "150")
	require.NoError(t, err, "Should retrieve inserted team")
	assert.Equal(t, team.ID, retrieved.ID)
	assert.Equal(t, "Duke Blue Devils", retrieved.Name)

	// Re-upsert with a changed name: same row, name last-write-wins
	team2 := &models.Team{
		Provider:       "espn",
		ProviderTeamID: "150",
		Name:           "Duke",
	}
	err = db.InTx(ctx, func(tx pgx.Tx) error {
		return db.Teams.UpsertTx(ctx, tx, team2)
	})
	require.NoError(t, err, "Should successfully update team")
	assert.Equal(t, team.ID, team2.ID, "Re-upsert must not create a second row")

	updated, err := db.Teams.GetByProviderID(ctx, "espn", "150")
	require.NoError(t, err)
	assert.Equal(t, "Duke", updated.Name, "Name should be updated")

	count, err := db.Teams.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Should still have exactly one team")
}

func TestTeamRepository_DistinctProviders(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// The same provider_team_id under different providers is two teams
	err := db.InTx(ctx, func(tx pgx.Tx) error {
		if err := db.Teams.UpsertTx(ctx, tx, &models.Team{Provider: "espn", ProviderTeamID: "99", Name: "Kansas Jayhawks"}); err != nil {
			return err
		}
		return db.Teams.UpsertTx(ctx, tx, &models.Team{Provider: "other", ProviderTeamID: "99", Name: "Kansas"})
	})
	require.NoError(t, err)

	count, err := db.Teams.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTeamRepository_List(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	names := []string{"Gonzaga Bulldogs", "Arizona Wildcats", "Purdue Boilermakers"}
	err := db.InTx(ctx, func(tx pgx.Tx) error {
		for i, name := range names {
			team := &models.Team{Provider: "espn", ProviderTeamID: string(rune('a' + i)), Name: name}
			if err := db.Teams.UpsertTx(ctx, tx, team); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	teams, err := db.Teams.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, "Arizona Wildcats", teams[0].Name, "List should be ordered by name")
}

func TestTeamRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Teams.GetByID(ctx, 99999)
	assert.Error(t, err, "Should return error for non-existent team")

	_, err = db.Teams.GetByProviderID(ctx, "espn", "nope")
	assert.Error(t, err, "Should return error for non-existent provider id")
}
