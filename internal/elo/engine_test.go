//go:build integration

package elo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/models"
	"github.com/jfoessettjr/cbb-tracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the rating engine
// Run with: go test -v -tags=integration ./internal/elo/...

func setupTestDB(t *testing.T) (*repository.Database, context.Context) {
	ctx := context.Background()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "cbb_tracker_test",
		User:     "cbb_user",
		Password: "cbb_password",
		SSLMode:  "disable",
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.EnsureSchema(ctx), "Failed to ensure schema")

	_, err = db.Pool.Exec(ctx, `TRUNCATE team_ratings, games, teams RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to reset test tables")

	return db, ctx
}

func seedFinalGame(t *testing.T, db *repository.Database, ctx context.Context, providerGameID string, homeScore, awayScore int32, neutral bool) (int, int) {
	t.Helper()

	home := &models.Team{Provider: "espn", ProviderTeamID: "150", Name: "Duke Blue Devils"}
	away := &models.Team{Provider: "espn", ProviderTeamID: "153", Name: "North Carolina Tar Heels"}

	err := db.InTx(ctx, func(tx pgx.Tx) error {
		if err := db.Teams.UpsertTx(ctx, tx, home); err != nil {
			return err
		}
		if err := db.Teams.UpsertTx(ctx, tx, away); err != nil {
			return err
		}
		game := &models.Game{
			Provider:       "espn",
			ProviderGameID: providerGameID,
			StartTimeUTC:   sql.NullTime{Time: time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), Valid: true},
			DateKey:        "2026-02-11",
			HomeTeamID:     home.ID,
			AwayTeamID:     away.ID,
			HomeScore:      sql.NullInt32{Int32: homeScore, Valid: true},
			AwayScore:      sql.NullInt32{Int32: awayScore, Valid: true},
			Status:         models.StatusFinal,
			NeutralSite:    neutral,
		}
		return db.Games.UpsertTx(ctx, tx, game)
	})
	require.NoError(t, err, "Should seed final game")

	return home.ID, away.ID
}

func TestEngine_AppliesRatingsExactlyOnce(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer db.Close()

	homeID, awayID := seedFinalGame(t, db, ctx, "401700123", 80, 70, false)

	engine := NewEngine(db)
	result, err := engine.ApplyRatingsForFinalGames(ctx, "2026")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FinalGamesFound)
	assert.Equal(t, 1, result.RatingsApplied)

	// Both sides start at the baseline; home court makes the home side about a
	// 59% favorite, so the win moves each rating roughly 10.2 points.
	homeRating, err := db.Ratings.Get(ctx, homeID, "2026")
	require.NoError(t, err)
	require.NotNil(t, homeRating)
	assert.InDelta(t, 1510.19, homeRating.Elo, 0.05)
	assert.Equal(t, 1, homeRating.GamesPlayed)

	awayRating, err := db.Ratings.Get(ctx, awayID, "2026")
	require.NoError(t, err)
	require.NotNil(t, awayRating)
	assert.InDelta(t, 1489.81, awayRating.Elo, 0.05)
	assert.Equal(t, 1, awayRating.GamesPlayed)

	game, err := db.Games.GetByProviderID(ctx, "espn", "401700123")
	require.NoError(t, err)
	assert.True(t, game.RatingApplied)

	// Second scan finds nothing; ratings do not move again
	rerun, err := engine.ApplyRatingsForFinalGames(ctx, "2026")
	require.NoError(t, err)
	assert.Equal(t, 0, rerun.FinalGamesFound)
	assert.Equal(t, 0, rerun.RatingsApplied)

	homeAfter, err := db.Ratings.Get(ctx, homeID, "2026")
	require.NoError(t, err)
	assert.Equal(t, homeRating.Elo, homeAfter.Elo, "Rerun must not change ratings")
	assert.Equal(t, 1, homeAfter.GamesPlayed)
}

func TestEngine_NeutralSiteHasNoBonus(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer db.Close()

	homeID, awayID := seedFinalGame(t, db, ctx, "401700200", 75, 68, true)

	engine := NewEngine(db)
	_, err := engine.ApplyRatingsForFinalGames(ctx, "2026")
	require.NoError(t, err)

	// Even baseline ratings on a neutral floor: exactly K/2 each way
	homeRating, err := db.Ratings.Get(ctx, homeID, "2026")
	require.NoError(t, err)
	assert.InDelta(t, 1512.5, homeRating.Elo, 1e-6)

	awayRating, err := db.Ratings.Get(ctx, awayID, "2026")
	require.NoError(t, err)
	assert.InDelta(t, 1487.5, awayRating.Elo, 1e-6)
}

func TestEngine_SkipsFinalWithoutScores(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer db.Close()

	home := &models.Team{Provider: "espn", ProviderTeamID: "150", Name: "Duke Blue Devils"}
	away := &models.Team{Provider: "espn", ProviderTeamID: "153", Name: "North Carolina Tar Heels"}
	err := db.InTx(ctx, func(tx pgx.Tx) error {
		if err := db.Teams.UpsertTx(ctx, tx, home); err != nil {
			return err
		}
		if err := db.Teams.UpsertTx(ctx, tx, away); err != nil {
			return err
		}
		game := &models.Game{
			Provider:       "espn",
			ProviderGameID: "401700300",
			DateKey:        models.DateKeyUnknown,
			HomeTeamID:     home.ID,
			AwayTeamID:     away.ID,
			Status:         models.StatusFinal,
		}
		return db.Games.UpsertTx(ctx, tx, game)
	})
	require.NoError(t, err)

	engine := NewEngine(db)
	result, err := engine.ApplyRatingsForFinalGames(ctx, "2026")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FinalGamesFound)
	assert.Equal(t, 0, result.RatingsApplied, "Scoreless final stays pending")

	game, err := db.Games.GetByProviderID(ctx, "espn", "401700300")
	require.NoError(t, err)
	assert.False(t, game.RatingApplied, "Skipped game remains unapplied for a later scan")

	rating, err := db.Ratings.Get(ctx, home.ID, "2026")
	require.NoError(t, err)
	assert.Nil(t, rating, "No rating rows should be created for a skipped game")
}
