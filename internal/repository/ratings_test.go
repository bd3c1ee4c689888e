//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingRepository_GetOrCreate(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	teamID, _ := seedTeams(t, db, ctx)

	err := db.InTx(ctx, func(tx pgx.Tx) error {
		// First call creates the rating at the baseline
		rating, err := db.Ratings.GetOrCreateTx(ctx, tx, teamID, "2026", 1500.0)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, rating.Elo)
		assert.Equal(t, 0, rating.GamesPlayed)
		require.NotZero(t, rating.ID)

		// Second call in the same transaction sees the created row
		again, err := db.Ratings.GetOrCreateTx(ctx, tx, teamID, "2026", 1500.0)
		require.NoError(t, err)
		assert.Equal(t, rating.ID, again.ID, "Should get the existing row, not create another")
		return nil
	})
	require.NoError(t, err)
}

func TestRatingRepository_SeasonsAreIndependent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	teamID, _ := seedTeams(t, db, ctx)

	err := db.InTx(ctx, func(tx pgx.Tx) error {
		r2026, err := db.Ratings.GetOrCreateTx(ctx, tx, teamID, "2026", 1500.0)
		require.NoError(t, err)

		r2027, err := db.Ratings.GetOrCreateTx(ctx, tx, teamID, "2027", 1500.0)
		require.NoError(t, err)

		assert.NotEqual(t, r2026.ID, r2027.ID, "Each season gets its own rating row")
		return nil
	})
	require.NoError(t, err)
}

func TestRatingRepository_Update(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	teamID, _ := seedTeams(t, db, ctx)

	var rating *models.TeamRating
	err := db.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		rating, err = db.Ratings.GetOrCreateTx(ctx, tx, teamID, "2026", 1500.0)
		if err != nil {
			return err
		}

		rating.Elo = 1512.5
		rating.GamesPlayed = 1
		rating.LastUpdatedUTC = time.Now().UTC()
		return db.Ratings.UpdateTx(ctx, tx, rating)
	})
	require.NoError(t, err)

	stored, err := db.Ratings.Get(ctx, teamID, "2026")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 1512.5, stored.Elo, 1e-9)
	assert.Equal(t, 1, stored.GamesPlayed)
}

func TestRatingRepository_GetMissing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	teamID, _ := seedTeams(t, db, ctx)

	// Missing rating is (nil, nil), not an error
	rating, err := db.Ratings.Get(ctx, teamID, "2026")
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestRatingRepository_ListBySeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	homeID, awayID := seedTeams(t, db, ctx)

	err := db.InTx(ctx, func(tx pgx.Tx) error {
		low, err := db.Ratings.GetOrCreateTx(ctx, tx, homeID, "2026", 1500.0)
		if err != nil {
			return err
		}
		low.Elo = 1480.0
		if err := db.Ratings.UpdateTx(ctx, tx, low); err != nil {
			return err
		}

		high, err := db.Ratings.GetOrCreateTx(ctx, tx, awayID, "2026", 1500.0)
		if err != nil {
			return err
		}
		high.Elo = 1620.0
		return db.Ratings.UpdateTx(ctx, tx, high)
	})
	require.NoError(t, err)

	ratings, err := db.Ratings.ListBySeason(ctx, "2026", 0)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, awayID, ratings[0].TeamID, "Best rating should be listed first")

	top, err := db.Ratings.ListBySeason(ctx, "2026", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.InDelta(t, 1620.0, top[0].Elo, 1e-9)
}
