package models

import (
	"database/sql"
	"time"
)

// Game lifecycle statuses.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
)

// DateKeyUnknown is the date_key sentinel for games whose provider omitted a
// parseable start time.
const DateKeyUnknown = "unknown"

// Game represents a college basketball game.
// Identity is (provider, provider_game_id). Scores and start time are nullable
// because the provider omits them until the game begins. RatingApplied is
// monotonic: ingestion updates never touch it, only the rating engine sets it.
type Game struct {
	ID             int           `db:"id"`
	Provider       string        `db:"provider"`
	ProviderGameID string        `db:"provider_game_id"`
	StartTimeUTC   sql.NullTime  `db:"start_time_utc"`
	DateKey        string        `db:"date_key"`
	HomeTeamID     int           `db:"home_team_id"`
	AwayTeamID     int           `db:"away_team_id"`
	HomeScore      sql.NullInt32 `db:"home_score"`
	AwayScore      sql.NullInt32 `db:"away_score"`
	Status         string        `db:"status"`
	NeutralSite    bool          `db:"neutral_site"`
	RatingApplied  bool          `db:"rating_applied"`
	IngestedAt     time.Time     `db:"ingested_at_utc"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// IsFinal returns true if the game is completed.
func (g *Game) IsFinal() bool {
	return g.Status == StatusFinal
}

// IsActive returns true if the game is currently in progress.
func (g *Game) IsActive() bool {
	return g.Status == StatusInProgress
}

// HasScores returns true if both final scores are present.
func (g *Game) HasScores() bool {
	return g.HomeScore.Valid && g.AwayScore.Valid
}
