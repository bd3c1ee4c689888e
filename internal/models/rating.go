package models

import (
	"time"
)

// TeamRating holds a team's current Elo rating for one season.
// Identity is (team_id, season). Rows are created lazily at the baseline
// rating the first time the rating engine touches a (team, season) pair, and
// are mutated only by the rating engine.
type TeamRating struct {
	ID             int       `db:"id"`
	TeamID         int       `db:"team_id"`
	Season         string    `db:"season"`
	Elo            float64   `db:"elo"`
	GamesPlayed    int       `db:"games_played"`
	LastUpdatedUTC time.Time `db:"last_updated_utc"`
}
