package models

import (
	"time"
)

// Team represents a college basketball team as seen from a provider feed.
// Identity is (provider, provider_team_id); the surrogate ID is assigned by
// the database on first sighting and never changes afterwards.
type Team struct {
	ID             int       `db:"id"`
	Provider       string    `db:"provider"`
	ProviderTeamID string    `db:"provider_team_id"`
	Name           string    `db:"name"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
