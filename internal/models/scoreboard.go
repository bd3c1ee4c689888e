package models

import (
	"database/sql"
)

// ScoreboardResponse is the top-level ESPN scoreboard payload.
// Only the fields the ingestion pipeline relies on are declared; everything
// else in the feed is ignored by the decoder.
type ScoreboardResponse struct {
	Events []ScoreboardEvent `json:"events"`
}

// ScoreboardEvent is one event (game) record from the scoreboard feed.
type ScoreboardEvent struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"` // ISO 8601, often "2026-02-11T00:00Z"
	Competitions []Competition `json:"competitions"`
	Status       EventStatus   `json:"status"`
}

// Competition holds the competitors for an event. ESPN nests exactly one
// competition per scoreboard event.
type Competition struct {
	NeutralSite bool         `json:"neutralSite"`
	Competitors []Competitor `json:"competitors"`
}

// Competitor is one side of a competition, tagged home or away.
type Competitor struct {
	HomeAway string         `json:"homeAway"`
	Score    string         `json:"score"`
	Team     CompetitorTeam `json:"team"`
}

// CompetitorTeam is the nested team sub-record of a competitor.
type CompetitorTeam struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
}

// EventStatus wraps the nested status type of an event.
type EventStatus struct {
	Type StatusType `json:"type"`
}

// StatusType carries the provider status name, e.g. "STATUS_FINAL".
type StatusType struct {
	Name string `json:"name"`
}

// TeamFact identifies one side of a normalized event.
type TeamFact struct {
	ProviderTeamID string
	Name           string
}

// NormalizedEvent is one validated, provider-agnostic game fact produced by
// the ingestion normalizer from a raw scoreboard event.
type NormalizedEvent struct {
	ProviderGameID string
	StartTimeUTC   sql.NullTime
	DateKey        string
	NeutralSite    bool
	HomeTeam       TeamFact
	AwayTeam       TeamFact
	HomeScore      sql.NullInt32
	AwayScore      sql.NullInt32
	Status         string
}
