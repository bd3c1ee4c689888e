package ingest

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/models"
)

// Timestamp layouts the provider has been observed to send. The scoreboard
// feed usually omits seconds ("2026-02-11T00:00Z") but full RFC 3339 shows up
// on some events.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// NormalizeScoreboard turns a raw scoreboard payload into validated game
// facts. Malformed events (missing game id, competitions, home/away
// competitors, or team id/name) are skipped, never abort the batch; callers
// compare len(payload.Events) against the returned slice for the skip count.
func NormalizeScoreboard(payload *models.ScoreboardResponse) []models.NormalizedEvent {
	if payload == nil {
		return nil
	}

	facts := make([]models.NormalizedEvent, 0, len(payload.Events))
	for _, ev := range payload.Events {
		providerGameID := strings.TrimSpace(ev.ID)
		if providerGameID == "" {
			continue
		}

		startTime := parseStartTime(ev.Date)
		dateKey := models.DateKeyUnknown
		if startTime.Valid {
			dateKey = startTime.Time.UTC().Format("2006-01-02")
		}

		status := statusFromEvent(&ev)

		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]

		home := findCompetitor(comp.Competitors, "home")
		away := findCompetitor(comp.Competitors, "away")
		if home == nil || away == nil {
			continue
		}

		homeFact, ok := teamFact(home)
		if !ok {
			continue
		}
		awayFact, ok := teamFact(away)
		if !ok {
			continue
		}

		facts = append(facts, models.NormalizedEvent{
			ProviderGameID: providerGameID,
			StartTimeUTC:   startTime,
			DateKey:        dateKey,
			NeutralSite:    comp.NeutralSite,
			HomeTeam:       homeFact,
			AwayTeam:       awayFact,
			HomeScore:      safeInt(home.Score),
			AwayScore:      safeInt(away.Score),
			Status:         status,
		})
	}

	return facts
}

// parseStartTime parses a provider timestamp, treating a trailing Z as UTC.
// Absent or unparseable input yields a null time rather than an error.
func parseStartTime(raw string) sql.NullTime {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}
	}

	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return sql.NullTime{Time: t.UTC(), Valid: true}
		}
	}
	return sql.NullTime{}
}

// statusFromEvent maps the nested provider status name onto the game
// lifecycle. The match is substring-based on purpose: the provider sends
// variants like "STATUS_FINAL" and "STATUS_HALFTIME", and only the FINAL and
// IN_PROGRESS markers matter; everything else, including a missing status
// record, is scheduled.
func statusFromEvent(ev *models.ScoreboardEvent) string {
	name := ev.Status.Type.Name
	if strings.Contains(name, "FINAL") {
		return models.StatusFinal
	}
	if strings.Contains(name, "IN_PROGRESS") {
		return models.StatusInProgress
	}
	return models.StatusScheduled
}

// findCompetitor returns the competitor carrying the given home/away role tag
func findCompetitor(competitors []models.Competitor, role string) *models.Competitor {
	for i := range competitors {
		if competitors[i].HomeAway == role {
			return &competitors[i]
		}
	}
	return nil
}

// teamFact extracts the team identity of a competitor; ok is false when the
// provider id or every name field is blank.
func teamFact(c *models.Competitor) (models.TeamFact, bool) {
	id := strings.TrimSpace(c.Team.ID)

	name := strings.TrimSpace(c.Team.DisplayName)
	if name == "" {
		name = strings.TrimSpace(c.Team.Name)
	}

	if id == "" || name == "" {
		return models.TeamFact{}, false
	}
	return models.TeamFact{ProviderTeamID: id, Name: name}, true
}

// safeInt converts a raw score string to a nullable int; any parse failure
// yields null rather than an error.
func safeInt(raw string) sql.NullInt32 {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}
