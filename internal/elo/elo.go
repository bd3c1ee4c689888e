// Package elo implements the logistic rating model: win expectancy, the
// experience-tiered K factor, and the engine that applies both to final games.
package elo

import (
	"math"
)

const (
	// DefaultElo is the baseline rating for a team's first game of a season.
	DefaultElo = 1500.0

	// KBase is the step size for a mid-season team.
	KBase = 20.0

	// HomeAdvantage is the rating bonus added to the home side before
	// computing expectancy, unless the game is at a neutral site.
	HomeAdvantage = 65.0
)

// ExpectedScore returns side A's win expectancy against side B on the
// standard logistic curve. ExpectedScore(a,b) + ExpectedScore(b,a) == 1.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (ratingB-ratingA)/400.0))
}

// KFactor scales the update step by how many rating-affecting games the team
// has already played this season: volatile early, stabilized late.
func KFactor(gamesPlayed int) float64 {
	if gamesPlayed < 10 {
		return KBase * 1.25
	}
	if gamesPlayed < 25 {
		return KBase
	}
	return KBase * 0.85
}

// Outcome returns the home side's actual score for the update: 1 for a win,
// 0 for a loss, 0.5 for a tie. Ties are nearly impossible in this sport but
// are handled rather than rejected.
func Outcome(homeScore, awayScore int) float64 {
	switch {
	case homeScore > awayScore:
		return 1.0
	case homeScore < awayScore:
		return 0.0
	default:
		return 0.5
	}
}
