// Package predict serves win probabilities from the current rating table.
// Predictions are pure reads; they never create or modify ratings.
package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/cache"
	"github.com/jfoessettjr/cbb-tracker/internal/elo"
	"github.com/jfoessettjr/cbb-tracker/internal/metrics"
	"github.com/jfoessettjr/cbb-tracker/internal/repository"

	"github.com/rs/zerolog/log"
)

// Service computes win probabilities for hypothetical matchups
type Service struct {
	db       *repository.Database
	cache    *cache.RedisCache
	cacheTTL time.Duration
}

// NewService creates a prediction service; cache may be nil to disable caching
func NewService(db *repository.Database, redisCache *cache.RedisCache, cacheTTL time.Duration) *Service {
	return &Service{
		db:       db,
		cache:    redisCache,
		cacheTTL: cacheTTL,
	}
}

// Prediction is a win-probability quote for a single matchup
type Prediction struct {
	HomeTeamID           int     `json:"home_team_id"`
	AwayTeamID           int     `json:"away_team_id"`
	Season               string  `json:"season"`
	NeutralSite          bool    `json:"neutral_site"`
	HomeElo              float64 `json:"home_elo"`
	AwayElo              float64 `json:"away_elo"`
	HomeWinProb          float64 `json:"home_win_prob"`
	AwayWinProb          float64 `json:"away_win_prob"`
	EloGap               float64 `json:"elo_gap"`
	HomeAdvantageApplied float64 `json:"home_advantage_applied"`
}

// Predict returns win probabilities for home vs away in the given season.
// Teams without a rating row are quoted at the rating baseline; asking about
// two unknown teams on a neutral floor is a valid coin flip.
func (s *Service) Predict(ctx context.Context, homeTeamID, awayTeamID int, neutralSite bool, season string) (*Prediction, error) {
	key := fmt.Sprintf("predict:%d:%d:%t:%s", homeTeamID, awayTeamID, neutralSite, season)

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached Prediction
			if err := json.Unmarshal(raw, &cached); err == nil {
				metrics.RecordPrediction("cache")
				return &cached, nil
			}
			log.Warn().Str("key", key).Msg("Discarding malformed cached prediction")
		}
	}

	homeElo, err := s.currentElo(ctx, homeTeamID, season)
	if err != nil {
		return nil, fmt.Errorf("home team %d: %w", homeTeamID, err)
	}
	awayElo, err := s.currentElo(ctx, awayTeamID, season)
	if err != nil {
		return nil, fmt.Errorf("away team %d: %w", awayTeamID, err)
	}

	pred := computePrediction(homeTeamID, awayTeamID, season, homeElo, awayElo, neutralSite)

	if s.cache != nil {
		if raw, err := json.Marshal(pred); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to cache prediction")
			}
		}
	}

	metrics.RecordPrediction("computed")
	return pred, nil
}

// currentElo reads a team's season rating, falling back to the baseline when
// no rating row exists yet.
func (s *Service) currentElo(ctx context.Context, teamID int, season string) (float64, error) {
	rating, err := s.db.Ratings.Get(ctx, teamID, season)
	if err != nil {
		return 0, err
	}
	if rating == nil {
		return elo.DefaultElo, nil
	}
	return rating.Elo, nil
}

// computePrediction applies the same home bonus and expectancy curve the
// rating engine uses, so quotes and realized updates agree.
func computePrediction(homeTeamID, awayTeamID int, season string, homeElo, awayElo float64, neutralSite bool) *Prediction {
	bonus := elo.HomeAdvantage
	if neutralSite {
		bonus = 0.0
	}

	homeProb := elo.ExpectedScore(homeElo+bonus, awayElo)

	return &Prediction{
		HomeTeamID:           homeTeamID,
		AwayTeamID:           awayTeamID,
		Season:               season,
		NeutralSite:          neutralSite,
		HomeElo:              homeElo,
		AwayElo:              awayElo,
		HomeWinProb:          homeProb,
		AwayWinProb:          1.0 - homeProb,
		EloGap:               (homeElo + bonus) - awayElo,
		HomeAdvantageApplied: bonus,
	}
}
