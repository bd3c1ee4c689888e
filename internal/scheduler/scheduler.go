package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/client"
	"github.com/jfoessettjr/cbb-tracker/internal/config"
	"github.com/jfoessettjr/cbb-tracker/internal/elo"
	"github.com/jfoessettjr/cbb-tracker/internal/ingest"
	"github.com/jfoessettjr/cbb-tracker/internal/metrics"
	"github.com/jfoessettjr/cbb-tracker/internal/models"
	"github.com/jfoessettjr/cbb-tracker/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the background ingestion loop:
// - Poll the scoreboard on a short interval and ingest what it returns
// - Apply ratings to newly final games right after each ingest
// - Nightly catch-up sweep over yesterday and today to pick up late finals
type Scheduler struct {
	cfg      *config.Config
	client   *client.Client
	db       *repository.Database
	ingestor *ingest.Ingestor
	engine   *elo.Engine
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, espnClient *client.Client, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		client:   espnClient,
		db:       db,
		ingestor: ingest.NewIngestor(db, cfg.Provider),
		engine:   elo.NewEngine(db),
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Nightly sweep catches games that went final after the last poll of the
	// previous day, and re-ingests today in case a feed correction landed.
	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly catch-up sweep...")
		if err := s.RunCycle(ctx, DefaultDatesRange(time.Now().UTC())); err != nil {
			log.Error().Err(err).Msg("Nightly sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly sweep: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly sweep scheduled")

	interval := time.Duration(s.cfg.ScoreboardPollSecs) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Scoreboard polling started")

	go s.pollScoreboard(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollScoreboard runs ingest cycles on the ticker until stopped.
// A failed cycle is logged and the next tick tries again; polling never dies.
func (s *Scheduler) pollScoreboard(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping scoreboard polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping scoreboard polling")
			return
		case <-s.ticker.C:
			today := time.Now().UTC().Format("20060102")
			if err := s.RunCycle(ctx, today); err != nil {
				log.Error().Err(err).Msg("Scoreboard poll cycle failed")
			}
		}
	}
}

// RunCycle fetches one scoreboard window, ingests it, and applies ratings to
// any games that went final. Ingestion and rating application are separate
// transactions: a rating failure does not roll back ingested scores.
func (s *Scheduler) RunCycle(ctx context.Context, dates string) error {
	start := time.Now()

	payload, err := s.client.FetchScoreboard(ctx, dates)
	if err != nil {
		metrics.RecordError("scheduler", "fetch")
		return fmt.Errorf("failed to fetch scoreboard for %s: %w", dates, err)
	}

	ingestResult, err := s.ingestor.Ingest(ctx, payload)
	if err != nil {
		metrics.RecordError("scheduler", "ingest")
		return fmt.Errorf("failed to ingest scoreboard for %s: %w", dates, err)
	}

	applyResult, err := s.engine.ApplyRatingsForFinalGames(ctx, s.cfg.Season)
	if err != nil {
		metrics.RecordError("scheduler", "ratings")
		return fmt.Errorf("failed to apply ratings: %w", err)
	}

	s.updateGauges(ctx)

	if applyResult.RatingsApplied > 0 {
		s.logTopRatings(ctx)
	}

	log.Info().
		Str("dates", dates).
		Int("events_seen", ingestResult.EventsSeen).
		Int("games_upserted", ingestResult.GamesUpserted).
		Int("ratings_applied", applyResult.RatingsApplied).
		Dur("duration", time.Since(start)).
		Msg("Ingest cycle complete")

	return nil
}

// updateGauges refreshes database-derived gauges after a cycle
func (s *Scheduler) updateGauges(ctx context.Context) {
	teams, err := s.db.Teams.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count teams")
		return
	}
	games, err := s.db.Games.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count games")
		return
	}
	active, err := s.db.Games.CountByStatus(ctx, models.StatusInProgress)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count active games")
		return
	}

	metrics.UpdateIngestionStats(teams, games, active)
}

// logTopRatings logs the current season leaders after ratings moved
func (s *Scheduler) logTopRatings(ctx context.Context) {
	ratings, err := s.db.Ratings.ListBySeason(ctx, s.cfg.Season, 5)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list season ratings")
		return
	}

	for i, r := range ratings {
		log.Debug().
			Int("rank", i+1).
			Int("team_id", r.TeamID).
			Float64("elo", r.Elo).
			Int("games_played", r.GamesPlayed).
			Msg("Season rating leader")
	}
}

// DefaultDatesRange returns the yesterday-through-today UTC window in the
// scoreboard's YYYYMMDD-YYYYMMDD form. Late tipoffs cross UTC midnight, so
// finishing yesterday's slate means asking for both days.
func DefaultDatesRange(now time.Time) string {
	now = now.UTC()
	yesterday := now.AddDate(0, 0, -1)
	return fmt.Sprintf("%s-%s", yesterday.Format("20060102"), now.Format("20060102"))
}
