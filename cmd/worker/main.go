package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/cache"
	"github.com/jfoessettjr/cbb-tracker/internal/client"
	"github.com/jfoessettjr/cbb-tracker/internal/config"
	"github.com/jfoessettjr/cbb-tracker/internal/metrics"
	"github.com/jfoessettjr/cbb-tracker/internal/predict"
	"github.com/jfoessettjr/cbb-tracker/internal/repository"
	"github.com/jfoessettjr/cbb-tracker/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting college basketball tracker worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("season", cfg.Season).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize scoreboard client
	espnClient := client.NewClient(cfg.ESPNBaseURL, cfg.ESPNTimeout)
	log.Info().Str("base_url", cfg.ESPNBaseURL).Msg("Scoreboard client initialized")

	// Initialize database connection
	dbConfig := repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}
	log.Info().Msg("Database schema verified")

	// Initialize Redis client; predictions work without it
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
		log.Info().Msg("Redis cache connected")
	}

	// Prediction service
	predictor := predict.NewService(db, redisCache, cfg.PredictionTTL())

	// Start HTTP server (metrics, health, predictions)
	go startHTTPServer(cfg, db, predictor)

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, espnClient, db)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run initial catch-up cycle if enabled
	if cfg.InitialSyncEnabled {
		dates := scheduler.DefaultDatesRange(time.Now().UTC())
		log.Info().Str("dates", dates).Msg("Running initial catch-up cycle...")
		if err := sched.RunCycle(ctx, dates); err != nil {
			log.Error().Err(err).Msg("Initial catch-up cycle failed, continuing anyway...")
		} else {
			log.Info().Msg("Initial catch-up cycle completed successfully")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startHTTPServer serves Prometheus metrics, the health check, and the
// prediction endpoint on one port
func startHTTPServer(cfg *config.Config, db *repository.Database, predictor *predict.Service) {
	if cfg.EnableMetrics {
		http.Handle("/metrics", promhttp.Handler())
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	http.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		handlePredict(w, r, cfg, predictor)
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Info().Int("port", cfg.HTTPPort).Msg("Starting HTTP server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}
}

// handlePredict serves GET /predict?home_team_id=1&away_team_id=2&neutral=false
func handlePredict(w http.ResponseWriter, r *http.Request, cfg *config.Config, predictor *predict.Service) {
	w.Header().Set("Content-Type", "application/json")

	homeTeamID, err := strconv.Atoi(r.URL.Query().Get("home_team_id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "home_team_id must be an integer")
		return
	}

	awayTeamID, err := strconv.Atoi(r.URL.Query().Get("away_team_id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "away_team_id must be an integer")
		return
	}

	neutral := false
	if raw := r.URL.Query().Get("neutral"); raw != "" {
		neutral, err = strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "neutral must be a boolean")
			return
		}
	}

	season := r.URL.Query().Get("season")
	if season == "" {
		season = cfg.Season
	}

	prediction, err := predictor.Predict(r.Context(), homeTeamID, awayTeamID, neutral, season)
	if err != nil {
		log.Error().Err(err).Msg("Prediction failed")
		writeJSONError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(prediction)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
