package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/metrics"
	"github.com/jfoessettjr/cbb-tracker/internal/models"

	"github.com/rs/zerolog/log"
)

// Client fetches the ESPN men's college basketball scoreboard.
// The scoreboard endpoint is unauthenticated; groups=50 selects all of D1
// rather than only ranked matchups, and limit=500 returns a full day of games
// in one response.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new ESPN scoreboard client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request against the scoreboard API with retry logic
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "cbb-tracker/1.0")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("API request failed: %w", err)
			// Retry on network errors
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Retryable errors
			lastErr = fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		default:
			// Other errors - don't retry
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// FetchScoreboard fetches the scoreboard for a date or date range.
// dates is "YYYYMMDD" or "YYYYMMDD-YYYYMMDD".
func (c *Client) FetchScoreboard(ctx context.Context, dates string) (*models.ScoreboardResponse, error) {
	start := time.Now()
	body, err := c.get(ctx, "scoreboard", map[string]string{
		"dates":  dates,
		"groups": "50",
		"limit":  "500",
	})
	if err != nil {
		metrics.RecordAPICall("scoreboard", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}
	metrics.RecordAPICall("scoreboard", "success", time.Since(start).Seconds())

	var scoreboard models.ScoreboardResponse
	if err := json.Unmarshal(body, &scoreboard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	log.Debug().
		Str("dates", dates).
		Int("events", len(scoreboard.Events)).
		Dur("duration", time.Since(start)).
		Msg("Scoreboard fetched")

	return &scoreboard, nil
}
