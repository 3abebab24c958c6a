package wearable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/models"
)

// HTTP fetches daily metrics from a wearable export API. The endpoint
// is expected to serve GET {base_url}/daily?date=YYYY-MM-DD as JSON in
// the snapshot shape. Calls go through a circuit breaker so a flapping
// vendor API does not stall every scheduled sync, and a rate limiter
// keeps the client inside typical vendor quotas.
type HTTP struct {
	baseURL string
	token   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*models.Snapshot]
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTP creates an HTTP provider from configuration.
func NewHTTP(cfg *config.WearableConfig, logger *zap.Logger) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("wearable base_url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid wearable base_url: %w", err)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	h := &HTTP{
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: timeout},
		// Vendor export APIs commonly allow a few requests per second.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
	}

	h.breaker = gobreaker.NewCircuitBreaker[*models.Snapshot](gobreaker.Settings{
		Name:        "wearable",
		MaxRequests: 2,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Wearable circuit breaker state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			}
		},
	})

	return h, nil
}

// Name implements Provider.
func (h *HTTP) Name() string { return "http" }

// FetchDaily implements Provider.
func (h *HTTP) FetchDaily(ctx context.Context, date time.Time) (*models.Snapshot, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	snap, err := h.breaker.Execute(func() (*models.Snapshot, error) {
		return h.fetch(ctx, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wearable data: %w", err)
	}
	return snap, nil
}

func (h *HTTP) fetch(ctx context.Context, date time.Time) (*models.Snapshot, error) {
	u := fmt.Sprintf("%s/daily?date=%s", h.baseURL, date.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("no data for %s", date.Format("2006-01-02"))
	default:
		return nil, fmt.Errorf("wearable API returned %d", resp.StatusCode)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode wearable response: %w", err)
	}
	if snap.Date.IsZero() {
		snap.Date = date.UTC().Truncate(24 * time.Hour)
	}
	return &snap, nil
}
