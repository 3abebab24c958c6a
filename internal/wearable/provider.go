// Package wearable fetches daily health metrics from a wearable data
// source. The mock provider generates plausible deterministic data for
// development; the http provider talks to a real export API behind a
// circuit breaker.
package wearable

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/models"
)

// Provider fetches the metrics recorded for one calendar day.
type Provider interface {
	// FetchDaily returns the snapshot for the given day. It returns an
	// error when the source has no data for that day yet.
	FetchDaily(ctx context.Context, date time.Time) (*models.Snapshot, error)

	// Name identifies the provider in logs and sample rows.
	Name() string
}

// NewProvider builds the provider selected by configuration.
func NewProvider(cfg *config.WearableConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "mock":
		return NewMock(0), nil
	case "http":
		return NewHTTP(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown wearable provider: %s", cfg.Provider)
	}
}
