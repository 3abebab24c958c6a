// Package cron schedules the recurring background jobs: the morning
// wearable sync, the nightly baseline recalculation, and the midnight
// usage rollover.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/engine"
	"github.com/dosepilot/dosepilot/internal/store"
)

// jobTimeout bounds one run of any scheduled job.
const jobTimeout = 5 * time.Minute

// Runner manages the scheduled jobs.
type Runner struct {
	cfg    config.SchedulerConfig
	engine *engine.Engine
	store  *store.Store
	logger *zap.Logger

	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewRunner creates a runner with the three standard jobs registered.
func NewRunner(cfg config.SchedulerConfig, eng *engine.Engine, st *store.Store, logger *zap.Logger) (*Runner, error) {
	r := &Runner{
		cfg:    cfg,
		engine: eng,
		store:  st,
		logger: logger,
		cron:   cron.New(),
	}

	jobs := []struct {
		name string
		spec string
		fn   func(context.Context)
	}{
		{"wearable_sync", cfg.WearableSync, r.syncWearables},
		{"baseline_recalc", cfg.BaselineRecalc, r.recalcBaselines},
		{"midnight_rollover", cfg.MidnightRollover, r.rolloverUsage},
	}
	for _, j := range jobs {
		j := j
		_, err := r.cron.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			start := time.Now()
			j.fn(ctx)
			logger.Info("Scheduled job finished",
				zap.String("job", j.name),
				zap.Duration("took", time.Since(start)),
			)
		})
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression for %s (%q): %w", j.name, j.spec, err)
		}
	}

	return r, nil
}

// Start starts the scheduler.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("cron runner already running")
	}
	r.running = true
	r.cron.Start()

	r.logger.Info("Cron runner started",
		zap.String("wearable_sync", r.cfg.WearableSync),
		zap.String("baseline_recalc", r.cfg.BaselineRecalc),
		zap.String("midnight_rollover", r.cfg.MidnightRollover),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Info("Cron runner stopped")
}

// IsRunning returns whether the runner is active
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// syncWearables pulls yesterday's metrics for every user. One failing
// user does not stop the rest.
func (r *Runner) syncWearables(ctx context.Context) {
	users, err := r.store.ListUserIDs()
	if err != nil {
		r.logger.Error("Failed to list users for wearable sync", zap.Error(err))
		return
	}

	date := time.Now().UTC().AddDate(0, 0, -1)
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.engine.SyncWearable(ctx, userID, date); err != nil {
			r.logger.Warn("Wearable sync failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

// recalcBaselines recomputes every user's baseline so the first
// recommendation of the day does not pay for it.
func (r *Runner) recalcBaselines(ctx context.Context) {
	users, err := r.store.ListUserIDs()
	if err != nil {
		r.logger.Error("Failed to list users for baseline recalc", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		base, err := r.store.ComputeBaseline(userID, now)
		if err != nil {
			r.logger.Warn("Baseline recalc failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		if base == nil {
			r.logger.Debug("User has too few samples for a baseline",
				zap.String("user_id", userID),
			)
		}
	}
}

// rolloverUsage resets usage streaks that broke overnight.
func (r *Runner) rolloverUsage(ctx context.Context) {
	n, err := r.store.RolloverUsage(time.Now().UTC())
	if err != nil {
		r.logger.Error("Usage rollover failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("Reset broken usage streaks", zap.Int64("count", n))
	}
}
