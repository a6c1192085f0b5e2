// Package retention periodically purges soft-deleted comments once
// their tombstones age past the configured period.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"pagethread/pkg/config"
	"pagethread/pkg/logger"
	"pagethread/pkg/store"
	"pagethread/pkg/telemetry"
)

const defaultPeriod = 30 * 24 * time.Hour

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	// default daily @02:00
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	period := cfg.Period.Std()
	if period <= 0 {
		period = defaultPeriod
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", period.String(), "dry_run", cfg.DryRun)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, period, cfg.DryRun)
	return cancel, nil
}

// runScheduler computes the next cron tick with gronx and sleeps until
// then, purging on each wakeup.
func runScheduler(ctx context.Context, cronExpr string, period time.Duration, dryRun bool) {
	for {
		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_next_tick_failed", "error", err)
			return
		}
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		case <-time.After(next.Sub(now)):
		}
		RunOnce(period, dryRun)
	}
}

// RunOnce purges tombstones older than the period. Exposed so tests and
// admin tooling can trigger a run on demand.
func RunOnce(period time.Duration, dryRun bool) {
	before := time.Now().UTC().Add(-period).UnixNano()
	n, err := store.PurgeDeleted(before, dryRun)
	if err != nil {
		logger.Error("retention_run_failed", "error", err)
		return
	}
	if !dryRun {
		telemetry.CommentsPurgedTotal.Add(float64(n))
	}
	logger.Info("retention_run_complete", "purged", n, "dry_run", dryRun)
}
