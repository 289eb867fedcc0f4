package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/db"
)

// stuckClaimMultiple scales the delivery timeout into the age at which an
// in_flight row is presumed orphaned by a crashed worker.
const stuckClaimMultiple = 5

// retentionSweepInterval is how often old delivery rows are purged.
const retentionSweepInterval = 24 * time.Hour

// StartRetryScheduler runs the periodic sweep that feeds due deliveries back
// into the dispatcher. The first sweep runs immediately so deliveries left
// pending or in_flight by a previous process resume without waiting a full
// interval. Stop the scheduler before stopping the dispatcher: the returned
// function blocks until the sweep goroutine has exited, guaranteeing no
// further Submit calls.
func StartRetryScheduler(courier *Application, ds *DispatcherState) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sweep(ctx, courier, ds)

		ticker := time.NewTicker(courier.Config.SchedulerInterval)
		defer ticker.Stop()
		retention := time.NewTicker(retentionSweepInterval)
		defer retention.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, courier, ds)
			case <-retention.C:
				purgeExpired(ctx, courier)
			}
		}
	}()

	slog.Info("Retry scheduler started", "interval", courier.Config.SchedulerInterval)
	return func() {
		cancel()
		<-done
	}
}

// sweep reclaims orphaned in_flight rows, then claims one batch of due
// pending rows and submits them to the worker pool. One batch per tick keeps
// a saturated pool from being flooded; anything left over is simply due again
// next tick.
func sweep(ctx context.Context, courier *Application, ds *DispatcherState) {
	now := time.Now().UTC()

	cutoff := now.Add(-stuckClaimMultiple * courier.Config.DeliveryTimeout)
	reclaimed, err := courier.DB.ReclaimStuckWebhookDeliveries(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		slog.Error("Failed to reclaim stuck deliveries", "error", err)
	} else if reclaimed > 0 {
		slog.Warn("Reclaimed stuck webhook deliveries", "count", reclaimed)
	}

	due, err := courier.DB.ClaimDueWebhookDeliveries(ctx, db.ClaimDueWebhookDeliveriesParams{
		Now:       pgtype.Timestamptz{Time: now, Valid: true},
		BatchSize: int32(courier.Config.ClaimBatchSize),
	})
	if err != nil {
		slog.Error("Failed to claim due deliveries", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	slog.Debug("Claimed due webhook deliveries", "count", len(due))
	for _, delivery := range due {
		if !ds.Submit(delivery) {
			// Dispatcher shut down; the rest of the batch stays in_flight
			// and is reclaimed on the next startup sweep.
			return
		}
	}
}

func purgeExpired(ctx context.Context, courier *Application) {
	cutoff := time.Now().UTC().AddDate(0, 0, -courier.Config.RetentionDays)
	purged, err := courier.DB.DeleteExpiredWebhookDeliveries(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		slog.Error("Failed to purge expired deliveries", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("Purged expired webhook deliveries", "count", purged, "retention_days", courier.Config.RetentionDays)
	}
}
