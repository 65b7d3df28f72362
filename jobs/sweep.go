package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bookline/bookline/internal/booking/reconcile"
	"github.com/bookline/bookline/internal/jobmetrics"
)

// ReconcileSweepJob re-runs reconciliation over every period whose payment
// records changed inside the lookback window. Reconciliation is idempotent,
// so periods that were already handled by a delivery come out unchanged.
type ReconcileSweepJob struct {
	reconciler *reconcile.Reconciler
	store      reconcile.Store
	window     time.Duration
	metrics    *jobmetrics.Metrics
	logger     *slog.Logger
}

// NewReconcileSweepJob constructs the sweep handler.
func NewReconcileSweepJob(reconciler *reconcile.Reconciler, store reconcile.Store, window time.Duration, metrics *jobmetrics.Metrics, logger *slog.Logger) *ReconcileSweepJob {
	return &ReconcileSweepJob{reconciler: reconciler, store: store, window: window, metrics: metrics, logger: logger}
}

// Handle processes a booking:reconcile_sweep task.
func (j *ReconcileSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("reconcile_sweep")

	since := time.Now().Add(-j.window)
	ids, err := j.store.ListStalePeriodIDs(ctx, since)
	if err != nil {
		return tracker.End(err)
	}

	var errs []error
	persisted := 0
	for _, id := range ids {
		result, err := j.reconciler.ReconcilePeriod(ctx, id)
		if err != nil {
			if errors.Is(err, reconcile.ErrPeriodNotFound) {
				continue
			}
			j.logger.Error("sweep reconcile", slog.Int64("period_id", id), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		j.metrics.AddOutcome(string(result.Outcome))
		if result.Outcome == reconcile.OutcomePersisted {
			persisted++
		}
	}

	j.logger.Info("reconcile sweep done",
		slog.Int("candidates", len(ids)),
		slog.Int("persisted", persisted),
		slog.Int("failures", len(errs)),
	)
	return tracker.End(errors.Join(errs...))
}
