package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bookline/bookline/internal/booking/payments"
	"github.com/bookline/bookline/internal/booking/reconcile"
	"github.com/bookline/bookline/internal/jobmetrics"
)

// MailEnqueuer schedules notification emails.
type MailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// PaymentSyncJob reconciles one period in response to a payment change
// delivery.
type PaymentSyncJob struct {
	reconciler *reconcile.Reconciler
	metrics    *jobmetrics.Metrics
	mail       MailEnqueuer
	notifyTo   string
	logger     *slog.Logger
}

// NewPaymentSyncJob constructs the handler. mail and notifyTo may be empty,
// which disables status change notifications.
func NewPaymentSyncJob(reconciler *reconcile.Reconciler, metrics *jobmetrics.Metrics, mail MailEnqueuer, notifyTo string, logger *slog.Logger) *PaymentSyncJob {
	return &PaymentSyncJob{reconciler: reconciler, metrics: metrics, mail: mail, notifyTo: notifyTo, logger: logger}
}

// Handle processes a payment:sync task. A malformed payload or a missing
// period is dead-lettered; any other failure is retried by Asynq.
func (j *PaymentSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("payment_sync")

	var payload PaymentSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("unmarshal payment sync payload: %v: %w", err, asynq.SkipRetry))
	}

	result, err := j.reconciler.OnPaymentEvent(ctx, reconcile.PaymentEvent{
		Kind:      payments.ChangeKind(payload.Kind),
		PaymentID: payload.PaymentID,
		PeriodID:  payload.PeriodID,
	})
	if err != nil {
		if errors.Is(err, reconcile.ErrPeriodNotFound) {
			j.logger.Warn("payment sync for unknown period",
				slog.Int64("period_id", payload.PeriodID),
				slog.Int64("payment_id", payload.PaymentID),
			)
			return tracker.End(fmt.Errorf("%v: %w", err, asynq.SkipRetry))
		}
		return tracker.End(err)
	}

	j.metrics.AddOutcome(string(result.Outcome))

	if result.Event != nil && result.Event.Previous.PaymentStatus != result.Event.Current.PaymentStatus {
		j.notifyStatusChange(ctx, result.Event)
	}
	return tracker.End(nil)
}

func (j *PaymentSyncJob) notifyStatusChange(ctx context.Context, event *reconcile.PeriodUpdated) {
	if j.mail == nil || j.notifyTo == "" {
		return
	}
	payload := ComposeStatusChangeEmail(j.notifyTo, event)
	if _, err := j.mail.EnqueueSendEmail(ctx, payload); err != nil {
		// Notification is best effort; the reconciliation itself succeeded.
		j.logger.Warn("enqueue status change mail", slog.Any("error", err))
	}
}
