package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/bookline/internal/booking/payments"
	"github.com/bookline/bookline/internal/booking/periods"
	"github.com/bookline/bookline/internal/events"
)

// TopicPeriodUpdated is the outbound stream for period aggregate changes.
const TopicPeriodUpdated = "booking.period.updated"

// ErrPeriodNotFound indicates a reconciliation request for a period that
// does not exist. Deliveries carrying it must not be retried.
var ErrPeriodNotFound = errors.New("reconcile: booking period not found")

// Outcome describes what a reconciliation pass did.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomePersisted Outcome = "persisted"
)

// PaymentEvent is an inbound notification that a payment record changed.
type PaymentEvent struct {
	Kind      payments.ChangeKind `json:"kind"`
	PaymentID int64               `json:"payment_record_id"`
	PeriodID  int64               `json:"period_id"`
}

// Snapshot captures a period's derived payment state at one point in time.
type Snapshot struct {
	DaysPaid      int     `json:"days_paid"`
	PaymentTotal  float64 `json:"payment_total"`
	PaymentStatus string  `json:"payment_status"`
}

// PeriodUpdated is emitted after a reconciliation pass persisted new
// aggregates. CorrelationKey groups events of the same booking so consumers
// can rely on per-booking ordering.
type PeriodUpdated struct {
	EventID        uuid.UUID `json:"event_id"`
	PeriodID       int64     `json:"period_id"`
	BookingID      int64     `json:"booking_id"`
	CorrelationKey string    `json:"correlation_key"`
	Previous       Snapshot  `json:"previous"`
	Current        Snapshot  `json:"current"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// AggregateUpdate carries the derived fields to persist. Nil fields are
// untouched so an unchanged column never produces a write.
type AggregateUpdate struct {
	DaysPaid      *int
	PaymentTotal  *float64
	PaymentStatus *string
}

// Empty reports whether nothing needs to be written.
func (u AggregateUpdate) Empty() bool {
	return u.DaysPaid == nil && u.PaymentTotal == nil && u.PaymentStatus == nil
}

// Store is the persistence surface the reconciler needs.
type Store interface {
	LoadWithPayments(ctx context.Context, periodID int64) (*periods.Period, []payments.Payment, error)
	ApplyAggregates(ctx context.Context, periodID int64, upd AggregateUpdate) (*periods.Period, error)
	ListStalePeriodIDs(ctx context.Context, since time.Time) ([]int64, error)
}

// Result reports the outcome of one reconciliation pass. Event is non-nil
// only when the pass persisted a change.
type Result struct {
	Outcome Outcome
	Period  *periods.Period
	Event   *PeriodUpdated
}

// Reconciler recomputes a period's payment aggregates from its records and
// persists them only when they differ from the stored state. Running it
// twice in a row is always a no-op the second time.
type Reconciler struct {
	store     Store
	publisher events.Publisher
	active    payments.StatusSet
	policy    StatusPolicy
	logger    *slog.Logger
}

// New builds a Reconciler.
func New(store Store, publisher events.Publisher, active payments.StatusSet, policy StatusPolicy, logger *slog.Logger) *Reconciler {
	if policy == nil {
		policy = DefaultStatusPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, publisher: publisher, active: active, policy: policy, logger: logger}
}

// OnPaymentEvent reconciles the period named by an inbound payment change.
func (r *Reconciler) OnPaymentEvent(ctx context.Context, ev PaymentEvent) (Result, error) {
	return r.ReconcilePeriod(ctx, ev.PeriodID)
}

// ReconcilePeriod runs one full pass over a period: load, recompute,
// compare, and persist plus publish only on a real change.
func (r *Reconciler) ReconcilePeriod(ctx context.Context, periodID int64) (Result, error) {
	period, records, err := r.store.LoadWithPayments(ctx, periodID)
	if err != nil {
		return Result{}, fmt.Errorf("load period %d: %w", periodID, err)
	}

	totals := payments.Aggregate(records, r.active)
	status := r.policy(totals, period.DurationWeeks, period.PaymentStatus)

	upd := AggregateUpdate{}
	if totals.DaysPaid != period.DaysPaid {
		upd.DaysPaid = &totals.DaysPaid
	}
	if totals.Amount != period.PaymentTotal {
		upd.PaymentTotal = &totals.Amount
	}
	if status != period.PaymentStatus {
		upd.PaymentStatus = &status
	}

	if upd.Empty() {
		r.logger.Debug("reconcile unchanged", slog.Int64("period_id", periodID))
		return Result{Outcome: OutcomeUnchanged, Period: period}, nil
	}

	previous := Snapshot{
		DaysPaid:      period.DaysPaid,
		PaymentTotal:  period.PaymentTotal,
		PaymentStatus: period.PaymentStatus,
	}

	updated, err := r.store.ApplyAggregates(ctx, periodID, upd)
	if err != nil {
		return Result{}, fmt.Errorf("persist aggregates for period %d: %w", periodID, err)
	}

	event := &PeriodUpdated{
		EventID:        uuid.New(),
		PeriodID:       updated.ID,
		BookingID:      updated.BookingID,
		CorrelationKey: strconv.FormatInt(updated.BookingID, 10),
		Previous:       previous,
		Current: Snapshot{
			DaysPaid:      updated.DaysPaid,
			PaymentTotal:  updated.PaymentTotal,
			PaymentStatus: updated.PaymentStatus,
		},
		OccurredAt: time.Now().UTC(),
	}

	if err := r.publisher.Publish(ctx, TopicPeriodUpdated, event, event.CorrelationKey); err != nil {
		return Result{}, fmt.Errorf("publish period update %d: %w", periodID, err)
	}

	r.logger.Info("reconcile persisted",
		slog.Int64("period_id", periodID),
		slog.Int("days_paid", updated.DaysPaid),
		slog.Float64("payment_total", updated.PaymentTotal),
		slog.String("payment_status", updated.PaymentStatus),
	)
	return Result{Outcome: OutcomePersisted, Period: updated, Event: event}, nil
}
