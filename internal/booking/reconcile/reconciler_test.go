package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookline/bookline/internal/booking/payments"
	"github.com/bookline/bookline/internal/booking/periods"
)

type memoryStore struct {
	period  *periods.Period
	records []payments.Payment
	writes  int
}

func (s *memoryStore) LoadWithPayments(ctx context.Context, periodID int64) (*periods.Period, []payments.Payment, error) {
	if s.period == nil || s.period.ID != periodID {
		return nil, nil, ErrPeriodNotFound
	}
	out := *s.period
	return &out, s.records, nil
}

func (s *memoryStore) ApplyAggregates(ctx context.Context, periodID int64, upd AggregateUpdate) (*periods.Period, error) {
	if s.period == nil || s.period.ID != periodID {
		return nil, ErrPeriodNotFound
	}
	s.writes++
	if upd.DaysPaid != nil {
		s.period.DaysPaid = *upd.DaysPaid
	}
	if upd.PaymentTotal != nil {
		s.period.PaymentTotal = *upd.PaymentTotal
	}
	if upd.PaymentStatus != nil {
		s.period.PaymentStatus = *upd.PaymentStatus
	}
	s.period.UpdatedAt = time.Now()
	out := *s.period
	return &out, nil
}

func (s *memoryStore) ListStalePeriodIDs(ctx context.Context, since time.Time) ([]int64, error) {
	if s.period == nil {
		return nil, nil
	}
	return []int64{s.period.ID}, nil
}

type published struct {
	topic string
	key   string
	event *PeriodUpdated
}

type memoryPublisher struct {
	events []published
	err    error
}

func (p *memoryPublisher) Publish(ctx context.Context, topic string, message any, partitionKey string) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: partitionKey, event: message.(*PeriodUpdated)})
	return nil
}

func testPeriod() *periods.Period {
	w := 2
	return &periods.Period{
		ID:            1,
		BookingID:     42,
		DurationWeeks: &w,
		DaysPaid:      5,
		PaymentTotal:  500,
		PaymentStatus: periods.PaymentStatusPartial,
	}
}

func newTestReconciler(store *memoryStore, publisher *memoryPublisher) *Reconciler {
	return New(store, publisher, payments.DefaultActiveStatuses(), DefaultStatusPolicy, slog.Default())
}

func TestReconcileUnchanged(t *testing.T) {
	store := &memoryStore{
		period: testPeriod(),
		records: []payments.Payment{
			{ID: 1, PeriodID: 1, Status: payments.StatusPaid, Days: 3, Amount: 300},
			{ID: 2, PeriodID: 1, Status: payments.StatusScheduled, Days: 2, Amount: 200},
			{ID: 3, PeriodID: 1, Status: payments.StatusCancelled, Days: 3, Amount: 300},
		},
	}
	publisher := &memoryPublisher{}

	result, err := newTestReconciler(store, publisher).ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, result.Outcome)
	require.Nil(t, result.Event)
	require.Zero(t, store.writes)
	require.Empty(t, publisher.events)
}

func TestReconcilePersists(t *testing.T) {
	store := &memoryStore{
		period: testPeriod(),
		records: []payments.Payment{
			{ID: 1, PeriodID: 1, Status: payments.StatusPaid, Days: 10, Amount: 1000},
		},
	}
	publisher := &memoryPublisher{}

	result, err := newTestReconciler(store, publisher).ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomePersisted, result.Outcome)
	require.Equal(t, 1, store.writes)

	require.Len(t, publisher.events, 1)
	got := publisher.events[0]
	require.Equal(t, TopicPeriodUpdated, got.topic)
	require.Equal(t, "42", got.key)
	require.Equal(t, Snapshot{DaysPaid: 5, PaymentTotal: 500, PaymentStatus: periods.PaymentStatusPartial}, got.event.Previous)
	require.Equal(t, Snapshot{DaysPaid: 10, PaymentTotal: 1000, PaymentStatus: periods.PaymentStatusPaid}, got.event.Current)
	require.NotEqual(t, got.event.EventID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestReconcileIdempotent(t *testing.T) {
	store := &memoryStore{
		period: testPeriod(),
		records: []payments.Payment{
			{ID: 1, PeriodID: 1, Status: payments.StatusPaid, Days: 10, Amount: 1000},
		},
	}
	publisher := &memoryPublisher{}
	reconciler := newTestReconciler(store, publisher)

	first, err := reconciler.ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomePersisted, first.Outcome)

	second, err := reconciler.ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, second.Outcome)
	require.Equal(t, 1, store.writes)
	require.Len(t, publisher.events, 1)
}

func TestReconcileEmptyRecordsResetsAggregates(t *testing.T) {
	store := &memoryStore{period: testPeriod()}
	publisher := &memoryPublisher{}

	result, err := newTestReconciler(store, publisher).ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomePersisted, result.Outcome)
	require.Equal(t, 0, result.Period.DaysPaid)
	require.Equal(t, float64(0), result.Period.PaymentTotal)
	require.Equal(t, periods.PaymentStatusUnpaid, result.Period.PaymentStatus)
}

func TestReconcilePeriodNotFound(t *testing.T) {
	store := &memoryStore{}
	publisher := &memoryPublisher{}

	_, err := newTestReconciler(store, publisher).OnPaymentEvent(context.Background(), PaymentEvent{
		Kind:      payments.ChangeCreate,
		PaymentID: 9,
		PeriodID:  1,
	})
	require.ErrorIs(t, err, ErrPeriodNotFound)
	require.Empty(t, publisher.events)
}

func TestNewDefaultsDependencies(t *testing.T) {
	store := &memoryStore{
		period: testPeriod(),
		records: []payments.Payment{
			{ID: 1, PeriodID: 1, Status: payments.StatusPaid, Days: 3, Amount: 300},
			{ID: 2, PeriodID: 1, Status: payments.StatusScheduled, Days: 2, Amount: 200},
		},
	}
	reconciler := New(store, &memoryPublisher{}, payments.DefaultActiveStatuses(), nil, nil)

	result, err := reconciler.ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, result.Outcome)
}

func TestReconcileUsesInjectedPolicy(t *testing.T) {
	store := &memoryStore{
		period: testPeriod(),
		records: []payments.Payment{
			{ID: 1, PeriodID: 1, Status: payments.StatusPaid, Days: 5, Amount: 500},
		},
	}
	publisher := &memoryPublisher{}
	alwaysPaid := func(payments.Totals, *int, string) string {
		return periods.PaymentStatusPaid
	}
	reconciler := New(store, publisher, payments.DefaultActiveStatuses(), alwaysPaid, slog.Default())

	// Aggregates match the stored values, so only the policy-decided status
	// drives the write.
	result, err := reconciler.ReconcilePeriod(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, OutcomePersisted, result.Outcome)
	require.Equal(t, periods.PaymentStatusPaid, result.Period.PaymentStatus)
	require.Equal(t, 5, result.Period.DaysPaid)
}

func TestReconcilePublishFailurePropagates(t *testing.T) {
	store := &memoryStore{
		period: testPeriod(),
		records: []payments.Payment{
			{ID: 1, PeriodID: 1, Status: payments.StatusPaid, Days: 10, Amount: 1000},
		},
	}
	publisher := &memoryPublisher{err: errors.New("stream unavailable")}

	_, err := newTestReconciler(store, publisher).ReconcilePeriod(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stream unavailable")
}
