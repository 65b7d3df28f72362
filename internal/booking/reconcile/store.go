package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookline/bookline/internal/booking/payments"
	"github.com/bookline/bookline/internal/booking/periods"
	"github.com/bookline/bookline/internal/platform/db"
)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PGStore.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const periodColumns = `id, booking_id, start_date, end_date, duration_weeks, days_paid, payment_total, payment_status, created_at, updated_at`

// LoadWithPayments fetches a period together with all of its payment
// records. Both reads run in one repeatable-read transaction so the
// aggregate is computed over a consistent snapshot.
func (s *PGStore) LoadWithPayments(ctx context.Context, periodID int64) (*periods.Period, []payments.Payment, error) {
	var p periods.Period
	var records []payments.Payment

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM booking_periods WHERE id = $1`, periodID).
			Scan(&p.ID, &p.BookingID, &p.StartDate, &p.EndDate, &p.DurationWeeks,
				&p.DaysPaid, &p.PaymentTotal, &p.PaymentStatus, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPeriodNotFound
			}
			return err
		}

		rows, err := tx.Query(ctx, `SELECT id, period_id, status, days, amount, reference, created_at, updated_at
FROM payment_records WHERE period_id = $1 ORDER BY id`, periodID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rec payments.Payment
			if err := rows.Scan(&rec.ID, &rec.PeriodID, &rec.Status, &rec.Days, &rec.Amount,
				&rec.Reference, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	return &p, records, nil
}

// ApplyAggregates writes only the supplied derived fields and returns the
// updated period.
func (s *PGStore) ApplyAggregates(ctx context.Context, periodID int64, upd AggregateUpdate) (*periods.Period, error) {
	if upd.Empty() {
		return nil, errors.New("reconcile: empty aggregate update")
	}
	query := "UPDATE booking_periods SET updated_at = NOW()"
	var args []any

	if upd.DaysPaid != nil {
		args = append(args, *upd.DaysPaid)
		query += fmt.Sprintf(", days_paid = $%d", len(args))
	}
	if upd.PaymentTotal != nil {
		args = append(args, *upd.PaymentTotal)
		query += fmt.Sprintf(", payment_total = $%d", len(args))
	}
	if upd.PaymentStatus != nil {
		args = append(args, *upd.PaymentStatus)
		query += fmt.Sprintf(", payment_status = $%d", len(args))
	}

	args = append(args, periodID)
	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), periodColumns)

	var p periods.Period
	err := s.pool.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.BookingID, &p.StartDate, &p.EndDate, &p.DurationWeeks,
			&p.DaysPaid, &p.PaymentTotal, &p.PaymentStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListStalePeriodIDs returns the IDs of periods whose payment records
// changed at or after the given time. The nightly sweep uses this to catch
// deliveries that never arrived.
func (s *PGStore) ListStalePeriodIDs(ctx context.Context, since time.Time) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT period_id FROM payment_records WHERE updated_at >= $1 ORDER BY period_id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
