package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the payment record does not exist.
var ErrNotFound = errors.New("payments: not found")

// Fields carries a partial update for a payment record.
type Fields struct {
	Status    *Status
	Days      *int
	Amount    *float64
	Reference *string
}

// Empty reports whether no field is present.
func (f Fields) Empty() bool {
	return f.Status == nil && f.Days == nil && f.Amount == nil && f.Reference == nil
}

// Repository defines data access for payment records.
type Repository interface {
	Create(ctx context.Context, p Payment) (*Payment, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) ([]Payment, error)
	Update(ctx context.Context, id int64, fields Fields) (*Payment, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const paymentColumns = `id, period_id, status, days, amount, reference, created_at, updated_at`

// Create inserts a new payment record.
func (r *PGRepository) Create(ctx context.Context, p Payment) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO payment_records (period_id, status, days, amount, reference, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING `+paymentColumns,
		p.PeriodID, p.Status, p.Days, p.Amount, p.Reference)
	return scanPayment(row)
}

// Get fetches a payment record by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_records WHERE id = $1`, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns payment records matching the filter.
func (r *PGRepository) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records`
	var conditions []string
	var args []any
	if req.PeriodID > 0 {
		args = append(args, req.PeriodID)
		conditions = append(conditions, fmt.Sprintf("period_id = $%d", len(args)))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update writes only the supplied fields and returns the updated record.
func (r *PGRepository) Update(ctx context.Context, id int64, fields Fields) (*Payment, error) {
	if fields.Empty() {
		return r.Get(ctx, id)
	}
	query := "UPDATE payment_records SET updated_at = NOW()"
	var args []any

	if fields.Status != nil {
		args = append(args, *fields.Status)
		query += fmt.Sprintf(", status = $%d", len(args))
	}
	if fields.Days != nil {
		args = append(args, *fields.Days)
		query += fmt.Sprintf(", days = $%d", len(args))
	}
	if fields.Amount != nil {
		args = append(args, *fields.Amount)
		query += fmt.Sprintf(", amount = $%d", len(args))
	}
	if fields.Reference != nil {
		args = append(args, *fields.Reference)
		query += fmt.Sprintf(", reference = $%d", len(args))
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), paymentColumns)

	p, err := scanPayment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*Payment, error) {
	var p Payment
	if err := row.Scan(&p.ID, &p.PeriodID, &p.Status, &p.Days, &p.Amount, &p.Reference, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
