package periods

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the period does not exist.
var ErrNotFound = errors.New("periods: not found")

// Repository defines data access for booking periods.
type Repository interface {
	Create(ctx context.Context, p Period) (*Period, error)
	Get(ctx context.Context, id int64) (*Period, error)
	List(ctx context.Context, req ListPeriodsRequest) ([]Period, int, error)
	UpdateSchedule(ctx context.Context, id int64, fields Triple) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const periodColumns = `id, booking_id, start_date, end_date, duration_weeks, days_paid, payment_total, payment_status, created_at, updated_at`

// Create inserts a new period.
func (r *PGRepository) Create(ctx context.Context, p Period) (*Period, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO booking_periods (booking_id, start_date, end_date, duration_weeks, days_paid, payment_total, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, 0, $5, NOW(), NOW()) RETURNING `+periodColumns,
		p.BookingID, p.StartDate, p.EndDate, p.DurationWeeks, p.PaymentStatus)
	return scanPeriod(row)
}

// Get fetches a period by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Period, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM booking_periods WHERE id = $1`, id)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns periods filtered by booking with a total count.
func (r *PGRepository) List(ctx context.Context, req ListPeriodsRequest) ([]Period, int, error) {
	where := ""
	args := []any{}
	if req.BookingID > 0 {
		where = "WHERE booking_id = $1"
		args = append(args, req.BookingID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM booking_periods %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM booking_periods %s ORDER BY id LIMIT $%d OFFSET $%d",
		periodColumns, where, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// UpdateSchedule writes only the supplied schedule fields.
func (r *PGRepository) UpdateSchedule(ctx context.Context, id int64, fields Triple) error {
	if fields.Empty() {
		return nil
	}
	query := "UPDATE booking_periods SET updated_at = NOW()"
	var args []any
	argPos := 1

	if fields.StartDate != nil {
		query += fmt.Sprintf(", start_date = $%d", argPos)
		args = append(args, *fields.StartDate)
		argPos++
	}
	if fields.EndDate != nil {
		query += fmt.Sprintf(", end_date = $%d", argPos)
		args = append(args, *fields.EndDate)
		argPos++
	}
	if fields.DurationWeeks != nil {
		query += fmt.Sprintf(", duration_weeks = $%d", argPos)
		args = append(args, *fields.DurationWeeks)
		argPos++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row rowScanner) (*Period, error) {
	var p Period
	if err := row.Scan(&p.ID, &p.BookingID, &p.StartDate, &p.EndDate, &p.DurationWeeks,
		&p.DaysPaid, &p.PaymentTotal, &p.PaymentStatus, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
