package periods

import "time"

// Payment status labels derived by the reconciliation policy. The initial
// state of every period is unpaid.
const (
	PaymentStatusUnpaid  = "UNPAID"
	PaymentStatusPartial = "PARTIALLY_PAID"
	PaymentStatusPaid    = "PAID"
)

// Period is a scheduled engagement interval belonging to a booking. The
// schedule fields are nullable; DaysPaid, PaymentTotal and PaymentStatus are
// derived and written only by the reconciler.
type Period struct {
	ID            int64      `json:"id" db:"id"`
	BookingID     int64      `json:"booking_id" db:"booking_id"`
	StartDate     *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty" db:"end_date"`
	DurationWeeks *int       `json:"duration_weeks,omitempty" db:"duration_weeks"`
	DaysPaid      int        `json:"days_paid" db:"days_paid"`
	PaymentTotal  float64    `json:"payment_total" db:"payment_total"`
	PaymentStatus string     `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Schedule returns the period's schedule fields as a Triple.
func (p *Period) Schedule() Triple {
	return Triple{StartDate: p.StartDate, EndDate: p.EndDate, DurationWeeks: p.DurationWeeks}
}
