package periods

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// CreatePeriodRequest is the payload for creating a booking period. Schedule
// fields are optional; any two of them resolve the third.
type CreatePeriodRequest struct {
	BookingID     int64   `json:"booking_id" validate:"required,gt=0"`
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DurationWeeks *int    `json:"duration_weeks" validate:"omitempty,gt=0"`
}

// UpdatePeriodRequest patches a period's schedule. Absent fields are left
// untouched.
type UpdatePeriodRequest struct {
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DurationWeeks *int    `json:"duration_weeks" validate:"omitempty,gt=0"`
}

// ListPeriodsRequest filters the period listing.
type ListPeriodsRequest struct {
	BookingID int64
	Page      int
	PerPage   int
}

// Triple parses the request's schedule fields.
func (r CreatePeriodRequest) Triple() (Triple, error) {
	return parseTriple(r.StartDate, r.EndDate, r.DurationWeeks)
}

// Triple parses the patch's schedule fields.
func (r UpdatePeriodRequest) Triple() (Triple, error) {
	return parseTriple(r.StartDate, r.EndDate, r.DurationWeeks)
}

func parseTriple(start, end *string, weeks *int) (Triple, error) {
	var t Triple
	if start != nil {
		d, err := time.Parse(dateLayout, *start)
		if err != nil {
			return Triple{}, fmt.Errorf("%w: start date %q", ErrInvalidRange, *start)
		}
		t.StartDate = &d
	}
	if end != nil {
		d, err := time.Parse(dateLayout, *end)
		if err != nil {
			return Triple{}, fmt.Errorf("%w: end date %q", ErrInvalidRange, *end)
		}
		t.EndDate = &d
	}
	t.DurationWeeks = weeks
	return t, nil
}
