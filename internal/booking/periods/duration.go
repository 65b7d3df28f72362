package periods

import (
	"errors"
	"fmt"
	"time"
)

const daysPerWeek = 7

var (
	// ErrInvalidRange indicates an end date at or before the start date, a
	// gap that is not a whole number of weeks, or a non-positive duration.
	ErrInvalidRange = errors.New("periods: invalid date range")
	// ErrDurationConflict indicates a supplied duration that disagrees with
	// the duration computed from the start and end dates.
	ErrDurationConflict = errors.New("periods: duration conflicts with date range")
	// ErrUnderspecified indicates an update that cannot be resolved to a
	// concrete schedule.
	ErrUnderspecified = errors.New("periods: schedule update does not resolve to a concrete triple")
)

// Triple carries the schedule fields of a booking period. A nil field is
// absent, which keeps "not supplied" distinct from a zero value both for
// partial inputs and for patches.
type Triple struct {
	StartDate     *time.Time
	EndDate       *time.Time
	DurationWeeks *int
}

// Empty reports whether no field is present.
func (t Triple) Empty() bool {
	return t.StartDate == nil && t.EndDate == nil && t.DurationWeeks == nil
}

func (t Triple) fieldCount() int {
	n := 0
	if t.StartDate != nil {
		n++
	}
	if t.EndDate != nil {
		n++
	}
	if t.DurationWeeks != nil {
		n++
	}
	return n
}

// Resolve completes a partial schedule. Given any two of start, end and
// duration it computes the third; given all three it validates their
// consistency. When fewer than two fields are present it returns ok=false
// with no error: callers must treat that differently from a validation
// failure.
func Resolve(in Triple) (Triple, bool, error) {
	if in.DurationWeeks != nil && *in.DurationWeeks <= 0 {
		return Triple{}, false, fmt.Errorf("%w: duration must be a positive number of weeks, got %d", ErrInvalidRange, *in.DurationWeeks)
	}

	switch {
	case in.StartDate != nil && in.DurationWeeks != nil && in.EndDate == nil:
		end := in.StartDate.AddDate(0, 0, *in.DurationWeeks*daysPerWeek)
		return Triple{StartDate: in.StartDate, EndDate: &end, DurationWeeks: in.DurationWeeks}, true, nil

	case in.EndDate != nil && in.DurationWeeks != nil && in.StartDate == nil:
		start := in.EndDate.AddDate(0, 0, -*in.DurationWeeks*daysPerWeek)
		return Triple{StartDate: &start, EndDate: in.EndDate, DurationWeeks: in.DurationWeeks}, true, nil

	case in.StartDate != nil && in.EndDate != nil:
		days := wholeDays(*in.StartDate, *in.EndDate)
		if days <= 0 || days%daysPerWeek != 0 {
			return Triple{}, false, fmt.Errorf("%w: %s to %s spans %d days, which is not a positive whole number of weeks",
				ErrInvalidRange, in.StartDate.Format("2006-01-02"), in.EndDate.Format("2006-01-02"), days)
		}
		weeks := days / daysPerWeek
		if in.DurationWeeks != nil && *in.DurationWeeks != weeks {
			return Triple{}, false, fmt.Errorf("%w: range spans %d weeks, got %d", ErrDurationConflict, weeks, *in.DurationWeeks)
		}
		return Triple{StartDate: in.StartDate, EndDate: in.EndDate, DurationWeeks: &weeks}, true, nil
	}

	return Triple{}, false, nil
}

func wholeDays(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
