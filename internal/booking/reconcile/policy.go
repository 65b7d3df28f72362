package reconcile

import (
	"github.com/bookline/bookline/internal/booking/payments"
	"github.com/bookline/bookline/internal/booking/periods"
)

// workingDaysPerWeek is the reference used to judge whether a period is
// fully paid. Weekends are not billable.
const workingDaysPerWeek = 5

// StatusPolicy derives a period payment status from the recomputed
// aggregate, the period's duration when known, and the previously stored
// status. The policy is injected; the reconciler makes no assumptions
// about its rules.
type StatusPolicy func(totals payments.Totals, durationWeeks *int, previousStatus string) string

// DefaultStatusPolicy treats a period as fully paid once the paid days
// cover the working days of its whole duration. Without a duration the
// best we can say is that some payment exists. The previous status does
// not influence this reference policy.
func DefaultStatusPolicy(totals payments.Totals, durationWeeks *int, _ string) string {
	if totals.DaysPaid <= 0 {
		return periods.PaymentStatusUnpaid
	}
	if durationWeeks != nil && *durationWeeks > 0 && totals.DaysPaid >= *durationWeeks*workingDaysPerWeek {
		return periods.PaymentStatusPaid
	}
	return periods.PaymentStatusPartial
}
