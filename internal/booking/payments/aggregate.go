package payments

// Totals are a period's derived payment aggregates.
type Totals struct {
	DaysPaid int     `json:"days_paid"`
	Amount   float64 `json:"amount"`
}

// Aggregate reduces a period's payment records to totals, counting only
// records whose status is in the active set. The reduction is commutative,
// so input order is irrelevant; empty input yields zero totals.
func Aggregate(records []Payment, active StatusSet) Totals {
	var t Totals
	for _, rec := range records {
		if !active.Contains(rec.Status) {
			continue
		}
		t.DaysPaid += rec.Days
		t.Amount += rec.Amount
	}
	return t
}
