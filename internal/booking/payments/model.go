package payments

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidStatus indicates a status outside the known vocabulary.
var ErrInvalidStatus = errors.New("payments: invalid status")

// Status is the lifecycle state of a payment record.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// Valid reports whether the status belongs to the known vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPaid, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ChangeKind labels a payment record change event.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
)

// Payment is one payment transaction tied to a booking period.
type Payment struct {
	ID        int64     `json:"id" db:"id"`
	PeriodID  int64     `json:"period_id" db:"period_id"`
	Status    Status    `json:"status" db:"status"`
	Days      int       `json:"days" db:"days"`
	Amount    float64   `json:"amount" db:"amount"`
	Reference string    `json:"reference,omitempty" db:"reference"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StatusSet is the subset of statuses counted toward paid aggregates.
type StatusSet map[Status]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// DefaultActiveStatuses returns the statuses that count toward payment
// obligations by default.
func DefaultActiveStatuses() StatusSet {
	return NewStatusSet(StatusScheduled, StatusPaid)
}

// ParseStatusSet builds a set from configuration strings.
func ParseStatusSet(names []string) (StatusSet, error) {
	set := make(StatusSet, len(names))
	for _, name := range names {
		s := Status(name)
		if !s.Valid() {
			return nil, fmt.Errorf("payments: unknown status %q", name)
		}
		set[s] = struct{}{}
	}
	return set, nil
}

// Contains reports set membership.
func (s StatusSet) Contains(status Status) bool {
	_, ok := s[status]
	return ok
}
