package periods

import (
	"context"
	"fmt"
)

// Service handles booking period business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new period. A schedule with at least two
// fields is resolved to a full triple before storage; fewer fields are stored
// as given so the booking workflow can complete them later.
func (s *Service) Create(ctx context.Context, req CreatePeriodRequest) (*Period, error) {
	schedule, err := req.Triple()
	if err != nil {
		return nil, err
	}
	resolved, ok, err := Resolve(schedule)
	if err != nil {
		return nil, err
	}
	if ok {
		schedule = resolved
	}

	return s.repo.Create(ctx, Period{
		BookingID:     req.BookingID,
		StartDate:     schedule.StartDate,
		EndDate:       schedule.EndDate,
		DurationWeeks: schedule.DurationWeeks,
		PaymentStatus: PaymentStatusUnpaid,
	})
}

// Update applies a schedule patch. Validation failures surface as-is and
// never substitute a value the caller did not request; an empty effective
// patch is a no-op.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePeriodRequest) (*Period, error) {
	patch, err := req.Triple()
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get period: %w", err)
	}

	apply, err := ResolvePatch(existing.Schedule(), patch)
	if err != nil {
		return nil, err
	}
	if apply.Empty() {
		return existing, nil
	}

	if err := s.repo.UpdateSchedule(ctx, id, apply); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get returns one period.
func (s *Service) Get(ctx context.Context, id int64) (*Period, error) {
	return s.repo.Get(ctx, id)
}

// List returns periods with a total count.
func (s *Service) List(ctx context.Context, req ListPeriodsRequest) ([]Period, int, error) {
	return s.repo.List(ctx, req)
}
