package payments

import (
	"context"
	"fmt"

	"github.com/bookline/bookline/internal/booking/periods"
)

// SyncEnqueuer schedules a reconciliation pass for a period after one of
// its payment records changed.
type SyncEnqueuer interface {
	EnqueuePaymentSync(ctx context.Context, kind ChangeKind, paymentID, periodID int64) error
}

// Service implements payment record use cases. Every successful write
// enqueues exactly one sync task for the owning period.
type Service struct {
	repo     Repository
	periods  periods.Repository
	enqueuer SyncEnqueuer
}

// NewService wires a payment service.
func NewService(repo Repository, periodRepo periods.Repository, enqueuer SyncEnqueuer) *Service {
	return &Service{repo: repo, periods: periodRepo, enqueuer: enqueuer}
}

// Create records a payment against an existing booking period.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	status := Status(req.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, req.Status)
	}
	if _, err := s.periods.Get(ctx, req.PeriodID); err != nil {
		return nil, fmt.Errorf("verify period: %w", err)
	}

	created, err := s.repo.Create(ctx, Payment{
		PeriodID:  req.PeriodID,
		Status:    status,
		Days:      req.Days,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if err := s.enqueuer.EnqueuePaymentSync(ctx, ChangeCreate, created.ID, created.PeriodID); err != nil {
		return nil, fmt.Errorf("enqueue sync: %w", err)
	}
	return created, nil
}

// Get fetches a payment record.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

// List returns payment records matching the filter.
func (s *Service) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, req.Status)
	}
	return s.repo.List(ctx, req)
}

// Update patches a payment record and schedules reconciliation.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (*Payment, error) {
	fields := Fields{Days: req.Days, Amount: req.Amount, Reference: req.Reference}
	if req.Status != nil {
		status := Status(*req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, *req.Status)
		}
		fields.Status = &status
	}
	if fields.Empty() {
		return s.repo.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if err := s.enqueuer.EnqueuePaymentSync(ctx, ChangeUpdate, updated.ID, updated.PeriodID); err != nil {
		return nil, fmt.Errorf("enqueue sync: %w", err)
	}
	return updated, nil
}
