package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryPeriodRepo struct {
	periods map[int64]*Period
	nextID  int64
	updates int
}

func newMemoryPeriodRepo() *memoryPeriodRepo {
	return &memoryPeriodRepo{periods: make(map[int64]*Period)}
}

func (r *memoryPeriodRepo) Create(ctx context.Context, p Period) (*Period, error) {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.periods[p.ID] = &p
	out := p
	return &out, nil
}

func (r *memoryPeriodRepo) Get(ctx context.Context, id int64) (*Period, error) {
	p, ok := r.periods[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *memoryPeriodRepo) List(ctx context.Context, req ListPeriodsRequest) ([]Period, int, error) {
	var out []Period
	for _, p := range r.periods {
		if req.BookingID > 0 && p.BookingID != req.BookingID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memoryPeriodRepo) UpdateSchedule(ctx context.Context, id int64, fields Triple) error {
	p, ok := r.periods[id]
	if !ok {
		return ErrNotFound
	}
	r.updates++
	if fields.StartDate != nil {
		p.StartDate = fields.StartDate
	}
	if fields.EndDate != nil {
		p.EndDate = fields.EndDate
	}
	if fields.DurationWeeks != nil {
		p.DurationWeeks = fields.DurationWeeks
	}
	p.UpdatedAt = time.Now()
	return nil
}

func strptr(s string) *string {
	return &s
}

func TestServiceCreateResolvesSchedule(t *testing.T) {
	repo := newMemoryPeriodRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		BookingID:     7,
		StartDate:     strptr("2021-01-04"),
		DurationWeeks: weeks(2),
	})
	require.NoError(t, err)
	require.Equal(t, "2021-01-18", created.EndDate.Format(dateLayout))
	require.Equal(t, PaymentStatusUnpaid, created.PaymentStatus)
}

func TestServiceCreateKeepsPartialSchedule(t *testing.T) {
	repo := newMemoryPeriodRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		BookingID: 7,
		StartDate: strptr("2021-01-04"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.StartDate)
	require.Nil(t, created.EndDate)
	require.Nil(t, created.DurationWeeks)
}

func TestServiceCreateRejectsConflict(t *testing.T) {
	repo := newMemoryPeriodRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		BookingID:     7,
		StartDate:     strptr("2021-01-01"),
		EndDate:       strptr("2021-01-08"),
		DurationWeeks: weeks(2),
	})
	require.ErrorIs(t, err, ErrDurationConflict)
	require.Empty(t, repo.periods)
}

func TestServiceUpdateAppliesPatch(t *testing.T) {
	repo := newMemoryPeriodRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		BookingID:     7,
		StartDate:     strptr("2021-01-04"),
		DurationWeeks: weeks(2),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdatePeriodRequest{
		StartDate:     strptr("2021-03-01"),
		DurationWeeks: weeks(4),
	})
	require.NoError(t, err)
	require.Equal(t, "2021-03-01", updated.StartDate.Format(dateLayout))
	require.Equal(t, "2021-03-29", updated.EndDate.Format(dateLayout))
	require.Equal(t, 4, *updated.DurationWeeks)
}

func TestServiceUpdateNoopSkipsWrite(t *testing.T) {
	repo := newMemoryPeriodRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		BookingID:     7,
		StartDate:     strptr("2021-01-04"),
		DurationWeeks: weeks(2),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdatePeriodRequest{
		DurationWeeks: weeks(2),
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Zero(t, repo.updates)
}

func TestServiceUpdateConflictLeavesPeriodUntouched(t *testing.T) {
	repo := newMemoryPeriodRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		BookingID:     7,
		StartDate:     strptr("2021-01-04"),
		DurationWeeks: weeks(2),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdatePeriodRequest{
		DurationWeeks: weeks(5),
	})
	require.ErrorIs(t, err, ErrDurationConflict)

	current, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, *current.DurationWeeks)
	require.Zero(t, repo.updates)
}

func TestServiceUpdateUnknownPeriod(t *testing.T) {
	svc := NewService(newMemoryPeriodRepo())

	_, err := svc.Update(context.Background(), 99, UpdatePeriodRequest{DurationWeeks: weeks(2)})
	require.ErrorIs(t, err, ErrNotFound)
}
