package periods

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) *time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, value)
	require.NoError(t, err)
	return &d
}

func weeks(n int) *int {
	return &n
}

func TestResolveComputesEndDate(t *testing.T) {
	got, ok, err := Resolve(Triple{StartDate: date(t, "2021-01-04"), DurationWeeks: weeks(2)})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2021-01-18", got.EndDate.Format(dateLayout))
	require.Equal(t, 2, *got.DurationWeeks)
}

func TestResolveComputesStartDate(t *testing.T) {
	got, ok, err := Resolve(Triple{EndDate: date(t, "2021-01-18"), DurationWeeks: weeks(2)})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2021-01-04", got.StartDate.Format(dateLayout))
}

func TestResolveComputesDuration(t *testing.T) {
	got, ok, err := Resolve(Triple{StartDate: date(t, "2021-01-04"), EndDate: date(t, "2021-02-01")})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, *got.DurationWeeks)
}

func TestResolveRoundTrips(t *testing.T) {
	// Computing the end from start+duration and feeding the dates back in
	// must reproduce the same duration.
	first, ok, err := Resolve(Triple{StartDate: date(t, "2021-03-01"), DurationWeeks: weeks(6)})
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := Resolve(Triple{StartDate: first.StartDate, EndDate: first.EndDate})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 6, *second.DurationWeeks)
}

func TestResolveInvariantHolds(t *testing.T) {
	got, ok, err := Resolve(Triple{StartDate: date(t, "2021-01-04"), DurationWeeks: weeks(3)})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, *got.DurationWeeks*daysPerWeek, wholeDays(*got.StartDate, *got.EndDate))
}

func TestResolveDurationConflict(t *testing.T) {
	// One week of dates with a claimed duration of two.
	_, _, err := Resolve(Triple{
		StartDate:     date(t, "2021-01-01"),
		EndDate:       date(t, "2021-01-08"),
		DurationWeeks: weeks(2),
	})
	require.ErrorIs(t, err, ErrDurationConflict)
}

func TestResolveConsistentTripleValidates(t *testing.T) {
	got, ok, err := Resolve(Triple{
		StartDate:     date(t, "2021-01-01"),
		EndDate:       date(t, "2021-01-15"),
		DurationWeeks: weeks(2),
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, *got.DurationWeeks)
}

func TestResolveUnderspecifiedIsNoop(t *testing.T) {
	for name, in := range map[string]Triple{
		"empty":      {},
		"start only": {StartDate: date(t, "2021-01-01")},
		"end only":   {EndDate: date(t, "2021-01-08")},
		"weeks only": {DurationWeeks: weeks(3)},
	} {
		t.Run(name, func(t *testing.T) {
			got, ok, err := Resolve(in)
			require.NoError(t, err)
			require.False(t, ok)
			require.True(t, got.Empty())
		})
	}
}

func TestResolveInvalidRanges(t *testing.T) {
	cases := map[string]Triple{
		"end before start":     {StartDate: date(t, "2021-01-08"), EndDate: date(t, "2021-01-01")},
		"end equals start":     {StartDate: date(t, "2021-01-08"), EndDate: date(t, "2021-01-08")},
		"not a whole week":     {StartDate: date(t, "2021-01-01"), EndDate: date(t, "2021-01-05")},
		"zero duration":        {StartDate: date(t, "2021-01-01"), DurationWeeks: weeks(0)},
		"negative duration":    {EndDate: date(t, "2021-01-08"), DurationWeeks: weeks(-1)},
		"duration alone bad":   {DurationWeeks: weeks(-3)},
		"whole triple bad gap": {StartDate: date(t, "2021-01-01"), EndDate: date(t, "2021-01-06"), DurationWeeks: weeks(1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Resolve(in)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}
