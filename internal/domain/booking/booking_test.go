package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/pkg/auth"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPendingBooking(t *testing.T, start, end time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(KindSitter, uuid.New(), uuid.New(), start, end)
	require.NoError(t, err)
	return b
}

func TestNewBooking_NormalizesDates(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	b, err := NewBooking(KindSitter, uuid.New(), uuid.New(),
		time.Date(2026, time.September, 10, 14, 30, 0, 0, paris),
		time.Date(2026, time.September, 12, 9, 0, 0, 0, paris),
	)
	require.NoError(t, err)

	assert.Equal(t, day(2026, time.September, 10), b.StartDate())
	assert.Equal(t, day(2026, time.September, 12), b.EndDate())
	assert.Equal(t, StatusPending, b.Status())
	assert.Regexp(t, `^BK-[A-Z2-9]{6}$`, b.BookingNumber())
}

func TestNewBooking_Validation(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 12)

	_, err := NewBooking(Kind("walk"), uuid.New(), uuid.New(), start, end)
	assert.Error(t, err)

	_, err = NewBooking(KindSitter, uuid.Nil, uuid.New(), start, end)
	assert.Error(t, err)

	_, err = NewBooking(KindCompany, uuid.New(), uuid.Nil, start, end)
	assert.Error(t, err)

	_, err = NewBooking(KindSitter, uuid.New(), uuid.New(), end, start)
	assert.Error(t, err)

	// A single-day booking is allowed.
	_, err = NewBooking(KindSitter, uuid.New(), uuid.New(), start, start)
	assert.NoError(t, err)
}

func TestRangesOverlap(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 15)

	tests := []struct {
		name   string
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"fully inside", day(2026, time.September, 11), day(2026, time.September, 14), true},
		{"fully covering", day(2026, time.September, 1), day(2026, time.September, 30), true},
		{"shared start boundary", day(2026, time.September, 5), day(2026, time.September, 10), true},
		{"shared end boundary", day(2026, time.September, 15), day(2026, time.September, 20), true},
		{"day before", day(2026, time.September, 5), day(2026, time.September, 9), false},
		{"day after", day(2026, time.September, 16), day(2026, time.September, 20), false},
		{"same single day", day(2026, time.September, 12), day(2026, time.September, 12), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(start, end, tt.bStart, tt.bEnd))
		})
	}
}

func TestTransitionTo(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 12)

	t.Run("pending to accepted", func(t *testing.T) {
		b := newPendingBooking(t, start, end)
		require.NoError(t, b.TransitionTo(StatusAccepted))
		assert.Equal(t, StatusAccepted, b.Status())
	})

	t.Run("accepted to cancelled", func(t *testing.T) {
		b := newPendingBooking(t, start, end)
		require.NoError(t, b.TransitionTo(StatusAccepted))
		require.NoError(t, b.TransitionTo(StatusCancelled))
	})

	t.Run("refused is terminal", func(t *testing.T) {
		b := newPendingBooking(t, start, end)
		require.NoError(t, b.TransitionTo(StatusRefused))
		assert.Error(t, b.TransitionTo(StatusAccepted))
		assert.Error(t, b.TransitionTo(StatusCancelled))
	})

	t.Run("paid never reachable", func(t *testing.T) {
		b := newPendingBooking(t, start, end)
		assert.Error(t, b.TransitionTo(StatusPaid))
		require.NoError(t, b.TransitionTo(StatusAccepted))
		assert.Error(t, b.TransitionTo(StatusPaid))
	})
}

func TestMarkPaid(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 12)

	b := newPendingBooking(t, start, end)
	assert.Error(t, b.MarkPaid(), "pending bookings cannot be paid")

	require.NoError(t, b.TransitionTo(StatusAccepted))
	require.NoError(t, b.MarkPaid())
	assert.Equal(t, StatusPaid, b.Status())

	assert.Error(t, b.MarkPaid(), "paid is terminal")
}

func TestCancelForRefund(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 12)

	b := newPendingBooking(t, start, end)
	assert.Error(t, b.CancelForRefund(), "only paid bookings can be refunded")

	require.NoError(t, b.TransitionTo(StatusAccepted))
	require.NoError(t, b.MarkPaid())
	require.NoError(t, b.CancelForRefund())
	assert.Equal(t, StatusCancelled, b.Status())
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusAccepted.IsActive())
	assert.True(t, StatusPaid.IsActive())
	assert.False(t, StatusRefused.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

func TestRoleCanSet(t *testing.T) {
	tests := []struct {
		role        auth.Role
		target      Status
		ownerAccept bool
		want        bool
	}{
		{auth.RoleSitter, StatusAccepted, false, true},
		{auth.RoleSitter, StatusRefused, false, true},
		{auth.RoleSitter, StatusCancelled, false, true},
		{auth.RoleSitter, StatusPaid, false, false},
		{auth.RoleCompany, StatusAccepted, false, true},
		{auth.RoleCompany, StatusPaid, false, false},
		{auth.RoleOwner, StatusCancelled, false, true},
		{auth.RoleOwner, StatusAccepted, false, false},
		{auth.RoleOwner, StatusAccepted, true, true},
		{auth.RoleOwner, StatusRefused, true, false},
		{auth.RoleOwner, StatusPaid, true, false},
		{auth.RoleAdmin, StatusAccepted, false, true},
		{auth.RoleAdmin, StatusCancelled, false, true},
		{auth.RoleAdmin, StatusPaid, false, false},
	}
	for _, tt := range tests {
		got := RoleCanSet(tt.role, tt.target, tt.ownerAccept)
		assert.Equalf(t, tt.want, got, "role=%s target=%s ownerAccept=%v", tt.role, tt.target, tt.ownerAccept)
	}
}

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		wantDays int64
	}{
		{"single day", day(2026, time.September, 10), day(2026, time.September, 10), 1},
		{"five days", day(2026, time.September, 10), day(2026, time.September, 14), 5},
		{"across month boundary", day(2026, time.September, 29), day(2026, time.October, 2), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := PriceFor(tt.start, tt.end, 1000)
			assert.Equal(t, tt.wantDays, quote.TotalDays)
			assert.Equal(t, int64(1000), quote.RateCents)
			assert.Equal(t, tt.wantDays*1000, quote.AmountCents)
		})
	}
}

func TestPriceFor_IgnoresTimeOfDay(t *testing.T) {
	// Timestamps inside the same days produce the same quote as midnights.
	quote := PriceFor(
		time.Date(2026, time.September, 10, 23, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 12, 1, 0, 0, 0, time.UTC),
		1000,
	)
	assert.Equal(t, int64(3), quote.TotalDays)
}
