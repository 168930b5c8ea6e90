package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/application"
	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

func acceptedBooking(t *testing.T, s *testStack, ownerID, animalID, sitterID uuid.UUID, start, end time.Time) *application.BookingDTO {
	t.Helper()
	bk := createBooking(t, s, ownerID, "sitter", animalID, sitterID, start, end)
	accepted, err := s.Bookings.UpdateStatus(context.Background(), sitterID, auth.RoleSitter, bk.ID, bookingDomain.StatusAccepted)
	require.NoError(t, err)
	return accepted
}

func TestProcessPayment_SettlesAcceptedBooking(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	// September 10 through 14 is five billable days.
	bk := acceptedBooking(t, s, ownerID, animalID, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 14))

	pay, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), pay.TotalDays)
	assert.Equal(t, int64(5*testDailyRateCents), pay.AmountCents)
	assert.Equal(t, "completed", pay.Status)
	assert.Regexp(t, `^TR-\d{14}-\d{4}$`, pay.TransactionID)

	settled, err := s.Bookings.GetBooking(context.Background(), ownerID, auth.RoleOwner, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", settled.Status)

	// The paying owner and the sitter each get a confirmation.
	paid := s.Notifier.byType(events.BookingPaid)
	require.Len(t, paid, 2)
	recipients := map[uuid.UUID]bool{}
	for _, n := range paid {
		recipients[n.Payload.(events.BookingEvent).RecipientID] = true
	}
	assert.True(t, recipients[ownerID])
	assert.True(t, recipients[sitterID])
}

func TestProcessPayment_SingleDayBooking(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	day := date(2026, time.September, 10)
	bk := acceptedBooking(t, s, ownerID, animalID, sitterID, day, day)

	pay, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "paypal",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pay.TotalDays)
	assert.Equal(t, int64(testDailyRateCents), pay.AmountCents)
}

func TestProcessPayment_DoublePayConflicts(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	bk := acceptedBooking(t, s, ownerID, animalID, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	_, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.NoError(t, err)

	_, err = s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeConflict, appErr.Code)
}

func TestProcessPayment_PendingBookingRejected(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	bk := createBooking(t, s, ownerID, "sitter", animalID, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	_, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeInvalidState, appErr.Code)
}

func TestProcessPayment_OnlyOwnerMayPay(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	intruderID := registerOwner(t, s, "intrus@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	bk := acceptedBooking(t, s, ownerID, animalID, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	_, err := s.Payments.ProcessPayment(context.Background(), intruderID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeForbidden, appErr.Code)
}

func TestProcessPayment_InvalidMethod(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")

	_, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: uuid.New(),
		Method:    "barter",
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeValidation, appErr.Code)
}

func TestQuote_MatchesSettledAmount(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	bk := createBooking(t, s, ownerID, "sitter", animalID, sitterID,
		date(2026, time.September, 1), date(2026, time.September, 7))

	quote, err := s.Payments.Quote(context.Background(), ownerID, auth.RoleOwner, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), quote.TotalDays)
	assert.Equal(t, int64(testDailyRateCents), quote.RateCents)
	assert.Equal(t, int64(7*testDailyRateCents), quote.AmountCents)
}

func TestRefund_ReversesPaymentAndCancelsBooking(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	bk := acceptedBooking(t, s, ownerID, animalID, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	pay, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.NoError(t, err)

	refunded, err := s.Payments.Refund(context.Background(), pay.ID)
	require.NoError(t, err)
	assert.Equal(t, "refunded", refunded.Status)

	cancelled, err := s.Bookings.GetBooking(context.Background(), ownerID, auth.RoleOwner, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	require.Len(t, s.Notifier.byType(events.PaymentRefunded), 1)
}

func TestRefund_TwiceFails(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	bk := acceptedBooking(t, s, ownerID, animalID, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	pay, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.NoError(t, err)

	_, err = s.Payments.Refund(context.Background(), pay.ID)
	require.NoError(t, err)

	_, err = s.Payments.Refund(context.Background(), pay.ID)
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeInvalidState, appErr.Code)
}

func TestPaymentStats_SumsCompletedOnly(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	sitterID := registerSitter(t, s, "paul@example.com")
	animal1 := createAnimal(t, s, ownerID, "Luna")
	animal2 := createAnimal(t, s, ownerID, "Rex")

	bk1 := acceptedBooking(t, s, ownerID, animal1, sitterID,
		date(2026, time.September, 10), date(2026, time.September, 12)) // 3 days
	bk2 := acceptedBooking(t, s, ownerID, animal2, sitterID,
		date(2026, time.October, 1), date(2026, time.October, 2)) // 2 days

	pay1, err := s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{BookingID: bk1.ID, Method: "card"})
	require.NoError(t, err)
	_, err = s.Payments.ProcessPayment(context.Background(), ownerID, application.ProcessPaymentRequest{BookingID: bk2.ID, Method: "transfer"})
	require.NoError(t, err)

	stats, err := s.Payments.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5*testDailyRateCents), stats.CompletedTotalCents)

	// Refunded payments drop out of the total.
	_, err = s.Payments.Refund(context.Background(), pay1.ID)
	require.NoError(t, err)

	stats, err = s.Payments.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2*testDailyRateCents), stats.CompletedTotalCents)
}
