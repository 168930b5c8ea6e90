//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/application"
	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	"github.com/petatwork/service-booking/internal/pkg/auth"
)

// TestBookingLifecycle_NotificationsDelivered drives a booking from request
// through acceptance and payment against real PostgreSQL and Kafka, and
// verifies the notification consumer delivers mail to both parties.
func TestBookingLifecycle_NotificationsDelivered(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	mailer := &recordingMailer{}
	stack := setupServiceStack(t, infra.DB, infra.KafkaBrokers, mailer)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Register both parties and an animal.
	owner, err := stack.Users.Register(ctx, application.RegisterRequest{
		Email: "marie@example.com", Name: "Marie", Role: "owner",
		Password: "password123", Address: "12 Rue des Lilas",
	})
	require.NoError(t, err)

	sitter, err := stack.Users.Register(ctx, application.RegisterRequest{
		Email: "paul@example.com", Name: "Paul", Role: "sitter",
		Password: "password123", Experience: "5 years with dogs",
	})
	require.NoError(t, err)

	animal, err := stack.Animals.CreateAnimal(ctx, owner.ID, application.CreateAnimalRequest{
		Name: "Luna", AnimalType: "dog", Breed: "labrador",
	})
	require.NoError(t, err)

	// Owner requests a five-day sitter booking.
	start := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC)
	bk, err := stack.Bookings.CreateBooking(ctx, owner.ID, application.CreateBookingRequest{
		Kind:           "sitter",
		AnimalID:       animal.ID,
		CounterpartyID: sitter.ID,
		StartDate:      start,
		EndDate:        end,
	})
	require.NoError(t, err)

	// The sitter gets the request notification.
	require.Eventually(t, func() bool {
		return len(mailer.forRecipient("paul@example.com")) >= 1
	}, 15*time.Second, 200*time.Millisecond, "sitter never received the booking request")

	// Sitter accepts; owner is told.
	_, err = stack.Bookings.UpdateStatus(ctx, sitter.ID, auth.RoleSitter, bk.ID, bookingDomain.StatusAccepted)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(mailer.forRecipient("marie@example.com")) >= 1
	}, 15*time.Second, 200*time.Millisecond, "owner never received the acceptance")

	// Owner pays; the booking settles atomically.
	pay, err := stack.Payments.ProcessPayment(ctx, owner.ID, application.ProcessPaymentRequest{
		BookingID: bk.ID,
		Method:    "card",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), pay.AmountCents)
	assert.Equal(t, "completed", pay.Status)

	settled, err := stack.Bookings.GetBooking(ctx, owner.ID, auth.RoleOwner, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", settled.Status)

	// The sitter is told about the payment.
	require.Eventually(t, func() bool {
		return len(mailer.forRecipient("paul@example.com")) >= 2
	}, 15*time.Second, 200*time.Millisecond, "sitter never received the payment notification")

	// A conflicting booking for the same animal is rejected even under
	// postgres row locking.
	_, err = stack.Bookings.CreateBooking(ctx, owner.ID, application.CreateBookingRequest{
		Kind:           "sitter",
		AnimalID:       animal.ID,
		CounterpartyID: sitter.ID,
		StartDate:      end,
		EndDate:        end.AddDate(0, 0, 3),
	})
	require.Error(t, err)
}
