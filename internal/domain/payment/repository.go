package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	// Save persists a new payment.
	Save(ctx context.Context, p *Payment) error
	// Update persists changes to an existing payment.
	Update(ctx context.Context, p *Payment) error
	// FindByID retrieves a payment by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByBookingID retrieves the payment attached to a booking, or a
	// not-found error when the booking is unpaid.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	// ExistsForBooking reports whether a booking already has a payment.
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	// ListAll lists every payment, newest first.
	ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*Payment], error)
	// SumCompletedCents totals the amount of completed payments.
	SumCompletedCents(ctx context.Context) (int64, error)
}
