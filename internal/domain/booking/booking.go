package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Kind distinguishes the two care-booking counterparty kinds.
type Kind string

const (
	// KindSitter is a booking between a pet owner and a pet sitter.
	KindSitter Kind = "sitter"
	// KindCompany is a booking between a pet owner and a company.
	KindCompany Kind = "company"
)

// IsValid reports whether the kind is recognized.
func (k Kind) IsValid() bool {
	return k == KindSitter || k == KindCompany
}

// Booking is the aggregate root for a care booking of an animal, either with
// a pet sitter or with a company. Date ranges are inclusive on both ends and
// normalized to UTC midnight.
type Booking struct {
	id             uuid.UUID
	bookingNumber  string
	kind           Kind
	animalID       uuid.UUID
	counterpartyID uuid.UUID
	startDate      time.Time
	endDate        time.Time
	status         Status

	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NormalizeDate truncates a timestamp to UTC midnight. All booking dates are
// stored in this form so inclusive-range comparisons are exact.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewBooking creates a new Booking in pending status.
func NewBooking(kind Kind, animalID, counterpartyID uuid.UUID, startDate, endDate time.Time) (*Booking, error) {
	if !kind.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking kind: %s", kind))
	}
	if animalID == uuid.Nil {
		return nil, domain.NewValidationError("animal ID is required")
	}
	if counterpartyID == uuid.Nil {
		return nil, domain.NewValidationError("counterparty ID is required")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, domain.NewValidationError("start and end dates are required")
	}

	startDate = NormalizeDate(startDate)
	endDate = NormalizeDate(endDate)
	if endDate.Before(startDate) {
		return nil, domain.NewValidationError("end date must not be before start date")
	}

	number, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:             uuid.New(),
		bookingNumber:  number,
		kind:           kind,
		animalID:       animalID,
		counterpartyID: counterpartyID,
		startDate:      startDate,
		endDate:        endDate,
		status:         StatusPending,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	kind Kind,
	animalID, counterpartyID uuid.UUID,
	startDate, endDate time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		bookingNumber:  bookingNumber,
		kind:           kind,
		animalID:       animalID,
		counterpartyID: counterpartyID,
		startDate:      startDate,
		endDate:        endDate,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID             { return b.id }
func (b *Booking) BookingNumber() string     { return b.bookingNumber }
func (b *Booking) Kind() Kind                { return b.kind }
func (b *Booking) AnimalID() uuid.UUID       { return b.animalID }
func (b *Booking) CounterpartyID() uuid.UUID { return b.counterpartyID }
func (b *Booking) StartDate() time.Time      { return b.startDate }
func (b *Booking) EndDate() time.Time        { return b.endDate }
func (b *Booking) Status() Status            { return b.status }
func (b *Booking) CreatedAt() time.Time      { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time      { return b.updatedAt }

// IsActive reports whether the booking blocks other bookings for its animal.
func (b *Booking) IsActive() bool {
	return b.status.IsActive()
}

// Overlaps reports whether the booking's inclusive date range overlaps
// [start, end].
func (b *Booking) Overlaps(start, end time.Time) bool {
	return RangesOverlap(b.startDate, b.endDate, start, end)
}

// --- Behavior ---

// TransitionTo applies a status change through the state machine. The paid
// status is unreachable here; payment settlement is its only entry point.
func (b *Booking) TransitionTo(target Status) error {
	if target == StatusPaid {
		return domain.NewValidationError("paid status can only be set through payment settlement")
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkPaid flips the booking to paid. Only callable from accepted; used
// exclusively by payment settlement.
func (b *Booking) MarkPaid() error {
	if !b.status.CanTransitionTo(StatusPaid) {
		return domain.NewInvalidStateError(string(b.status), string(StatusPaid))
	}
	b.status = StatusPaid
	b.updatedAt = time.Now().UTC()
	return nil
}

// CancelForRefund forces a paid booking back to cancelled. This bypasses the
// ordinary transition table; it is only reachable from the refund flow.
func (b *Booking) CancelForRefund() error {
	if b.status != StatusPaid {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// RangesOverlap reports whether two inclusive date ranges intersect:
// aStart <= bEnd AND aEnd >= bStart.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
