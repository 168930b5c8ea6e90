package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/domain/booking"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// Method is the payment method chosen by the owner.
type Method string

const (
	MethodCard     Method = "card"
	MethodPaypal   Method = "paypal"
	MethodTransfer Method = "transfer"
)

// IsValid reports whether the method is recognized.
func (m Method) IsValid() bool {
	switch m {
	case MethodCard, MethodPaypal, MethodTransfer:
		return true
	}
	return false
}

// Status represents a payment's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// IsValid reports whether the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is the aggregate root for a settled booking payment. Each booking
// has at most one payment; amounts are in cents and derived server-side from
// the booking's date range.
type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	bookingKind   booking.Kind
	amountCents   int64
	totalDays     int64
	method        Method
	status        Status
	transactionID string

	createdAt time.Time
	updatedAt time.Time
}

// generateTransactionID creates an identifier like "TR-20260830142501-4821".
func generateTransactionID(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate transaction ID: %w", err)
	}
	return fmt.Sprintf("TR-%s-%04d", now.UTC().Format("20060102150405"), n.Int64()), nil
}

// NewCompletedPayment creates a payment in completed status for a settled
// booking.
func NewCompletedPayment(bookingID uuid.UUID, kind booking.Kind, quote booking.Quote, method Method) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if !kind.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking kind: %s", kind))
	}
	if !method.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", method))
	}
	if quote.AmountCents <= 0 {
		return nil, domain.NewValidationError("payment amount must be positive")
	}

	now := time.Now().UTC()
	txnID, err := generateTransactionID(now)
	if err != nil {
		return nil, err
	}

	return &Payment{
		id:            uuid.New(),
		bookingID:     bookingID,
		bookingKind:   kind,
		amountCents:   quote.AmountCents,
		totalDays:     quote.TotalDays,
		method:        method,
		status:        StatusCompleted,
		transactionID: txnID,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, bookingID uuid.UUID,
	kind booking.Kind,
	amountCents, totalDays int64,
	method Method,
	status Status,
	transactionID string,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		bookingKind:   kind,
		amountCents:   amountCents,
		totalDays:     totalDays,
		method:        method,
		status:        status,
		transactionID: transactionID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID             { return p.id }
func (p *Payment) BookingID() uuid.UUID      { return p.bookingID }
func (p *Payment) BookingKind() booking.Kind { return p.bookingKind }
func (p *Payment) AmountCents() int64        { return p.amountCents }
func (p *Payment) TotalDays() int64          { return p.totalDays }
func (p *Payment) Method() Method            { return p.method }
func (p *Payment) Status() Status            { return p.status }
func (p *Payment) TransactionID() string     { return p.transactionID }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time      { return p.updatedAt }

// --- Behavior ---

// Refund marks a completed payment as refunded.
func (p *Payment) Refund() error {
	if p.status != StatusCompleted {
		return domain.NewInvalidStateError(string(p.status), string(StatusRefunded))
	}
	p.status = StatusRefunded
	p.updatedAt = time.Now().UTC()
	return nil
}
