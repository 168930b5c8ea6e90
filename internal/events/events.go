package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic names.
const (
	TopicNotificationEvents = "notification.events"
)

// Event source, used as the CloudEvents source attribute.
const SourceBookingService = "petatwork/service-booking"

// Notification event types.
const (
	BookingRequested    = "booking.requested"
	BookingStatusSet    = "booking.status_set"
	BookingCancelled    = "booking.cancelled"
	BookingPaid         = "booking.paid"
	PaymentRefunded     = "payment.refunded"
	EngagementRequested = "engagement.requested"
	EngagementStatusSet = "engagement.status_set"
	EngagementCascaded  = "engagement.cascaded"
	PasswordResetIssued = "password.reset_issued"
)

// BookingEvent is the payload for booking lifecycle notifications. The
// recipient is the actor that should be told about the change.
type BookingEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	Kind           string    `json:"kind"`
	AnimalID       uuid.UUID `json:"animal_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// PaymentEvent is the payload for settlement and refund notifications.
type PaymentEvent struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	BookingID      uuid.UUID `json:"booking_id"`
	TransactionID  string    `json:"transaction_id"`
	AmountCents    int64     `json:"amount_cents"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
}

// EngagementEvent is the payload for engagement lifecycle notifications,
// including cascade cancellations.
type EngagementEvent struct {
	EngagementID   uuid.UUID `json:"engagement_id"`
	SitterID       uuid.UUID `json:"sitter_id"`
	CompanyID      uuid.UUID `json:"company_id"`
	ServiceType    string    `json:"service_type"`
	Status         string    `json:"status"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
}

// PasswordResetEvent is the payload for password reset code delivery.
type PasswordResetEvent struct {
	ActorID        uuid.UUID `json:"actor_id"`
	RecipientEmail string    `json:"recipient_email"`
	Code           string    `json:"code"`
	ExpiresAt      time.Time `json:"expires_at"`
}
