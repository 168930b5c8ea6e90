package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	animalDomain "github.com/petatwork/service-booking/internal/domain/animal"
	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	paymentDomain "github.com/petatwork/service-booking/internal/domain/payment"
	userDomain "github.com/petatwork/service-booking/internal/domain/user"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// ProcessPaymentRequest holds the data needed to settle a booking.
type ProcessPaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Method    string    `json:"method" binding:"required"`
}

// PaymentDTO is the response representation of a payment.
type PaymentDTO struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"booking_id"`
	BookingKind   string    `json:"booking_kind"`
	AmountCents   int64     `json:"amount_cents"`
	TotalDays     int64     `json:"total_days"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentStatsDTO summarizes settled revenue (admin).
type PaymentStatsDTO struct {
	CompletedTotalCents int64 `json:"completed_total_cents"`
}

// PaymentService is the application service orchestrating settlement and
// refunds.
type PaymentService struct {
	payments       paymentDomain.PaymentRepository
	bookings       bookingDomain.BookingRepository
	animals        animalDomain.AnimalRepository
	actors         userDomain.ActorRepository
	tx             Transactor
	notifier       events.Notifier
	dailyRateCents int64
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	payments paymentDomain.PaymentRepository,
	bookings bookingDomain.BookingRepository,
	animals animalDomain.AnimalRepository,
	actors userDomain.ActorRepository,
	tx Transactor,
	notifier events.Notifier,
	dailyRateCents int64,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:       payments,
		bookings:       bookings,
		animals:        animals,
		actors:         actors,
		tx:             tx,
		notifier:       notifier,
		dailyRateCents: dailyRateCents,
		logger:         logger,
	}
}

// Quote returns the server-side price for a booking without settling it.
func (s *PaymentService) Quote(ctx context.Context, actorID uuid.UUID, role auth.Role, bookingID uuid.UUID) (*bookingDomain.Quote, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, actorID, role, bk); err != nil {
		return nil, err
	}
	quote := bookingDomain.PriceOf(bk, s.dailyRateCents)
	return &quote, nil
}

// ProcessPayment settles an accepted booking: the payment record and the
// booking's move to paid commit or roll back together. The amount is derived
// server-side from the booking's date range; client-supplied amounts are
// never trusted.
func (s *PaymentService) ProcessPayment(ctx context.Context, ownerID uuid.UUID, req ProcessPaymentRequest) (*PaymentDTO, error) {
	method := paymentDomain.Method(req.Method)
	if !method.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", req.Method))
	}

	var pay *paymentDomain.Payment
	var bk *bookingDomain.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		bk, err = s.bookings.FindByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if err := s.authorizeOwner(ctx, ownerID, auth.RoleOwner, bk); err != nil {
			return err
		}

		exists, err := s.payments.ExistsForBooking(ctx, bk.ID())
		if err != nil {
			return err
		}
		if exists {
			return domain.NewConflictError("booking is already paid")
		}

		quote := bookingDomain.PriceOf(bk, s.dailyRateCents)
		pay, err = paymentDomain.NewCompletedPayment(bk.ID(), bk.Kind(), quote, method)
		if err != nil {
			return err
		}

		if err := bk.MarkPaid(); err != nil {
			return err
		}
		if err := s.payments.Save(ctx, pay); err != nil {
			return err
		}
		return s.bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled",
		zap.String("payment_id", pay.ID().String()),
		zap.String("booking_id", bk.ID().String()),
		zap.String("transaction_id", pay.TransactionID()),
		zap.Int64("amount_cents", pay.AmountCents()),
	)

	s.notifyPaid(ctx, ownerID, bk)

	result := toPaymentDTO(pay)
	return &result, nil
}

// GetByBooking returns the payment attached to a booking.
func (s *PaymentService) GetByBooking(ctx context.Context, actorID uuid.UUID, role auth.Role, bookingID uuid.UUID) (*PaymentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && bk.CounterpartyID() != actorID {
		if err := s.authorizeOwner(ctx, actorID, role, bk); err != nil {
			return nil, err
		}
	}

	pay, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toPaymentDTO(pay)
	return &result, nil
}

// Refund reverses a completed payment (admin). The payment moves to refunded
// and the booking to cancelled in one transaction.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID) (*PaymentDTO, error) {
	var pay *paymentDomain.Payment
	var bk *bookingDomain.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		pay, err = s.payments.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		bk, err = s.bookings.FindByIDForUpdate(ctx, pay.BookingID())
		if err != nil {
			return err
		}

		if err := pay.Refund(); err != nil {
			return err
		}
		if err := bk.CancelForRefund(); err != nil {
			return err
		}
		if err := s.payments.Update(ctx, pay); err != nil {
			return err
		}
		return s.bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment refunded",
		zap.String("payment_id", pay.ID().String()),
		zap.String("booking_id", bk.ID().String()),
	)
	s.notifyRefund(ctx, pay, bk)

	result := toPaymentDTO(pay)
	return &result, nil
}

// ListAll lists every payment (admin).
func (s *PaymentService) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[PaymentDTO], error) {
	result, err := s.payments.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPage(result, toPaymentDTO), nil
}

// GetStats returns settled revenue totals (admin).
func (s *PaymentService) GetStats(ctx context.Context) (*PaymentStatsDTO, error) {
	total, err := s.payments.SumCompletedCents(ctx)
	if err != nil {
		return nil, err
	}
	return &PaymentStatsDTO{CompletedTotalCents: total}, nil
}

// authorizeOwner checks that the actor owns the booking's animal, or is an
// admin.
func (s *PaymentService) authorizeOwner(ctx context.Context, actorID uuid.UUID, role auth.Role, bk *bookingDomain.Booking) error {
	if role == auth.RoleAdmin {
		return nil
	}
	animal, err := s.animals.FindByID(ctx, bk.AnimalID())
	if err != nil {
		return err
	}
	if !animal.IsOwnedBy(actorID) {
		return domain.NewForbiddenError("only the animal's owner may pay for this booking")
	}
	return nil
}

// notifyPaid confirms the settlement to the paying owner and tells the
// counterparty the booking is now paid.
func (s *PaymentService) notifyPaid(ctx context.Context, ownerID uuid.UUID, bk *bookingDomain.Booking) {
	for _, recipientID := range []uuid.UUID{ownerID, bk.CounterpartyID()} {
		recipient, err := s.actors.FindByID(ctx, recipientID)
		if err != nil {
			s.logger.Warn("failed to resolve payment recipient", zap.Error(err))
			continue
		}
		s.notifier.Notify(ctx, events.BookingPaid, events.BookingEvent{
			BookingID:      bk.ID(),
			BookingNumber:  bk.BookingNumber(),
			Kind:           string(bk.Kind()),
			AnimalID:       bk.AnimalID(),
			RecipientID:    recipient.ID(),
			RecipientEmail: recipient.Email(),
			Status:         string(bk.Status()),
			StartDate:      bk.StartDate(),
			EndDate:        bk.EndDate(),
		})
	}
}

// notifyRefund tells the animal's owner their payment came back.
func (s *PaymentService) notifyRefund(ctx context.Context, pay *paymentDomain.Payment, bk *bookingDomain.Booking) {
	animal, err := s.animals.FindByID(ctx, bk.AnimalID())
	if err != nil {
		s.logger.Warn("failed to resolve refund recipient", zap.Error(err))
		return
	}
	owner, err := s.actors.FindByID(ctx, animal.OwnerID())
	if err != nil {
		s.logger.Warn("failed to resolve refund recipient", zap.Error(err))
		return
	}

	s.notifier.Notify(ctx, events.PaymentRefunded, events.PaymentEvent{
		PaymentID:      pay.ID(),
		BookingID:      bk.ID(),
		TransactionID:  pay.TransactionID(),
		AmountCents:    pay.AmountCents(),
		RecipientID:    owner.ID(),
		RecipientEmail: owner.Email(),
	})
}

// --- Conversion Helpers ---

func toPaymentDTO(p *paymentDomain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		BookingKind:   string(p.BookingKind()),
		AmountCents:   p.AmountCents(),
		TotalDays:     p.TotalDays(),
		Method:        string(p.Method()),
		Status:        string(p.Status()),
		TransactionID: p.TransactionID(),
		CreatedAt:     p.CreatedAt(),
	}
}
