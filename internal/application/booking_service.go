package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	animalDomain "github.com/petatwork/service-booking/internal/domain/animal"
	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	engagementDomain "github.com/petatwork/service-booking/internal/domain/engagement"
	userDomain "github.com/petatwork/service-booking/internal/domain/user"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// CreateBookingRequest holds the data needed to request a care booking.
type CreateBookingRequest struct {
	Kind           string    `json:"kind" binding:"required"`
	AnimalID       uuid.UUID `json:"animal_id" binding:"required"`
	CounterpartyID uuid.UUID `json:"counterparty_id" binding:"required"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
}

// UpdateBookingStatusRequest carries the target status for a booking.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID             uuid.UUID `json:"id"`
	BookingNumber  string    `json:"booking_number"`
	Kind           string    `json:"kind"`
	AnimalID       uuid.UUID `json:"animal_id"`
	CounterpartyID uuid.UUID `json:"counterparty_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConflictDTO describes an existing booking that blocks a requested range.
type ConflictDTO struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	Kind          string    `json:"kind"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings         bookingDomain.BookingRepository
	animals          animalDomain.AnimalRepository
	actors           userDomain.ActorRepository
	engagements      *EngagementService
	tx               Transactor
	notifier         events.Notifier
	allowOwnerAccept bool
	logger           *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	animals animalDomain.AnimalRepository,
	actors userDomain.ActorRepository,
	engagements *EngagementService,
	tx Transactor,
	notifier events.Notifier,
	allowOwnerAccept bool,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:         bookings,
		animals:          animals,
		actors:           actors,
		engagements:      engagements,
		tx:               tx,
		notifier:         notifier,
		allowOwnerAccept: allowOwnerAccept,
		logger:           logger,
	}
}

// CreateBooking requests a care booking for one of the owner's animals. The
// conflict check and the insert run in one transaction with the animal row
// locked, so two concurrent requests for the same animal cannot both pass.
func (s *BookingService) CreateBooking(ctx context.Context, ownerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	kind := bookingDomain.Kind(req.Kind)
	if !kind.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking kind: %s", req.Kind))
	}

	counterparty, err := s.actors.FindByID(ctx, req.CounterpartyID)
	if err != nil {
		return nil, err
	}
	if err := checkCounterpartyRole(kind, counterparty.Role()); err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(kind, req.AnimalID, req.CounterpartyID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		animal, err := s.animals.FindByIDForUpdate(ctx, req.AnimalID)
		if err != nil {
			return err
		}
		if !animal.IsOwnedBy(ownerID) {
			return domain.NewForbiddenError("animal belongs to another owner")
		}

		conflicts, err := s.bookings.FindActiveOverlapping(ctx, req.AnimalID, bk.StartDate(), bk.EndDate())
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			first := conflicts[0]
			return domain.NewConflictError(fmt.Sprintf(
				"animal already has booking %s from %s to %s",
				first.BookingNumber,
				first.StartDate.Format("2006-01-02"),
				first.EndDate.Format("2006-01-02"),
			))
		}

		return s.bookings.Save(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("booking_number", bk.BookingNumber()),
		zap.String("kind", string(bk.Kind())),
	)

	s.notifier.Notify(ctx, events.BookingRequested, events.BookingEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		Kind:           string(bk.Kind()),
		AnimalID:       bk.AnimalID(),
		RecipientID:    counterparty.ID(),
		RecipientEmail: counterparty.Email(),
		Status:         string(bk.Status()),
		StartDate:      bk.StartDate(),
		EndDate:        bk.EndDate(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CheckAvailability lists active bookings that would block the given range
// for an animal.
func (s *BookingService) CheckAvailability(ctx context.Context, ownerID, animalID uuid.UUID, startDate, endDate time.Time) ([]ConflictDTO, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if !animal.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("animal belongs to another owner")
	}

	start := bookingDomain.NormalizeDate(startDate)
	end := bookingDomain.NormalizeDate(endDate)
	if end.Before(start) {
		return nil, domain.NewValidationError("end date must not be before start date")
	}

	conflicts, err := s.bookings.FindActiveOverlapping(ctx, animalID, start, end)
	if err != nil {
		return nil, err
	}

	result := make([]ConflictDTO, len(conflicts))
	for i, c := range conflicts {
		result[i] = ConflictDTO{
			BookingID:     c.BookingID,
			BookingNumber: c.BookingNumber,
			Kind:          string(c.Kind),
			StartDate:     c.StartDate,
			EndDate:       c.EndDate,
		}
	}
	return result, nil
}

// GetBooking returns a booking visible to the calling actor: the animal's
// owner, the booking's counterparty, or an admin.
func (s *BookingService) GetBooking(ctx context.Context, actorID uuid.UUID, role auth.Role, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, actorID, role, bk); err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListOwnerBookings lists bookings across all of the owner's animals.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	result, err := s.bookings.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPage(result, toBookingDTO), nil
}

// ListCounterpartyBookings lists bookings addressed to the calling sitter or
// company.
func (s *BookingService) ListCounterpartyBookings(ctx context.Context, actorID uuid.UUID, role auth.Role, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	kind, err := kindForRole(role)
	if err != nil {
		return nil, err
	}
	result, err := s.bookings.FindByCounterparty(ctx, kind, actorID, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPage(result, toBookingDTO), nil
}

// ListAnimalBookings lists all bookings for one of the owner's animals.
func (s *BookingService) ListAnimalBookings(ctx context.Context, ownerID, animalID uuid.UUID) ([]BookingDTO, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if !animal.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("animal belongs to another owner")
	}

	bookings, err := s.bookings.FindByAnimalID(ctx, animalID)
	if err != nil {
		return nil, err
	}

	result := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		result[i] = toBookingDTO(bk)
	}
	return result, nil
}

// UpdateStatus moves a booking through its state machine on behalf of the
// calling actor. Setting the current status again is a no-op success. When a
// pet owner cancels a sitter booking, the sitter's engagements contained in
// the booking's range are cancelled in the same transaction.
func (s *BookingService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role auth.Role, bookingID uuid.UUID, target bookingDomain.Status) (*BookingDTO, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}

	var bk *bookingDomain.Booking
	var cascaded []*engagementDomain.Engagement
	changed := false

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		bk, err = s.bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizeParty(ctx, actorID, role, bk); err != nil {
			return err
		}

		// Re-posting the current status is idempotent.
		if bk.Status() == target {
			return nil
		}
		changed = true

		if !bookingDomain.RoleCanSet(role, target, s.allowOwnerAccept) {
			return domain.NewForbiddenError(fmt.Sprintf("role %s may not set status %s", role, target))
		}
		if err := bk.TransitionTo(target); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}

		if target == bookingDomain.StatusCancelled && role == auth.RoleOwner && bk.Kind() == bookingDomain.KindSitter {
			cascaded, err = s.engagements.CascadeCancel(ctx, bk.CounterpartyID(), bk.StartDate(), bk.EndDate())
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("booking status updated",
			zap.String("booking_id", bk.ID().String()),
			zap.String("status", string(bk.Status())),
			zap.Int("cascaded_engagements", len(cascaded)),
		)
		s.notifyStatusChange(ctx, bk)
		s.engagements.NotifyCascade(ctx, bk.CounterpartyID(), cascaded)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ListAll lists every booking (admin).
func (s *BookingService) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	result, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPage(result, toBookingDTO), nil
}

// GetStats returns booking counts by status (admin).
func (s *BookingService) GetStats(ctx context.Context) (map[string]int64, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64, len(counts))
	for status, count := range counts {
		stats[string(status)] = count
	}
	return stats, nil
}

// authorizeParty checks that the actor is a party to the booking: the
// animal's owner, the counterparty, or an admin.
func (s *BookingService) authorizeParty(ctx context.Context, actorID uuid.UUID, role auth.Role, bk *bookingDomain.Booking) error {
	if role == auth.RoleAdmin {
		return nil
	}
	if bk.CounterpartyID() == actorID {
		return nil
	}

	animal, err := s.animals.FindByID(ctx, bk.AnimalID())
	if err != nil {
		return err
	}
	if animal.IsOwnedBy(actorID) {
		return nil
	}
	return domain.NewForbiddenError("not a party to this booking")
}

// notifyStatusChange tells both counterparties about a status change: the
// animal's owner and the booking's counterparty each get a notification.
func (s *BookingService) notifyStatusChange(ctx context.Context, bk *bookingDomain.Booking) {
	animal, err := s.animals.FindByID(ctx, bk.AnimalID())
	if err != nil {
		s.logger.Warn("failed to resolve notification recipient",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
		return
	}

	eventType := events.BookingStatusSet
	if bk.Status() == bookingDomain.StatusCancelled {
		eventType = events.BookingCancelled
	}

	for _, recipientID := range []uuid.UUID{animal.OwnerID(), bk.CounterpartyID()} {
		recipient, err := s.actors.FindByID(ctx, recipientID)
		if err != nil {
			s.logger.Warn("failed to resolve notification recipient",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			continue
		}
		s.notifier.Notify(ctx, eventType, events.BookingEvent{
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

// checkCounterpartyRole verifies the counterparty's role matches the booking
// kind.
func checkCounterpartyRole(kind bookingDomain.Kind, role auth.Role) error {
	switch kind {
	case bookingDomain.KindSitter:
		if role != auth.RoleSitter {
			return domain.NewValidationError("counterparty of a sitter booking must be a pet sitter")
		}
	case bookingDomain.KindCompany:
		if role != auth.RoleCompany {
			return domain.NewValidationError("counterparty of a company booking must be a company")
		}
	}
	return nil
}

// kindForRole maps a counterparty role to its booking kind.
func kindForRole(role auth.Role) (bookingDomain.Kind, error) {
	switch role {
	case auth.RoleSitter:
		return bookingDomain.KindSitter, nil
	case auth.RoleCompany:
		return bookingDomain.KindCompany, nil
	}
	return "", domain.NewForbiddenError("only sitters and companies receive bookings")
}

// --- Conversion Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:             bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		Kind:           string(bk.Kind()),
		AnimalID:       bk.AnimalID(),
		CounterpartyID: bk.CounterpartyID(),
		StartDate:      bk.StartDate(),
		EndDate:        bk.EndDate(),
		Status:         string(bk.Status()),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}

// mapPage converts a page of domain objects into a page of DTOs.
func mapPage[T any, U any](in *domain.PaginatedResult[T], convert func(T) U) *domain.PaginatedResult[U] {
	items := make([]U, len(in.Items))
	for i, item := range in.Items {
		items[i] = convert(item)
	}
	return domain.NewPaginatedResult(items, in.Total, in.Page, in.Limit)
}
