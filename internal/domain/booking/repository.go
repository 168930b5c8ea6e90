package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// Conflict describes an existing active booking that blocks a requested date
// range for an animal.
type Conflict struct {
	BookingID     uuid.UUID
	BookingNumber string
	Kind          Kind
	StartDate     time.Time
	EndDate       time.Time
}

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error
	// Update persists changes to an existing booking.
	Update(ctx context.Context, b *Booking) error
	// FindByID retrieves a booking by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// FindByIDForUpdate retrieves a booking by ID, row-locked for the
	// duration of the enclosing transaction where the database supports it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	// FindByAnimalID lists all bookings for an animal, newest first.
	FindByAnimalID(ctx context.Context, animalID uuid.UUID) ([]*Booking, error)
	// FindByOwnerID lists bookings across all of an owner's animals.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[*Booking], error)
	// FindByCounterparty lists bookings addressed to a sitter or company.
	FindByCounterparty(ctx context.Context, kind Kind, counterpartyID uuid.UUID, page, limit int) (*domain.PaginatedResult[*Booking], error)
	// FindActiveOverlapping returns conflicts from active bookings of either
	// kind whose inclusive date range intersects [startDate, endDate].
	FindActiveOverlapping(ctx context.Context, animalID uuid.UUID, startDate, endDate time.Time) ([]Conflict, error)
	// CountAcceptedByCompany returns the number of accepted company bookings
	// per company, for the capacity gate.
	CountAcceptedByCompany(ctx context.Context) (map[uuid.UUID]int64, error)
	// ListAll lists every booking, newest first.
	ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*Booking], error)
	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
