package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// BookingModel is the GORM model for the bookings table. Sitter and company
// bookings share the table, discriminated by kind.
type BookingModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber  string    `gorm:"uniqueIndex;not null;size:20"`
	Kind           string    `gorm:"not null;size:10;index"`
	AnimalID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CounterpartyID uuid.UUID `gorm:"type:uuid;index;not null"`
	StartDate      time.Time `gorm:"not null;index"`
	EndDate        time.Time `gorm:"not null"`
	Status         string    `gorm:"not null;size:30;index"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// activeStatuses are the statuses that still reserve an animal's dates.
var activeStatuses = []string{
	string(bookingDomain.StatusPending),
	string(bookingDomain.StatusAccepted),
	string(bookingDomain.StatusPaid),
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByIDForUpdate retrieves a booking row-locked for the enclosing
// transaction. Status updates and settlement go through this so concurrent
// writers serialize on the booking row.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	db := conn(ctx, r.db)
	query := db.WithContext(ctx)
	if supportsRowLocking(db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model BookingModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking for update: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByAnimalID lists all bookings for an animal, newest first.
func (r *GormBookingRepository) FindByAnimalID(ctx context.Context, animalID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("animal_id = ?", animalID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by animal: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindByOwnerID lists bookings across all of an owner's animals with
// pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	db := conn(ctx, r.db).WithContext(ctx)
	ownerScope := db.Model(&BookingModel{}).
		Joins("JOIN animals ON animals.id = bookings.animal_id").
		Where("animals.owner_id = ?", ownerID)

	var total int64
	if err := ownerScope.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := conn(ctx, r.db).WithContext(ctx).
		Joins("JOIN animals ON animals.id = bookings.animal_id").
		Where("animals.owner_id = ?", ownerID).
		Order("bookings.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	return domain.NewPaginatedResult(toDomainBookings(models), total, page, limit), nil
}

// FindByCounterparty lists bookings addressed to a sitter or company with
// pagination.
func (r *GormBookingRepository) FindByCounterparty(ctx context.Context, kind bookingDomain.Kind, counterpartyID uuid.UUID, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	db := conn(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&BookingModel{}).
		Where("kind = ? AND counterparty_id = ?", string(kind), counterpartyID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count counterparty bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Where("kind = ? AND counterparty_id = ?", string(kind), counterpartyID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find counterparty bookings: %w", err)
	}

	return domain.NewPaginatedResult(toDomainBookings(models), total, page, limit), nil
}

// FindActiveOverlapping returns conflicts from active bookings of either
// kind whose inclusive range intersects [startDate, endDate]:
// start_date <= endDate AND end_date >= startDate.
func (r *GormBookingRepository) FindActiveOverlapping(ctx context.Context, animalID uuid.UUID, startDate, endDate time.Time) ([]bookingDomain.Conflict, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("animal_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?",
			animalID, activeStatuses, endDate, startDate).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}

	conflicts := make([]bookingDomain.Conflict, len(models))
	for i, m := range models {
		conflicts[i] = bookingDomain.Conflict{
			BookingID:     m.ID,
			BookingNumber: m.BookingNumber,
			Kind:          bookingDomain.Kind(m.Kind),
			StartDate:     m.StartDate,
			EndDate:       m.EndDate,
		}
	}
	return conflicts, nil
}

// CountAcceptedByCompany returns the number of accepted company bookings per
// company.
func (r *GormBookingRepository) CountAcceptedByCompany(ctx context.Context) (map[uuid.UUID]int64, error) {
	type companyCount struct {
		CounterpartyID uuid.UUID
		Count          int64
	}
	var results []companyCount
	if err := conn(ctx, r.db).WithContext(ctx).Model(&BookingModel{}).
		Select("counterparty_id, count(*) as count").
		Where("kind = ? AND status = ?", string(bookingDomain.KindCompany), string(bookingDomain.StatusAccepted)).
		Group("counterparty_id").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count accepted company bookings: %w", err)
	}

	counts := make(map[uuid.UUID]int64)
	for _, cc := range results {
		counts[cc.CounterpartyID] = cc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := conn(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"start_date": model.StartDate,
			"end_date":   model.EndDate,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", model.ID.String())
	}
	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	db := conn(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return domain.NewPaginatedResult(toDomainBookings(models), total, page, limit), nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[bookingDomain.Status]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := conn(ctx, r.db).WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[bookingDomain.Status]int64)
	for _, sc := range results {
		counts[bookingDomain.Status(sc.Status)] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		bookingDomain.Kind(m.Kind),
		m.AnimalID,
		m.CounterpartyID,
		m.StartDate.UTC(),
		m.EndDate.UTC(),
		bookingDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings
}
