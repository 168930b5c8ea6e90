package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/petatwork/service-booking/internal/domain/booking"
	paymentDomain "github.com/petatwork/service-booking/internal/domain/payment"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// PaymentModel is the GORM model for the payments table. The unique index on
// booking_id enforces one payment per booking at the storage level.
type PaymentModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	BookingKind   string    `gorm:"not null;size:10"`
	AmountCents   int64     `gorm:"not null"`
	TotalDays     int64     `gorm:"not null"`
	Method        string    `gorm:"not null;size:20"`
	Status        string    `gorm:"not null;size:20;index"`
	TransactionID string    `gorm:"uniqueIndex;not null;size:30"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of PaymentRepository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toDomainPayment(&model), nil
}

// FindByBookingID retrieves the payment attached to a booking.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find payment by booking: %w", err)
	}
	return toDomainPayment(&model), nil
}

// ExistsForBooking reports whether a booking already has a payment.
func (r *GormPaymentRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).WithContext(ctx).Model(&PaymentModel{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	return count > 0, nil
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	if err := conn(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Update persists changes to an existing payment.
func (r *GormPaymentRepository) Update(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Payment", model.ID.String())
	}
	return nil
}

// ListAll retrieves all payments with pagination (admin).
func (r *GormPaymentRepository) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*paymentDomain.Payment], error) {
	db := conn(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&PaymentModel{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i, m := range models {
		payments[i] = toDomainPayment(&m)
	}
	return domain.NewPaginatedResult(payments, total, page, limit), nil
}

// SumCompletedCents totals the amount of completed payments (admin stats).
func (r *GormPaymentRepository) SumCompletedCents(ctx context.Context) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).WithContext(ctx).Model(&PaymentModel{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("status = ?", string(paymentDomain.StatusCompleted)).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum completed payments: %w", err)
	}
	return total, nil
}

// --- Conversion Helpers ---

func toPaymentModel(p *paymentDomain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		BookingKind:   string(p.BookingKind()),
		AmountCents:   p.AmountCents(),
		TotalDays:     p.TotalDays(),
		Method:        string(p.Method()),
		Status:        string(p.Status()),
		TransactionID: p.TransactionID(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toDomainPayment(m *PaymentModel) *paymentDomain.Payment {
	return paymentDomain.Reconstruct(
		m.ID,
		m.BookingID,
		bookingDomain.Kind(m.BookingKind),
		m.AmountCents,
		m.TotalDays,
		paymentDomain.Method(m.Method),
		paymentDomain.Status(m.Status),
		m.TransactionID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
