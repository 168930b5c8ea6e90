package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	engagementDomain "github.com/petatwork/service-booking/internal/domain/engagement"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// EngagementModel is the GORM model for the engagements table.
type EngagementModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SitterID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceType string    `gorm:"not null;size:20"`
	Details     string    `gorm:"size:1000"`
	StartDate   time.Time `gorm:"not null;index"`
	EndDate     time.Time `gorm:"not null"`
	Status      string    `gorm:"not null;size:30;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (EngagementModel) TableName() string {
	return "engagements"
}

// GormEngagementRepository is the GORM-based implementation of
// EngagementRepository.
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new GormEngagementRepository.
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// FindByID retrieves an engagement by its unique identifier.
func (r *GormEngagementRepository) FindByID(ctx context.Context, id uuid.UUID) (*engagementDomain.Engagement, error) {
	var model EngagementModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Engagement", id.String())
		}
		return nil, fmt.Errorf("failed to find engagement by ID: %w", err)
	}
	return toDomainEngagement(&model), nil
}

// FindByIDForUpdate retrieves an engagement and locks its row for the
// duration of the surrounding transaction.
func (r *GormEngagementRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*engagementDomain.Engagement, error) {
	db := conn(ctx, r.db).WithContext(ctx)
	if supportsRowLocking(r.db) {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model EngagementModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Engagement", id.String())
		}
		return nil, fmt.Errorf("failed to find engagement by ID: %w", err)
	}
	return toDomainEngagement(&model), nil
}

// FindBySitterID lists a sitter's engagements with pagination.
func (r *GormEngagementRepository) FindBySitterID(ctx context.Context, sitterID uuid.UUID, page, limit int) (*domain.PaginatedResult[*engagementDomain.Engagement], error) {
	return r.findByActor(ctx, "sitter_id", sitterID, page, limit)
}

// FindByCompanyID lists a company's engagements with pagination.
func (r *GormEngagementRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, page, limit int) (*domain.PaginatedResult[*engagementDomain.Engagement], error) {
	return r.findByActor(ctx, "company_id", companyID, page, limit)
}

func (r *GormEngagementRepository) findByActor(ctx context.Context, column string, actorID uuid.UUID, page, limit int) (*domain.PaginatedResult[*engagementDomain.Engagement], error) {
	db := conn(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&EngagementModel{}).Where(column+" = ?", actorID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count engagements: %w", err)
	}

	var models []EngagementModel
	offset := (page - 1) * limit
	if err := db.
		Where(column+" = ?", actorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find engagements: %w", err)
	}

	engagements := make([]*engagementDomain.Engagement, len(models))
	for i, m := range models {
		engagements[i] = toDomainEngagement(&m)
	}
	return domain.NewPaginatedResult(engagements, total, page, limit), nil
}

// FindContainedBySitter returns the sitter's non-terminal engagements whose
// date range lies fully inside [startDate, endDate]. Rows are locked so the
// cancellation cascade cannot race a concurrent status change.
func (r *GormEngagementRepository) FindContainedBySitter(ctx context.Context, sitterID uuid.UUID, startDate, endDate time.Time) ([]*engagementDomain.Engagement, error) {
	openStatuses := []string{
		string(engagementDomain.StatusPending),
		string(engagementDomain.StatusAccepted),
	}

	db := conn(ctx, r.db).WithContext(ctx)
	if supportsRowLocking(r.db) {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var models []EngagementModel
	if err := db.
		Where("sitter_id = ? AND status IN ? AND start_date >= ? AND end_date <= ?",
			sitterID, openStatuses, startDate, endDate).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find contained engagements: %w", err)
	}

	engagements := make([]*engagementDomain.Engagement, len(models))
	for i, m := range models {
		engagements[i] = toDomainEngagement(&m)
	}
	return engagements, nil
}

// Save persists a new engagement.
func (r *GormEngagementRepository) Save(ctx context.Context, e *engagementDomain.Engagement) error {
	model := toEngagementModel(e)
	if err := conn(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save engagement: %w", err)
	}
	return nil
}

// Update persists changes to an existing engagement.
func (r *GormEngagementRepository) Update(ctx context.Context, e *engagementDomain.Engagement) error {
	model := toEngagementModel(e)
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&EngagementModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"details":    model.Details,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update engagement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Engagement", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toEngagementModel(e *engagementDomain.Engagement) *EngagementModel {
	return &EngagementModel{
		ID:          e.ID(),
		SitterID:    e.SitterID(),
		CompanyID:   e.CompanyID(),
		ServiceType: string(e.ServiceType()),
		Details:     e.Details(),
		StartDate:   e.StartDate(),
		EndDate:     e.EndDate(),
		Status:      string(e.Status()),
		CreatedAt:   e.CreatedAt(),
		UpdatedAt:   e.UpdatedAt(),
	}
}

func toDomainEngagement(m *EngagementModel) *engagementDomain.Engagement {
	return engagementDomain.Reconstruct(
		m.ID,
		m.SitterID,
		m.CompanyID,
		engagementDomain.ServiceType(m.ServiceType),
		m.Details,
		m.StartDate.UTC(),
		m.EndDate.UTC(),
		engagementDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
