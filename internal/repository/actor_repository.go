package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userDomain "github.com/petatwork/service-booking/internal/domain/user"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// ActorModel is the GORM model for the actors table.
type ActorModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"uniqueIndex;not null;size:255"`
	Name         string     `gorm:"not null;size:255"`
	Role         string     `gorm:"not null;size:20;index"`
	PasswordHash string     `gorm:"not null;size:100"`
	Address      string     `gorm:"size:500"`
	Experience   string     `gorm:"size:1000"`
	Capacity     int        `gorm:"not null;default:0"`
	ResetCode    string     `gorm:"size:10"`
	ResetExpires *time.Time `gorm:""`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ActorModel) TableName() string {
	return "actors"
}

// GormActorRepository is the GORM-based implementation of ActorRepository.
type GormActorRepository struct {
	db *gorm.DB
}

// NewGormActorRepository creates a new GormActorRepository.
func NewGormActorRepository(db *gorm.DB) *GormActorRepository {
	return &GormActorRepository{db: db}
}

// FindByID retrieves an actor by its unique identifier.
func (r *GormActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.Actor, error) {
	var model ActorModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Actor", id.String())
		}
		return nil, fmt.Errorf("failed to find actor by ID: %w", err)
	}
	return toDomainActor(&model), nil
}

// FindByEmail retrieves an actor by email address.
func (r *GormActorRepository) FindByEmail(ctx context.Context, email string) (*userDomain.Actor, error) {
	var model ActorModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Actor", email)
		}
		return nil, fmt.Errorf("failed to find actor by email: %w", err)
	}
	return toDomainActor(&model), nil
}

// FindByRole retrieves all actors with the given role, newest first.
func (r *GormActorRepository) FindByRole(ctx context.Context, role auth.Role) ([]*userDomain.Actor, error) {
	var models []ActorModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("role = ?", string(role)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find actors by role: %w", err)
	}

	actors := make([]*userDomain.Actor, len(models))
	for i, m := range models {
		actors[i] = toDomainActor(&m)
	}
	return actors, nil
}

// Save persists a new actor.
func (r *GormActorRepository) Save(ctx context.Context, a *userDomain.Actor) error {
	model := toActorModel(a)
	if err := conn(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save actor: %w", err)
	}
	return nil
}

// Update persists changes to an existing actor.
func (r *GormActorRepository) Update(ctx context.Context, a *userDomain.Actor) error {
	model := toActorModel(a)
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&ActorModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"email":         model.Email,
			"name":          model.Name,
			"password_hash": model.PasswordHash,
			"address":       model.Address,
			"experience":    model.Experience,
			"capacity":      model.Capacity,
			"reset_code":    model.ResetCode,
			"reset_expires": model.ResetExpires,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update actor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Actor", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toActorModel(a *userDomain.Actor) *ActorModel {
	profile := a.Profile()
	return &ActorModel{
		ID:           a.ID(),
		Email:        a.Email(),
		Name:         a.Name(),
		Role:         string(a.Role()),
		PasswordHash: a.PasswordHash(),
		Address:      profile.Address,
		Experience:   profile.Experience,
		Capacity:     profile.Capacity,
		ResetCode:    a.ResetCode(),
		ResetExpires: a.ResetCodeExpiry(),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
	}
}

func toDomainActor(m *ActorModel) *userDomain.Actor {
	return userDomain.Reconstruct(
		m.ID,
		m.Email,
		m.Name,
		auth.Role(m.Role),
		m.PasswordHash,
		userDomain.Profile{
			Address:    m.Address,
			Experience: m.Experience,
			Capacity:   m.Capacity,
		},
		m.ResetCode,
		m.ResetExpires,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
