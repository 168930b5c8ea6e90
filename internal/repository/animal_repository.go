package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	animalDomain "github.com/petatwork/service-booking/internal/domain/animal"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// AnimalModel is the GORM model for the animals table.
type AnimalModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null;size:255"`
	AnimalType string    `gorm:"not null;size:20"`
	Breed      string    `gorm:"size:255"`
	Age        string    `gorm:"size:50"`
	Conditions string    `gorm:"size:1000"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AnimalModel) TableName() string {
	return "animals"
}

// GormAnimalRepository is the GORM-based implementation of AnimalRepository.
type GormAnimalRepository struct {
	db *gorm.DB
}

// NewGormAnimalRepository creates a new GormAnimalRepository.
func NewGormAnimalRepository(db *gorm.DB) *GormAnimalRepository {
	return &GormAnimalRepository{db: db}
}

// FindByID retrieves an animal by its unique identifier.
func (r *GormAnimalRepository) FindByID(ctx context.Context, id uuid.UUID) (*animalDomain.Animal, error) {
	var model AnimalModel
	if err := conn(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Animal", id.String())
		}
		return nil, fmt.Errorf("failed to find animal by ID: %w", err)
	}
	return toDomainAnimal(&model), nil
}

// FindByIDForUpdate retrieves an animal row-locked for the enclosing
// transaction. Booking creation locks the animal so concurrent conflict
// checks serialize.
func (r *GormAnimalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*animalDomain.Animal, error) {
	db := conn(ctx, r.db)
	query := db.WithContext(ctx)
	if supportsRowLocking(db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model AnimalModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Animal", id.String())
		}
		return nil, fmt.Errorf("failed to find animal for update: %w", err)
	}
	return toDomainAnimal(&model), nil
}

// FindByOwnerID lists an owner's animals, newest first.
func (r *GormAnimalRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*animalDomain.Animal, error) {
	var models []AnimalModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find animals by owner: %w", err)
	}

	animals := make([]*animalDomain.Animal, len(models))
	for i, m := range models {
		animals[i] = toDomainAnimal(&m)
	}
	return animals, nil
}

// Save persists a new animal.
func (r *GormAnimalRepository) Save(ctx context.Context, a *animalDomain.Animal) error {
	model := toAnimalModel(a)
	if err := conn(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save animal: %w", err)
	}
	return nil
}

// Update persists changes to an existing animal.
func (r *GormAnimalRepository) Update(ctx context.Context, a *animalDomain.Animal) error {
	model := toAnimalModel(a)
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&AnimalModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"animal_type": model.AnimalType,
			"breed":       model.Breed,
			"age":         model.Age,
			"conditions":  model.Conditions,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update animal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Animal", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toAnimalModel(a *animalDomain.Animal) *AnimalModel {
	return &AnimalModel{
		ID:         a.ID(),
		OwnerID:    a.OwnerID(),
		Name:       a.Name(),
		AnimalType: string(a.AnimalType()),
		Breed:      a.Breed(),
		Age:        a.Age(),
		Conditions: a.Conditions(),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
}

func toDomainAnimal(m *AnimalModel) *animalDomain.Animal {
	return animalDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		animalDomain.Type(m.AnimalType),
		m.Breed,
		m.Age,
		m.Conditions,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
