package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	animalDomain "github.com/petatwork/service-booking/internal/domain/animal"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// CreateAnimalRequest holds the data needed to register an animal.
type CreateAnimalRequest struct {
	Name       string `json:"name" binding:"required"`
	AnimalType string `json:"animal_type"`
	Breed      string `json:"breed"`
	Age        string `json:"age"`
	Conditions string `json:"conditions"`
}

// UpdateAnimalRequest holds updatable animal fields.
type UpdateAnimalRequest struct {
	Name       string `json:"name" binding:"required"`
	AnimalType string `json:"animal_type"`
	Breed      string `json:"breed"`
	Age        string `json:"age"`
	Conditions string `json:"conditions"`
}

// AnimalDTO is the response representation of an animal.
type AnimalDTO struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	AnimalType string    `json:"animal_type"`
	Breed      string    `json:"breed,omitempty"`
	Age        string    `json:"age,omitempty"`
	Conditions string    `json:"conditions,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnimalService is the application service orchestrating animal use cases.
type AnimalService struct {
	animals animalDomain.AnimalRepository
	logger  *zap.Logger
}

// NewAnimalService creates a new AnimalService.
func NewAnimalService(animals animalDomain.AnimalRepository, logger *zap.Logger) *AnimalService {
	return &AnimalService{
		animals: animals,
		logger:  logger,
	}
}

// CreateAnimal registers a new animal for the given owner.
func (s *AnimalService) CreateAnimal(ctx context.Context, ownerID uuid.UUID, req CreateAnimalRequest) (*AnimalDTO, error) {
	animal, err := animalDomain.NewAnimal(ownerID, req.Name, animalDomain.Type(req.AnimalType), req.Breed, req.Age, req.Conditions)
	if err != nil {
		return nil, err
	}

	if err := s.animals.Save(ctx, animal); err != nil {
		return nil, fmt.Errorf("failed to save animal: %w", err)
	}

	s.logger.Info("animal registered",
		zap.String("animal_id", animal.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)

	result := toAnimalDTO(animal)
	return &result, nil
}

// GetAnimal returns one of the owner's animals.
func (s *AnimalService) GetAnimal(ctx context.Context, ownerID, animalID uuid.UUID) (*AnimalDTO, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if !animal.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("animal belongs to another owner")
	}
	result := toAnimalDTO(animal)
	return &result, nil
}

// ListAnimals lists all animals belonging to the owner.
func (s *AnimalService) ListAnimals(ctx context.Context, ownerID uuid.UUID) ([]AnimalDTO, error) {
	animals, err := s.animals.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]AnimalDTO, len(animals))
	for i, a := range animals {
		result[i] = toAnimalDTO(a)
	}
	return result, nil
}

// UpdateAnimal updates one of the owner's animals. Ownership never changes.
func (s *AnimalService) UpdateAnimal(ctx context.Context, ownerID, animalID uuid.UUID, req UpdateAnimalRequest) (*AnimalDTO, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if !animal.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("animal belongs to another owner")
	}

	if err := animal.Update(req.Name, animalDomain.Type(req.AnimalType), req.Breed, req.Age, req.Conditions); err != nil {
		return nil, err
	}

	if err := s.animals.Update(ctx, animal); err != nil {
		return nil, fmt.Errorf("failed to update animal: %w", err)
	}

	result := toAnimalDTO(animal)
	return &result, nil
}

// --- Conversion Helpers ---

func toAnimalDTO(a *animalDomain.Animal) AnimalDTO {
	return AnimalDTO{
		ID:         a.ID(),
		OwnerID:    a.OwnerID(),
		Name:       a.Name(),
		AnimalType: string(a.AnimalType()),
		Breed:      a.Breed(),
		Age:        a.Age(),
		Conditions: a.Conditions(),
		CreatedAt:  a.CreatedAt(),
	}
}
