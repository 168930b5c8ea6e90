package animal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// Type classifies the kind of animal.
type Type string

const (
	TypeDog   Type = "dog"
	TypeCat   Type = "cat"
	TypeOther Type = "other"
)

// IsValid reports whether the animal type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case TypeDog, TypeCat, TypeOther:
		return true
	}
	return false
}

// Animal is the aggregate root for a registered pet. Ownership is fixed at
// creation; there is no transfer operation.
type Animal struct {
	id         uuid.UUID
	ownerID    uuid.UUID
	name       string
	animalType Type
	breed      string
	age        string
	conditions string

	createdAt time.Time
	updatedAt time.Time
}

// NewAnimal creates a validated Animal owned by the given pet owner.
func NewAnimal(ownerID uuid.UUID, name string, animalType Type, breed, age, conditions string) (*Animal, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("animal name is required")
	}
	if animalType == "" {
		animalType = TypeDog
	}
	if !animalType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid animal type: %s", animalType))
	}

	now := time.Now().UTC()
	return &Animal{
		id:         uuid.New(),
		ownerID:    ownerID,
		name:       name,
		animalType: animalType,
		breed:      breed,
		age:        age,
		conditions: conditions,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds an Animal from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name string,
	animalType Type,
	breed, age, conditions string,
	createdAt, updatedAt time.Time,
) *Animal {
	return &Animal{
		id:         id,
		ownerID:    ownerID,
		name:       name,
		animalType: animalType,
		breed:      breed,
		age:        age,
		conditions: conditions,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

func (a *Animal) ID() uuid.UUID        { return a.id }
func (a *Animal) OwnerID() uuid.UUID   { return a.ownerID }
func (a *Animal) Name() string         { return a.name }
func (a *Animal) AnimalType() Type     { return a.animalType }
func (a *Animal) Breed() string        { return a.breed }
func (a *Animal) Age() string          { return a.age }
func (a *Animal) Conditions() string   { return a.conditions }
func (a *Animal) CreatedAt() time.Time { return a.createdAt }
func (a *Animal) UpdatedAt() time.Time { return a.updatedAt }

// IsOwnedBy checks if the animal belongs to the given owner.
func (a *Animal) IsOwnedBy(ownerID uuid.UUID) bool {
	return a.ownerID == ownerID
}

// Update applies partial updates to the descriptive fields. Ownership is
// immutable.
func (a *Animal) Update(name string, animalType Type, breed, age, conditions string) error {
	if name != "" {
		a.name = name
	}
	if animalType != "" {
		if !animalType.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("invalid animal type: %s", animalType))
		}
		a.animalType = animalType
	}
	if breed != "" {
		a.breed = breed
	}
	if age != "" {
		a.age = age
	}
	if conditions != "" {
		a.conditions = conditions
	}
	a.updatedAt = time.Now().UTC()
	return nil
}
