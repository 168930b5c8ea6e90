package animal

import (
	"context"

	"github.com/google/uuid"
)

// AnimalRepository defines the persistence contract for animals.
type AnimalRepository interface {
	// FindByID retrieves an animal by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Animal, error)

	// FindByIDForUpdate retrieves an animal row-locked for the duration of
	// the enclosing transaction where the database supports it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Animal, error)

	// FindByOwnerID retrieves all animals belonging to an owner.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Animal, error)

	// Save persists a new animal.
	Save(ctx context.Context, animal *Animal) error

	// Update persists changes to an existing animal.
	Update(ctx context.Context, animal *Animal) error
}
