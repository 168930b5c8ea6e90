package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/auth"
)

// ActorRepository defines the persistence contract for actors.
type ActorRepository interface {
	// FindByID retrieves an actor by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Actor, error)

	// FindByEmail retrieves an actor by email (lowercased).
	FindByEmail(ctx context.Context, email string) (*Actor, error)

	// FindByRole retrieves all actors with the given role.
	FindByRole(ctx context.Context, role auth.Role) ([]*Actor, error)

	// Save persists a new actor.
	Save(ctx context.Context, actor *Actor) error

	// Update persists changes to an existing actor.
	Update(ctx context.Context, actor *Actor) error
}
