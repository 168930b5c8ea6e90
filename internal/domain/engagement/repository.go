package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// EngagementRepository defines persistence operations for engagements.
type EngagementRepository interface {
	// Save persists a new engagement.
	Save(ctx context.Context, e *Engagement) error
	// Update persists changes to an existing engagement.
	Update(ctx context.Context, e *Engagement) error
	// FindByID retrieves an engagement by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Engagement, error)
	// FindByIDForUpdate retrieves an engagement and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Engagement, error)
	// FindBySitterID lists a sitter's engagements, newest first.
	FindBySitterID(ctx context.Context, sitterID uuid.UUID, page, limit int) (*domain.PaginatedResult[*Engagement], error)
	// FindByCompanyID lists a company's engagements, newest first.
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, page, limit int) (*domain.PaginatedResult[*Engagement], error)
	// FindContainedBySitter returns the sitter's non-terminal engagements
	// whose date range lies entirely inside [startDate, endDate].
	FindContainedBySitter(ctx context.Context, sitterID uuid.UUID, startDate, endDate time.Time) ([]*Engagement, error)
}
