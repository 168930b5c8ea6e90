package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	engagementDomain "github.com/petatwork/service-booking/internal/domain/engagement"
	userDomain "github.com/petatwork/service-booking/internal/domain/user"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// CreateEngagementRequest holds the data needed to request an engagement.
type CreateEngagementRequest struct {
	CompanyID   uuid.UUID `json:"company_id" binding:"required"`
	ServiceType string    `json:"service_type" binding:"required"`
	Details     string    `json:"details"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// UpdateEngagementStatusRequest carries the target status for an engagement.
type UpdateEngagementStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// EngagementDTO is the response representation of an engagement.
type EngagementDTO struct {
	ID          uuid.UUID `json:"id"`
	SitterID    uuid.UUID `json:"sitter_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	ServiceType string    `json:"service_type"`
	Details     string    `json:"details,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EngagementService is the application service orchestrating engagements
// between sitters and companies.
type EngagementService struct {
	engagements engagementDomain.EngagementRepository
	actors      userDomain.ActorRepository
	tx          Transactor
	notifier    events.Notifier
	logger      *zap.Logger
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(
	engagements engagementDomain.EngagementRepository,
	actors userDomain.ActorRepository,
	tx Transactor,
	notifier events.Notifier,
	logger *zap.Logger,
) *EngagementService {
	return &EngagementService{
		engagements: engagements,
		actors:      actors,
		tx:          tx,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateEngagement requests a company service on behalf of a sitter.
func (s *EngagementService) CreateEngagement(ctx context.Context, sitterID uuid.UUID, req CreateEngagementRequest) (*EngagementDTO, error) {
	company, err := s.actors.FindByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company.Role() != auth.RoleCompany {
		return nil, domain.NewValidationError("engagements can only be requested from companies")
	}

	eng, err := engagementDomain.NewEngagement(
		sitterID,
		req.CompanyID,
		engagementDomain.ServiceType(req.ServiceType),
		req.Details,
		req.StartDate,
		req.EndDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.engagements.Save(ctx, eng); err != nil {
		return nil, fmt.Errorf("failed to save engagement: %w", err)
	}

	s.logger.Info("engagement created",
		zap.String("engagement_id", eng.ID().String()),
		zap.String("service_type", string(eng.ServiceType())),
	)

	s.notifier.Notify(ctx, events.EngagementRequested, events.EngagementEvent{
		EngagementID:   eng.ID(),
		SitterID:       eng.SitterID(),
		CompanyID:      eng.CompanyID(),
		ServiceType:    string(eng.ServiceType()),
		Status:         string(eng.Status()),
		RecipientID:    company.ID(),
		RecipientEmail: company.Email(),
	})

	result := toEngagementDTO(eng)
	return &result, nil
}

// GetEngagement returns an engagement visible to the calling actor: either
// party or an admin.
func (s *EngagementService) GetEngagement(ctx context.Context, actorID uuid.UUID, role auth.Role, engagementID uuid.UUID) (*EngagementDTO, error) {
	eng, err := s.engagements.FindByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEngagementParty(actorID, role, eng); err != nil {
		return nil, err
	}
	result := toEngagementDTO(eng)
	return &result, nil
}

// ListSitterEngagements lists the calling sitter's engagements.
func (s *EngagementService) ListSitterEngagements(ctx context.Context, sitterID uuid.UUID, page, limit int) (*domain.PaginatedResult[EngagementDTO], error) {
	result, err := s.engagements.FindBySitterID(ctx, sitterID, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPage(result, toEngagementDTO), nil
}

// ListCompanyEngagements lists the calling company's engagements.
func (s *EngagementService) ListCompanyEngagements(ctx context.Context, companyID uuid.UUID, page, limit int) (*domain.PaginatedResult[EngagementDTO], error) {
	result, err := s.engagements.FindByCompanyID(ctx, companyID, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPage(result, toEngagementDTO), nil
}

// UpdateStatus moves an engagement through its state machine on behalf of
// the calling actor. Re-posting the current status is a no-op success.
func (s *EngagementService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role auth.Role, engagementID uuid.UUID, target engagementDomain.Status) (*EngagementDTO, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid engagement status: %s", target))
	}

	var eng *engagementDomain.Engagement
	changed := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		eng, err = s.engagements.FindByIDForUpdate(ctx, engagementID)
		if err != nil {
			return err
		}
		if err := authorizeEngagementParty(actorID, role, eng); err != nil {
			return err
		}

		if eng.Status() == target {
			return nil
		}
		changed = true

		if !engagementDomain.RoleCanSet(role, target) {
			return domain.NewForbiddenError(fmt.Sprintf("role %s may not set status %s", role, target))
		}
		if err := eng.TransitionTo(target); err != nil {
			return err
		}
		return s.engagements.Update(ctx, eng)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifyStatusChange(ctx, actorID, eng, events.EngagementStatusSet)
	}

	result := toEngagementDTO(eng)
	return &result, nil
}

// CascadeCancel cancels the sitter's open engagements whose date range lies
// entirely inside [startDate, endDate]. It is called from the booking
// cancellation transaction; notification dispatch is the caller's job, via
// NotifyCascade, once that transaction has committed.
func (s *EngagementService) CascadeCancel(ctx context.Context, sitterID uuid.UUID, startDate, endDate time.Time) ([]*engagementDomain.Engagement, error) {
	contained, err := s.engagements.FindContainedBySitter(ctx, sitterID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	cancelled := make([]*engagementDomain.Engagement, 0, len(contained))
	for _, eng := range contained {
		if err := eng.TransitionTo(engagementDomain.StatusCancelled); err != nil {
			return nil, err
		}
		if err := s.engagements.Update(ctx, eng); err != nil {
			return nil, err
		}
		cancelled = append(cancelled, eng)
	}
	return cancelled, nil
}

// NotifyCascade sends one notification per cascaded engagement. Called after
// the cancelling transaction has committed.
func (s *EngagementService) NotifyCascade(ctx context.Context, sitterID uuid.UUID, cancelled []*engagementDomain.Engagement) {
	for _, eng := range cancelled {
		s.notifyStatusChange(ctx, sitterID, eng, events.EngagementCascaded)
	}
}

// notifyStatusChange tells the other party about a status change.
func (s *EngagementService) notifyStatusChange(ctx context.Context, callerID uuid.UUID, eng *engagementDomain.Engagement, eventType string) {
	recipientID := eng.CompanyID()
	if recipientID == callerID {
		recipientID = eng.SitterID()
	}

	recipient, err := s.actors.FindByID(ctx, recipientID)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipient",
			zap.String("engagement_id", eng.ID().String()),
			zap.Error(err),
		)
		return
	}

	s.notifier.Notify(ctx, eventType, events.EngagementEvent{
		EngagementID:   eng.ID(),
		SitterID:       eng.SitterID(),
		CompanyID:      eng.CompanyID(),
		ServiceType:    string(eng.ServiceType()),
		Status:         string(eng.Status()),
		RecipientID:    recipient.ID(),
		RecipientEmail: recipient.Email(),
	})
}

func authorizeEngagementParty(actorID uuid.UUID, role auth.Role, eng *engagementDomain.Engagement) error {
	if role == auth.RoleAdmin {
		return nil
	}
	if eng.SitterID() == actorID || eng.CompanyID() == actorID {
		return nil
	}
	return domain.NewForbiddenError("not a party to this engagement")
}

// --- Conversion Helpers ---

func toEngagementDTO(e *engagementDomain.Engagement) EngagementDTO {
	return EngagementDTO{
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
