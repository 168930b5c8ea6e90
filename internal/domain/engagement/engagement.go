package engagement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// ServiceType classifies what a sitter engages a company for.
type ServiceType string

const (
	ServiceTraining      ServiceType = "training"
	ServiceConsultation  ServiceType = "consultation"
	ServiceCollaboration ServiceType = "collaboration"
)

// IsValid reports whether the service type is recognized.
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTraining, ServiceConsultation, ServiceCollaboration:
		return true
	}
	return false
}

// Status represents an engagement's lifecycle state. Engagements add a
// finished state on top of the booking states; they carry no payment, so
// there is no paid state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRefused   Status = "refused"
	StatusCancelled Status = "cancelled"
	StatusFinished  Status = "finished"
)

var validTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRefused, StatusCancelled},
	StatusAccepted:  {StatusCancelled, StatusFinished},
	StatusRefused:   {},
	StatusCancelled: {},
	StatusFinished:  {},
}

// IsValid reports whether the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused, StatusCancelled, StatusFinished:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving from s to
// target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// RoleCanSet reports whether the given role may request a transition to the
// target status through the status-update operation. The company decides on
// requests and marks work finished; the sitter may withdraw a request.
func RoleCanSet(role auth.Role, target Status) bool {
	switch role {
	case auth.RoleAdmin:
		return true
	case auth.RoleCompany:
		return target == StatusAccepted || target == StatusRefused ||
			target == StatusCancelled || target == StatusFinished
	case auth.RoleSitter:
		return target == StatusCancelled
	}
	return false
}

// Engagement is the aggregate root for a sitter hiring a company for a
// service over an inclusive date range. Engagements on the sitter's calendar
// are what owner cancellations cascade into.
type Engagement struct {
	id          uuid.UUID
	sitterID    uuid.UUID
	companyID   uuid.UUID
	serviceType ServiceType
	details     string
	startDate   time.Time
	endDate     time.Time
	status      Status

	createdAt time.Time
	updatedAt time.Time
}

// NewEngagement creates a new Engagement in pending status.
func NewEngagement(sitterID, companyID uuid.UUID, serviceType ServiceType, details string, startDate, endDate time.Time) (*Engagement, error) {
	if sitterID == uuid.Nil {
		return nil, domain.NewValidationError("sitter ID is required")
	}
	if companyID == uuid.Nil {
		return nil, domain.NewValidationError("company ID is required")
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, domain.NewValidationError("start and end dates are required")
	}

	startDate = normalizeDate(startDate)
	endDate = normalizeDate(endDate)
	if endDate.Before(startDate) {
		return nil, domain.NewValidationError("end date must not be before start date")
	}

	now := time.Now().UTC()
	return &Engagement{
		id:          uuid.New(),
		sitterID:    sitterID,
		companyID:   companyID,
		serviceType: serviceType,
		details:     details,
		startDate:   startDate,
		endDate:     endDate,
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Engagement from persistence data (no validation).
func Reconstruct(
	id, sitterID, companyID uuid.UUID,
	serviceType ServiceType,
	details string,
	startDate, endDate time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Engagement {
	return &Engagement{
		id:          id,
		sitterID:    sitterID,
		companyID:   companyID,
		serviceType: serviceType,
		details:     details,
		startDate:   startDate,
		endDate:     endDate,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// --- Getters ---

func (e *Engagement) ID() uuid.UUID            { return e.id }
func (e *Engagement) SitterID() uuid.UUID      { return e.sitterID }
func (e *Engagement) CompanyID() uuid.UUID     { return e.companyID }
func (e *Engagement) ServiceType() ServiceType { return e.serviceType }
func (e *Engagement) Details() string          { return e.details }
func (e *Engagement) StartDate() time.Time     { return e.startDate }
func (e *Engagement) EndDate() time.Time       { return e.endDate }
func (e *Engagement) Status() Status           { return e.status }
func (e *Engagement) CreatedAt() time.Time     { return e.createdAt }
func (e *Engagement) UpdatedAt() time.Time     { return e.updatedAt }

// --- Behavior ---

// TransitionTo applies a status change through the state machine.
func (e *Engagement) TransitionTo(target Status) error {
	if !e.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(e.status), string(target))
	}
	e.status = target
	e.updatedAt = time.Now().UTC()
	return nil
}

// ContainedIn reports whether the engagement's date range lies entirely
// inside [start, end]. The cascade from an owner cancellation only sweeps up
// engagements the cancelled booking fully contains.
func (e *Engagement) ContainedIn(start, end time.Time) bool {
	return !e.startDate.Before(start) && !e.endDate.After(end)
}
