package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petatwork/service-booking/internal/domain/booking"
	userDomain "github.com/petatwork/service-booking/internal/domain/user"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// RegisterRequest holds the data needed to register an actor.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Address    string `json:"address"`
	Experience string `json:"experience"`
	Capacity   int    `json:"capacity"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest holds profile fields an actor may change. Role and
// email are immutable.
type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required"`
	Address    string `json:"address"`
	Experience string `json:"experience"`
	Capacity   int    `json:"capacity"`
}

// ChangePasswordRequest holds an authenticated password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ResetPasswordRequest completes a password reset with an emailed code.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// TokenPairDTO is the response representation of issued tokens.
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ActorDTO is the response representation of an actor. Profile fields are
// omitted when empty, so each role only exposes its own shape.
type ActorDTO struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Address    string    `json:"address,omitempty"`
	Experience string    `json:"experience,omitempty"`
	Capacity   int       `json:"capacity,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CompanyDTO is the listing representation of a company, including how many
// accepted bookings it currently holds.
type CompanyDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Capacity      int       `json:"capacity"`
	AcceptedCount int64     `json:"accepted_count"`
}

// UserService is the application service orchestrating actor use cases.
type UserService struct {
	actors     userDomain.ActorRepository
	bookings   booking.BookingRepository
	jwtManager *auth.JWTManager
	notifier   events.Notifier
	logger     *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	actors userDomain.ActorRepository,
	bookings booking.BookingRepository,
	jwtManager *auth.JWTManager,
	notifier events.Notifier,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		actors:     actors,
		bookings:   bookings,
		jwtManager: jwtManager,
		notifier:   notifier,
		logger:     logger,
	}
}

// Register creates a new actor account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*ActorDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.actors.FindByEmail(ctx, email); err == nil {
		return nil, domain.NewConflictError("an account with this email already exists")
	}

	actor, err := userDomain.NewActor(email, req.Name, auth.Role(req.Role), req.Password, userDomain.Profile{
		Address:    req.Address,
		Experience: req.Experience,
		Capacity:   req.Capacity,
	})
	if err != nil {
		return nil, err
	}

	if err := s.actors.Save(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to save actor: %w", err)
	}

	s.logger.Info("actor registered",
		zap.String("actor_id", actor.ID().String()),
		zap.String("role", string(actor.Role())),
	)

	result := toActorDTO(actor)
	return &result, nil
}

// Login verifies credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*TokenPairDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	actor, err := s.actors.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	if !actor.CheckPassword(req.Password) {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}

	access, err := s.jwtManager.GenerateAccessToken(actor.ID(), actor.Email(), actor.Role())
	if err != nil {
		return nil, domain.NewInternalError("failed to issue access token", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(actor.ID())
	if err != nil {
		return nil, domain.NewInternalError("failed to issue refresh token", err)
	}

	return &TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPairDTO, error) {
	actorID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	actor, err := s.actors.FindByID(ctx, actorID)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	access, err := s.jwtManager.GenerateAccessToken(actor.ID(), actor.Email(), actor.Role())
	if err != nil {
		return nil, domain.NewInternalError("failed to issue access token", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(actor.ID())
	if err != nil {
		return nil, domain.NewInternalError("failed to issue refresh token", err)
	}

	return &TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

// GetProfile returns an actor's own profile.
func (s *UserService) GetProfile(ctx context.Context, actorID uuid.UUID) (*ActorDTO, error) {
	actor, err := s.actors.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	result := toActorDTO(actor)
	return &result, nil
}

// UpdateProfile updates an actor's own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, actorID uuid.UUID, req UpdateProfileRequest) (*ActorDTO, error) {
	actor, err := s.actors.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if err := actor.UpdateProfile(req.Name, userDomain.Profile{
		Address:    req.Address,
		Experience: req.Experience,
		Capacity:   req.Capacity,
	}); err != nil {
		return nil, err
	}

	if err := s.actors.Update(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}

	result := toActorDTO(actor)
	return &result, nil
}

// ChangePassword changes an authenticated actor's password.
func (s *UserService) ChangePassword(ctx context.Context, actorID uuid.UUID, req ChangePasswordRequest) error {
	actor, err := s.actors.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.CheckPassword(req.CurrentPassword) {
		return domain.NewUnauthorizedError("current password is incorrect")
	}
	if err := actor.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.actors.Update(ctx, actor); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a reset code and sends it via the notification
// pipeline. It reports success even for unknown emails so the endpoint does
// not leak which addresses have accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	actor, err := s.actors.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("password reset requested for unknown email")
		return nil
	}

	code, err := actor.IssueResetCode()
	if err != nil {
		return err
	}
	if err := s.actors.Update(ctx, actor); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	expiry := actor.ResetCodeExpiry()
	var expiresAt time.Time
	if expiry != nil {
		expiresAt = *expiry
	}
	s.notifier.Notify(ctx, events.PasswordResetIssued, events.PasswordResetEvent{
		ActorID:        actor.ID(),
		RecipientEmail: actor.Email(),
		Code:           code,
		ExpiresAt:      expiresAt,
	})
	return nil
}

// VerifyResetCode checks an emailed reset code without consuming it, so the
// client can confirm the code before asking for a new password. Unknown
// emails and bad codes fail identically.
func (s *UserService) VerifyResetCode(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	actor, err := s.actors.FindByEmail(ctx, email)
	if err != nil {
		return domain.NewUnauthorizedError("invalid reset code")
	}
	if !actor.VerifyResetCode(code) {
		return domain.NewUnauthorizedError("invalid reset code")
	}
	return nil
}

// ResetPassword completes a reset using the emailed code.
func (s *UserService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	actor, err := s.actors.FindByEmail(ctx, email)
	if err != nil {
		return domain.NewUnauthorizedError("invalid reset code")
	}
	if !actor.VerifyResetCode(req.Code) {
		return domain.NewUnauthorizedError("invalid reset code")
	}
	if err := actor.SetPassword(req.NewPassword); err != nil {
		return err
	}
	actor.ClearResetCode()

	if err := s.actors.Update(ctx, actor); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return nil
}

// ListSitters returns all registered pet sitters.
func (s *UserService) ListSitters(ctx context.Context) ([]ActorDTO, error) {
	sitters, err := s.actors.FindByRole(ctx, auth.RoleSitter)
	if err != nil {
		return nil, err
	}
	return toActorDTOs(sitters), nil
}

// ListCompanies returns all registered companies with their current accepted
// booking counts.
func (s *UserService) ListCompanies(ctx context.Context) ([]CompanyDTO, error) {
	return s.listCompanies(ctx, false)
}

// ListAvailableCompanies returns companies that can still take bookings: a
// positive capacity with fewer accepted company bookings than capacity.
func (s *UserService) ListAvailableCompanies(ctx context.Context) ([]CompanyDTO, error) {
	return s.listCompanies(ctx, true)
}

func (s *UserService) listCompanies(ctx context.Context, onlyAvailable bool) ([]CompanyDTO, error) {
	companies, err := s.actors.FindByRole(ctx, auth.RoleCompany)
	if err != nil {
		return nil, err
	}

	accepted, err := s.bookings.CountAcceptedByCompany(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		capacity := c.Profile().Capacity
		count := accepted[c.ID()]
		if onlyAvailable && (capacity <= 0 || count >= int64(capacity)) {
			continue
		}
		result = append(result, CompanyDTO{
			ID:            c.ID(),
			Name:          c.Name(),
			Address:       c.Profile().Address,
			Capacity:      capacity,
			AcceptedCount: count,
		})
	}
	return result, nil
}

// --- Conversion Helpers ---

func toActorDTO(a *userDomain.Actor) ActorDTO {
	profile := a.Profile()
	return ActorDTO{
		ID:         a.ID(),
		Email:      a.Email(),
		Name:       a.Name(),
		Role:       string(a.Role()),
		Address:    profile.Address,
		Experience: profile.Experience,
		Capacity:   profile.Capacity,
		CreatedAt:  a.CreatedAt(),
	}
}

func toActorDTOs(actors []*userDomain.Actor) []ActorDTO {
	result := make([]ActorDTO, len(actors))
	for i, a := range actors {
		result[i] = toActorDTO(a)
	}
	return result
}
