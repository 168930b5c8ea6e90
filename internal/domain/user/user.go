package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

const resetCodeTTL = 15 * time.Minute

// Profile holds the role-specific attribute group of an actor. Exactly one
// combination is legal per role: owners and companies carry an address,
// sitters carry experience, and only companies carry a capacity.
type Profile struct {
	Address    string `json:"address,omitempty"`
	Experience string `json:"experience,omitempty"`
	Capacity   int    `json:"capacity,omitempty"`
}

// Actor is the aggregate root for a marketplace participant: a pet owner,
// a pet sitter, or a company.
type Actor struct {
	id           uuid.UUID
	email        string
	name         string
	role         auth.Role
	passwordHash string
	profile      Profile

	resetCode       string
	resetCodeExpiry *time.Time

	createdAt time.Time
	updatedAt time.Time
}

// NewActor creates a validated Actor. The profile is checked against the
// role's attribute group; violating combinations are rejected.
func NewActor(email, name string, role auth.Role, password string, profile Profile) (*Actor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if !role.IsValid() || role == auth.RoleAdmin {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}
	if len(password) < 8 {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}
	if err := validateProfile(role, profile); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	now := time.Now().UTC()
	return &Actor{
		id:           uuid.New(),
		email:        email,
		name:         name,
		role:         role,
		passwordHash: string(hash),
		profile:      profile,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func validateProfile(role auth.Role, p Profile) error {
	switch role {
	case auth.RoleOwner:
		if p.Address == "" {
			return domain.NewValidationError("address is required for pet owners")
		}
		if p.Experience != "" || p.Capacity != 0 {
			return domain.NewValidationError("pet owners must not have experience or capacity")
		}
	case auth.RoleSitter:
		if p.Experience == "" {
			return domain.NewValidationError("experience is required for pet sitters")
		}
		if p.Address != "" || p.Capacity != 0 {
			return domain.NewValidationError("pet sitters must not have address or capacity")
		}
	case auth.RoleCompany:
		if p.Address == "" {
			return domain.NewValidationError("address is required for companies")
		}
		if p.Capacity <= 0 {
			return domain.NewValidationError("a positive capacity is required for companies")
		}
		if p.Experience != "" {
			return domain.NewValidationError("companies must not have experience")
		}
	}
	return nil
}

// Reconstruct rebuilds an Actor from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	email, name string,
	role auth.Role,
	passwordHash string,
	profile Profile,
	resetCode string,
	resetCodeExpiry *time.Time,
	createdAt, updatedAt time.Time,
) *Actor {
	return &Actor{
		id:              id,
		email:           email,
		name:            name,
		role:            role,
		passwordHash:    passwordHash,
		profile:         profile,
		resetCode:       resetCode,
		resetCodeExpiry: resetCodeExpiry,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (a *Actor) ID() uuid.UUID               { return a.id }
func (a *Actor) Email() string               { return a.email }
func (a *Actor) Name() string                { return a.name }
func (a *Actor) Role() auth.Role             { return a.role }
func (a *Actor) PasswordHash() string        { return a.passwordHash }
func (a *Actor) Profile() Profile            { return a.profile }
func (a *Actor) ResetCode() string           { return a.resetCode }
func (a *Actor) ResetCodeExpiry() *time.Time { return a.resetCodeExpiry }
func (a *Actor) CreatedAt() time.Time        { return a.createdAt }
func (a *Actor) UpdatedAt() time.Time        { return a.updatedAt }

// IsAdmin reports whether the actor has administrative privileges.
func (a *Actor) IsAdmin() bool { return a.role == auth.RoleAdmin }

// --- Behavior ---

// CheckPassword verifies a candidate password against the stored hash.
func (a *Actor) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
}

// SetPassword replaces the stored password hash.
func (a *Actor) SetPassword(password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("failed to hash password", err)
	}
	a.passwordHash = string(hash)
	a.updatedAt = time.Now().UTC()
	return nil
}

// UpdateProfile applies a partial profile update, re-validating against the
// actor's role.
func (a *Actor) UpdateProfile(name string, profile Profile) error {
	merged := a.profile
	if profile.Address != "" {
		merged.Address = profile.Address
	}
	if profile.Experience != "" {
		merged.Experience = profile.Experience
	}
	if profile.Capacity != 0 {
		merged.Capacity = profile.Capacity
	}
	if err := validateProfile(a.role, merged); err != nil {
		return err
	}
	if name != "" {
		a.name = name
	}
	a.profile = merged
	a.updatedAt = time.Now().UTC()
	return nil
}

// IssueResetCode generates a 6-digit password reset code valid for 15 minutes.
func (a *Actor) IssueResetCode() (string, error) {
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", domain.NewInternalError("failed to generate reset code", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	expiry := time.Now().UTC().Add(resetCodeTTL)
	a.resetCode = string(code)
	a.resetCodeExpiry = &expiry
	a.updatedAt = time.Now().UTC()
	return a.resetCode, nil
}

// VerifyResetCode checks a candidate code against the stored one.
func (a *Actor) VerifyResetCode(code string) bool {
	if a.resetCode == "" || a.resetCodeExpiry == nil {
		return false
	}
	if time.Now().UTC().After(*a.resetCodeExpiry) {
		return false
	}
	return a.resetCode == code
}

// ClearResetCode invalidates any outstanding reset code.
func (a *Actor) ClearResetCode() {
	a.resetCode = ""
	a.resetCodeExpiry = nil
	a.updatedAt = time.Now().UTC()
}
