package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/pkg/auth"
)

func TestNewActor_RoleProfiles(t *testing.T) {
	tests := []struct {
		name    string
		role    auth.Role
		profile Profile
		wantErr bool
	}{
		{"owner needs address", auth.RoleOwner, Profile{Address: "12 Rue des Lilas"}, false},
		{"owner missing address", auth.RoleOwner, Profile{}, true},
		{"owner with capacity", auth.RoleOwner, Profile{Address: "12 Rue des Lilas", Capacity: 3}, true},
		{"sitter needs experience", auth.RoleSitter, Profile{Experience: "5 years"}, false},
		{"sitter missing experience", auth.RoleSitter, Profile{}, true},
		{"sitter with address", auth.RoleSitter, Profile{Experience: "5 years", Address: "x"}, true},
		{"company needs address and capacity", auth.RoleCompany, Profile{Address: "3 Avenue", Capacity: 10}, false},
		{"company zero capacity", auth.RoleCompany, Profile{Address: "3 Avenue"}, true},
		{"company with experience", auth.RoleCompany, Profile{Address: "3 Avenue", Capacity: 10, Experience: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewActor("a@example.com", "A", tt.role, "password123", tt.profile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewActor_RejectsAdminAndWeakPassword(t *testing.T) {
	_, err := NewActor("a@example.com", "A", auth.RoleAdmin, "password123", Profile{})
	assert.Error(t, err)

	_, err = NewActor("a@example.com", "A", auth.RoleOwner, "short", Profile{Address: "x"})
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	actor, err := NewActor("a@example.com", "A", auth.RoleOwner, "password123", Profile{Address: "12 Rue des Lilas"})
	require.NoError(t, err)

	assert.True(t, actor.CheckPassword("password123"))
	assert.False(t, actor.CheckPassword("wrong"))
	assert.NotEqual(t, "password123", actor.PasswordHash(), "password stored hashed")
}

func TestUpdateProfile_MergesAndRevalidates(t *testing.T) {
	actor, err := NewActor("c@example.com", "Copains", auth.RoleCompany, "password123", Profile{Address: "3 Avenue", Capacity: 10})
	require.NoError(t, err)

	require.NoError(t, actor.UpdateProfile("", Profile{Capacity: 20}))
	assert.Equal(t, 20, actor.Profile().Capacity)
	assert.Equal(t, "3 Avenue", actor.Profile().Address, "unset fields keep their value")
	assert.Equal(t, "Copains", actor.Name())

	assert.Error(t, actor.UpdateProfile("", Profile{Experience: "x"}), "role shape still enforced")
}

func TestResetCodeLifecycle(t *testing.T) {
	actor, err := NewActor("a@example.com", "A", auth.RoleOwner, "password123", Profile{Address: "12 Rue des Lilas"})
	require.NoError(t, err)

	assert.False(t, actor.VerifyResetCode("123456"), "no code issued yet")

	code, err := actor.IssueResetCode()
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.True(t, actor.VerifyResetCode(code))

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.False(t, actor.VerifyResetCode(wrong))

	actor.ClearResetCode()
	assert.False(t, actor.VerifyResetCode(code))
}

func TestVerifyResetCode_Expiry(t *testing.T) {
	actor, err := NewActor("a@example.com", "A", auth.RoleOwner, "password123", Profile{Address: "12 Rue des Lilas"})
	require.NoError(t, err)

	code, err := actor.IssueResetCode()
	require.NoError(t, err)

	expired := time.Now().UTC().Add(-time.Minute)
	stale := Reconstruct(
		actor.ID(), actor.Email(), actor.Name(), actor.Role(), actor.PasswordHash(),
		actor.Profile(), code, &expired, actor.CreatedAt(), actor.UpdatedAt(),
	)
	assert.False(t, stale.VerifyResetCode(code))
}
