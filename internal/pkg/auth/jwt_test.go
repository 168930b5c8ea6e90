package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValues(t *testing.T) {
	assert.Equal(t, Role("owner"), RoleOwner)
	assert.Equal(t, Role("sitter"), RoleSitter)
	assert.Equal(t, Role("company"), RoleCompany)
	assert.Equal(t, Role("admin"), RoleAdmin)

	assert.True(t, Role("owner").IsValid())
	assert.False(t, Role("petowner").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	access, err := m.GenerateAccessToken(userID, "marie@example.com", RoleOwner)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleOwner, claims.Role)

	refresh, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)

	parsed, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)

	access, err := m.GenerateAccessToken(uuid.New(), "marie@example.com", RoleOwner)
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	require.Error(t, err, "an access token must not mint new token pairs")
}

func TestValidateRefreshToken_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 15*time.Minute, 24*time.Hour)
	verifier := NewJWTManager("secret-b", 15*time.Minute, 24*time.Hour)

	refresh, err := issuer.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateRefreshToken(refresh)
	require.Error(t, err)
}
