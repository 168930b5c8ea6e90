package engagement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/pkg/auth"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPendingEngagement(t *testing.T, start, end time.Time) *Engagement {
	t.Helper()
	e, err := NewEngagement(uuid.New(), uuid.New(), ServiceTraining, "", start, end)
	require.NoError(t, err)
	return e
}

func TestNewEngagement_Validation(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 12)

	_, err := NewEngagement(uuid.Nil, uuid.New(), ServiceTraining, "", start, end)
	assert.Error(t, err)

	_, err = NewEngagement(uuid.New(), uuid.Nil, ServiceTraining, "", start, end)
	assert.Error(t, err)

	_, err = NewEngagement(uuid.New(), uuid.New(), ServiceType("grooming"), "", start, end)
	assert.Error(t, err)

	_, err = NewEngagement(uuid.New(), uuid.New(), ServiceConsultation, "", end, start)
	assert.Error(t, err)

	e, err := NewEngagement(uuid.New(), uuid.New(), ServiceCollaboration, "weekend help", start, end)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, e.Status())
	assert.Equal(t, "weekend help", e.Details())
}

func TestEngagementTransitions(t *testing.T) {
	start := day(2026, time.September, 10)
	end := day(2026, time.September, 12)

	t.Run("accepted to finished", func(t *testing.T) {
		e := newPendingEngagement(t, start, end)
		require.NoError(t, e.TransitionTo(StatusAccepted))
		require.NoError(t, e.TransitionTo(StatusFinished))
		assert.True(t, e.Status().IsTerminal())
	})

	t.Run("pending cannot finish", func(t *testing.T) {
		e := newPendingEngagement(t, start, end)
		assert.Error(t, e.TransitionTo(StatusFinished))
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		e := newPendingEngagement(t, start, end)
		require.NoError(t, e.TransitionTo(StatusCancelled))
		assert.Error(t, e.TransitionTo(StatusAccepted))
	})
}

func TestContainedIn(t *testing.T) {
	e := newPendingEngagement(t, day(2026, time.September, 12), day(2026, time.September, 15))

	assert.True(t, e.ContainedIn(day(2026, time.September, 10), day(2026, time.September, 20)))
	assert.True(t, e.ContainedIn(day(2026, time.September, 12), day(2026, time.September, 15)), "exact bounds count as contained")
	assert.False(t, e.ContainedIn(day(2026, time.September, 13), day(2026, time.September, 20)), "starts before the window")
	assert.False(t, e.ContainedIn(day(2026, time.September, 10), day(2026, time.September, 14)), "ends after the window")
}

func TestEngagementRoleCanSet(t *testing.T) {
	assert.True(t, RoleCanSet(auth.RoleCompany, StatusAccepted))
	assert.True(t, RoleCanSet(auth.RoleCompany, StatusRefused))
	assert.True(t, RoleCanSet(auth.RoleCompany, StatusFinished))
	assert.True(t, RoleCanSet(auth.RoleSitter, StatusCancelled))
	assert.False(t, RoleCanSet(auth.RoleSitter, StatusAccepted))
	assert.False(t, RoleCanSet(auth.RoleSitter, StatusFinished))
	assert.False(t, RoleCanSet(auth.RoleOwner, StatusCancelled))
	assert.True(t, RoleCanSet(auth.RoleAdmin, StatusFinished))
}
