package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

func createEngagement(t *testing.T, s *testStack, sitterID, companyID uuid.UUID, start, end time.Time) *application.EngagementDTO {
	t.Helper()
	eng, err := s.Engagements.CreateEngagement(context.Background(), sitterID, application.CreateEngagementRequest{
		CompanyID:   companyID,
		ServiceType: "training",
		StartDate:   start,
		EndDate:     end,
	})
	require.NoError(t, err)
	return eng
}

func TestCreateEngagement_Succeeds(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)

	eng := createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	assert.Equal(t, "pending", eng.Status)
	assert.Equal(t, sitterID, eng.SitterID)
	require.Len(t, s.Notifier.byType(events.EngagementRequested), 1)
}

func TestCreateEngagement_TargetMustBeCompany(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	otherSitterID := registerSitter(t, s, "autre@example.com")

	_, err := s.Engagements.CreateEngagement(context.Background(), sitterID, application.CreateEngagementRequest{
		CompanyID:   otherSitterID,
		ServiceType: "training",
		StartDate:   date(2026, time.September, 10),
		EndDate:     date(2026, time.September, 12),
	})
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeValidation, appErr.Code)
}

func TestEngagementUpdateStatus_CompanyDecides(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)

	eng := createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	// The sitter may only withdraw, not accept.
	_, err := s.Engagements.UpdateStatus(context.Background(), sitterID, auth.RoleSitter, eng.ID, "accepted")
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeForbidden, appErr.Code)

	accepted, err := s.Engagements.UpdateStatus(context.Background(), companyID, auth.RoleCompany, eng.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)

	finished, err := s.Engagements.UpdateStatus(context.Background(), companyID, auth.RoleCompany, eng.ID, "finished")
	require.NoError(t, err)
	assert.Equal(t, "finished", finished.Status)
}

func TestEngagementUpdateStatus_SitterWithdraws(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)

	eng := createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	cancelled, err := s.Engagements.UpdateStatus(context.Background(), sitterID, auth.RoleSitter, eng.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestEngagementUpdateStatus_CancelledIsTerminal(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)

	eng := createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	_, err := s.Engagements.UpdateStatus(context.Background(), sitterID, auth.RoleSitter, eng.ID, "cancelled")
	require.NoError(t, err)

	// A cancelled engagement cannot be revived by a late company decision.
	_, err = s.Engagements.UpdateStatus(context.Background(), companyID, auth.RoleCompany, eng.ID, "accepted")
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeInvalidState, appErr.Code)

	got, err := s.Engagements.GetEngagement(context.Background(), sitterID, auth.RoleSitter, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
}

func TestEngagementUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)

	eng := createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	_, err := s.Engagements.UpdateStatus(context.Background(), companyID, auth.RoleCompany, eng.ID, "accepted")
	require.NoError(t, err)

	result, err := s.Engagements.UpdateStatus(context.Background(), companyID, auth.RoleCompany, eng.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, "accepted", result.Status)
	assert.Len(t, s.Notifier.byType(events.EngagementStatusSet), 1)
}

func TestListEngagements_ByParty(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	otherSitterID := registerSitter(t, s, "autre@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)

	createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))
	createEngagement(t, s, otherSitterID, companyID,
		date(2026, time.September, 20), date(2026, time.September, 22))

	sitterPage, err := s.Engagements.ListSitterEngagements(context.Background(), sitterID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sitterPage.Total)

	companyPage, err := s.Engagements.ListCompanyEngagements(context.Background(), companyID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), companyPage.Total)
}

func TestGetEngagement_StrangerForbidden(t *testing.T) {
	s := newTestStack(t)
	sitterID := registerSitter(t, s, "paul@example.com")
	companyID := registerCompany(t, s, "copain@example.com", 5)
	strangerID := registerSitter(t, s, "autre@example.com")

	eng := createEngagement(t, s, sitterID, companyID,
		date(2026, time.September, 10), date(2026, time.September, 12))

	_, err := s.Engagements.GetEngagement(context.Background(), strangerID, auth.RoleSitter, eng.ID)
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeForbidden, appErr.Code)
}
