package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type mockOutreachRepo struct {
	activities []models.PlacementOutreachDetail
	listFilter models.OutreachFilter
	createErr  error
}

func (m *mockOutreachRepo) List(ctx context.Context, f models.OutreachFilter) ([]models.PlacementOutreachDetail, int, error) {
	m.listFilter = f
	if f.OfficerID == "" {
		return m.activities, len(m.activities), nil
	}
	var scoped []models.PlacementOutreachDetail
	for _, a := range m.activities {
		if a.OfficerID != nil && *a.OfficerID == f.OfficerID {
			scoped = append(scoped, a)
		}
	}
	return scoped, len(scoped), nil
}

func (m *mockOutreachRepo) FindByID(ctx context.Context, id string) (*models.PlacementOutreachDetail, error) {
	for i := range m.activities {
		if m.activities[i].ID == id {
			return &m.activities[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockOutreachRepo) Create(ctx context.Context, activity *models.PlacementOutreach) error {
	if m.createErr != nil {
		return m.createErr
	}
	activity.ID = "out-new"
	m.activities = append(m.activities, models.PlacementOutreachDetail{PlacementOutreach: *activity})
	return nil
}

func outreachFixture(id, officer string) models.PlacementOutreachDetail {
	return models.PlacementOutreachDetail{PlacementOutreach: models.PlacementOutreach{
		ID: id, OfficerID: strPtr(officer), CompanyName: "Acme Corp",
		ContactName: "Priya", Mode: models.OutreachModeCall, PhoneEmail: "9900012345",
		Date: time.Now().UTC(),
	}}
}

func TestOutreachServiceListOfficerScoped(t *testing.T) {
	repo := &mockOutreachRepo{activities: []models.PlacementOutreachDetail{
		outreachFixture("o1", "p1"),
		outreachFixture("o2", "p2"),
	}}
	svc := NewOutreachService(repo, validator.New(), zap.NewNop())

	result, _, err := svc.List(context.Background(), models.JWTClaims{UserID: "p1", Role: models.RolePlacementOfficer}, 0, 0)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "o1", result[0].ID)
	assert.Equal(t, "p1", repo.listFilter.OfficerID)
}

func TestOutreachServiceGetForbiddenForOtherOfficer(t *testing.T) {
	repo := &mockOutreachRepo{activities: []models.PlacementOutreachDetail{outreachFixture("o1", "p1")}}
	svc := NewOutreachService(repo, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), models.JWTClaims{UserID: "p2", Role: models.RolePlacementOfficer}, "o1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestOutreachServiceLogAttributesActor(t *testing.T) {
	repo := &mockOutreachRepo{}
	svc := NewOutreachService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Log(context.Background(), models.JWTClaims{UserID: "p1", Role: models.RolePlacementOfficer}, OutreachRequest{
		CompanyName: "Acme Corp", ContactName: "Priya", Mode: models.OutreachModeEmail, PhoneEmail: "hr@acme.example",
	})
	require.NoError(t, err)
	require.NotNil(t, detail.OfficerID)
	assert.Equal(t, "p1", *detail.OfficerID)
}

func TestOutreachServiceLogInvalidMode(t *testing.T) {
	svc := NewOutreachService(&mockOutreachRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Log(context.Background(), models.JWTClaims{UserID: "p1"}, OutreachRequest{
		CompanyName: "Acme Corp", ContactName: "Priya", Mode: "FAX", PhoneEmail: "hr@acme.example",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
