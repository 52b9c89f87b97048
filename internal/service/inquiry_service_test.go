package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type mockInquiryRepo struct {
	inquiries    []models.InquiryDetail
	listFilter   models.InquiryFilter
	listErr      error
	mobileExists bool
	createErr    error
	updated      *models.Inquiry
	leadStatus   models.LeadStatus
}

func (m *mockInquiryRepo) List(ctx context.Context, f models.InquiryFilter) ([]models.InquiryDetail, int, error) {
	m.listFilter = f
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var scoped []models.InquiryDetail
	for _, inq := range m.inquiries {
		if f.CreatedBy != "" && (inq.CreatedBy == nil || *inq.CreatedBy != f.CreatedBy) {
			continue
		}
		if f.Search != "" &&
			!strings.Contains(strings.ToLower(inq.Name), strings.ToLower(f.Search)) &&
			!strings.Contains(inq.Mobile, f.Search) {
			continue
		}
		scoped = append(scoped, inq)
	}
	total := len(scoped)
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = total
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return scoped[start:end], total, nil
}

func (m *mockInquiryRepo) FindByID(ctx context.Context, id string) (*models.InquiryDetail, error) {
	for i := range m.inquiries {
		if m.inquiries[i].ID == id {
			return &m.inquiries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockInquiryRepo) ExistsByMobile(ctx context.Context, mobile string, excludeID string) (bool, error) {
	return m.mobileExists, nil
}

func (m *mockInquiryRepo) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if m.createErr != nil {
		return m.createErr
	}
	inquiry.ID = "inq-new"
	inquiry.CreatedAt = time.Now().UTC()
	m.inquiries = append(m.inquiries, models.InquiryDetail{Inquiry: *inquiry})
	return nil
}

func (m *mockInquiryRepo) Update(ctx context.Context, inquiry *models.Inquiry) error {
	m.updated = inquiry
	for i := range m.inquiries {
		if m.inquiries[i].ID == inquiry.ID {
			m.inquiries[i].Inquiry = *inquiry
		}
	}
	return nil
}

func (m *mockInquiryRepo) UpdateLeadStatus(ctx context.Context, id string, status models.LeadStatus) error {
	m.leadStatus = status
	for i := range m.inquiries {
		if m.inquiries[i].ID == id {
			m.inquiries[i].LeadStatus = status
		}
	}
	return nil
}

func counselorClaims(userID string) models.JWTClaims {
	return models.JWTClaims{UserID: userID, Role: models.RoleCounselor}
}

func managerClaims() models.JWTClaims {
	return models.JWTClaims{UserID: "mgr-1", Role: models.RoleManager}
}

func strPtr(s string) *string { return &s }

func inquiryFixture(id, creator string, created time.Time) models.InquiryDetail {
	return models.InquiryDetail{Inquiry: models.Inquiry{
		ID: id, Name: "Lead " + id, Mobile: "99000" + id, InterestedCourse: "Java Full Stack",
		LeadStatus: models.LeadStatusHot, CreatedBy: strPtr(creator), CreatedAt: created,
	}}
}

func TestInquiryServiceListCounselorScoped(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{
		inquiryFixture("i1", "c1", now),
		inquiryFixture("i2", "c2", now),
	}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	result, pagination, err := svc.List(context.Background(), counselorClaims("c1"), ListInquiriesQuery{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "i1", result[0].ID)
	assert.Equal(t, "c1", repo.listFilter.CreatedBy)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestInquiryServiceListManagerSeesAll(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{
		inquiryFixture("i1", "c1", now),
		inquiryFixture("i2", "c2", now),
	}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	result, _, err := svc.List(context.Background(), managerClaims(), ListInquiriesQuery{})
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Empty(t, repo.listFilter.CreatedBy)
}

func TestInquiryServiceListAppliesDateBucket(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{
		inquiryFixture("today", "c1", now.Add(-2*time.Hour)),
		inquiryFixture("old", "c1", now.AddDate(0, -1, 0)),
	}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return now }

	result, _, err := svc.List(context.Background(), managerClaims(), ListInquiriesQuery{
		Criteria: filter.Criteria{DateFilter: "today"},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "today", result[0].ID)
}

func TestInquiryServiceListFindsMatchesBeyondFirstPage(t *testing.T) {
	now := time.Now().UTC()
	var all []models.InquiryDetail
	for i := 0; i < 20; i++ {
		f := inquiryFixture(fmt.Sprintf("recent-%02d", i), "c1", now.Add(-time.Duration(i)*time.Minute))
		f.College = "IIT Delhi"
		all = append(all, f)
	}
	for i := 0; i < 10; i++ {
		f := inquiryFixture(fmt.Sprintf("older-%02d", i), "c1", now.Add(-time.Duration(100+i)*time.Minute))
		f.College = "MIT Pune"
		all = append(all, f)
	}
	repo := &mockInquiryRepo{inquiries: all}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	result, pagination, err := svc.List(context.Background(), managerClaims(), ListInquiriesQuery{
		Criteria: filter.Criteria{College: "MIT"},
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, result, 10)
	for _, item := range result {
		assert.Equal(t, "MIT Pune", item.College)
	}
	assert.Equal(t, 10, pagination.TotalCount)
}

func TestInquiryServiceListPaginatesFilteredSet(t *testing.T) {
	now := time.Now().UTC()
	var all []models.InquiryDetail
	for i := 0; i < 25; i++ {
		f := inquiryFixture(fmt.Sprintf("i-%02d", i), "c1", now.Add(-time.Duration(i)*time.Minute))
		f.College = "MIT Pune"
		all = append(all, f)
	}
	repo := &mockInquiryRepo{inquiries: all}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	result, pagination, err := svc.List(context.Background(), managerClaims(), ListInquiriesQuery{
		Criteria: filter.Criteria{College: "MIT"},
		Page:     3,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Len(t, result, 5)
	assert.Equal(t, 25, pagination.TotalCount)
	assert.Equal(t, 3, pagination.Page)
	assert.Equal(t, 10, pagination.PageSize)
}

func TestInquiryServiceListPushesSearchToRepository(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{
		inquiryFixture("i1", "c1", now),
		inquiryFixture("i2", "c1", now),
	}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	result, _, err := svc.List(context.Background(), managerClaims(), ListInquiriesQuery{
		Criteria: filter.Criteria{Search: "99000i1"},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "i1", result[0].ID)
	assert.Equal(t, "99000i1", repo.listFilter.Search)
}

func TestInquiryServiceGetForbiddenForOtherCounselor(t *testing.T) {
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{inquiryFixture("i1", "c1", time.Now())}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), counselorClaims("c2"), "i1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceCreateDuplicateMobile(t *testing.T) {
	repo := &mockInquiryRepo{mobileExists: true}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), counselorClaims("c1"), InquiryRequest{
		Name: "Asha", Mobile: "9900011111", InterestedCourse: "Data Science", LeadStatus: models.LeadStatusHot,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceCreateAttributesActor(t *testing.T) {
	repo := &mockInquiryRepo{}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Create(context.Background(), counselorClaims("c1"), InquiryRequest{
		Name: "Asha", Mobile: "9900011111", InterestedCourse: "Data Science", LeadStatus: models.LeadStatusWarm,
	})
	require.NoError(t, err)
	require.NotNil(t, detail.CreatedBy)
	assert.Equal(t, "c1", *detail.CreatedBy)
	assert.Equal(t, models.LeadStatusWarm, detail.LeadStatus)
}

func TestInquiryServiceUpdateKeepsEnrolledStatus(t *testing.T) {
	fixture := inquiryFixture("i1", "c1", time.Now())
	fixture.LeadStatus = models.LeadStatusEnrolled
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{fixture}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Update(context.Background(), managerClaims(), "i1", InquiryRequest{
		Name: "Renamed", Mobile: "9900011111", InterestedCourse: "Data Science", LeadStatus: models.LeadStatusCold,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusEnrolled, detail.LeadStatus)
	assert.Equal(t, "Renamed", detail.Name)
}

func TestInquiryServiceUpdateLeadStatusRejectsEnrolledTarget(t *testing.T) {
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{inquiryFixture("i1", "c1", time.Now())}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	_, err := svc.UpdateLeadStatus(context.Background(), managerClaims(), "i1", models.LeadStatusEnrolled)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceUpdateLeadStatusConflictWhenEnrolled(t *testing.T) {
	fixture := inquiryFixture("i1", "c1", time.Now())
	fixture.LeadStatus = models.LeadStatusEnrolled
	repo := &mockInquiryRepo{inquiries: []models.InquiryDetail{fixture}}
	svc := NewInquiryService(repo, validator.New(), zap.NewNop())

	_, err := svc.UpdateLeadStatus(context.Background(), managerClaims(), "i1", models.LeadStatusCold)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
