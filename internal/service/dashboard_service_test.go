package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

type mockDashInquiryRepo struct {
	counts map[string]int
	calls  int
}

func (m *mockDashInquiryRepo) Count(ctx context.Context, f models.InquiryCountFilter) (int, error) {
	m.calls++
	switch {
	case f.LeadStatus != nil:
		return m.counts[string(*f.LeadStatus)], nil
	case f.Since != nil:
		return m.counts["today"], nil
	default:
		return m.counts["total"], nil
	}
}

type mockDashStudentRepo struct {
	total  int
	active int
}

func (m *mockDashStudentRepo) Count(ctx context.Context, status *models.StudentStatus) (int, error) {
	if status != nil && *status == models.StudentStatusActive {
		return m.active, nil
	}
	return m.total, nil
}

type mockDashFeeRepo struct {
	total float64
	today float64
}

func (m *mockDashFeeRepo) Total(ctx context.Context, since *time.Time) (float64, error) {
	if since != nil {
		return m.today, nil
	}
	return m.total, nil
}

type mockDashBatchRepo struct {
	batches []models.BatchDetail
	total   int
}

func (m *mockDashBatchRepo) List(ctx context.Context, f models.BatchFilter) ([]models.BatchDetail, error) {
	return m.batches, nil
}

func (m *mockDashBatchRepo) CountByTrainer(ctx context.Context, trainerID string) (int, error) {
	return m.total, nil
}

type mockDashOutreachRepo struct {
	total int
	today int
}

func (m *mockDashOutreachRepo) Count(ctx context.Context, since *time.Time) (int, error) {
	if since != nil {
		return m.today, nil
	}
	return m.total, nil
}

func (m *mockDashOutreachRepo) CountByOfficer(ctx context.Context, officerID string, since *time.Time) (int, error) {
	return m.Count(ctx, since)
}

func newDashboardFixture(inquiries *mockDashInquiryRepo, cache *CacheService) *DashboardService {
	return NewDashboardService(
		inquiries,
		&mockDashStudentRepo{total: 40, active: 32},
		&mockDashFeeRepo{total: 900000, today: 25000},
		&mockDashBatchRepo{total: 3},
		&mockDashOutreachRepo{total: 12, today: 2},
		cache,
		zap.NewNop(),
		DashboardServiceConfig{CacheTTL: time.Minute},
	)
}

func TestDashboardServiceCounselor(t *testing.T) {
	inquiries := &mockDashInquiryRepo{counts: map[string]int{"total": 20, "today": 3, "HOT": 5, "ENROLLED": 4}}
	svc := newDashboardFixture(inquiries, nil)

	resp, err := svc.Counselor(context.Background(), models.JWTClaims{UserID: "c1", Role: models.RoleCounselor})
	require.NoError(t, err)
	assert.Equal(t, 20, resp.TotalInquiries)
	assert.Equal(t, 3, resp.InquiriesToday)
	assert.Equal(t, 5, resp.HotLeads)
	assert.Equal(t, 4, resp.Enrolled)
}

func TestDashboardServiceCacheHitSkipsRepos(t *testing.T) {
	inquiries := &mockDashInquiryRepo{counts: map[string]int{"total": 20}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	svc := newDashboardFixture(inquiries, cache)
	actor := models.JWTClaims{UserID: "c1", Role: models.RoleCounselor}

	_, err := svc.Counselor(context.Background(), actor)
	require.NoError(t, err)
	firstCalls := inquiries.calls

	resp, err := svc.Counselor(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, firstCalls, inquiries.calls)
	assert.Equal(t, 20, resp.TotalInquiries)
}

func TestDashboardServiceTrainerTodaysBatches(t *testing.T) {
	inquiries := &mockDashInquiryRepo{counts: map[string]int{}}
	svc := NewDashboardService(
		inquiries,
		&mockDashStudentRepo{},
		&mockDashFeeRepo{},
		&mockDashBatchRepo{total: 2, batches: []models.BatchDetail{
			batchFixture("b1", "t1", "Mon,Wed,Fri"),
			batchFixture("b2", "t1", "Tue,Thu"),
		}},
		&mockDashOutreachRepo{},
		nil,
		zap.NewNop(),
		DashboardServiceConfig{},
	)
	// 2024-05-15 is a Wednesday.
	svc.now = func() time.Time { return time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC) }

	resp, err := svc.Trainer(context.Background(), models.JWTClaims{UserID: "t1", Role: models.RoleTrainer})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalBatches)
	require.Len(t, resp.TodaysBatches, 1)
	assert.Equal(t, "b1", resp.TodaysBatches[0].ID)
}

func TestDashboardServiceForRoleRejectsUnknown(t *testing.T) {
	svc := newDashboardFixture(&mockDashInquiryRepo{counts: map[string]int{}}, nil)

	_, err := svc.ForRole(context.Background(), models.JWTClaims{UserID: "x", Role: "INTERN"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDashboardServiceManager(t *testing.T) {
	inquiries := &mockDashInquiryRepo{counts: map[string]int{"total": 100}}
	svc := newDashboardFixture(inquiries, nil)

	resp, err := svc.Manager(context.Background(), models.JWTClaims{UserID: "m1", Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.TotalInquiries)
	assert.Equal(t, 40, resp.TotalStudents)
	assert.Equal(t, 900000.0, resp.TotalFees)
	assert.Equal(t, 12, resp.Placements)
}
