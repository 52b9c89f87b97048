package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/dto"
	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type dashboardInquiryRepository interface {
	Count(ctx context.Context, f models.InquiryCountFilter) (int, error)
}

type dashboardStudentRepository interface {
	Count(ctx context.Context, status *models.StudentStatus) (int, error)
}

type dashboardFeeRepository interface {
	Total(ctx context.Context, since *time.Time) (float64, error)
}

type dashboardBatchRepository interface {
	List(ctx context.Context, f models.BatchFilter) ([]models.BatchDetail, error)
	CountByTrainer(ctx context.Context, trainerID string) (int, error)
}

type dashboardOutreachRepository interface {
	Count(ctx context.Context, since *time.Time) (int, error)
	CountByOfficer(ctx context.Context, officerID string, since *time.Time) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the role-specific dashboard payloads.
type DashboardService struct {
	inquiries dashboardInquiryRepository
	students  dashboardStudentRepository
	fees      dashboardFeeRepository
	batches   dashboardBatchRepository
	outreach  dashboardOutreachRepository
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	inquiries dashboardInquiryRepository,
	students dashboardStudentRepository,
	fees dashboardFeeRepository,
	batches dashboardBatchRepository,
	outreach dashboardOutreachRepository,
	cache *CacheService,
	logger *zap.Logger,
	cfg DashboardServiceConfig,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		inquiries: inquiries,
		students:  students,
		fees:      fees,
		batches:   batches,
		outreach:  outreach,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

func (s *DashboardService) startOfToday() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *DashboardService) cacheKey(actor models.JWTClaims) string {
	return fmt.Sprintf("dashboard:%s:%s", actor.Role, actor.UserID)
}

// ForRole dispatches to the dashboard matching the actor's role.
func (s *DashboardService) ForRole(ctx context.Context, actor models.JWTClaims) (interface{}, error) {
	switch actor.Role {
	case models.RoleManager:
		return s.Manager(ctx, actor)
	case models.RoleHRAdmin:
		return s.HR(ctx, actor)
	case models.RoleTrainer:
		return s.Trainer(ctx, actor)
	case models.RoleCounselor:
		return s.Counselor(ctx, actor)
	case models.RolePlacementOfficer:
		return s.Placement(ctx, actor)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no dashboard for this role")
	}
}

// Counselor summarises the actor's own inquiry pipeline.
func (s *DashboardService) Counselor(ctx context.Context, actor models.JWTClaims) (*dto.CounselorDashboardResponse, error) {
	key := s.cacheKey(actor)
	var cached dto.CounselorDashboardResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	today := s.startOfToday()
	hot := models.LeadStatusHot
	enrolled := models.LeadStatusEnrolled

	total, err := s.inquiries.Count(ctx, models.InquiryCountFilter{CreatedBy: actor.UserID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count inquiries")
	}
	todayCount, err := s.inquiries.Count(ctx, models.InquiryCountFilter{CreatedBy: actor.UserID, Since: &today})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's inquiries")
	}
	hotCount, err := s.inquiries.Count(ctx, models.InquiryCountFilter{CreatedBy: actor.UserID, LeadStatus: &hot})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count hot leads")
	}
	enrolledCount, err := s.inquiries.Count(ctx, models.InquiryCountFilter{CreatedBy: actor.UserID, LeadStatus: &enrolled})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrolled leads")
	}

	resp := &dto.CounselorDashboardResponse{
		TotalInquiries: total,
		InquiriesToday: todayCount,
		HotLeads:       hotCount,
		Enrolled:       enrolledCount,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// HR summarises admissions and fee collection.
func (s *DashboardService) HR(ctx context.Context, actor models.JWTClaims) (*dto.HRDashboardResponse, error) {
	key := s.cacheKey(actor)
	var cached dto.HRDashboardResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	active := models.StudentStatusActive
	today := s.startOfToday()

	total, err := s.students.Count(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	activeCount, err := s.students.Count(ctx, &active)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active students")
	}
	totalFees, err := s.fees.Total(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum fees")
	}
	feesToday, err := s.fees.Total(ctx, &today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum today's fees")
	}

	resp := &dto.HRDashboardResponse{
		TotalStudents:      total,
		ActiveStudents:     activeCount,
		TotalFeesCollected: totalFees,
		FeesCollectedToday: feesToday,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// Trainer lists the actor's batches scheduled for today.
func (s *DashboardService) Trainer(ctx context.Context, actor models.JWTClaims) (*dto.TrainerDashboardResponse, error) {
	key := s.cacheKey(actor)
	var cached dto.TrainerDashboardResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	batches, err := s.batches.List(ctx, models.BatchFilter{TrainerID: actor.UserID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	total, err := s.batches.CountByTrainer(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count batches")
	}

	todays := filter.TodaysBatches(batches, s.now())
	resp := &dto.TrainerDashboardResponse{
		TodaysBatches: make([]dto.TodaysBatch, 0, len(todays)),
		TotalBatches:  total,
	}
	for _, batch := range todays {
		resp.TodaysBatches = append(resp.TodaysBatches, dto.TodaysBatch{
			ID:            batch.ID,
			BatchName:     batch.BatchName,
			Course:        batch.Course,
			ClassroomName: batch.ClassroomName,
			StartTime:     batch.StartTime,
			EndTime:       batch.EndTime,
			ZoomLink:      batch.ZoomLink,
		})
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// Manager aggregates organisation-wide counters.
func (s *DashboardService) Manager(ctx context.Context, actor models.JWTClaims) (*dto.ManagerDashboardResponse, error) {
	key := s.cacheKey(actor)
	var cached dto.ManagerDashboardResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	totalInquiries, err := s.inquiries.Count(ctx, models.InquiryCountFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count inquiries")
	}
	totalStudents, err := s.students.Count(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	totalFees, err := s.fees.Total(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum fees")
	}
	placements, err := s.outreach.Count(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count outreach")
	}

	resp := &dto.ManagerDashboardResponse{
		TotalInquiries: totalInquiries,
		TotalStudents:  totalStudents,
		TotalFees:      totalFees,
		Placements:     placements,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// Placement summarises the actor's outreach activity.
func (s *DashboardService) Placement(ctx context.Context, actor models.JWTClaims) (*dto.PlacementDashboardResponse, error) {
	key := s.cacheKey(actor)
	var cached dto.PlacementDashboardResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	today := s.startOfToday()
	total, err := s.outreach.CountByOfficer(ctx, actor.UserID, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count outreach")
	}
	todayCount, err := s.outreach.CountByOfficer(ctx, actor.UserID, &today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's outreach")
	}

	resp := &dto.PlacementDashboardResponse{
		TotalOutreach: total,
		OutreachToday: todayCount,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Debug("dashboard cache write skipped", zap.String("key", key), zap.Error(err))
	}
}
