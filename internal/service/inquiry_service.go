package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type inquiryRepository interface {
	List(ctx context.Context, f models.InquiryFilter) ([]models.InquiryDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.InquiryDetail, error)
	ExistsByMobile(ctx context.Context, mobile string, excludeID string) (bool, error)
	Create(ctx context.Context, inquiry *models.Inquiry) error
	Update(ctx context.Context, inquiry *models.Inquiry) error
	UpdateLeadStatus(ctx context.Context, id string, status models.LeadStatus) error
}

// InquiryRequest represents payload for creating or updating inquiries.
type InquiryRequest struct {
	Name             string            `json:"name" validate:"required"`
	Mobile           string            `json:"mobile" validate:"required,min=10"`
	Email            string            `json:"email" validate:"omitempty,email"`
	College          string            `json:"college"`
	Degree           string            `json:"degree"`
	Branch           string            `json:"branch"`
	PassoutYear      int               `json:"passout_year"`
	InterestedCourse string            `json:"interested_course" validate:"required"`
	Source           string            `json:"source"`
	LeadStatus       models.LeadStatus `json:"lead_status" validate:"required,oneof=HOT WARM COLD"`
}

// ListInquiriesQuery combines the visibility scope with the view filters.
type ListInquiriesQuery struct {
	Criteria filter.Criteria
	Page     int
	PageSize int
}

// InquiryService handles inquiry workflows for counselors and managers.
type InquiryService struct {
	repo      inquiryRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInquiryService creates an instance of InquiryService.
func NewInquiryService(repo inquiryRepository, validate *validator.Validate, logger *zap.Logger) *InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InquiryService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// listWindowSize is the page size used when walking the full scoped
// window before the filter engine runs.
const listWindowSize = 500

// paginateBounds clamps a page request against a filtered total and
// returns the slice bounds plus the metadata for the envelope.
func paginateBounds(total, page, size int) (int, int, *models.Pagination) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > listWindowSize {
		size = 20
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end, &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// List returns the inquiries visible to the actor, refined by the view
// criteria. Counselors only see inquiries they created; everyone with the
// inquiries capability sees the full set. The whole scoped window is
// fetched so the criteria see every record before the page is cut;
// pagination applies to the filtered result.
func (s *InquiryService) List(ctx context.Context, actor models.JWTClaims, query ListInquiriesQuery) ([]models.InquiryDetail, *models.Pagination, error) {
	repoFilter := models.InquiryFilter{Search: query.Criteria.Search, PageSize: listWindowSize}
	if actor.Role == models.RoleCounselor {
		repoFilter.CreatedBy = actor.UserID
	}

	var window []models.InquiryDetail
	for page := 1; ; page++ {
		repoFilter.Page = page
		batch, _, err := s.repo.List(ctx, repoFilter)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inquiries")
		}
		window = append(window, batch...)
		if len(batch) < listWindowSize {
			break
		}
	}

	matched := filter.Inquiries(window, query.Criteria, s.now())
	start, end, pagination := paginateBounds(len(matched), query.Page, query.PageSize)
	return matched[start:end], pagination, nil
}

// Get returns an inquiry by ID, enforcing the counselor visibility scope.
func (s *InquiryService) Get(ctx context.Context, actor models.JWTClaims, id string) (*models.InquiryDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}

	if actor.Role == models.RoleCounselor {
		if detail.CreatedBy == nil || *detail.CreatedBy != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "inquiry belongs to another counselor")
		}
	}
	return detail, nil
}

// Create registers a new inquiry attributed to the actor.
func (s *InquiryService) Create(ctx context.Context, actor models.JWTClaims, req InquiryRequest) (*models.InquiryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inquiry payload")
	}

	exists, err := s.repo.ExistsByMobile(ctx, req.Mobile, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mobile uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an inquiry with this mobile already exists")
	}

	inquiry := &models.Inquiry{
		Name:             req.Name,
		Mobile:           req.Mobile,
		Email:            req.Email,
		College:          req.College,
		Degree:           req.Degree,
		Branch:           req.Branch,
		PassoutYear:      req.PassoutYear,
		InterestedCourse: req.InterestedCourse,
		Source:           req.Source,
		LeadStatus:       req.LeadStatus,
		CreatedBy:        &actor.UserID,
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create inquiry")
	}

	s.logger.Info("inquiry created", zap.String("inquiry_id", inquiry.ID), zap.String("created_by", actor.UserID))
	return s.repo.FindByID(ctx, inquiry.ID)
}

// Update modifies an existing inquiry. Enrolled inquiries keep their
// ENROLLED status regardless of the payload.
func (s *InquiryService) Update(ctx context.Context, actor models.JWTClaims, id string, req InquiryRequest) (*models.InquiryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inquiry payload")
	}

	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByMobile(ctx, req.Mobile, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mobile uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an inquiry with this mobile already exists")
	}

	inquiry := current.Inquiry
	inquiry.Name = req.Name
	inquiry.Mobile = req.Mobile
	inquiry.Email = req.Email
	inquiry.College = req.College
	inquiry.Degree = req.Degree
	inquiry.Branch = req.Branch
	inquiry.PassoutYear = req.PassoutYear
	inquiry.InterestedCourse = req.InterestedCourse
	inquiry.Source = req.Source
	if current.LeadStatus == models.LeadStatusEnrolled {
		inquiry.LeadStatus = models.LeadStatusEnrolled
	} else {
		inquiry.LeadStatus = req.LeadStatus
	}

	if err := s.repo.Update(ctx, &inquiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update inquiry")
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateLeadStatus transitions the sales temperature of an inquiry.
func (s *InquiryService) UpdateLeadStatus(ctx context.Context, actor models.JWTClaims, id string, status models.LeadStatus) (*models.InquiryDetail, error) {
	if !status.Valid() || status == models.LeadStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lead status must be HOT, WARM or COLD")
	}

	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if current.LeadStatus == models.LeadStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrolled inquiries cannot change lead status")
	}

	if err := s.repo.UpdateLeadStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lead status")
	}
	return s.repo.FindByID(ctx, id)
}
