package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type outreachRepository interface {
	List(ctx context.Context, f models.OutreachFilter) ([]models.PlacementOutreachDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PlacementOutreachDetail, error)
	Create(ctx context.Context, activity *models.PlacementOutreach) error
}

// OutreachRequest represents payload for logging a company contact.
type OutreachRequest struct {
	CompanyName string              `json:"company_name" validate:"required"`
	ContactName string              `json:"contact_name" validate:"required"`
	Mode        models.OutreachMode `json:"mode" validate:"required,oneof=CALL EMAIL LINKEDIN VISIT"`
	PhoneEmail  string              `json:"phone_email" validate:"required"`
	Remark      *string             `json:"remark"`
	Date        time.Time           `json:"date"`
}

// OutreachService handles placement outreach logging.
type OutreachService struct {
	repo      outreachRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOutreachService creates an instance of OutreachService.
func NewOutreachService(repo outreachRepository, validate *validator.Validate, logger *zap.Logger) *OutreachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &OutreachService{repo: repo, validator: validate, logger: logger}
}

// List returns outreach activities visible to the actor. Placement
// officers only see their own log; managers see everything.
func (s *OutreachService) List(ctx context.Context, actor models.JWTClaims, page, pageSize int) ([]models.PlacementOutreachDetail, int, error) {
	repoFilter := models.OutreachFilter{Page: page, PageSize: pageSize}
	if actor.Role == models.RolePlacementOfficer {
		repoFilter.OfficerID = actor.UserID
	}

	activities, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outreach")
	}
	return activities, total, nil
}

// Get returns an outreach activity, enforcing the officer scope.
func (s *OutreachService) Get(ctx context.Context, actor models.JWTClaims, id string) (*models.PlacementOutreachDetail, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outreach activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outreach activity")
	}

	if actor.Role == models.RolePlacementOfficer {
		if activity.OfficerID == nil || *activity.OfficerID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "activity belongs to another officer")
		}
	}
	return activity, nil
}

// Log records a new company contact attributed to the actor.
func (s *OutreachService) Log(ctx context.Context, actor models.JWTClaims, req OutreachRequest) (*models.PlacementOutreachDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid outreach payload")
	}

	activity := &models.PlacementOutreach{
		OfficerID:   &actor.UserID,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Mode:        req.Mode,
		PhoneEmail:  req.PhoneEmail,
		Remark:      req.Remark,
		Date:        req.Date,
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log outreach")
	}

	s.logger.Info("outreach logged",
		zap.String("outreach_id", activity.ID),
		zap.String("company", activity.CompanyName))
	return s.repo.FindByID(ctx, activity.ID)
}
