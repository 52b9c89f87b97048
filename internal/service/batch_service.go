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

type batchRepository interface {
	List(ctx context.Context, f models.BatchFilter) ([]models.BatchDetail, error)
	FindByID(ctx context.Context, id string) (*models.BatchDetail, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
}

// BatchRequest represents payload for creating or updating batches.
type BatchRequest struct {
	Course        string    `json:"course" validate:"required"`
	BatchName     string    `json:"batch_name" validate:"required"`
	Trainer       *string   `json:"trainer"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	ClassroomName *string   `json:"classroom_name"`
	StartTime     *string   `json:"start_time"`
	EndTime       *string   `json:"end_time"`
	DaysOfWeek    *string   `json:"days_of_week"`

	ZoomHostAccount     *string `json:"zoom_host_account"`
	ZoomHostPassword    *string `json:"zoom_host_password"`
	ZoomMeetingID       *string `json:"zoom_meeting_id"`
	ZoomMeetingPasscode *string `json:"zoom_meeting_passcode"`
	ZoomLink            *string `json:"zoom_link"`
}

// BatchService handles batch scheduling workflows.
type BatchService struct {
	repo      batchRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBatchService creates an instance of BatchService.
func NewBatchService(repo batchRepository, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BatchService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns batches visible to the actor. Trainers only see batches
// assigned to them.
func (s *BatchService) List(ctx context.Context, actor models.JWTClaims, course string) ([]models.BatchDetail, error) {
	repoFilter := models.BatchFilter{Course: course}
	if actor.Role == models.RoleTrainer {
		repoFilter.TrainerID = actor.UserID
	}

	batches, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// TodaysBatches returns the actor's batches that meet today according to
// their weekday schedule.
func (s *BatchService) TodaysBatches(ctx context.Context, actor models.JWTClaims) ([]models.BatchDetail, error) {
	batches, err := s.List(ctx, actor, "")
	if err != nil {
		return nil, err
	}
	return filter.TodaysBatches(batches, s.now()), nil
}

// Get returns a batch by ID.
func (s *BatchService) Get(ctx context.Context, actor models.JWTClaims, id string) (*models.BatchDetail, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	if actor.Role == models.RoleTrainer {
		if batch.Trainer == nil || *batch.Trainer != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "batch is assigned to another trainer")
		}
	}
	return batch, nil
}

// Create registers a new batch.
func (s *BatchService) Create(ctx context.Context, req BatchRequest) (*models.BatchDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch := &models.Batch{
		Course:              req.Course,
		BatchName:           req.BatchName,
		Trainer:             req.Trainer,
		StartDate:           req.StartDate,
		ClassroomName:       req.ClassroomName,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		DaysOfWeek:          req.DaysOfWeek,
		ZoomHostAccount:     req.ZoomHostAccount,
		ZoomHostPassword:    req.ZoomHostPassword,
		ZoomMeetingID:       req.ZoomMeetingID,
		ZoomMeetingPasscode: req.ZoomMeetingPasscode,
		ZoomLink:            req.ZoomLink,
	}

	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}

	s.logger.Info("batch created", zap.String("batch_id", batch.ID), zap.String("course", batch.Course))
	return s.repo.FindByID(ctx, batch.ID)
}

// Update modifies an existing batch.
func (s *BatchService) Update(ctx context.Context, id string, req BatchRequest) (*models.BatchDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	batch := current.Batch
	batch.Course = req.Course
	batch.BatchName = req.BatchName
	batch.Trainer = req.Trainer
	batch.StartDate = req.StartDate
	batch.ClassroomName = req.ClassroomName
	batch.StartTime = req.StartTime
	batch.EndTime = req.EndTime
	batch.DaysOfWeek = req.DaysOfWeek
	batch.ZoomHostAccount = req.ZoomHostAccount
	batch.ZoomHostPassword = req.ZoomHostPassword
	batch.ZoomMeetingID = req.ZoomMeetingID
	batch.ZoomMeetingPasscode = req.ZoomMeetingPasscode
	batch.ZoomLink = req.ZoomLink

	if err := s.repo.Update(ctx, &batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}
	return s.repo.FindByID(ctx, id)
}
