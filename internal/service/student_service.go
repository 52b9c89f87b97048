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

type studentRepository interface {
	List(ctx context.Context, f models.StudentFilter) ([]models.StudentDetail, int, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.StudentDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByMobile(ctx context.Context, mobile string, excludeID string) (bool, error)
	ExistsByInquiry(ctx context.Context, inquiryID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type admissionInquiryRepository interface {
	FindByID(ctx context.Context, id string) (*models.InquiryDetail, error)
}

type admissionBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.BatchDetail, error)
}

type studentFeeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error)
}

// AdmitStudentRequest represents payload for admitting an inquiry.
type AdmitStudentRequest struct {
	InquiryID      string    `json:"inquiry" validate:"required"`
	Mobile         string    `json:"mobile" validate:"required,min=10"`
	Email          string    `json:"email" validate:"omitempty,email"`
	Course         string    `json:"course" validate:"required"`
	TotalFees      float64   `json:"total_fees" validate:"gte=0"`
	BatchID        *string   `json:"batch"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

// UpdateStudentRequest represents payload for updating a student.
type UpdateStudentRequest struct {
	Mobile         string               `json:"mobile" validate:"required,min=10"`
	Email          string               `json:"email" validate:"omitempty,email"`
	Course         string               `json:"course" validate:"required"`
	TotalFees      float64              `json:"total_fees" validate:"gte=0"`
	BatchID        *string              `json:"batch"`
	EnrollmentDate time.Time            `json:"enrollment_date"`
	Status         models.StudentStatus `json:"status" validate:"required,oneof=ACTIVE COMPLETED DROPPED"`
}

// ListStudentsQuery combines the repository scope with the view filters.
type ListStudentsQuery struct {
	Criteria filter.Criteria
	BatchID  string
	Page     int
	PageSize int
}

// StudentService handles admissions and student record workflows.
type StudentService struct {
	repo      studentRepository
	inquiries admissionInquiryRepository
	batches   admissionBatchRepository
	fees      studentFeeRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService creates an instance of StudentService.
func NewStudentService(repo studentRepository, inquiries admissionInquiryRepository, batches admissionBatchRepository, fees studentFeeRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{
		repo:      repo,
		inquiries: inquiries,
		batches:   batches,
		fees:      fees,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns students refined by the view criteria.
func (s *StudentService) List(ctx context.Context, query ListStudentsQuery) ([]models.StudentDetail, *models.Pagination, error) {
	var window []models.StudentDetail
	for page := 1; ; page++ {
		batch, _, err := s.repo.List(ctx, models.StudentFilter{
			BatchID:  query.BatchID,
			Page:     page,
			PageSize: listWindowSize,
		})
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		window = append(window, batch...)
		if len(batch) < listWindowSize {
			break
		}
	}

	matched := filter.Students(window, query.Criteria, s.now())
	start, end, pagination := paginateBounds(len(matched), query.Page, query.PageSize)
	return matched[start:end], pagination, nil
}

// Get returns a student with its originating inquiry and fee history.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fees, err := s.fees.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student fees")
	}
	student.Fees = fees
	return student, nil
}

// Admit converts an inquiry into a student. The student row and the
// inquiry's ENROLLED transition land in one transaction.
func (s *StudentService) Admit(ctx context.Context, req AdmitStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admission payload")
	}

	if _, err := s.inquiries.FindByID(ctx, req.InquiryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}

	admitted, err := s.repo.ExistsByInquiry(ctx, req.InquiryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admission state")
	}
	if admitted {
		return nil, appErrors.Clone(appErrors.ErrAlreadyAdmitted, "inquiry already admitted")
	}

	exists, err := s.repo.ExistsByMobile(ctx, req.Mobile, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mobile uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this mobile already exists")
	}

	if req.BatchID != nil && *req.BatchID != "" {
		if _, err := s.batches.FindByID(ctx, *req.BatchID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
	}

	enrollmentDate := req.EnrollmentDate
	if enrollmentDate.IsZero() {
		enrollmentDate = s.now()
	}

	student := &models.Student{
		InquiryID:      req.InquiryID,
		Mobile:         req.Mobile,
		Email:          req.Email,
		Course:         req.Course,
		TotalFees:      req.TotalFees,
		BatchID:        req.BatchID,
		EnrollmentDate: enrollmentDate,
		Status:         models.StudentStatusActive,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to admit student")
	}

	s.logger.Info("student admitted",
		zap.String("student_id", student.ID),
		zap.String("inquiry_id", student.InquiryID))
	return s.Get(ctx, student.ID)
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exists, err := s.repo.ExistsByMobile(ctx, req.Mobile, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mobile uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this mobile already exists")
	}

	if req.BatchID != nil && *req.BatchID != "" {
		if _, err := s.batches.FindByID(ctx, *req.BatchID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
	}

	student := current.Student
	student.Mobile = req.Mobile
	student.Email = req.Email
	student.Course = req.Course
	student.TotalFees = req.TotalFees
	student.BatchID = req.BatchID
	if !req.EnrollmentDate.IsZero() {
		student.EnrollmentDate = req.EnrollmentDate
	}
	student.Status = req.Status

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return s.Get(ctx, id)
}

// ListByBatch returns the active students of a batch in enrollment order.
func (s *StudentService) ListByBatch(ctx context.Context, batchID string) ([]models.StudentDetail, error) {
	students, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch students")
	}
	return students, nil
}
