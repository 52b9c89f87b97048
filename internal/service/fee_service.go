package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
	"github.com/vitalkonsult/vk-api/pkg/export"
)

type feeRepository interface {
	List(ctx context.Context, f models.FeeFilter) ([]models.FeeDetail, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error)
	FindByID(ctx context.Context, id string) (*models.FeeDetail, error)
	Create(ctx context.Context, fee *models.Fee) error
}

type feeStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// CollectFeeRequest represents payload for recording a payment.
type CollectFeeRequest struct {
	StudentID     string         `json:"student" validate:"required"`
	Amount        float64        `json:"amount" validate:"required,gt=0"`
	Mode          models.FeeMode `json:"mode" validate:"required,oneof=CASH UPI NEFT RTGS CHEQUE"`
	UTR           *string        `json:"utr"`
	DateCollected time.Time      `json:"date_collected"`
}

// FeeReceipt is a rendered receipt for a single payment.
type FeeReceipt struct {
	FileName string
	Content  []byte
}

// FeeService handles fee collection workflows.
type FeeService struct {
	repo      feeRepository
	students  feeStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
	pdf       pdfRenderer
}

// NewFeeService creates an instance of FeeService.
func NewFeeService(repo feeRepository, students feeStudentRepository, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{repo: repo, students: students, validator: validate, logger: logger, pdf: export.NewPDFExporter()}
}

// List returns collected fees, optionally scoped to a student.
func (s *FeeService) List(ctx context.Context, f models.FeeFilter) ([]models.FeeDetail, int, error) {
	fees, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	return fees, total, nil
}

// Get returns a fee record by ID.
func (s *FeeService) Get(ctx context.Context, id string) (*models.FeeDetail, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}
	return fee, nil
}

// Collect records a payment against a student. Non-electronic modes do
// not carry a UTR reference.
func (s *FeeService) Collect(ctx context.Context, actor models.JWTClaims, req CollectFeeRequest) (*models.FeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	collected, err := s.repo.ListByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee history")
	}
	var paid float64
	for _, fee := range collected {
		paid += fee.Amount
	}
	if paid+req.Amount > student.TotalFees {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment exceeds the student's total fees")
	}

	utr := req.UTR
	if req.Mode == models.FeeModeCash {
		utr = nil
	}

	fee := &models.Fee{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		Mode:          req.Mode,
		UTR:           utr,
		DateCollected: req.DateCollected,
		CollectedBy:   &actor.UserID,
	}

	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record fee")
	}

	s.logger.Info("fee collected",
		zap.String("fee_id", fee.ID),
		zap.String("student_id", fee.StudentID),
		zap.Float64("amount", fee.Amount))
	return s.repo.FindByID(ctx, fee.ID)
}

// Receipt renders a PDF receipt for a single collected payment.
func (s *FeeService) Receipt(ctx context.Context, id string) (*FeeReceipt, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}

	student, err := s.students.FindByID(ctx, fee.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	rows := []map[string]string{
		{"Field": "Receipt No", "Value": fee.ID},
		{"Field": "Student", "Value": fee.StudentName},
		{"Field": "Course", "Value": student.Course},
		{"Field": "Amount", "Value": fmt.Sprintf("%.2f INR", fee.Amount)},
		{"Field": "Payment Mode", "Value": string(fee.Mode)},
		{"Field": "Date Collected", "Value": fee.DateCollected.Format("2006-01-02")},
	}
	if fee.UTR != nil {
		rows = append(rows, map[string]string{"Field": "UTR", "Value": *fee.UTR})
	}
	if fee.CollectedByName != nil {
		rows = append(rows, map[string]string{"Field": "Collected By", "Value": *fee.CollectedByName})
	}

	content, err := s.pdf.Render(export.Dataset{Headers: []string{"Field", "Value"}, Rows: rows}, "Fee Receipt")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}

	return &FeeReceipt{
		FileName: fmt.Sprintf("fee-receipt-%s.pdf", fee.ID),
		Content:  content,
	}, nil
}
