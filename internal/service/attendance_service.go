package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/dto"
	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, f models.AttendanceFilter) ([]models.AttendanceRecord, error)
	ExistsForDate(ctx context.Context, studentID string, date time.Time) (bool, error)
	BulkCreate(ctx context.Context, rows []models.Attendance) error
}

type attendanceBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.BatchDetail, error)
}

type attendanceStudentRepository interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.StudentDetail, error)
}

// MarkAttendanceEntry is one student's status inside a bulk marking.
type MarkAttendanceEntry struct {
	StudentID string                  `json:"student" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// MarkAttendanceRequest marks an entire batch for one date.
type MarkAttendanceRequest struct {
	BatchID     string                `json:"batch" validate:"required"`
	Date        time.Time             `json:"date" validate:"required"`
	LectureTime *string               `json:"lecture_time"`
	TopicTaught *string               `json:"topic_taught"`
	Remarks     *string               `json:"remarks"`
	Entries     []MarkAttendanceEntry `json:"entries" validate:"required,min=1"`
}

// AttendanceService handles marking and the grouped history view.
type AttendanceService struct {
	repo      attendanceRepository
	batches   attendanceBatchRepository
	students  attendanceStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService creates an instance of AttendanceService.
func NewAttendanceService(repo attendanceRepository, batches attendanceBatchRepository, students attendanceStudentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, batches: batches, students: students, validator: validate, logger: logger}
}

// History returns one date's records grouped per batch with present and
// absent tallies. Trainers only see records they marked.
func (s *AttendanceService) History(ctx context.Context, actor models.JWTClaims, date time.Time, batchID string) (*dto.AttendanceHistoryResponse, error) {
	repoFilter := models.AttendanceFilter{Date: &date, BatchID: batchID}
	if actor.Role == models.RoleTrainer {
		repoFilter.TrainerID = actor.UserID
	}

	records, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	groups := filter.GroupAttendance(records)
	resp := &dto.AttendanceHistoryResponse{
		Date:   date.Format("2006-01-02"),
		Groups: groups,
	}
	for _, group := range groups {
		resp.Total += len(group.Records)
		resp.Present += group.Present
		resp.Absent += group.Absent
	}
	return resp, nil
}

// BulkMark records attendance for a whole batch in one transaction.
// Every entry is validated before anything is written, so a rejected
// request leaves no rows behind.
func (s *AttendanceService) BulkMark(ctx context.Context, actor models.JWTClaims, req MarkAttendanceRequest) (*dto.AttendanceHistoryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	batch, err := s.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	if actor.Role == models.RoleTrainer {
		if batch.Trainer == nil || *batch.Trainer != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "batch is assigned to another trainer")
		}
	}

	enrolled, err := s.students.ListByBatch(ctx, req.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch students")
	}
	inBatch := make(map[string]bool, len(enrolled))
	for _, student := range enrolled {
		inBatch[student.ID] = true
	}

	var invalid []string
	seen := make(map[string]int, len(req.Entries))
	for i, entry := range req.Entries {
		if !entry.Status.Valid() {
			invalid = append(invalid, fmt.Sprintf("entry %d: unknown status %q", i, entry.Status))
		}
		if !inBatch[entry.StudentID] {
			invalid = append(invalid, fmt.Sprintf("entry %d: student not in batch", i))
			continue
		}
		if prev, dup := seen[entry.StudentID]; dup {
			invalid = append(invalid, fmt.Sprintf("entry %d: duplicates entry %d", i, prev))
			continue
		}
		seen[entry.StudentID] = i

		marked, err := s.repo.ExistsForDate(ctx, entry.StudentID, req.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing attendance")
		}
		if marked {
			invalid = append(invalid, fmt.Sprintf("entry %d: already marked for this date", i))
		}
	}
	if len(invalid) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(invalid, "; "))
	}

	trainerID := actor.UserID
	rows := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		rows = append(rows, models.Attendance{
			BatchID:     req.BatchID,
			StudentID:   entry.StudentID,
			Date:        req.Date,
			LectureTime: req.LectureTime,
			Status:      entry.Status,
			TopicTaught: req.TopicTaught,
			Remarks:     req.Remarks,
			TrainerID:   &trainerID,
		})
	}

	if err := s.repo.BulkCreate(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.logger.Info("attendance marked",
		zap.String("batch_id", req.BatchID),
		zap.String("date", req.Date.Format("2006-01-02")),
		zap.Int("entries", len(rows)))
	return s.History(ctx, actor, req.Date, req.BatchID)
}
