package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records    []models.AttendanceRecord
	marked     map[string]bool
	bulkErr    error
	bulkRows   []models.Attendance
	listFilter models.AttendanceFilter
}

func (m *mockAttendanceRepo) List(ctx context.Context, f models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	m.listFilter = f
	return m.records, nil
}

func (m *mockAttendanceRepo) ExistsForDate(ctx context.Context, studentID string, date time.Time) (bool, error) {
	return m.marked[studentID], nil
}

func (m *mockAttendanceRepo) BulkCreate(ctx context.Context, rows []models.Attendance) error {
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.bulkRows = rows
	for _, row := range rows {
		m.records = append(m.records, models.AttendanceRecord{Attendance: row, BatchName: "Batch A"})
	}
	return nil
}

type mockAttendanceBatchRepo struct {
	batch *models.BatchDetail
}

func (m *mockAttendanceBatchRepo) FindByID(ctx context.Context, id string) (*models.BatchDetail, error) {
	if m.batch == nil || m.batch.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.batch, nil
}

type mockAttendanceStudentRepo struct {
	students []models.StudentDetail
}

func (m *mockAttendanceStudentRepo) ListByBatch(ctx context.Context, batchID string) ([]models.StudentDetail, error) {
	return m.students, nil
}

func attendanceTestBatch(trainerID string) *mockAttendanceBatchRepo {
	return &mockAttendanceBatchRepo{batch: &models.BatchDetail{Batch: models.Batch{
		ID: "b1", BatchName: "Batch A", Trainer: &trainerID,
	}}}
}

func attendanceTestStudents(ids ...string) *mockAttendanceStudentRepo {
	repo := &mockAttendanceStudentRepo{}
	for _, id := range ids {
		repo.students = append(repo.students, models.StudentDetail{Student: models.Student{ID: id}})
	}
	return repo
}

func markRequest(entries ...MarkAttendanceEntry) MarkAttendanceRequest {
	return MarkAttendanceRequest{
		BatchID: "b1",
		Date:    time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		Entries: entries,
	}
}

func TestAttendanceServiceBulkMarkSuccess(t *testing.T) {
	repo := &mockAttendanceRepo{marked: map[string]bool{}}
	svc := NewAttendanceService(repo, attendanceTestBatch("t1"), attendanceTestStudents("s1", "s2"), validator.New(), zap.NewNop())

	resp, err := svc.BulkMark(context.Background(), models.JWTClaims{UserID: "t1", Role: models.RoleTrainer}, markRequest(
		MarkAttendanceEntry{StudentID: "s1", Status: models.AttendanceStatusPresentOffline},
		MarkAttendanceEntry{StudentID: "s2", Status: models.AttendanceStatusAbsent},
	))
	require.NoError(t, err)
	require.Len(t, repo.bulkRows, 2)
	require.NotNil(t, repo.bulkRows[0].TrainerID)
	assert.Equal(t, "t1", *repo.bulkRows[0].TrainerID)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Present)
	assert.Equal(t, 1, resp.Absent)
}

func TestAttendanceServiceBulkMarkForeignTrainer(t *testing.T) {
	repo := &mockAttendanceRepo{marked: map[string]bool{}}
	svc := NewAttendanceService(repo, attendanceTestBatch("t1"), attendanceTestStudents("s1"), validator.New(), zap.NewNop())

	_, err := svc.BulkMark(context.Background(), models.JWTClaims{UserID: "t2", Role: models.RoleTrainer}, markRequest(
		MarkAttendanceEntry{StudentID: "s1", Status: models.AttendanceStatusPresent},
	))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceBulkMarkCollectsAllEntryErrors(t *testing.T) {
	repo := &mockAttendanceRepo{marked: map[string]bool{"s2": true}}
	svc := NewAttendanceService(repo, attendanceTestBatch("t1"), attendanceTestStudents("s1", "s2"), validator.New(), zap.NewNop())

	_, err := svc.BulkMark(context.Background(), models.JWTClaims{UserID: "t1", Role: models.RoleTrainer}, markRequest(
		MarkAttendanceEntry{StudentID: "s1", Status: "MAYBE"},
		MarkAttendanceEntry{StudentID: "s2", Status: models.AttendanceStatusPresent},
		MarkAttendanceEntry{StudentID: "stranger", Status: models.AttendanceStatusAbsent},
		MarkAttendanceEntry{StudentID: "s1", Status: models.AttendanceStatusPresent},
	))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "entry 0: unknown status")
	assert.Contains(t, appErr.Message, "entry 1: already marked")
	assert.Contains(t, appErr.Message, "entry 2: student not in batch")
	assert.Contains(t, appErr.Message, "entry 3: duplicates entry 0")
	assert.Nil(t, repo.bulkRows)
}

func TestAttendanceServiceBulkMarkWritesNothingOnFailure(t *testing.T) {
	repo := &mockAttendanceRepo{marked: map[string]bool{}}
	svc := NewAttendanceService(repo, attendanceTestBatch("t1"), attendanceTestStudents("s1"), validator.New(), zap.NewNop())

	_, err := svc.BulkMark(context.Background(), models.JWTClaims{UserID: "t1", Role: models.RoleTrainer}, markRequest(
		MarkAttendanceEntry{StudentID: "s1", Status: models.AttendanceStatusPresent},
		MarkAttendanceEntry{StudentID: "absentee", Status: models.AttendanceStatusAbsent},
	))
	require.Error(t, err)
	assert.True(t, strings.Contains(appErrors.FromError(err).Message, "not in batch"))
	assert.Empty(t, repo.bulkRows)
}

func TestAttendanceServiceHistoryGroupsByBatch(t *testing.T) {
	date := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	repo := &mockAttendanceRepo{records: []models.AttendanceRecord{
		{Attendance: models.Attendance{ID: "a1", BatchID: "b1", StudentID: "s1", Status: models.AttendanceStatusPresent}, BatchName: "Batch A"},
		{Attendance: models.Attendance{ID: "a2", BatchID: "b2", StudentID: "s2", Status: models.AttendanceStatusAbsent}, BatchName: "Batch B"},
		{Attendance: models.Attendance{ID: "a3", BatchID: "b1", StudentID: "s3", Status: models.AttendanceStatusPresentOnline}, BatchName: "Batch A"},
	}}
	svc := NewAttendanceService(repo, attendanceTestBatch("t1"), attendanceTestStudents(), validator.New(), zap.NewNop())

	resp, err := svc.History(context.Background(), models.JWTClaims{UserID: "mgr-1", Role: models.RoleManager}, date, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-15", resp.Date)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "b1", resp.Groups[0].BatchID)
	assert.Equal(t, 2, resp.Groups[0].Present+resp.Groups[1].Present)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Absent)
}

func TestAttendanceServiceHistoryTrainerScoped(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, attendanceTestBatch("t1"), attendanceTestStudents(), validator.New(), zap.NewNop())

	_, err := svc.History(context.Background(), models.JWTClaims{UserID: "t1", Role: models.RoleTrainer}, time.Now(), "")
	require.NoError(t, err)
	assert.Equal(t, "t1", repo.listFilter.TrainerID)
}
