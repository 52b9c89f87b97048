package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/models"
	"github.com/vitalkonsult/vk-api/internal/repository"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
	"github.com/vitalkonsult/vk-api/pkg/jobs"
)

type mockExportStore struct {
	jobs      map[string]*models.ExportJob
	createErr error
	updateErr error
}

func newMockExportStore() *mockExportStore {
	return &mockExportStore{jobs: make(map[string]*models.ExportJob)}
}

func (m *mockExportStore) Create(ctx context.Context, job *models.ExportJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	if job.ID == "" {
		job.ID = "job-1"
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *mockExportStore) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (m *mockExportStore) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *mockExportStore) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range m.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

type mockDispatcher struct {
	enqueued   []jobs.Job
	enqueueErr error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type mockGenerator struct {
	result      *ExportResult
	generateErr error
	calls       int
}

func (m *mockGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	m.calls++
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return m.result, nil
}

func TestExportServiceCreateJobEnqueues(t *testing.T) {
	store := newMockExportStore()
	queue := &mockDispatcher{}
	svc := NewExportService(store, queue, nil, zap.NewNop(), ExportServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), ExportRequest{
		Type: models.ExportTypeInquiries, Format: models.ExportFormatCSV, DateFilter: "last_week",
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
	assert.Equal(t, "u1", store.jobs[resp.ID].CreatedBy)
}

func TestExportServiceCreateJobRejectsUnknownType(t *testing.T) {
	svc := NewExportService(newMockExportStore(), &mockDispatcher{}, nil, zap.NewNop(), ExportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), ExportRequest{Type: "grades", Format: models.ExportFormatCSV}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	store := newMockExportStore()
	queue := &mockDispatcher{enqueueErr: errors.New("queue full")}
	svc := NewExportService(store, queue, nil, zap.NewNop(), ExportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), ExportRequest{
		Type: models.ExportTypeFees, Format: models.ExportFormatPDF,
	}, "u1")
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, store.jobs["job-1"].Status)
	assert.NotNil(t, store.jobs["job-1"].FinishedAt)
}

func TestExportServiceGetStatusOwnership(t *testing.T) {
	store := newMockExportStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Type: models.ExportTypeStudents, Status: models.ExportStatusProcessing, CreatedBy: "u1"}
	svc := NewExportService(store, &mockDispatcher{}, nil, zap.NewNop(), ExportServiceConfig{})

	_, err := svc.GetStatus(context.Background(), "job-1", models.JWTClaims{UserID: "u2", Role: models.RoleCounselor})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	resp, err := svc.GetStatus(context.Background(), "job-1", models.JWTClaims{UserID: "mgr", Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusProcessing, resp.Status)
}

func TestExportServiceRecoverPendingJobs(t *testing.T) {
	store := newMockExportStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Type: models.ExportTypeInquiries, Status: models.ExportStatusQueued}
	store.jobs["job-2"] = &models.ExportJob{ID: "job-2", Type: models.ExportTypeFees, Status: models.ExportStatusFinished}
	queue := &mockDispatcher{}
	svc := NewExportService(store, queue, nil, zap.NewNop(), ExportServiceConfig{})

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "job-1", queue.enqueued[0].ID)
}

func TestExportWorkerHandleSuccess(t *testing.T) {
	store := newMockExportStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Type: models.ExportTypeInquiries, Status: models.ExportStatusQueued}
	gen := &mockGenerator{result: &ExportResult{URL: "/api/v1/exports/download/tok", Format: models.ExportFormatCSV, ExpiresAt: time.Now().Add(time.Hour)}}
	worker := NewExportWorker(store, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.NoError(t, err)
	job := store.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/exports/download/tok", *job.ResultURL)
	assert.NotNil(t, job.FinishedAt)
}

func TestExportWorkerHandleRequeuesBeforeMaxRetries(t *testing.T) {
	store := newMockExportStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Type: models.ExportTypeInquiries, Status: models.ExportStatusQueued}
	gen := &mockGenerator{generateErr: errors.New("disk full")}
	worker := NewExportWorker(store, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	job := store.jobs["job-1"]
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "disk full", *job.ErrorMessage)
	assert.Nil(t, job.FinishedAt)
}

func TestExportWorkerHandleFailsAfterMaxRetries(t *testing.T) {
	store := newMockExportStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Type: models.ExportTypeInquiries, Status: models.ExportStatusQueued}
	gen := &mockGenerator{generateErr: errors.New("disk full")}
	worker := NewExportWorker(store, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 3})
	require.Error(t, err)
	job := store.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.NotNil(t, job.FinishedAt)
}
