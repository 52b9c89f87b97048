package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/models"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
)

type mockStudentRepo struct {
	students     []models.StudentDetail
	mobileExists bool
	admitted     bool
	createErr    error
	created      *models.Student
	updated      *models.Student
}

func (m *mockStudentRepo) List(ctx context.Context, f models.StudentFilter) ([]models.StudentDetail, int, error) {
	var scoped []models.StudentDetail
	for _, st := range m.students {
		if f.BatchID != "" && (st.BatchID == nil || *st.BatchID != f.BatchID) {
			continue
		}
		scoped = append(scoped, st)
	}
	total := len(scoped)
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = total
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return scoped[start:end], total, nil
}

func (m *mockStudentRepo) ListByBatch(ctx context.Context, batchID string) ([]models.StudentDetail, error) {
	var out []models.StudentDetail
	for _, st := range m.students {
		if st.BatchID != nil && *st.BatchID == batchID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			return &m.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByMobile(ctx context.Context, mobile string, excludeID string) (bool, error) {
	return m.mobileExists, nil
}

func (m *mockStudentRepo) ExistsByInquiry(ctx context.Context, inquiryID string) (bool, error) {
	return m.admitted, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	student.ID = "stu-new"
	m.created = student
	m.students = append(m.students, models.StudentDetail{Student: *student})
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.updated = student
	for i := range m.students {
		if m.students[i].ID == student.ID {
			m.students[i].Student = *student
		}
	}
	return nil
}

type mockAdmissionInquiryRepo struct {
	inquiry *models.InquiryDetail
}

func (m *mockAdmissionInquiryRepo) FindByID(ctx context.Context, id string) (*models.InquiryDetail, error) {
	if m.inquiry == nil || m.inquiry.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.inquiry, nil
}

type mockAdmissionBatchRepo struct {
	batch *models.BatchDetail
}

func (m *mockAdmissionBatchRepo) FindByID(ctx context.Context, id string) (*models.BatchDetail, error) {
	if m.batch == nil || m.batch.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.batch, nil
}

type mockStudentFeeRepo struct {
	fees map[string][]models.FeeDetail
}

func (m *mockStudentFeeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error) {
	return m.fees[studentID], nil
}

func newStudentService(repo *mockStudentRepo, inquiries *mockAdmissionInquiryRepo, batches *mockAdmissionBatchRepo) *StudentService {
	return NewStudentService(repo, inquiries, batches, &mockStudentFeeRepo{}, validator.New(), zap.NewNop())
}

func TestStudentServiceAdmitSuccess(t *testing.T) {
	repo := &mockStudentRepo{}
	inquiries := &mockAdmissionInquiryRepo{inquiry: &models.InquiryDetail{Inquiry: models.Inquiry{ID: "inq-1", Name: "Asha"}}}
	svc := newStudentService(repo, inquiries, &mockAdmissionBatchRepo{})

	detail, err := svc.Admit(context.Background(), AdmitStudentRequest{
		InquiryID: "inq-1", Mobile: "9900011111", Course: "Java Full Stack", TotalFees: 45000,
	})
	require.NoError(t, err)
	assert.Equal(t, "stu-new", detail.ID)
	assert.Equal(t, models.StudentStatusActive, detail.Status)
	assert.False(t, repo.created.EnrollmentDate.IsZero())
}

func TestStudentServiceAdmitUnknownInquiry(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, &mockAdmissionInquiryRepo{}, &mockAdmissionBatchRepo{})

	_, err := svc.Admit(context.Background(), AdmitStudentRequest{
		InquiryID: "missing", Mobile: "9900011111", Course: "Java Full Stack",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceAdmitTwiceConflicts(t *testing.T) {
	repo := &mockStudentRepo{admitted: true}
	inquiries := &mockAdmissionInquiryRepo{inquiry: &models.InquiryDetail{Inquiry: models.Inquiry{ID: "inq-1"}}}
	svc := newStudentService(repo, inquiries, &mockAdmissionBatchRepo{})

	_, err := svc.Admit(context.Background(), AdmitStudentRequest{
		InquiryID: "inq-1", Mobile: "9900011111", Course: "Java Full Stack",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyAdmitted.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceAdmitUnknownBatch(t *testing.T) {
	repo := &mockStudentRepo{}
	inquiries := &mockAdmissionInquiryRepo{inquiry: &models.InquiryDetail{Inquiry: models.Inquiry{ID: "inq-1"}}}
	svc := newStudentService(repo, inquiries, &mockAdmissionBatchRepo{})

	batchID := "missing-batch"
	_, err := svc.Admit(context.Background(), AdmitStudentRequest{
		InquiryID: "inq-1", Mobile: "9900011111", Course: "Java Full Stack", BatchID: &batchID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceGetIncludesFees(t *testing.T) {
	repo := &mockStudentRepo{students: []models.StudentDetail{{Student: models.Student{ID: "stu-1", TotalFees: 45000}}}}
	fees := &mockStudentFeeRepo{fees: map[string][]models.FeeDetail{
		"stu-1": {{Fee: models.Fee{ID: "fee-1", Amount: 15000}}},
	}}
	svc := NewStudentService(repo, &mockAdmissionInquiryRepo{}, &mockAdmissionBatchRepo{}, fees, validator.New(), zap.NewNop())

	detail, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, detail.Fees, 1)
	assert.Equal(t, 15000.0, detail.Fees[0].Amount)
}

func TestStudentServiceUpdatePreservesEnrollmentDate(t *testing.T) {
	enrolled := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockStudentRepo{students: []models.StudentDetail{{Student: models.Student{
		ID: "stu-1", Mobile: "9900011111", Course: "Java Full Stack", EnrollmentDate: enrolled, Status: models.StudentStatusActive,
	}}}}
	svc := newStudentService(repo, &mockAdmissionInquiryRepo{}, &mockAdmissionBatchRepo{})

	detail, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{
		Mobile: "9900022222", Course: "Data Science", Status: models.StudentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, enrolled, detail.EnrollmentDate)
	assert.Equal(t, models.StudentStatusCompleted, detail.Status)
}

func TestStudentServiceListFindsMatchesBeyondFirstPage(t *testing.T) {
	now := time.Now().UTC()
	var all []models.StudentDetail
	for i := 0; i < 20; i++ {
		all = append(all, models.StudentDetail{Student: models.Student{
			ID: fmt.Sprintf("recent-%02d", i), Mobile: fmt.Sprintf("990001%04d", i),
			Course: "Java Full Stack", EnrollmentDate: now.Add(-time.Duration(i) * time.Hour),
		}})
	}
	for i := 0; i < 10; i++ {
		all = append(all, models.StudentDetail{Student: models.Student{
			ID: fmt.Sprintf("older-%02d", i), Mobile: fmt.Sprintf("990002%04d", i),
			Course: "Data Science", EnrollmentDate: now.Add(-time.Duration(500+i) * time.Hour),
		}})
	}
	repo := &mockStudentRepo{students: all}
	svc := newStudentService(repo, &mockAdmissionInquiryRepo{}, &mockAdmissionBatchRepo{})

	result, pagination, err := svc.List(context.Background(), ListStudentsQuery{
		Criteria: filter.Criteria{Course: "Data Science"},
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, result, 10)
	for _, st := range result {
		assert.Equal(t, "Data Science", st.Course)
	}
	assert.Equal(t, 10, pagination.TotalCount)
}

func TestStudentServiceListPaginatesFilteredSet(t *testing.T) {
	now := time.Now().UTC()
	var all []models.StudentDetail
	for i := 0; i < 25; i++ {
		all = append(all, models.StudentDetail{Student: models.Student{
			ID: fmt.Sprintf("stu-%02d", i), Mobile: fmt.Sprintf("990003%04d", i),
			Course: "Data Science", EnrollmentDate: now,
		}})
	}
	repo := &mockStudentRepo{students: all}
	svc := newStudentService(repo, &mockAdmissionInquiryRepo{}, &mockAdmissionBatchRepo{})

	result, pagination, err := svc.List(context.Background(), ListStudentsQuery{
		Criteria: filter.Criteria{Course: "Data Science"},
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Len(t, result, 5)
	assert.Equal(t, 25, pagination.TotalCount)
	assert.Equal(t, 2, pagination.Page)
}
