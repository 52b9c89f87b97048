package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalkonsult/vk-api/internal/models"
)

func studentRowColumns() []string {
	return []string{
		"id", "inquiry_id", "mobile", "email", "course", "total_fees", "batch_id", "enrollment_date", "status", "created_at", "updated_at",
		"batch_name",
		"inquiry_name", "inquiry_mobile", "inquiry_email", "inquiry_college",
		"inquiry_degree", "inquiry_branch", "inquiry_passout_year",
		"inquiry_interested_course", "inquiry_source", "inquiry_lead_status",
		"inquiry_created_by", "inquiry_created_by_name", "inquiry_created_at",
	}
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	batch := "Morning Java"
	rows := sqlmock.NewRows(studentRowColumns()).
		AddRow("stu-1", "inq-1", "9000000001", "asha@example.com", "Java Full Stack", 45000.0, "batch-1",
			time.Now(), models.StudentStatusActive, time.Now(), time.Now(),
			&batch,
			"Asha", "9000000001", "asha@example.com", "MIT College",
			"BTech", "CSE", 2024,
			"Java Full Stack", "WALK_IN", models.LeadStatusEnrolled,
			nil, nil, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM students s\\s+JOIN inquiries i ON i.id = s.inquiry_id(.+)WHERE 1=1 ORDER BY s.enrollment_date DESC").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students s(.+)WHERE 1=1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "Asha", students[0].InquiryDetails.Name)
	assert.Equal(t, "MIT College", students[0].InquiryDetails.College)
	assert.True(t, students[0].InquiryDetails.IsAdmitted)
	require.NotNil(t, students[0].BatchName)
	assert.Equal(t, "Morning Java", *students[0].BatchName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateMarksInquiryEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE inquiries SET lead_status").
		WithArgs("inq-1", models.LeadStatusEnrolled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{
		InquiryID:      "inq-1",
		Mobile:         "9000000001",
		Email:          "asha@example.com",
		Course:         "Java Full Stack",
		TotalFees:      45000,
		EnrollmentDate: time.Now(),
		Status:         models.StudentStatusActive,
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateRollsBackOnEnrollFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE inquiries SET lead_status").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Student{InquiryID: "inq-1", Status: models.StudentStatusActive})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByInquiry(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM students WHERE inquiry_id = \\$1").
		WithArgs("inq-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByInquiry(context.Background(), "inq-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
