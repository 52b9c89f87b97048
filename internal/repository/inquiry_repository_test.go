package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalkonsult/vk-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func inquiryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "mobile", "email", "college", "degree", "branch", "passout_year",
		"interested_course", "source", "lead_status", "created_by", "created_at", "updated_at",
		"created_by_name", "is_admitted",
	})
}

func TestInquiryRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	creator := "user-1"
	rows := inquiryRows().
		AddRow("inq-1", "Asha", "9000000001", "asha@example.com", "MIT College", "BTech", "CSE", 2024,
			"Java Full Stack", "WALK_IN", models.LeadStatusHot, &creator, time.Now(), time.Now(), "counselor1", false)

	mock.ExpectQuery("SELECT (.+) FROM inquiries i LEFT JOIN users u ON u.id = i.created_by WHERE 1=1 AND i.created_by = \\$1 ORDER BY i.created_at DESC").
		WithArgs("user-1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM inquiries i LEFT JOIN users u ON u.id = i.created_by WHERE 1=1 AND i.created_by = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	inquiries, total, err := repo.List(context.Background(), models.InquiryFilter{CreatedBy: "user-1"})
	require.NoError(t, err)
	assert.Len(t, inquiries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Asha", inquiries[0].Name)
	assert.False(t, inquiries[0].IsAdmitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	rows := inquiryRows().
		AddRow("inq-1", "Asha", "9000000001", "asha@example.com", "MIT College", "BTech", "CSE", 2024,
			"Java Full Stack", "WALK_IN", models.LeadStatusEnrolled, nil, time.Now(), time.Now(), nil, true)

	mock.ExpectQuery("SELECT (.+) FROM inquiries i LEFT JOIN users u ON u.id = i.created_by WHERE i.id = \\$1").
		WithArgs("inq-1").
		WillReturnRows(rows)

	detail, err := repo.FindByID(context.Background(), "inq-1")
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusEnrolled, detail.LeadStatus)
	assert.True(t, detail.IsAdmitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	mock.ExpectExec("INSERT INTO inquiries").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inquiry := &models.Inquiry{
		Name:             "Asha",
		Mobile:           "9000000001",
		Email:            "asha@example.com",
		College:          "MIT College",
		InterestedCourse: "Java Full Stack",
		LeadStatus:       models.LeadStatusHot,
	}
	err := repo.Create(context.Background(), inquiry)
	require.NoError(t, err)
	assert.NotEmpty(t, inquiry.ID)
	assert.False(t, inquiry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryRepositoryUpdateLeadStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	mock.ExpectExec("UPDATE inquiries SET lead_status").
		WithArgs("inq-1", models.LeadStatusWarm, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLeadStatus(context.Background(), "inq-1", models.LeadStatusWarm)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM inquiries WHERE 1=1 AND created_by = \\$1 AND created_at >= \\$2").
		WithArgs("user-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), models.InquiryCountFilter{CreatedBy: "user-1", Since: &since})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
