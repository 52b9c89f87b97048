package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitalkonsult/vk-api/internal/models"
)

// StudentRepository manages persistence for admitted students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// studentRow flattens the joined inquiry/batch columns for scanning;
// rows are mapped into the nested StudentDetail shape afterwards.
type studentRow struct {
	models.Student
	BatchName            *string           `db:"batch_name"`
	InquiryName          string            `db:"inquiry_name"`
	InquiryMobile        string            `db:"inquiry_mobile"`
	InquiryEmail         string            `db:"inquiry_email"`
	InquiryCollege       string            `db:"inquiry_college"`
	InquiryDegree        string            `db:"inquiry_degree"`
	InquiryBranch        string            `db:"inquiry_branch"`
	InquiryPassoutYear   int               `db:"inquiry_passout_year"`
	InquiryCourse        string            `db:"inquiry_interested_course"`
	InquirySource        string            `db:"inquiry_source"`
	InquiryLeadStatus    models.LeadStatus `db:"inquiry_lead_status"`
	InquiryCreatedBy     *string           `db:"inquiry_created_by"`
	InquiryCreatedByName *string           `db:"inquiry_created_by_name"`
	InquiryCreatedAt     time.Time         `db:"inquiry_created_at"`
}

func (row studentRow) toDetail() models.StudentDetail {
	return models.StudentDetail{
		Student:   row.Student,
		BatchName: row.BatchName,
		InquiryDetails: models.InquiryDetail{
			Inquiry: models.Inquiry{
				ID:               row.Student.InquiryID,
				Name:             row.InquiryName,
				Mobile:           row.InquiryMobile,
				Email:            row.InquiryEmail,
				College:          row.InquiryCollege,
				Degree:           row.InquiryDegree,
				Branch:           row.InquiryBranch,
				PassoutYear:      row.InquiryPassoutYear,
				InterestedCourse: row.InquiryCourse,
				Source:           row.InquirySource,
				LeadStatus:       row.InquiryLeadStatus,
				CreatedBy:        row.InquiryCreatedBy,
				CreatedAt:        row.InquiryCreatedAt,
			},
			CreatedByName: row.InquiryCreatedByName,
			IsAdmitted:    true,
		},
	}
}

const studentColumns = `s.id, s.inquiry_id, s.mobile, s.email, s.course, s.total_fees, s.batch_id, s.enrollment_date, s.status, s.created_at, s.updated_at,
        b.batch_name AS batch_name,
        i.name AS inquiry_name, i.mobile AS inquiry_mobile, i.email AS inquiry_email, i.college AS inquiry_college,
        i.degree AS inquiry_degree, i.branch AS inquiry_branch, i.passout_year AS inquiry_passout_year,
        i.interested_course AS inquiry_interested_course, i.source AS inquiry_source, i.lead_status AS inquiry_lead_status,
        i.created_by AS inquiry_created_by, u.username AS inquiry_created_by_name, i.created_at AS inquiry_created_at`

const studentJoins = `FROM students s
        JOIN inquiries i ON i.id = s.inquiry_id
        LEFT JOIN batches b ON b.id = s.batch_id
        LEFT JOIN users u ON u.id = i.created_by`

// List returns students within the requested scope, newest first.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Mobile != "" {
		conditions = append(conditions, fmt.Sprintf("s.mobile = $%d", len(args)+1))
		args = append(args, filter.Mobile)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("s.batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 200
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY s.enrollment_date DESC, s.created_at DESC LIMIT %d OFFSET %d",
		studentColumns, studentJoins, where, size, offset)

	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", studentJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	students := make([]models.StudentDetail, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toDetail())
	}
	return students, total, nil
}

// ListByBatch returns the active students of a batch in enrollment order.
func (r *StudentRepository) ListByBatch(ctx context.Context, batchID string) ([]models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.batch_id = $1 AND s.status = $2 ORDER BY s.enrollment_date ASC, s.created_at ASC",
		studentColumns, studentJoins)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, batchID, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("list batch students: %w", err)
	}
	students := make([]models.StudentDetail, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toDetail())
	}
	return students, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.id = $1", studentColumns, studentJoins)
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	detail := row.toDetail()
	return &detail, nil
}

// ExistsByMobile checks mobile uniqueness optionally excluding an ID.
func (r *StudentRepository) ExistsByMobile(ctx context.Context, mobile string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE mobile = $1"
	args := []interface{}{mobile}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student mobile: %w", err)
	}
	return true, nil
}

// ExistsByInquiry reports whether the inquiry was already admitted.
func (r *StudentRepository) ExistsByInquiry(ctx context.Context, inquiryID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE inquiry_id = $1 LIMIT 1", inquiryID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check inquiry admission: %w", err)
	}
	return true, nil
}

// Create admits a student and flips the originating inquiry to ENROLLED
// in a single transaction.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admission: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO students (id, inquiry_id, mobile, email, course, total_fees, batch_id, enrollment_date, status, created_at, updated_at)
        VALUES (:id, :inquiry_id, :mobile, :email, :course, :total_fees, :batch_id, :enrollment_date, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	const enroll = `UPDATE inquiries SET lead_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, enroll, student.InquiryID, models.LeadStatusEnrolled, now); err != nil {
		return fmt.Errorf("mark inquiry enrolled: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit admission: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET mobile = :mobile, email = :email, course = :course, total_fees = :total_fees, batch_id = :batch_id,
        enrollment_date = :enrollment_date, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Count returns the number of students, optionally restricted to a status.
func (r *StudentRepository) Count(ctx context.Context, status *models.StudentStatus) (int, error) {
	query := "SELECT COUNT(*) FROM students"
	args := []interface{}{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
