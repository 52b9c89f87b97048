package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitalkonsult/vk-api/internal/models"
)

// AttendanceRepository manages persistence for attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `a.id, a.batch_id, a.student_id, a.date, a.lecture_time, a.status,
        a.topic_taught, a.remarks, a.trainer_id, a.created_at,
        b.batch_name, i.name AS student_name, u.username AS trainer_name`

const attendanceJoins = `FROM attendance a
        JOIN batches b ON b.id = a.batch_id
        JOIN students s ON s.id = a.student_id
        JOIN inquiries i ON i.id = s.inquiry_id
        LEFT JOIN users u ON u.id = a.trainer_id`

// List returns attendance records within the requested scope. Records are
// ordered by batch then creation so grouping preserves marking order.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", len(args)+1))
		args = append(args, filter.Date.Format("2006-01-02"))
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("a.batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.trainer_id = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}

	where := strings.Join(conditions, " AND ")
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY a.batch_id, a.created_at", attendanceColumns, attendanceJoins, where)

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ExistsForDate reports whether an attendance row already exists for a
// student on a given date.
func (r *AttendanceRepository) ExistsForDate(ctx context.Context, studentID string, date time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM attendance WHERE student_id = $1 AND date = $2)",
		studentID, date.Format("2006-01-02"))
	if err != nil {
		return false, fmt.Errorf("check attendance exists: %w", err)
	}
	return exists, nil
}

// BulkCreate inserts all rows in a single transaction. Either every row is
// written or none are.
func (r *AttendanceRepository) BulkCreate(ctx context.Context, rows []models.Attendance) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO attendance (id, batch_id, student_id, date, lecture_time, status, topic_taught, remarks, trainer_id, created_at)
        VALUES (:id, :batch_id, :student_id, :date, :lecture_time, :status, :topic_taught, :remarks, :trainer_id, :created_at)`

	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		rows[i].CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			return fmt.Errorf("insert attendance row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance: %w", err)
	}
	return nil
}

// CountPresentByTrainer counts present records marked by a trainer on a date.
func (r *AttendanceRepository) CountPresentByTrainer(ctx context.Context, trainerID string, date time.Time) (present int, total int, err error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status IN ('PRESENT', 'PRESENT_ONLINE', 'PRESENT_OFFLINE')) AS present,
        COUNT(*) AS total
        FROM attendance WHERE trainer_id = $1 AND date = $2`
	row := r.db.QueryRowxContext(ctx, query, trainerID, date.Format("2006-01-02"))
	if err := row.Scan(&present, &total); err != nil {
		return 0, 0, fmt.Errorf("count trainer attendance: %w", err)
	}
	return present, total, nil
}
