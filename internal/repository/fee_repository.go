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

// FeeRepository manages persistence for collected fees.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeColumns = `f.id, f.student_id, f.amount, f.mode, f.utr, f.date_collected, f.collected_by,
        i.name AS student_name, u.username AS collected_by_name`

const feeJoins = `FROM fees f
        JOIN students s ON s.id = f.student_id
        JOIN inquiries i ON i.id = s.inquiry_id
        LEFT JOIN users u ON u.id = f.collected_by`

// List returns fees within the requested scope, newest first.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("f.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY f.date_collected DESC LIMIT %d OFFSET %d", feeColumns, feeJoins, where, size, offset)

	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", feeJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fees: %w", err)
	}
	return fees, total, nil
}

// ListByStudent returns all fees collected for a student, oldest first.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE f.student_id = $1 ORDER BY f.date_collected ASC", feeColumns, feeJoins)
	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, studentID); err != nil {
		return nil, fmt.Errorf("list student fees: %w", err)
	}
	return fees, nil
}

// FindByID fetches a fee detail by ID.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.FeeDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE f.id = $1", feeColumns, feeJoins)
	var fee models.FeeDetail
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Create inserts a new fee record.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	if fee.DateCollected.IsZero() {
		fee.DateCollected = time.Now().UTC()
	}
	const query = `INSERT INTO fees (id, student_id, amount, mode, utr, date_collected, collected_by)
        VALUES (:id, :student_id, :amount, :mode, :utr, :date_collected, :collected_by)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// Total sums collected amounts, optionally restricted to a window start.
func (r *FeeRepository) Total(ctx context.Context, since *time.Time) (float64, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM fees"
	args := []interface{}{}
	if since != nil {
		query += " WHERE date_collected >= $1"
		args = append(args, *since)
	}
	var total float64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("sum fees: %w", err)
	}
	return total, nil
}
