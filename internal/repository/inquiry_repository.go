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

// InquiryRepository manages persistence for sales inquiries.
type InquiryRepository struct {
	db *sqlx.DB
}

// NewInquiryRepository constructs an InquiryRepository.
func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

const inquiryColumns = `i.id, i.name, i.mobile, i.email, i.college, i.degree, i.branch, i.passout_year,
        i.interested_course, i.source, i.lead_status, i.created_by, i.created_at, i.updated_at,
        u.username AS created_by_name,
        EXISTS (SELECT 1 FROM students s WHERE s.inquiry_id = i.id) AS is_admitted`

// List returns inquiries within the requested scope, newest first. Text
// and date refinement happens in the filter engine, so the repository
// only narrows by creator and optional search term.
func (r *InquiryRepository) List(ctx context.Context, filter models.InquiryFilter) ([]models.InquiryDetail, int, error) {
	base := "FROM inquiries i LEFT JOIN users u ON u.id = i.created_by"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("i.created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(i.name) LIKE $%d OR i.mobile LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 200
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY i.created_at DESC LIMIT %d OFFSET %d", inquiryColumns, base, size, offset)

	var inquiries []models.InquiryDetail
	if err := r.db.SelectContext(ctx, &inquiries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}
	return inquiries, total, nil
}

// FindByID fetches an inquiry detail by ID.
func (r *InquiryRepository) FindByID(ctx context.Context, id string) (*models.InquiryDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM inquiries i LEFT JOIN users u ON u.id = i.created_by WHERE i.id = $1", inquiryColumns)
	var detail models.InquiryDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByMobile checks mobile uniqueness optionally excluding an ID.
func (r *InquiryRepository) ExistsByMobile(ctx context.Context, mobile string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM inquiries WHERE mobile = $1"
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
		return false, fmt.Errorf("check inquiry mobile: %w", err)
	}
	return true, nil
}

// Create inserts a new inquiry record.
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = now
	}
	inquiry.UpdatedAt = now
	const query = `INSERT INTO inquiries (id, name, mobile, email, college, degree, branch, passout_year, interested_course, source, lead_status, created_by, created_at, updated_at)
        VALUES (:id, :name, :mobile, :email, :college, :degree, :branch, :passout_year, :interested_course, :source, :lead_status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inquiry); err != nil {
		return fmt.Errorf("create inquiry: %w", err)
	}
	return nil
}

// Update modifies an existing inquiry.
func (r *InquiryRepository) Update(ctx context.Context, inquiry *models.Inquiry) error {
	inquiry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE inquiries SET name = :name, mobile = :mobile, email = :email, college = :college, degree = :degree, branch = :branch,
        passout_year = :passout_year, interested_course = :interested_course, source = :source, lead_status = :lead_status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, inquiry); err != nil {
		return fmt.Errorf("update inquiry: %w", err)
	}
	return nil
}

// UpdateLeadStatus transitions just the lead status.
func (r *InquiryRepository) UpdateLeadStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE inquiries SET lead_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

// Count returns the number of inquiries matching the filter.
func (r *InquiryRepository) Count(ctx context.Context, filter models.InquiryCountFilter) (int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.Since)
	}
	if filter.LeadStatus != nil {
		conditions = append(conditions, fmt.Sprintf("lead_status = $%d", len(args)+1))
		args = append(args, *filter.LeadStatus)
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM inquiries WHERE %s", strings.Join(conditions, " AND "))
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count inquiries: %w", err)
	}
	return total, nil
}
