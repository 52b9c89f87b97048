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

// OutreachRepository manages persistence for placement outreach activities.
type OutreachRepository struct {
	db *sqlx.DB
}

// NewOutreachRepository constructs an OutreachRepository.
func NewOutreachRepository(db *sqlx.DB) *OutreachRepository {
	return &OutreachRepository{db: db}
}

const outreachColumns = `o.id, o.officer_id, o.company_name, o.contact_name, o.mode,
        o.phone_email, o.remark, o.date, u.username AS officer_name`

const outreachJoins = `FROM placement_outreach o
        LEFT JOIN users u ON u.id = o.officer_id`

// List returns outreach activities within the requested scope, newest first.
func (r *OutreachRepository) List(ctx context.Context, filter models.OutreachFilter) ([]models.PlacementOutreachDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.OfficerID != "" {
		conditions = append(conditions, fmt.Sprintf("o.officer_id = $%d", len(args)+1))
		args = append(args, filter.OfficerID)
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY o.date DESC LIMIT %d OFFSET %d", outreachColumns, outreachJoins, where, size, offset)

	var activities []models.PlacementOutreachDetail
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list outreach: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", outreachJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count outreach: %w", err)
	}
	return activities, total, nil
}

// FindByID fetches an outreach activity by ID.
func (r *OutreachRepository) FindByID(ctx context.Context, id string) (*models.PlacementOutreachDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE o.id = $1", outreachColumns, outreachJoins)
	var activity models.PlacementOutreachDetail
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts a new outreach activity.
func (r *OutreachRepository) Create(ctx context.Context, activity *models.PlacementOutreach) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.Date.IsZero() {
		activity.Date = time.Now().UTC()
	}
	const query = `INSERT INTO placement_outreach (id, officer_id, company_name, contact_name, mode, phone_email, remark, date)
        VALUES (:id, :officer_id, :company_name, :contact_name, :mode, :phone_email, :remark, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create outreach: %w", err)
	}
	return nil
}

// Count counts all activities, optionally since a window start.
func (r *OutreachRepository) Count(ctx context.Context, since *time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM placement_outreach"
	args := []interface{}{}
	if since != nil {
		query += " WHERE date >= $1"
		args = append(args, *since)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count outreach: %w", err)
	}
	return count, nil
}

// CountByOfficer counts activities logged by an officer, optionally since a
// window start.
func (r *OutreachRepository) CountByOfficer(ctx context.Context, officerID string, since *time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM placement_outreach WHERE officer_id = $1"
	args := []interface{}{officerID}
	if since != nil {
		query += " AND date >= $2"
		args = append(args, *since)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count outreach: %w", err)
	}
	return count, nil
}
