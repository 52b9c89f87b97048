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

// BatchRepository manages persistence for class batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = `b.id, b.course, b.batch_name, b.trainer, b.start_date, b.classroom_name, b.start_time, b.end_time, b.days_of_week,
        b.zoom_host_account, b.zoom_host_password, b.zoom_meeting_id, b.zoom_meeting_passcode, b.zoom_link, b.created_at, b.updated_at,
        u.username AS trainer_name`

// List returns batches within the requested scope.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.BatchDetail, error) {
	base := "FROM batches b LEFT JOIN users u ON u.id = b.trainer"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("b.trainer = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}
	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("b.course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY b.start_date DESC", batchColumns, base, strings.Join(conditions, " AND "))

	var batches []models.BatchDetail
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// FindByID fetches a batch detail by ID.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.BatchDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM batches b LEFT JOIN users u ON u.id = b.trainer WHERE b.id = $1", batchColumns)
	var detail models.BatchDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new batch record.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	const query = `INSERT INTO batches (id, course, batch_name, trainer, start_date, classroom_name, start_time, end_time, days_of_week,
        zoom_host_account, zoom_host_password, zoom_meeting_id, zoom_meeting_passcode, zoom_link, created_at, updated_at)
        VALUES (:id, :course, :batch_name, :trainer, :start_date, :classroom_name, :start_time, :end_time, :days_of_week,
        :zoom_host_account, :zoom_host_password, :zoom_meeting_id, :zoom_meeting_passcode, :zoom_link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Update modifies an existing batch.
func (r *BatchRepository) Update(ctx context.Context, batch *models.Batch) error {
	batch.UpdatedAt = time.Now().UTC()
	const query = `UPDATE batches SET course = :course, batch_name = :batch_name, trainer = :trainer, start_date = :start_date,
        classroom_name = :classroom_name, start_time = :start_time, end_time = :end_time, days_of_week = :days_of_week,
        zoom_host_account = :zoom_host_account, zoom_host_password = :zoom_host_password, zoom_meeting_id = :zoom_meeting_id,
        zoom_meeting_passcode = :zoom_meeting_passcode, zoom_link = :zoom_link, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// CountByTrainer returns the number of batches assigned to a trainer.
func (r *BatchRepository) CountByTrainer(ctx context.Context, trainerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM batches WHERE trainer = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, trainerID); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return total, nil
}
