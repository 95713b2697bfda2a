package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetAlertRepository handles database operations for budget alerts
type BudgetAlertRepository struct {
	db *gorm.DB
}

// NewBudgetAlertRepository creates a new BudgetAlertRepository
func NewBudgetAlertRepository(db *gorm.DB) *BudgetAlertRepository {
	return &BudgetAlertRepository{db: db}
}

// CreateIfAbsent inserts the alert unless an un-sent alert for the same
// project and threshold already exists. The partial unique index
// idx_budget_alerts_unsent turns a concurrent duplicate into a no-op
// instead of an aborted transaction. Returns false when nothing was inserted.
func (r *BudgetAlertRepository) CreateIfAbsent(ctx context.Context, tx *gorm.DB, alert *domain.BudgetAlert) (bool, error) {
	result := conn(ctx, r.db, tx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(alert)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether any alert, sent or un-sent, exists for the project and threshold
func (r *BudgetAlertRepository) Exists(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, threshold int) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&domain.BudgetAlert{}).
		Where("project_id = ? AND threshold_percentage = ?", projectID, threshold).
		Count(&count).Error
	return count > 0, err
}

// ListByProject returns the alerts of a project, oldest first
func (r *BudgetAlertRepository) ListByProject(ctx context.Context, projectID uuid.UUID, unsentOnly bool) ([]domain.BudgetAlert, error) {
	var alerts []domain.BudgetAlert
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if unsentOnly {
		query = query.Where("is_sent = ?", false)
	}
	err := query.Order("created_at ASC, threshold_percentage ASC").Find(&alerts).Error
	return alerts, err
}

// ListUnsent returns up to limit un-sent alerts across all projects, oldest first
func (r *BudgetAlertRepository) ListUnsent(ctx context.Context, limit int) ([]domain.BudgetAlert, error) {
	var alerts []domain.BudgetAlert
	query := r.db.WithContext(ctx).
		Where("is_sent = ?", false).
		Order("created_at ASC, threshold_percentage ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&alerts).Error
	return alerts, err
}

// MarkSent flags an alert as delivered. Returns false if it was already sent.
func (r *BudgetAlertRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.BudgetAlert{}).
		Where("id = ? AND is_sent = ?", id, false).
		Updates(map[string]interface{}{
			"is_sent":    true,
			"sent_at":    sentAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
