package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository stores the append-only lead activity log
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, tx *gorm.DB, activity *domain.Activity) error {
	return conn(ctx, r.db, tx).Create(activity).Error
}

// ListByLead returns the newest activities for a lead first
func (r *ActivityRepository) ListByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	query := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("occurred_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&activities).Error
	return activities, err
}
