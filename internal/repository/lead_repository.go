package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// LeadRepository handles database operations for leads
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead
func (r *LeadRepository) Create(ctx context.Context, tx *gorm.DB, lead *domain.Lead) error {
	return conn(ctx, r.db, tx).Omit("Stage").Create(lead).Error
}

// GetByID retrieves a lead with its current stage
func (r *LeadRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := conn(ctx, r.db, tx).Preload("Stage").Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetForUpdate retrieves a lead and locks its row
func (r *LeadRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update applies a partial update to a lead
func (r *LeadRepository) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := conn(ctx, r.db, tx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStage returns the number of leads currently in a stage
func (r *LeadRepository) CountByStage(ctx context.Context, tx *gorm.DB, stageID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&domain.Lead{}).
		Where("stage_id = ?", stageID).
		Count(&count).Error
	return count, err
}

// CloseAllInStage stamps closed_at on every open lead in the stage
func (r *LeadRepository) CloseAllInStage(ctx context.Context, tx *gorm.DB, stageID uuid.UUID, closedAt time.Time) (int64, error) {
	result := conn(ctx, r.db, tx).
		Model(&domain.Lead{}).
		Where("stage_id = ? AND closed_at IS NULL", stageID).
		Updates(map[string]interface{}{
			"closed_at":  closedAt,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ReopenAllInStage clears closed_at on every closed lead in the stage
func (r *LeadRepository) ReopenAllInStage(ctx context.Context, tx *gorm.DB, stageID uuid.UUID) (int64, error) {
	result := conn(ctx, r.db, tx).
		Model(&domain.Lead{}).
		Where("stage_id = ? AND closed_at IS NOT NULL", stageID).
		Updates(map[string]interface{}{
			"closed_at":  nil,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
