package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// StageRepository handles database operations for pipeline stages
type StageRepository struct {
	db *gorm.DB
}

// NewStageRepository creates a new StageRepository
func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{db: db}
}

// Create inserts a new stage
func (r *StageRepository) Create(ctx context.Context, tx *gorm.DB, stage *domain.Stage) error {
	return conn(ctx, r.db, tx).Create(stage).Error
}

// GetByID retrieves a stage by its ID
func (r *StageRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Stage, error) {
	var stage domain.Stage
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// GetForUpdate retrieves a stage and locks its row
func (r *StageRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Stage, error) {
	var stage domain.Stage
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// GetForShare retrieves a stage and holds a shared lock so it cannot be
// deleted or have its finality changed before the transaction commits
func (r *StageRepository) GetForShare(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Stage, error) {
	var stage domain.Stage
	err := forShare(conn(ctx, r.db, tx)).Where("id = ?", id).First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// ListByPipeline returns the stages of a pipeline in sort order
func (r *StageRepository) ListByPipeline(ctx context.Context, tx *gorm.DB, pipelineID uuid.UUID) ([]domain.Stage, error) {
	var stages []domain.Stage
	err := conn(ctx, r.db, tx).
		Where("pipeline_id = ?", pipelineID).
		Order("sort_order ASC").
		Find(&stages).Error
	return stages, err
}

// FirstInPipeline returns the stage at sort order 0, the default for new leads
func (r *StageRepository) FirstInPipeline(ctx context.Context, tx *gorm.DB, pipelineID uuid.UUID) (*domain.Stage, error) {
	var stage domain.Stage
	err := conn(ctx, r.db, tx).
		Where("pipeline_id = ?", pipelineID).
		Order("sort_order ASC").
		First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// CountByPipeline returns the number of stages in a pipeline
func (r *StageRepository) CountByPipeline(ctx context.Context, tx *gorm.DB, pipelineID uuid.UUID) (int, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&domain.Stage{}).
		Where("pipeline_id = ?", pipelineID).
		Count(&count).Error
	return int(count), err
}

// MaxSortOrder returns the highest sort order in a pipeline, or -1 when it has no stages
func (r *StageRepository) MaxSortOrder(ctx context.Context, tx *gorm.DB, pipelineID uuid.UUID) (int, error) {
	var maxOrder int
	err := conn(ctx, r.db, tx).
		Model(&domain.Stage{}).
		Where("pipeline_id = ?", pipelineID).
		Select("COALESCE(MAX(sort_order), -1)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

// ShiftRange adds delta to the sort order of every stage in the pipeline whose
// sort order lies in [from, to], leaving excludeID untouched
func (r *StageRepository) ShiftRange(ctx context.Context, tx *gorm.DB, pipelineID uuid.UUID, from, to, delta int, excludeID uuid.UUID) error {
	if from > to {
		return nil
	}
	result := conn(ctx, r.db, tx).
		Model(&domain.Stage{}).
		Where("pipeline_id = ? AND sort_order >= ? AND sort_order <= ? AND id <> ?", pipelineID, from, to, excludeID).
		Updates(map[string]interface{}{
			"sort_order": gorm.Expr("sort_order + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to shift stages [%d,%d] by %d: %w", from, to, delta, result.Error)
	}
	return nil
}

// SetSortOrder places a single stage at the given position
func (r *StageRepository) SetSortOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error {
	result := conn(ctx, r.db, tx).
		Model(&domain.Stage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sort_order": position,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Update applies a partial update to a stage
func (r *StageRepository) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := conn(ctx, r.db, tx).
		Model(&domain.Stage{}).
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

// DeleteUnreferenced deletes the stage only if no lead references it.
// Returns false when the guard prevented the delete.
func (r *StageRepository) DeleteUnreferenced(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	result := conn(ctx, r.db, tx).
		Where("id = ? AND NOT EXISTS (SELECT 1 FROM leads WHERE leads.stage_id = stages.id)", id).
		Delete(&domain.Stage{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
