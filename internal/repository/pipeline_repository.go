package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// PipelineRepository handles database operations for pipelines
type PipelineRepository struct {
	db *gorm.DB
}

// NewPipelineRepository creates a new PipelineRepository
func NewPipelineRepository(db *gorm.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

func orderedStages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// Create inserts a new pipeline
func (r *PipelineRepository) Create(ctx context.Context, tx *gorm.DB, pipeline *domain.Pipeline) error {
	return conn(ctx, r.db, tx).Omit("Stages").Create(pipeline).Error
}

// GetByID retrieves a pipeline with its stages in sort order
func (r *PipelineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pipeline, error) {
	var pipeline domain.Pipeline
	err := r.db.WithContext(ctx).
		Preload("Stages", orderedStages).
		Where("id = ?", id).
		First(&pipeline).Error
	if err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// List returns pipelines in display order, each with its stages in sort order
func (r *PipelineRepository) List(ctx context.Context, activeOnly bool) ([]domain.Pipeline, error) {
	var pipelines []domain.Pipeline
	query := r.db.WithContext(ctx).Preload("Stages", orderedStages)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("display_order ASC, created_at ASC").Find(&pipelines).Error
	return pipelines, err
}

// LockByID locks the pipeline row for the rest of the transaction.
// Every operation that rewrites stage ordering takes this lock first so
// concurrent writers on the same pipeline are serialized.
func (r *PipelineRepository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Pipeline, error) {
	var pipeline domain.Pipeline
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&pipeline).Error
	if err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// MaxDisplayOrder returns the highest display order, or -1 when there are no pipelines
func (r *PipelineRepository) MaxDisplayOrder(ctx context.Context, tx *gorm.DB) (int, error) {
	var maxOrder int
	err := conn(ctx, r.db, tx).
		Model(&domain.Pipeline{}).
		Select("COALESCE(MAX(display_order), -1)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

// Exists reports whether a pipeline with the given ID exists
func (r *PipelineRepository) Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&domain.Pipeline{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
