package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetForUpdate locks the project row. Budget evaluation holds this lock so
// concurrent expense inserts for one project are evaluated one at a time.
func (r *ProjectRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}
