package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// ExpenseRepository handles database operations for expenses and their categories
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, tx *gorm.DB, expense *domain.Expense) error {
	return conn(ctx, r.db, tx).Create(expense).Error
}

// SumByProject returns the total spent on a project
func (r *ExpenseRepository) SumByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (float64, error) {
	var total float64
	err := conn(ctx, r.db, tx).
		Model(&domain.Expense{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *ExpenseRepository) CreateCategory(ctx context.Context, category *domain.ExpenseCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// CategoryExists reports whether an expense category exists
func (r *ExpenseRepository) CategoryExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&domain.ExpenseCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
