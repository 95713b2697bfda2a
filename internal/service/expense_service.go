package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/mapper"
	"github.com/straye-as/crm-core/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	projectRepo *repository.ProjectRepository
	budget      *BudgetService
	txRunner    *database.TxRunner
	logger      *zap.Logger
}

func NewExpenseService(
	expenseRepo *repository.ExpenseRepository,
	projectRepo *repository.ProjectRepository,
	budget *BudgetService,
	txRunner *database.TxRunner,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		projectRepo: projectRepo,
		budget:      budget,
		txRunner:    txRunner,
		logger:      logger,
	}
}

// Create books an expense and, when it belongs to a project, evaluates the
// project budget in the same transaction so the alert check sees the new total.
func (s *ExpenseService) Create(ctx context.Context, req *domain.CreateExpenseRequest) (*domain.ExpenseCreatedDTO, error) {
	expense := &domain.Expense{
		ProjectID:   req.ProjectID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Source:      req.Source,
	}
	if expense.Currency == "" {
		expense.Currency = defaultCurrency
	}
	if expense.Source == "" {
		expense.Source = domain.ExpenseSourceWeb
	}
	if req.ExpenseDate != nil {
		expense.ExpenseDate = req.ExpenseDate.UTC()
	} else {
		expense.ExpenseDate = time.Now().UTC()
	}

	var alerts []domain.BudgetAlert
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		alerts = nil
		expense.ID = uuid.Nil

		if req.ProjectID != nil {
			if _, err := s.projectRepo.GetForUpdate(ctx, tx, *req.ProjectID); err != nil {
				return notFound("project", err)
			}
		}
		if req.CategoryID != nil {
			ok, err := s.expenseRepo.CategoryExists(ctx, tx, *req.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: expense category", ErrNotFound)
			}
		}

		if err := s.expenseRepo.Create(ctx, tx, expense); err != nil {
			return err
		}

		if req.ProjectID == nil {
			return nil
		}
		var err error
		alerts, err = s.budget.evaluateInTx(ctx, tx, *req.ProjectID)
		return err
	})
	if err != nil {
		return nil, storageError("create expense", err)
	}

	s.logger.Info("expense created",
		zap.String("expense_id", expense.ID.String()),
		zap.Float64("amount", expense.Amount),
		zap.String("source", string(expense.Source)),
		zap.Int("alerts_raised", len(alerts)),
	)

	return &domain.ExpenseCreatedDTO{
		Expense: mapper.ToExpenseDTO(expense),
		Alerts:  mapper.ToBudgetAlertDTOs(alerts),
	}, nil
}

// CreateCategory adds an expense category
func (s *ExpenseService) CreateCategory(ctx context.Context, req *domain.CreateExpenseCategoryRequest) (*domain.ExpenseCategoryDTO, error) {
	category := &domain.ExpenseCategory{Name: req.Name}
	if err := s.expenseRepo.CreateCategory(ctx, category); err != nil {
		return nil, storageError("create expense category", err)
	}
	dto := mapper.ToExpenseCategoryDTO(category)
	return &dto, nil
}
