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

// BudgetService owns projects and derives their spend state and alerts
type BudgetService struct {
	projectRepo *repository.ProjectRepository
	expenseRepo *repository.ExpenseRepository
	alertRepo   *repository.BudgetAlertRepository
	clientRepo  *repository.ClientRepository
	txRunner    *database.TxRunner
	logger      *zap.Logger
}

func NewBudgetService(
	projectRepo *repository.ProjectRepository,
	expenseRepo *repository.ExpenseRepository,
	alertRepo *repository.BudgetAlertRepository,
	clientRepo *repository.ClientRepository,
	txRunner *database.TxRunner,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		projectRepo: projectRepo,
		expenseRepo: expenseRepo,
		alertRepo:   alertRepo,
		clientRepo:  clientRepo,
		txRunner:    txRunner,
		logger:      logger,
	}
}

// CreateProject registers a project with a planned budget
func (s *BudgetService) CreateProject(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	if req.ClientID != nil {
		ok, err := s.clientRepo.Exists(ctx, nil, *req.ClientID)
		if err != nil {
			return nil, storageError("create project", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: client", ErrNotFound)
		}
	}

	project := &domain.Project{
		Name:         req.Name,
		ClientID:     req.ClientID,
		BudgetAmount: req.BudgetAmount,
		Currency:     req.Currency,
	}
	if project.Currency == "" {
		project.Currency = defaultCurrency
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, storageError("create project", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.Float64("budget", project.BudgetAmount),
	)

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// GetProject returns a project by ID
func (s *BudgetService) GetProject(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storageError("get project", notFound("project", err))
	}
	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// GetSummary derives budget, spent, remaining and percentage for a project
func (s *BudgetService) GetSummary(ctx context.Context, projectID uuid.UUID) (*domain.BudgetSummaryDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, storageError("budget summary", notFound("project", err))
	}
	spent, err := s.expenseRepo.SumByProject(ctx, nil, projectID)
	if err != nil {
		return nil, storageError("budget summary", err)
	}
	dto := mapper.ToBudgetSummaryDTO(project, domain.NewBudgetSummary(project.BudgetAmount, spent))
	return &dto, nil
}

// Evaluate checks every threshold against the current spend and records an
// alert for each crossed threshold that has no alert yet, sent or not.
// Expenses are append-only, so a project crosses each threshold once.
// Returns the alerts created by this call.
func (s *BudgetService) Evaluate(ctx context.Context, projectID uuid.UUID) ([]domain.BudgetAlertDTO, error) {
	var created []domain.BudgetAlert
	err := s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.evaluateInTx(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, storageError("evaluate budget", err)
	}
	return mapper.ToBudgetAlertDTOs(created), nil
}

// evaluateInTx runs the threshold check inside the caller's transaction.
// The project row lock serializes evaluations of one project.
func (s *BudgetService) evaluateInTx(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]domain.BudgetAlert, error) {
	project, err := s.projectRepo.GetForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, notFound("project", err)
	}
	if project.BudgetAmount <= 0 {
		return nil, nil
	}

	spent, err := s.expenseRepo.SumByProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	summary := domain.NewBudgetSummary(project.BudgetAmount, spent)

	var created []domain.BudgetAlert
	for _, threshold := range domain.BudgetThresholds {
		if !summary.ReachesThreshold(threshold) {
			continue
		}
		raised, err := s.alertRepo.Exists(ctx, tx, projectID, threshold)
		if err != nil {
			return nil, err
		}
		if raised {
			continue
		}

		alertType := domain.AlertTypeForThreshold(threshold)
		alert := domain.BudgetAlert{
			ProjectID:           projectID,
			AlertType:           alertType,
			ThresholdPercentage: threshold,
			Message:             alertType.FormatMessage(project.Name, threshold, summary.SpentPercentage),
		}
		inserted, err := s.alertRepo.CreateIfAbsent(ctx, tx, &alert)
		if err != nil {
			return nil, err
		}
		if !inserted {
			continue
		}
		created = append(created, alert)

		s.logger.Info("budget alert raised",
			zap.String("project_id", projectID.String()),
			zap.String("alert_type", string(alertType)),
			zap.Int("threshold", threshold),
			zap.Float64("spent_percentage", summary.SpentPercentage),
		)
	}
	return created, nil
}

// ListAlerts returns the alerts of a project, optionally only un-sent ones
func (s *BudgetService) ListAlerts(ctx context.Context, projectID uuid.UUID, unsentOnly bool) ([]domain.BudgetAlertDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, nil, projectID); err != nil {
		return nil, storageError("list alerts", notFound("project", err))
	}
	alerts, err := s.alertRepo.ListByProject(ctx, projectID, unsentOnly)
	if err != nil {
		return nil, storageError("list alerts", err)
	}
	return mapper.ToBudgetAlertDTOs(alerts), nil
}

// PendingAlerts returns up to limit un-sent alerts across all projects
func (s *BudgetService) PendingAlerts(ctx context.Context, limit int) ([]domain.BudgetAlert, error) {
	alerts, err := s.alertRepo.ListUnsent(ctx, limit)
	if err != nil {
		return nil, storageError("list pending alerts", err)
	}
	return alerts, nil
}

// MarkAlertSent flags an alert as delivered. Returns false when another
// dispatcher already marked it.
func (s *BudgetService) MarkAlertSent(ctx context.Context, alertID uuid.UUID) (bool, error) {
	marked, err := s.alertRepo.MarkSent(ctx, alertID, time.Now().UTC())
	if err != nil {
		return false, storageError("mark alert sent", err)
	}
	return marked, nil
}
