package mapper

import (
	"time"

	"github.com/straye-as/crm-core/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		CreatedAt: formatTime(client.CreatedAt),
	}
}

// ToPipelineDTO converts Pipeline to PipelineDTO including its ordered stages
func ToPipelineDTO(pipeline *domain.Pipeline) domain.PipelineDTO {
	stages := make([]domain.StageDTO, len(pipeline.Stages))
	for i := range pipeline.Stages {
		stages[i] = ToStageDTO(&pipeline.Stages[i])
	}
	return domain.PipelineDTO{
		ID:           pipeline.ID,
		Name:         pipeline.Name,
		DisplayOrder: pipeline.DisplayOrder,
		IsActive:     pipeline.IsActive,
		Stages:       stages,
		CreatedAt:    formatTime(pipeline.CreatedAt),
		UpdatedAt:    formatTime(pipeline.UpdatedAt),
	}
}

// ToStageDTO converts Stage to StageDTO
func ToStageDTO(stage *domain.Stage) domain.StageDTO {
	return domain.StageDTO{
		ID:          stage.ID,
		PipelineID:  stage.PipelineID,
		Name:        stage.Name,
		Slug:        stage.Slug,
		Color:       stage.Color,
		SortOrder:   stage.SortOrder,
		IsFinal:     stage.IsFinal,
		Probability: stage.Probability,
	}
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:          lead.ID,
		Title:       lead.Title,
		PipelineID:  lead.PipelineID,
		StageID:     lead.StageID,
		ClientID:    lead.ClientID,
		Value:       lead.Value,
		Currency:    lead.Currency,
		Probability: lead.Probability,
		ClosedAt:    formatTimePtr(lead.ClosedAt),
		CreatedAt:   formatTime(lead.CreatedAt),
		UpdatedAt:   formatTime(lead.UpdatedAt),
	}
	if lead.Stage != nil {
		dto.StageName = lead.Stage.Name
	}
	return dto
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:           activity.ID,
		LeadID:       activity.LeadID,
		ActivityType: activity.ActivityType,
		Title:        activity.Title,
		Body:         activity.Body,
		FromStageID:  activity.FromStageID,
		ToStageID:    activity.ToStageID,
		ActorName:    activity.ActorName,
		OccurredAt:   formatTime(activity.OccurredAt),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:           project.ID,
		Name:         project.Name,
		ClientID:     project.ClientID,
		BudgetAmount: project.BudgetAmount,
		Currency:     project.Currency,
		CreatedAt:    formatTime(project.CreatedAt),
	}
}

// ToBudgetSummaryDTO converts a derived budget summary for a project
func ToBudgetSummaryDTO(project *domain.Project, summary domain.BudgetSummary) domain.BudgetSummaryDTO {
	return domain.BudgetSummaryDTO{
		ProjectID:       project.ID,
		Budget:          summary.Budget,
		Spent:           summary.Spent,
		Remaining:       summary.Remaining,
		SpentPercentage: summary.SpentPercentage,
		Currency:        project.Currency,
	}
}

// ToBudgetAlertDTO converts BudgetAlert to BudgetAlertDTO
func ToBudgetAlertDTO(alert *domain.BudgetAlert) domain.BudgetAlertDTO {
	return domain.BudgetAlertDTO{
		ID:                  alert.ID,
		ProjectID:           alert.ProjectID,
		AlertType:           alert.AlertType,
		ThresholdPercentage: alert.ThresholdPercentage,
		IsSent:              alert.IsSent,
		SentAt:              formatTimePtr(alert.SentAt),
		Message:             alert.Message,
		CreatedAt:           formatTime(alert.CreatedAt),
	}
}

// ToBudgetAlertDTOs converts a slice of alerts
func ToBudgetAlertDTOs(alerts []domain.BudgetAlert) []domain.BudgetAlertDTO {
	dtos := make([]domain.BudgetAlertDTO, len(alerts))
	for i := range alerts {
		dtos[i] = ToBudgetAlertDTO(&alerts[i])
	}
	return dtos
}

// ToExpenseDTO converts Expense to ExpenseDTO
func ToExpenseDTO(expense *domain.Expense) domain.ExpenseDTO {
	return domain.ExpenseDTO{
		ID:          expense.ID,
		ProjectID:   expense.ProjectID,
		CategoryID:  expense.CategoryID,
		Amount:      expense.Amount,
		Currency:    expense.Currency,
		ExpenseDate: expense.ExpenseDate.Format("2006-01-02"),
		Description: expense.Description,
		Source:      expense.Source,
		CreatedAt:   formatTime(expense.CreatedAt),
	}
}

// ToExpenseCategoryDTO converts ExpenseCategory to ExpenseCategoryDTO
func ToExpenseCategoryDTO(category *domain.ExpenseCategory) domain.ExpenseCategoryDTO {
	return domain.ExpenseCategoryDTO{
		ID:   category.ID,
		Name: category.Name,
	}
}
