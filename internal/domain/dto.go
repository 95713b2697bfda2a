package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs

type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type PipelineDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	DisplayOrder int        `json:"displayOrder"`
	IsActive     bool       `json:"isActive"`
	Stages       []StageDTO `json:"stages"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

type StageDTO struct {
	ID          uuid.UUID `json:"id"`
	PipelineID  uuid.UUID `json:"pipelineId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Color       string    `json:"color,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsFinal     bool      `json:"isFinal"`
	Probability int       `json:"probability"`
}

type LeadDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	PipelineID  uuid.UUID  `json:"pipelineId"`
	StageID     uuid.UUID  `json:"stageId"`
	StageName   string     `json:"stageName,omitempty"`
	ClientID    *uuid.UUID `json:"clientId,omitempty"`
	Value       float64    `json:"value"`
	Currency    string     `json:"currency"`
	Probability int        `json:"probability"`
	ClosedAt    *string    `json:"closedAt,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

type ActivityDTO struct {
	ID           uuid.UUID    `json:"id"`
	LeadID       uuid.UUID    `json:"leadId"`
	ActivityType ActivityType `json:"activityType"`
	Title        string       `json:"title"`
	Body         string       `json:"body,omitempty"`
	FromStageID  *uuid.UUID   `json:"fromStageId,omitempty"`
	ToStageID    *uuid.UUID   `json:"toStageId,omitempty"`
	ActorName    string       `json:"actorName,omitempty"`
	OccurredAt   string       `json:"occurredAt"`
}

type ProjectDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	ClientID     *uuid.UUID `json:"clientId,omitempty"`
	BudgetAmount float64    `json:"budgetAmount"`
	Currency     string     `json:"currency"`
	CreatedAt    string     `json:"createdAt"`
}

type BudgetSummaryDTO struct {
	ProjectID       uuid.UUID `json:"projectId"`
	Budget          float64   `json:"budget"`
	Spent           float64   `json:"spent"`
	Remaining       float64   `json:"remaining"`
	SpentPercentage float64   `json:"spentPercentage"`
	Currency        string    `json:"currency"`
}

type BudgetAlertDTO struct {
	ID                  uuid.UUID `json:"id"`
	ProjectID           uuid.UUID `json:"projectId"`
	AlertType           AlertType `json:"alertType"`
	ThresholdPercentage int       `json:"thresholdPercentage"`
	IsSent              bool      `json:"isSent"`
	SentAt              *string   `json:"sentAt,omitempty"`
	Message             string    `json:"message"`
	CreatedAt           string    `json:"createdAt"`
}

type ExpenseDTO struct {
	ID          uuid.UUID     `json:"id"`
	ProjectID   *uuid.UUID    `json:"projectId,omitempty"`
	CategoryID  *uuid.UUID    `json:"categoryId,omitempty"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	ExpenseDate string        `json:"expenseDate"`
	Description string        `json:"description,omitempty"`
	Source      ExpenseSource `json:"source"`
	CreatedAt   string        `json:"createdAt"`
}

type ExpenseCategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ExpenseCreatedDTO carries the new expense and any alerts its insert raised
type ExpenseCreatedDTO struct {
	Expense ExpenseDTO       `json:"expense"`
	Alerts  []BudgetAlertDTO `json:"alerts"`
}

// Request DTOs

type CreateClientRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"max=50"`
}

type CreatePipelineRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type CreateStageRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Color       string `json:"color,omitempty" validate:"max=20"`
	IsFinal     bool   `json:"isFinal"`
	Probability int    `json:"probability" validate:"gte=0,lte=100"`
}

type UpdateStageRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Color       *string `json:"color,omitempty" validate:"omitempty,max=20"`
	IsFinal     *bool   `json:"isFinal,omitempty"`
	Probability *int    `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type ReorderStageRequest struct {
	Position *int `json:"position" validate:"required"`
}

type CreateLeadRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	PipelineID  uuid.UUID  `json:"pipelineId" validate:"required"`
	StageID     *uuid.UUID `json:"stageId,omitempty"`
	ClientID    *uuid.UUID `json:"clientId,omitempty"`
	Value       float64    `json:"value" validate:"gte=0"`
	Currency    string     `json:"currency,omitempty" validate:"omitempty,len=3"`
	Probability *int       `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type MoveLeadRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
}

type CreateProjectRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	ClientID     *uuid.UUID `json:"clientId,omitempty"`
	BudgetAmount float64    `json:"budgetAmount" validate:"gte=0"`
	Currency     string     `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type CreateExpenseRequest struct {
	ProjectID   *uuid.UUID    `json:"projectId,omitempty"`
	CategoryID  *uuid.UUID    `json:"categoryId,omitempty"`
	Amount      float64       `json:"amount" validate:"gt=0"`
	Currency    string        `json:"currency,omitempty" validate:"omitempty,len=3"`
	ExpenseDate *time.Time    `json:"expenseDate,omitempty"`
	Description string        `json:"description,omitempty" validate:"max=500"`
	Source      ExpenseSource `json:"source,omitempty" validate:"omitempty,oneof=web receipt bot"`
}

type CreateExpenseCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
