package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Client is a customer that leads and projects may reference
type Client struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(255)"`
	Phone string `gorm:"type:varchar(50)"`
}

// Pipeline is an ordered sequence of stages representing a sales process
type Pipeline struct {
	BaseModel
	Name         string  `gorm:"type:varchar(200);not null"`
	DisplayOrder int     `gorm:"not null;default:0;column:display_order"`
	IsActive     bool    `gorm:"not null;column:is_active"`
	Stages       []Stage `gorm:"foreignKey:PipelineID"`
}

// Stage is one step of a pipeline. Within a pipeline the SortOrder values
// always form the contiguous range 0..N-1 at commit boundaries.
type Stage struct {
	BaseModel
	PipelineID  uuid.UUID `gorm:"type:uuid;not null;index;column:pipeline_id"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(200);not null"`
	Color       string    `gorm:"type:varchar(20)"`
	SortOrder   int       `gorm:"not null;default:0;column:sort_order"`
	IsFinal     bool      `gorm:"not null;default:false;column:is_final"`
	Probability int       `gorm:"not null;default:0"`
}

// Lead is a tracked sales opportunity. ClosedAt is set iff the current stage is final.
type Lead struct {
	BaseModel
	Title       string     `gorm:"type:varchar(200);not null"`
	PipelineID  uuid.UUID  `gorm:"type:uuid;not null;index;column:pipeline_id"`
	StageID     uuid.UUID  `gorm:"type:uuid;not null;index;column:stage_id"`
	Stage       *Stage     `gorm:"foreignKey:StageID;constraint:OnDelete:RESTRICT"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index;column:client_id"`
	Value       float64    `gorm:"type:decimal(15,2);not null;default:0"`
	Currency    string     `gorm:"type:varchar(3);not null;default:'NOK'"`
	Probability int        `gorm:"not null;default:0"`
	ClosedAt    *time.Time `gorm:"column:closed_at"`
}

// ActivityType is the closed set of audit entries recorded for a lead
type ActivityType string

const (
	ActivityTypeLeadCreated  ActivityType = "lead_created"
	ActivityTypeStageChanged ActivityType = "stage_changed"
	ActivityTypeLeadClosed   ActivityType = "lead_closed"
	ActivityTypeLeadReopened ActivityType = "lead_reopened"
)

// Activity is an append-only audit record describing something that happened to a lead
type Activity struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	LeadID       uuid.UUID    `gorm:"type:uuid;not null;index;column:lead_id"`
	ActivityType ActivityType `gorm:"type:varchar(50);not null;column:activity_type"`
	Title        string       `gorm:"type:varchar(200);not null"`
	Body         string       `gorm:"type:varchar(2000)"`
	FromStageID  *uuid.UUID   `gorm:"type:uuid;column:from_stage_id"`
	ToStageID    *uuid.UUID   `gorm:"type:uuid;column:to_stage_id"`
	ActorID      string       `gorm:"type:varchar(100);column:actor_id"`
	ActorName    string       `gorm:"type:varchar(200);column:actor_name"`
	OccurredAt   time.Time    `gorm:"not null;index;column:occurred_at"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now()
	}
	return nil
}

// Project holds a planned budget. Spent, remaining and percentage are derived from expenses.
type Project struct {
	BaseModel
	Name         string     `gorm:"type:varchar(200);not null"`
	ClientID     *uuid.UUID `gorm:"type:uuid;index;column:client_id"`
	BudgetAmount float64    `gorm:"type:decimal(15,2);not null;default:0;column:budget_amount"`
	Currency     string     `gorm:"type:varchar(3);not null;default:'NOK'"`
}

// ExpenseCategory groups expenses for reporting
type ExpenseCategory struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null"`
}

// ExpenseSource records which channel created an expense
type ExpenseSource string

const (
	ExpenseSourceWeb     ExpenseSource = "web"
	ExpenseSourceReceipt ExpenseSource = "receipt"
	ExpenseSourceBot     ExpenseSource = "bot"
)

// Expense is a cost booked against a project, or against the business when ProjectID is nil
type Expense struct {
	BaseModel
	ProjectID   *uuid.UUID    `gorm:"type:uuid;index;column:project_id"`
	CategoryID  *uuid.UUID    `gorm:"type:uuid;index;column:category_id"`
	Amount      float64       `gorm:"type:decimal(15,2);not null"`
	Currency    string        `gorm:"type:varchar(3);not null;default:'NOK'"`
	ExpenseDate time.Time     `gorm:"type:date;not null;column:expense_date"`
	Description string        `gorm:"type:varchar(500)"`
	Source      ExpenseSource `gorm:"type:varchar(20);not null;default:'web'"`
}

// AlertType is the closed set of budget alert kinds
type AlertType string

const (
	AlertTypeThresholdReached AlertType = "threshold_reached"
	AlertTypeBudgetExceeded   AlertType = "budget_exceeded"
)

// BudgetAlert records a project crossing a spend threshold.
// At most one un-sent alert exists per (project, threshold).
type BudgetAlert struct {
	BaseModel
	ProjectID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_budget_alerts_unsent,where:is_sent = false;column:project_id"`
	AlertType           AlertType  `gorm:"type:varchar(30);not null;column:alert_type"`
	ThresholdPercentage int        `gorm:"not null;uniqueIndex:idx_budget_alerts_unsent,where:is_sent = false;column:threshold_percentage"`
	IsSent              bool       `gorm:"not null;default:false;column:is_sent"`
	SentAt              *time.Time `gorm:"column:sent_at"`
	Message             string     `gorm:"type:text"`
}
