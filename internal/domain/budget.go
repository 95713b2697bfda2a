package domain

import (
	"fmt"
	"math"
)

// Budget alert thresholds in ascending order. Each is evaluated independently.
const (
	ThresholdWarning  = 80
	ThresholdExceeded = 100
)

// BudgetThresholds lists the spend percentages that raise an alert
var BudgetThresholds = []int{ThresholdWarning, ThresholdExceeded}

// AlertTypeForThreshold maps a threshold to its alert type
func AlertTypeForThreshold(threshold int) AlertType {
	if threshold >= ThresholdExceeded {
		return AlertTypeBudgetExceeded
	}
	return AlertTypeThresholdReached
}

// IsValid reports whether t is a known alert type
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeThresholdReached, AlertTypeBudgetExceeded:
		return true
	}
	return false
}

// FormatMessage renders the alert text for a project at the given spend percentage
func (t AlertType) FormatMessage(projectName string, threshold int, spentPercentage float64) string {
	switch t {
	case AlertTypeThresholdReached:
		return fmt.Sprintf("Project '%s' has used %.1f%% of its budget (threshold %d%%)", projectName, spentPercentage, threshold)
	case AlertTypeBudgetExceeded:
		return fmt.Sprintf("Project '%s' has exceeded its budget: %.1f%% spent", projectName, spentPercentage)
	default:
		return fmt.Sprintf("Project '%s' budget alert: %.1f%% spent", projectName, spentPercentage)
	}
}

// BudgetSummary is the derived spend state of a project
type BudgetSummary struct {
	Budget          float64
	Spent           float64
	Remaining       float64
	SpentPercentage float64
	HasBudget       bool
}

// ReachesThreshold reports whether spent is at least threshold percent of
// budget. Amounts are compared in whole cents so a spend landing exactly on a
// threshold counts as reached. SpentPercentage is for display only.
func (s BudgetSummary) ReachesThreshold(threshold int) bool {
	if !s.HasBudget {
		return false
	}
	return toCents(s.Spent)*100 >= int64(threshold)*toCents(s.Budget)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// NewBudgetSummary derives remaining and percentage from budget and spent.
// The percentage is zero when there is no positive budget.
func NewBudgetSummary(budget, spent float64) BudgetSummary {
	s := BudgetSummary{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget - spent,
		HasBudget: budget > 0,
	}
	if s.HasBudget {
		s.SpentPercentage = spent * 100 / budget
	}
	return s
}
