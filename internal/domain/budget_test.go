package domain_test

import (
	"testing"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAlertTypeForThreshold(t *testing.T) {
	assert.Equal(t, domain.AlertTypeThresholdReached, domain.AlertTypeForThreshold(80))
	assert.Equal(t, domain.AlertTypeBudgetExceeded, domain.AlertTypeForThreshold(100))
}

func TestAlertType_FormatMessage(t *testing.T) {
	warning := domain.AlertTypeThresholdReached.FormatMessage("Harbour", 80, 85)
	assert.Equal(t, "Project 'Harbour' has used 85.0% of its budget (threshold 80%)", warning)

	exceeded := domain.AlertTypeBudgetExceeded.FormatMessage("Harbour", 100, 105.3)
	assert.Equal(t, "Project 'Harbour' has exceeded its budget: 105.3% spent", exceeded)

	assert.True(t, domain.AlertTypeBudgetExceeded.IsValid())
	assert.False(t, domain.AlertType("other").IsValid())
}

func TestNewBudgetSummary(t *testing.T) {
	t.Run("with budget", func(t *testing.T) {
		s := domain.NewBudgetSummary(1000, 850)
		assert.True(t, s.HasBudget)
		assert.InDelta(t, 150, s.Remaining, 0.0001)
		assert.InDelta(t, 85, s.SpentPercentage, 0.0001)
	})

	t.Run("over budget", func(t *testing.T) {
		s := domain.NewBudgetSummary(1000, 1050)
		assert.InDelta(t, -50, s.Remaining, 0.0001)
		assert.InDelta(t, 105, s.SpentPercentage, 0.0001)
	})

	t.Run("zero budget", func(t *testing.T) {
		s := domain.NewBudgetSummary(0, 500)
		assert.False(t, s.HasBudget)
		assert.Zero(t, s.SpentPercentage)
		assert.InDelta(t, -500, s.Remaining, 0.0001)
	})
}

func TestBudgetSummary_ReachesThreshold(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		spent    float64
		expected map[int]bool
	}{
		{"below warning", 1000, 799.99, map[int]bool{80: false, 100: false}},
		{"exactly 80 percent in cents", 1282.00, 1025.60, map[int]bool{80: true, 100: false}},
		{"exactly 100 percent in cents", 1.37, 1.37, map[int]bool{80: true, 100: true}},
		{"one cent short of budget", 1.37, 1.36, map[int]bool{80: true, 100: false}},
		{"over budget", 1000, 1200, map[int]bool{80: true, 100: true}},
		{"no budget", 0, 500, map[int]bool{80: false, 100: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewBudgetSummary(tt.budget, tt.spent)
			for threshold, want := range tt.expected {
				assert.Equal(t, want, s.ReachesThreshold(threshold), "threshold %d", threshold)
			}
		})
	}
}
