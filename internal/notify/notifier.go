// Package notify delivers budget alerts to people
package notify

import (
	"context"

	"github.com/straye-as/crm-core/internal/domain"
)

// Notifier sends one alert. An error leaves the alert un-sent.
type Notifier interface {
	NotifyBudgetAlert(ctx context.Context, alert *domain.BudgetAlert) error
}
