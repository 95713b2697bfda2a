package notify

import (
	"context"

	"github.com/straye-as/crm-core/internal/domain"
	"go.uber.org/zap"
)

// LogNotifier writes alerts to the application log. Used when no chat
// channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyBudgetAlert(_ context.Context, alert *domain.BudgetAlert) error {
	n.logger.Info("budget alert",
		zap.String("alert_id", alert.ID.String()),
		zap.String("project_id", alert.ProjectID.String()),
		zap.String("alert_type", string(alert.AlertType)),
		zap.Int("threshold", alert.ThresholdPercentage),
		zap.String("message", alert.Message),
	)
	return nil
}
