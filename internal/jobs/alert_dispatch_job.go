package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/notify"
	"go.uber.org/zap"
)

// AlertDispatchJobName is the name of the budget alert delivery job
const AlertDispatchJobName = "budget_alert_dispatch"

// AlertStore is the part of the budget service the dispatcher needs
type AlertStore interface {
	PendingAlerts(ctx context.Context, limit int) ([]domain.BudgetAlert, error)
	MarkAlertSent(ctx context.Context, alertID uuid.UUID) (bool, error)
}

// AlertDispatchJob delivers un-sent budget alerts and marks them sent.
// An alert is marked only after its delivery succeeded, so a failure is
// retried on the next run.
type AlertDispatchJob struct {
	store     AlertStore
	notifier  notify.Notifier
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAlertDispatchJob creates a dispatcher that handles at most batchSize alerts per run
func NewAlertDispatchJob(store AlertStore, notifier notify.Notifier, batchSize int, timeout time.Duration, logger *zap.Logger) *AlertDispatchJob {
	return &AlertDispatchJob{
		store:     store,
		notifier:  notifier,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run is the scheduler entry point
func (j *AlertDispatchJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	sent, failed, err := j.Dispatch(ctx)
	if err != nil {
		j.logger.Error("budget alert dispatch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	if sent > 0 || failed > 0 {
		j.logger.Info("budget alert dispatch completed",
			zap.Int("sent", sent),
			zap.Int("failed", failed),
			zap.Duration("duration", time.Since(start)))
	}
}

// Dispatch delivers one batch and reports how many alerts were sent and how many failed
func (j *AlertDispatchJob) Dispatch(ctx context.Context) (sent int, failed int, err error) {
	alerts, err := j.store.PendingAlerts(ctx, j.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for i := range alerts {
		alert := &alerts[i]
		if err := ctx.Err(); err != nil {
			return sent, failed, err
		}

		if err := j.notifier.NotifyBudgetAlert(ctx, alert); err != nil {
			failed++
			j.logger.Warn("failed to deliver budget alert",
				zap.String("alert_id", alert.ID.String()),
				zap.String("project_id", alert.ProjectID.String()),
				zap.Error(err))
			continue
		}

		marked, err := j.store.MarkAlertSent(ctx, alert.ID)
		if err != nil {
			return sent, failed, err
		}
		if marked {
			sent++
		}
	}
	return sent, failed, nil
}

// RegisterAlertDispatchJob registers the dispatcher with the scheduler
func RegisterAlertDispatchJob(scheduler *Scheduler, store AlertStore, notifier notify.Notifier, logger *zap.Logger, cronExpr string, batchSize int, timeout time.Duration) error {
	job := NewAlertDispatchJob(store, notifier, batchSize, timeout, logger)
	return scheduler.AddJob(AlertDispatchJobName, cronExpr, job.Run)
}
