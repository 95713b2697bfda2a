package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/jobs"
	"github.com/straye-as/crm-core/internal/repository"
	"github.com/straye-as/crm-core/internal/service"
	"github.com/straye-as/crm-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	pending   []domain.BudgetAlert
	listErr   error
	lastLimit int
	marked    []uuid.UUID
}

func (s *fakeStore) PendingAlerts(_ context.Context, limit int) ([]domain.BudgetAlert, error) {
	s.lastLimit = limit
	return s.pending, s.listErr
}

func (s *fakeStore) MarkAlertSent(_ context.Context, alertID uuid.UUID) (bool, error) {
	s.marked = append(s.marked, alertID)
	return true, nil
}

type fakeNotifier struct {
	failFor   map[uuid.UUID]bool
	delivered []uuid.UUID
}

func (n *fakeNotifier) NotifyBudgetAlert(_ context.Context, alert *domain.BudgetAlert) error {
	if n.failFor[alert.ID] {
		return errors.New("chat unavailable")
	}
	n.delivered = append(n.delivered, alert.ID)
	return nil
}

func newAlert() domain.BudgetAlert {
	alert := domain.BudgetAlert{
		ProjectID:           uuid.New(),
		AlertType:           domain.AlertTypeThresholdReached,
		ThresholdPercentage: 80,
	}
	alert.ID = uuid.New()
	return alert
}

func TestAlertDispatchJob_Dispatch(t *testing.T) {
	t.Run("marks only delivered alerts", func(t *testing.T) {
		ok1, broken, ok2 := newAlert(), newAlert(), newAlert()
		store := &fakeStore{pending: []domain.BudgetAlert{ok1, broken, ok2}}
		notifier := &fakeNotifier{failFor: map[uuid.UUID]bool{broken.ID: true}}
		job := jobs.NewAlertDispatchJob(store, notifier, 25, time.Second, zap.NewNop())

		sent, failed, err := job.Dispatch(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, 1, failed)
		assert.Equal(t, 25, store.lastLimit)
		assert.Equal(t, []uuid.UUID{ok1.ID, ok2.ID}, store.marked)
		assert.Equal(t, []uuid.UUID{ok1.ID, ok2.ID}, notifier.delivered)
	})

	t.Run("listing error is returned", func(t *testing.T) {
		store := &fakeStore{listErr: errors.New("db down")}
		job := jobs.NewAlertDispatchJob(store, &fakeNotifier{}, 10, time.Second, zap.NewNop())

		_, _, err := job.Dispatch(context.Background())

		assert.EqualError(t, err, "db down")
	})

	t.Run("cancelled context stops the batch", func(t *testing.T) {
		store := &fakeStore{pending: []domain.BudgetAlert{newAlert()}}
		notifier := &fakeNotifier{}
		job := jobs.NewAlertDispatchJob(store, notifier, 10, time.Second, zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sent, _, err := job.Dispatch(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, sent)
		assert.Empty(t, notifier.delivered)
		assert.Empty(t, store.marked)
	})
}

func TestAlertDispatchJob_WithBudgetService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	txRunner := testutil.NewTxRunner(db)
	budgetService := service.NewBudgetService(
		repository.NewProjectRepository(db),
		repository.NewExpenseRepository(db),
		repository.NewBudgetAlertRepository(db),
		repository.NewClientRepository(db),
		txRunner,
		log,
	)
	expenseService := service.NewExpenseService(repository.NewExpenseRepository(db), repository.NewProjectRepository(db), budgetService, txRunner, log)

	project := testutil.CreateProject(t, db, "Harbour", 1000)
	_, err := expenseService.Create(context.Background(), &domain.CreateExpenseRequest{ProjectID: &project.ID, Amount: 1200})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	job := jobs.NewAlertDispatchJob(budgetService, notifier, 10, time.Second, log)

	sent, failed, err := job.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Zero(t, failed)

	pending, err := budgetService.PendingAlerts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second run has nothing left to deliver
	sent, _, err = job.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, notifier.delivered, 2)

	// Further spend on a project already past both thresholds raises nothing new
	created, err := expenseService.Create(context.Background(), &domain.CreateExpenseRequest{ProjectID: &project.ID, Amount: 50})
	require.NoError(t, err)
	assert.Empty(t, created.Alerts)

	sent, _, err = job.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, notifier.delivered, 2)
}

func TestScheduler_AddJob(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())
	noop := func(context.Context) {}

	require.NoError(t, scheduler.AddJob("first", "@every 1h", noop))
	assert.EqualError(t, scheduler.AddJob("first", "@every 1h", noop), "job first already exists")
	assert.Error(t, scheduler.AddJob("broken", "not a cron", noop))

	require.NoError(t, jobs.RegisterAlertDispatchJob(scheduler, &fakeStore{}, &fakeNotifier{}, zap.NewNop(), "0 */5 * * * *", 10, time.Minute))
	assert.ElementsMatch(t, []string{"first", jobs.AlertDispatchJobName}, scheduler.JobNames())

	scheduler.Start()
	<-scheduler.Stop().Done()
}
