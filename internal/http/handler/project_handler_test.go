package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.project.Create, newRequest(t, http.MethodPost, "/projects", "", map[string]interface{}{
		"name":         "Harbour",
		"budgetAmount": 1000,
	}))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	project := decode[domain.ProjectDTO](t, rr)
	assert.Equal(t, "Harbour", project.Name)
	assert.Equal(t, 1000.0, project.BudgetAmount)
	assert.Equal(t, "/api/v1/projects/"+project.ID.String(), rr.Header().Get("Location"))

	rr = serve(env.project.Create, newRequest(t, http.MethodPost, "/projects", "", map[string]interface{}{
		"name":         "Negative",
		"budgetAmount": -1,
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Errors, "budgetAmount")
}

func TestExpenseFlow_RaisesAndListsAlerts(t *testing.T) {
	env := newTestEnv(t)
	project := testutil.CreateProject(t, env.db, "Harbour", 1000)

	rr := serve(env.expense.Create, newRequest(t, http.MethodPost, "/expenses", "", map[string]interface{}{
		"projectId": project.ID,
		"amount":    850,
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.ExpenseCreatedDTO](t, rr)
	assert.Equal(t, 850.0, created.Expense.Amount)
	assert.Equal(t, domain.ExpenseSourceWeb, created.Expense.Source)
	require.Len(t, created.Alerts, 1)
	assert.Equal(t, 80, created.Alerts[0].ThresholdPercentage)
	assert.Equal(t, domain.AlertTypeThresholdReached, created.Alerts[0].AlertType)

	t.Run("budget summary", func(t *testing.T) {
		rr := serve(env.project.GetBudget, newRequest(t, http.MethodGet, "/", project.ID.String(), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		summary := decode[domain.BudgetSummaryDTO](t, rr)
		assert.Equal(t, 1000.0, summary.Budget)
		assert.Equal(t, 850.0, summary.Spent)
		assert.Equal(t, 150.0, summary.Remaining)
		assert.InDelta(t, 85.0, summary.SpentPercentage, 0.001)
	})

	t.Run("evaluate does not duplicate pending alerts", func(t *testing.T) {
		rr := serve(env.project.EvaluateBudget, newRequest(t, http.MethodPost, "/", project.ID.String(), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[[]domain.BudgetAlertDTO](t, rr))
	})

	t.Run("list unsent alerts", func(t *testing.T) {
		rr := serve(env.project.ListAlerts, newRequest(t, http.MethodGet, "/?unsent=true", project.ID.String(), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		alerts := decode[[]domain.BudgetAlertDTO](t, rr)
		require.Len(t, alerts, 1)
		assert.False(t, alerts[0].IsSent)
	})

	t.Run("unknown project", func(t *testing.T) {
		for _, h := range []http.HandlerFunc{env.project.GetByID, env.project.GetBudget, env.project.EvaluateBudget} {
			rr := serve(h, newRequest(t, http.MethodGet, "/", uuid.NewString(), nil))
			assert.Equal(t, http.StatusNotFound, rr.Code)
		}
	})
}

func TestExpenseHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("amount must be positive", func(t *testing.T) {
		rr := serve(env.expense.Create, newRequest(t, http.MethodPost, "/expenses", "", map[string]interface{}{"amount": 0}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Errors, "amount")
	})

	t.Run("unlisted source is rejected", func(t *testing.T) {
		rr := serve(env.expense.Create, newRequest(t, http.MethodPost, "/expenses", "", map[string]interface{}{
			"amount": 10,
			"source": "fax",
		}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown project", func(t *testing.T) {
		rr := serve(env.expense.Create, newRequest(t, http.MethodPost, "/expenses", "", map[string]interface{}{
			"projectId": uuid.New(),
			"amount":    10,
		}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("category", func(t *testing.T) {
		rr := serve(env.expense.CreateCategory, newRequest(t, http.MethodPost, "/expense-categories", "", map[string]string{"name": "Materials"}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		category := decode[domain.ExpenseCategoryDTO](t, rr)

		rr = serve(env.expense.Create, newRequest(t, http.MethodPost, "/expenses", "", map[string]interface{}{
			"categoryId": category.ID,
			"amount":     49.9,
			"source":     "receipt",
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		created := decode[domain.ExpenseCreatedDTO](t, rr)
		assert.Nil(t, created.Expense.ProjectID)
		assert.Empty(t, created.Alerts)
	})
}

func TestClientHandler(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.client.Create, newRequest(t, http.MethodPost, "/clients", "", map[string]string{
		"name":  "Fjord Bygg AS",
		"email": "post@fjordbygg.no",
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	client := decode[domain.ClientDTO](t, rr)
	assert.Equal(t, "/api/v1/clients/"+client.ID.String(), rr.Header().Get("Location"))

	rr = serve(env.client.GetByID, newRequest(t, http.MethodGet, "/", client.ID.String(), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Fjord Bygg AS", decode[domain.ClientDTO](t, rr).Name)

	rr = serve(env.client.Create, newRequest(t, http.MethodPost, "/clients", "", map[string]string{
		"name":  "No Mail",
		"email": "not-an-email",
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Must be a valid email address", decodeError(t, rr).Errors["email"])

	rr = serve(env.client.GetByID, newRequest(t, http.MethodGet, "/", uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
