package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/crm-core/internal/cache"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/events"
	"github.com/straye-as/crm-core/internal/http/handler"
	"github.com/straye-as/crm-core/internal/repository"
	"github.com/straye-as/crm-core/internal/service"
	"github.com/straye-as/crm-core/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	cache    *cache.MemoryCache
	pipeline *handler.PipelineHandler
	stage    *handler.StageHandler
	lead     *handler.LeadHandler
	client   *handler.ClientHandler
	project  *handler.ProjectHandler
	expense  *handler.ExpenseHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	txRunner := testutil.NewTxRunner(db)

	clientRepo := repository.NewClientRepository(db)
	pipelineRepo := repository.NewPipelineRepository(db)
	stageRepo := repository.NewStageRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	alertRepo := repository.NewBudgetAlertRepository(db)

	clientService := service.NewClientService(clientRepo, log)
	pipelineService := service.NewPipelineService(pipelineRepo, txRunner, log)
	stageService := service.NewStageService(pipelineRepo, stageRepo, leadRepo, txRunner, log)
	leadService := service.NewLeadService(leadRepo, stageRepo, pipelineRepo, clientRepo, activityRepo, events.NopPublisher{}, txRunner, log)
	budgetService := service.NewBudgetService(projectRepo, expenseRepo, alertRepo, clientRepo, txRunner, log)
	expenseService := service.NewExpenseService(expenseRepo, projectRepo, budgetService, txRunner, log)

	memCache := cache.NewMemoryCache()
	pipelineCache := handler.NewPipelineCache(memCache, time.Minute, log)

	return &testEnv{
		db:       db,
		cache:    memCache,
		pipeline: handler.NewPipelineHandler(pipelineService, stageService, pipelineCache, log),
		stage:    handler.NewStageHandler(stageService, pipelineCache, log),
		lead:     handler.NewLeadHandler(leadService, log),
		client:   handler.NewClientHandler(clientService, log),
		project:  handler.NewProjectHandler(budgetService, log),
		expense:  handler.NewExpenseHandler(expenseService, log),
	}
}

// newRequest builds a request with an optional JSON body and {id} route parameter
func newRequest(t *testing.T, method, target, id string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func withContext(req *http.Request, ctx context.Context) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx != nil {
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	return decode[domain.APIError](t, rr)
}
