package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := middleware.Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/leads", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var problem domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, domain.ErrorTypeInternal, problem.Type)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	h := middleware.Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogging_RequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var seen string
	h := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pipelines", nil))

		id := w.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("reuses a valid incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines", nil)
		req.Header.Set(middleware.RequestIDHeader, incoming)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, incoming, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, incoming, seen)
	})

	t.Run("replaces an invalid incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc\nforged")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.NotEqual(t, "abc\nforged", w.Header().Get(middleware.RequestIDHeader))
	})

	entries := logs.FilterField(zap.Int("status_code", http.StatusCreated)).All()
	assert.Len(t, entries, 3)
}

func TestLogging_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	status := http.StatusOK
	h := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	for _, s := range []int{http.StatusOK, http.StatusNotFound, http.StatusServiceUnavailable} {
		status = s
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	all := logs.All()
	require.Len(t, all, 3)
	assert.Equal(t, zapcore.InfoLevel, all[0].Level)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[2].Level)
}
