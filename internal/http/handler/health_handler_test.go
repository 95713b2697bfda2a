package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/straye-as/crm-core/internal/cache"
	"github.com/straye-as/crm-core/internal/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type readiness struct {
	Status string                       `json:"status"`
	Checks map[string]map[string]string `json:"checks"`
}

func TestHealthHandler_Live(t *testing.T) {
	h := handler.NewHealthHandler(func(context.Context) error { return nil }, nil, zap.NewNop())

	rr := serve(h.Live, newRequest(t, http.MethodGet, "/health", "", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		h := handler.NewHealthHandler(func(context.Context) error { return nil }, cache.NewMemoryCache(), zap.NewNop())

		rr := serve(h.Ready, newRequest(t, http.MethodGet, "/health/ready", "", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		body := decode[readiness](t, rr)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"]["status"])
		assert.Equal(t, "healthy", body.Checks["cache"]["status"])
	})

	t.Run("database down", func(t *testing.T) {
		h := handler.NewHealthHandler(func(context.Context) error {
			return errors.New("connection refused")
		}, cache.Nop{}, zap.NewNop())

		rr := serve(h.Ready, newRequest(t, http.MethodGet, "/health/ready", "", nil))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		body := decode[readiness](t, rr)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "unhealthy", body.Checks["database"]["status"])
		assert.Equal(t, "connection refused", body.Checks["database"]["error"])
		assert.Equal(t, "healthy", body.Checks["cache"]["status"])
	})

	t.Run("without cache only the database is checked", func(t *testing.T) {
		h := handler.NewHealthHandler(func(context.Context) error { return nil }, nil, zap.NewNop())

		rr := serve(h.Ready, newRequest(t, http.MethodGet, "/health/ready", "", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		body := decode[readiness](t, rr)
		assert.Len(t, body.Checks, 1)
		assert.Contains(t, body.Checks, "database")
	})
}
