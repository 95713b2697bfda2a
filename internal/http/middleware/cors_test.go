package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func corsConfig(origins ...string) *config.CORSConfig {
	return &config.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func corsRequest(t *testing.T, cfg *config.CORSConfig, environment, origin string) *httptest.ResponseRecorder {
	t.Helper()
	h := middleware.CORS(cfg, environment, zap.NewNop())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS_DevelopmentAllowsAllOrigins(t *testing.T) {
	w := corsRequest(t, corsConfig(), "development", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	cfg := corsConfig("https://crm.straye.no")

	w := corsRequest(t, cfg, "production", "https://crm.straye.no")
	assert.Equal(t, "https://crm.straye.no", w.Header().Get("Access-Control-Allow-Origin"))

	w = corsRequest(t, cfg, "production", "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardOrigin(t *testing.T) {
	w := corsRequest(t, corsConfig("*"), "staging", "https://anything.example.com")
	assert.Equal(t, "https://anything.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionNoConfiguredOrigins(t *testing.T) {
	w := corsRequest(t, corsConfig(), "production", "https://crm.straye.no")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightRequest(t *testing.T) {
	h := middleware.CORS(corsConfig("https://crm.straye.no"), "production", zap.NewNop())(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stages/1/reorder", nil)
	req.Header.Set("Origin", "https://crm.straye.no")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, "https://crm.straye.no", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
