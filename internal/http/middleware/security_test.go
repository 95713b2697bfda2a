package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/http/middleware"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders_DefaultConfig(t *testing.T) {
	cfg := &config.SecurityConfig{
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}

	w := httptest.NewRecorder()
	middleware.SecurityHeaders(cfg)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "HSTS should not be set when disabled")
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SecurityConfig
		want string
	}{
		{"max age only", config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 31536000}, "max-age=31536000"},
		{"subdomains", config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 600, HSTSIncludeSubdomains: true}, "max-age=600; includeSubDomains"},
		{"preload", config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 600, HSTSIncludeSubdomains: true, HSTSPreload: true}, "max-age=600; includeSubDomains; preload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			middleware.SecurityHeaders(&tt.cfg)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.want, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurityHeaders_EmptyValuesOmitted(t *testing.T) {
	w := httptest.NewRecorder()
	middleware.SecurityHeaders(&config.SecurityConfig{})(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}
