package middleware

import (
	"fmt"
	"net/http"

	"github.com/straye-as/crm-core/internal/config"
)

type header struct {
	name  string
	value string
}

// securityHeaders derives the static response headers from config
func securityHeaders(cfg *config.SecurityConfig) []header {
	var headers []header
	add := func(name, value string) {
		if value != "" {
			headers = append(headers, header{name: name, value: value})
		}
	}

	if cfg.ContentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("X-Frame-Options", cfg.FrameOptions)
	add("Content-Security-Policy", cfg.ContentSecurityPolicy)
	add("Referrer-Policy", cfg.ReferrerPolicy)

	if cfg.EnableHSTS {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		add("Strict-Transport-Security", hsts)
	}
	return headers
}

// SecurityHeaders returns a middleware that adds security headers to responses
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	headers := securityHeaders(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, hdr := range headers {
				h.Set(hdr.name, hdr.value)
			}
			h.Del("X-Powered-By")
			h.Del("Server")
			next.ServeHTTP(w, r)
		})
	}
}
