package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/straye-as/crm-core/internal/auth"
	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/domain"
	"go.uber.org/zap"
)

// RateLimiter applies per-IP limits before authentication and per-user
// limits after it
type RateLimiter struct {
	enabled      bool
	logger       *zap.Logger
	ipLimiter    func(http.Handler) http.Handler
	userLimiter  func(http.Handler) http.Handler
	whitelistIPs map[string]struct{}
	exactPaths   map[string]struct{}
	prefixPaths  []string
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled:      cfg.Enabled,
		logger:       logger,
		whitelistIPs: make(map[string]struct{}, len(cfg.WhitelistIPs)),
		exactPaths:   make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.whitelistIPs[ip] = struct{}{}
	}
	for _, path := range cfg.WhitelistPaths {
		if strings.HasSuffix(path, "/*") {
			rl.prefixPaths = append(rl.prefixPaths, strings.TrimSuffix(path, "*"))
			continue
		}
		rl.exactPaths[path] = struct{}{}
	}

	rl.ipLimiter = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return "ip:" + clientIP(r), nil
		}),
		httprate.WithLimitHandler(rl.limitExceeded),
	)
	rl.userLimiter = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(keyByUserOrIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)

	logger.Info("rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
	)
	return rl
}

// LimitByIP limits unauthenticated traffic; mount it before authentication
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.wrap(rl.ipLimiter(next), next)
}

// LimitByUser limits authenticated traffic; mount it after authentication
func (rl *RateLimiter) LimitByUser(next http.Handler) http.Handler {
	return rl.wrap(rl.userLimiter(next), next)
}

func (rl *RateLimiter) wrap(limited, next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	if _, ok := rl.whitelistIPs[clientIP(r)]; ok {
		return true
	}
	if _, ok := rl.exactPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range rl.prefixPaths {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

func keyByUserOrIP(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "user:" + userCtx.UserID.String(), nil
	}
	return "ip:" + clientIP(r), nil
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiter) limitExceeded(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
	)
	w.Header().Set("Retry-After", "60")
	writeProblem(w, http.StatusTooManyRequests, domain.ErrorTypeRateLimited, "Too many requests. Please try again later.")
}
