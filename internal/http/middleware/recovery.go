package middleware

import (
	"fmt"
	"net/http"

	"github.com/straye-as/crm-core/internal/domain"
	"go.uber.org/zap"
)

// Recovery turns a panic in a handler into a 500 problem response
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stack"),
				)
				writeProblem(w, http.StatusInternalServerError, domain.ErrorTypeInternal, "An unexpected error occurred")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
