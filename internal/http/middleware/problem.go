package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/straye-as/crm-core/internal/domain"
)

func writeProblem(w http.ResponseWriter, status int, errorType, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errorType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
