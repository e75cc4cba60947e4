package middleware

import (
	"crypto/subtle"
	"net/http"

	"autofill-api/internal/logger"
)

// APIKeyMiddleware enforces the X-API-Key header the extension sends. An
// empty configured key disables the check (local dev), with a warning.
type APIKeyMiddleware struct {
	key string
	log *logger.Logger
}

// NewAPIKeyMiddleware creates a new API key middleware
func NewAPIKeyMiddleware(key string, log *logger.Logger) *APIKeyMiddleware {
	if key == "" {
		log.Warn("API authentication is DISABLED (APP_API_KEY not set)")
	}
	return &APIKeyMiddleware{key: key, log: log}
}

// Require rejects requests whose X-API-Key doesn't match the configured key
func (m *APIKeyMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.key == "" {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.key)) != 1 {
			m.log.Warn("unauthorized request", "path", r.URL.Path, "keyPresent", provided != "")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"missing or invalid X-API-Key"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
