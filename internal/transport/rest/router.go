package rest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"autofill-api/internal/logger"
	"autofill-api/internal/service"
	"autofill-api/internal/transport/rest/handler"
	"autofill-api/internal/transport/rest/middleware"
)

const serviceVersion = "3.0.0"

// Container holds all dependencies for the router
type Container struct {
	AutofillService *service.AutofillService
	PatternService  *service.PatternService
	MatcherService  *service.MatcherService
	ProfileService  *service.ProfileService
	StatsService    *service.StatsService
	APIKey          string
	AllowedOrigins  string
	Logger          *logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	predictHandler := handler.NewPredictHandler(c.AutofillService)
	patternHandler := handler.NewPatternHandler(c.PatternService, c.MatcherService, c.StatsService)
	userHandler := handler.NewUserHandler(c.ProfileService)
	statsHandler := handler.NewStatsHandler(c.StatsService)

	// Initialize middleware
	keyMW := middleware.NewAPIKeyMiddleware(c.APIKey, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	// Health check (no auth)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"ai-service","version":"` + serviceVersion + `"}`))
	}).Methods("GET")

	// All API routes require the key (when one is configured)
	api := r.NewRoute().Subrouter()
	api.Use(keyMW.Require)

	api.HandleFunc("/predict", predictHandler.Predict).Methods("POST", "OPTIONS")

	api.HandleFunc("/api/patterns/upload", patternHandler.Upload).Methods("POST", "OPTIONS")
	api.HandleFunc("/api/patterns/search", patternHandler.Search).Methods("GET", "OPTIONS")
	api.HandleFunc("/api/patterns/stats", patternHandler.Stats).Methods("GET", "OPTIONS")
	api.HandleFunc("/api/patterns/sync", patternHandler.Sync).Methods("GET", "OPTIONS")
	api.HandleFunc("/api/patterns/user/{email}", patternHandler.UserPatterns).Methods("GET", "OPTIONS")

	api.HandleFunc("/api/user-data/save", userHandler.Save).Methods("POST", "OPTIONS")
	api.HandleFunc("/api/user-data/{email}", userHandler.Get).Methods("GET", "OPTIONS")

	api.HandleFunc("/api/stats/summary", statsHandler.Summary).Methods("GET", "OPTIONS")
	api.HandleFunc("/api/feedback/track", statsHandler.TrackFeedback).Methods("POST", "OPTIONS")

	return r
}

// corsMiddleware allows the extension's cross-origin calls. allowedOrigins is
// "*" or a comma-separated origin list; browsers accept only a single value in
// Access-Control-Allow-Origin, so the matching origin is echoed back.
func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	var origins []string
	allowAll := false
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		} else if o != "" {
			origins = append(origins, o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin := r.Header.Get("Origin"); origin != "" && slices.Contains(origins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
