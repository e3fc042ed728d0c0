package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/quantengine/internal/api/handlers"
	"github.com/wonny/quantengine/pkg/logger"
)

// Handlers groups the endpoint handlers. Jobs may be nil when no scheduler runs.
type Handlers struct {
	Health   *handlers.HealthHandler
	Rankings *handlers.RankingHandler
	Jobs     *handlers.JobHandler
}

// NewRouter creates and configures the HTTP router
func NewRouter(h Handlers, gatherer prometheus.Gatherer, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health.Check).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rankings/latest", h.Rankings.GetLatest).Methods("GET")
	api.HandleFunc("/rankings/latest/{profile}", h.Rankings.GetLatestByProfile).Methods("GET")

	if h.Jobs != nil {
		api.HandleFunc("/jobs", h.Jobs.List).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", h.Jobs.Run).Methods("POST")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
