// Package server wires the submission handlers into the HTTP surface.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadpipe/internal/common/logger"
	"leadpipe/internal/submission"
)

// NewRouter assembles the full route table: the two submission
// endpoints, health, Prometheus metrics and pprof.
func NewRouter(h *submission.Handler, lg logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(lg))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Options("/lead-submit", h.LeadSubmit)
		r.Post("/lead-submit", h.LeadSubmit)
		r.Options("/questionnaire-submit", h.QuestionnaireSubmit)
		r.Post("/questionnaire-submit", h.QuestionnaireSubmit)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug", middleware.Profiler())

	return r
}

// requestLogger logs one line per request with duration and status.
func requestLogger(lg logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			lg.Info("request", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
		})
	}
}
