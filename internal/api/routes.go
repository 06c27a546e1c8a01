package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignite/ads-advisor/internal/pkg/logger"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check and Prometheus scrape endpoint (no auth, no versioning)
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Synchronous analysis over a pushed campaign payload
		r.Post("/analyze", h.Analyze)

		// Advisory endpoints
		r.Route("/advisor", func(r chi.Router) {
			r.Post("/chat", h.AdvisorChat)
			r.Post("/diagnostic", h.AdvisorDiagnostic)
			r.Delete("/sessions/{sessionID}", h.ClearSession)
		})

		// Linked ad accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{accountID}", h.GetAccount)
			r.Put("/{accountID}/token", h.UpdateAccountToken)
			r.Delete("/{accountID}", h.DeleteAccount)
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
		)
	})
}
