package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ignite/ads-advisor/internal/advisor"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsadvisor_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adsadvisor_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 10, 60, 180},
		},
		[]string{"path", "method"},
	)

	advisoryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsadvisor_advisory_attempts_total",
			Help: "Model backend attempts by backend name and outcome",
		},
		[]string{"backend", "outcome"},
	)

	advisoryFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adsadvisor_advisory_fallbacks_total",
			Help: "Times an advisory request fell past its first backend",
		},
	)

	activeStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adsadvisor_active_streams",
			Help: "Advisory SSE streams currently open",
		},
	)
)

// requestMetrics records a counter and latency sample per request, labeled
// by the matched chi route pattern rather than the raw URL.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(pattern, r.Method).Observe(time.Since(start).Seconds())
	})
}

// instrumentedBackend counts every Stream call on the wrapped backend.
type instrumentedBackend struct {
	inner advisor.Backend
}

// InstrumentBackend wraps a model backend so each attempt is recorded with
// its outcome.
func InstrumentBackend(b advisor.Backend) advisor.Backend {
	return &instrumentedBackend{inner: b}
}

func (ib *instrumentedBackend) Name() string { return ib.inner.Name() }

func (ib *instrumentedBackend) Stream(ctx context.Context, req advisor.ChatRequest, fn advisor.StreamFunc) error {
	err := ib.inner.Stream(ctx, req, fn)

	outcome := "success"
	switch {
	case err == nil:
	case ctx.Err() != nil:
		outcome = "cancelled"
	default:
		outcome = "failure"
	}
	advisoryAttemptsTotal.WithLabelValues(ib.inner.Name(), outcome).Inc()

	return err
}
