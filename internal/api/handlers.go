package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ignite/ads-advisor/internal/advisor"
	"github.com/ignite/ads-advisor/internal/insights"
	"github.com/ignite/ads-advisor/internal/meta"
	"github.com/ignite/ads-advisor/internal/pkg/httputil"
	"github.com/ignite/ads-advisor/internal/session"
	"github.com/ignite/ads-advisor/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	pipeline     *advisor.Pipeline
	registry     *advisor.StreamRegistry
	sessions     session.Store
	accounts     *store.AccountRepo
	historyTurns int
	startTime    time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(pipeline *advisor.Pipeline, registry *advisor.StreamRegistry, sessions session.Store) *Handlers {
	return &Handlers{
		pipeline:     pipeline,
		registry:     registry,
		sessions:     sessions,
		historyTurns: session.DefaultMaxTurns,
		startTime:    time.Now(),
	}
}

// SetAccountRepo sets the ad-account store
func (h *Handlers) SetAccountRepo(repo *store.AccountRepo) {
	h.accounts = repo
}

// SetHistoryTurns sets how many stored turns feed each advisory request
func (h *Handlers) SetHistoryTurns(n int) {
	if n > 0 {
		h.historyTurns = n
	}
}

// parseStatusFilter maps the wire value onto a status filter. An empty
// value means no filtering.
func parseStatusFilter(s string) (insights.StatusFilter, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(insights.FilterAll):
		return insights.FilterAll, true
	case string(insights.FilterActive):
		return insights.FilterActive, true
	case string(insights.FilterPaused):
		return insights.FilterPaused, true
	case string(insights.FilterArchived):
		return insights.FilterArchived, true
	}
	return "", false
}

// visibleMetrics keeps the records matching the filter, in input order.
func visibleMetrics(records []meta.CampaignMetrics, filter insights.StatusFilter) []meta.CampaignMetrics {
	if filter == insights.FilterAll {
		return records
	}
	out := make([]meta.CampaignMetrics, 0, len(records))
	for _, m := range records {
		if m.Status == string(filter) {
			out = append(out, m)
		}
	}
	return out
}

// Health check

// HealthCheck returns the health status of the API
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now(),
		"uptime":         time.Since(h.startTime).String(),
		"active_streams": h.registry.Active(),
	})
}
