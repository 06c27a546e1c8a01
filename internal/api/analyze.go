package api

import (
	"net/http"
	"time"

	"github.com/ignite/ads-advisor/internal/insights"
	"github.com/ignite/ads-advisor/internal/meta"
	"github.com/ignite/ads-advisor/internal/pkg/httputil"
)

// analyzeRequest is the raw payload pushed by the caller: campaign rows with
// their latest insights, plus the display context they were pulled under.
type analyzeRequest struct {
	Currency     string                `json:"currency"`
	Window       string                `json:"window"`
	StatusFilter string                `json:"status_filter"`
	Campaigns    []meta.CampaignRecord `json:"campaigns"`
}

// analyzedCampaign is one normalized row with its health verdict attached.
type analyzedCampaign struct {
	meta.CampaignMetrics
	Health       insights.HealthState `json:"health"`
	HealthReason string               `json:"health_reason"`
}

// Analyze normalizes raw campaign payloads, classifies each row and returns
// account totals for the requested status filter.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	filter, ok := parseStatusFilter(req.StatusFilter)
	if !ok {
		httputil.BadRequest(w, "unknown status_filter: "+req.StatusFilter)
		return
	}

	records := visibleMetrics(meta.NormalizeAll(req.Campaigns), filter)

	campaigns := make([]analyzedCampaign, 0, len(records))
	for _, m := range records {
		state, reason := insights.ClassifyWithReason(m)
		campaigns = append(campaigns, analyzedCampaign{
			CampaignMetrics: m,
			Health:          state,
			HealthReason:    reason,
		})
	}

	httputil.OK(w, map[string]interface{}{
		"timestamp":     time.Now(),
		"currency":      req.Currency,
		"window":        req.Window,
		"status_filter": filter,
		"campaigns":     campaigns,
		"totals":        insights.Aggregate(records, insights.FilterAll),
	})
}
