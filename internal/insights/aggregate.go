package insights

import (
	"github.com/ignite/ads-advisor/internal/meta"
)

// StatusFilter selects which campaign statuses participate in aggregation.
type StatusFilter string

const (
	FilterAll      StatusFilter = "ALL"
	FilterActive   StatusFilter = "ACTIVE"
	FilterPaused   StatusFilter = "PAUSED"
	FilterArchived StatusFilter = "ARCHIVED"
)

// HealthTally counts filtered campaigns per health state.
type HealthTally struct {
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
	Gray   int `json:"gray"`
}

// AccountTotals holds account-level sums and derived ratios over a filtered
// record set. Recomputed fresh on every query.
type AccountTotals struct {
	Campaigns        int     `json:"campaigns"`
	Spend            float64 `json:"spend"`
	Revenue          float64 `json:"revenue"`
	Impressions      int64   `json:"impressions"`
	Purchases        int64   `json:"purchases"`
	AddToCart        int64   `json:"add_to_cart"`
	InitiateCheckout int64   `json:"initiate_checkout"`

	ROASGeneral float64 `json:"roas_general"`
	CPAGeneral  float64 `json:"cpa_general"`
	CTRAverage  float64 `json:"ctr_average"`

	Health HealthTally `json:"health"`
}

// Aggregate reduces a set of campaign metrics into account totals, honoring
// the status filter. Pure and total: the empty set yields all zeros, and no
// derived ratio can divide by zero.
func Aggregate(records []meta.CampaignMetrics, filter StatusFilter) AccountTotals {
	var t AccountTotals
	var ctrSum float64

	for _, m := range records {
		if filter != FilterAll && m.Status != string(filter) {
			continue
		}

		t.Campaigns++
		t.Spend += m.Spend
		t.Revenue += m.Revenue
		t.Impressions += m.Impressions
		t.Purchases += m.Purchases
		t.AddToCart += m.AddToCart
		t.InitiateCheckout += m.InitiateCheckout
		ctrSum += m.CTR

		switch Classify(m) {
		case HealthGreen:
			t.Health.Green++
		case HealthYellow:
			t.Health.Yellow++
		case HealthRed:
			t.Health.Red++
		case HealthGray:
			t.Health.Gray++
		}
	}

	if t.Spend > 0 {
		t.ROASGeneral = t.Revenue / t.Spend
	}
	if t.Purchases > 0 {
		t.CPAGeneral = t.Spend / float64(t.Purchases)
	}
	if t.Campaigns > 0 {
		t.CTRAverage = ctrSum / float64(t.Campaigns)
	}
	return t
}
