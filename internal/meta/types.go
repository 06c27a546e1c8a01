package meta

// Campaign status values as delivered by the Marketing API.
const (
	StatusActive   = "ACTIVE"
	StatusPaused   = "PAUSED"
	StatusArchived = "ARCHIVED"
	StatusDeleted  = "DELETED"
)

// RawCampaign represents a campaign descriptor as returned by the platform
type RawCampaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// RawAction represents a single (action_type, value) pair from an insights row.
// The same semantic event may appear under several platform-specific type
// strings; values are decimal strings on the wire.
type RawAction struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// RawInsights represents one insights row for a campaign over a query window.
// All numeric fields arrive as decimal strings.
type RawInsights struct {
	Spend        string `json:"spend"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks,omitempty"`
	Reach        string `json:"reach,omitempty"`
	CTR          string `json:"ctr"`
	CPC          string `json:"cpc,omitempty"`
	CPM          string `json:"cpm,omitempty"`
	Frequency    string `json:"frequency"`
	DateStart    string `json:"date_start,omitempty"`
	DateStop     string `json:"date_stop,omitempty"`

	Actions      []RawAction `json:"actions,omitempty"`
	ActionValues []RawAction `json:"action_values,omitempty"`
}

// CampaignRecord pairs a campaign descriptor with its optional insights row.
// Insights is nil when the platform returned no rows for the window.
type CampaignRecord struct {
	Campaign RawCampaign  `json:"campaign"`
	Insights *RawInsights `json:"insights"`
}

// CampaignMetrics is the canonical per-campaign metrics record. One record
// per campaign per query window; recomputed fresh on every query, never
// mutated after construction.
type CampaignMetrics struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`

	// Traffic
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Frequency   float64 `json:"frequency"`

	// Funnel counts. Not guaranteed monotonic (addToCart >= initiateCheckout
	// >= purchases is expected upstream behavior but never enforced here).
	AddToCart        int64 `json:"add_to_cart"`
	InitiateCheckout int64 `json:"initiate_checkout"`
	Purchases        int64 `json:"purchases"`

	// Revenue and derived return on ad spend
	Revenue float64 `json:"revenue"`
	ROAS    float64 `json:"roas"`
}
