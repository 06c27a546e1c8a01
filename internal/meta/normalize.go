package meta

// Normalize builds one canonical metrics record from a campaign descriptor
// and its optional insights row. A nil insights row means the platform
// returned no data for the window; that is a normal "no activity" state, so
// every numeric field is zeroed and only identity is carried over. This
// never fails: unparseable numerics degrade to 0.
func Normalize(c RawCampaign, ins *RawInsights) CampaignMetrics {
	m := CampaignMetrics{
		ID:     c.ID,
		Name:   c.Name,
		Status: c.Status,
	}
	if ins == nil {
		return m
	}

	m.Spend = parseFloat(ins.Spend)
	m.Impressions = int64(parseFloat(ins.Impressions))
	m.CTR = parseFloat(ins.CTR)
	m.Frequency = parseFloat(ins.Frequency)

	m.Purchases = ExtractActionCount(ins.Actions, PurchaseActionTypes)
	m.AddToCart = ExtractActionCount(ins.Actions, AddToCartActionTypes)
	m.InitiateCheckout = ExtractActionCount(ins.Actions, InitiateCheckoutActionTypes)
	m.Revenue = ExtractActionValue(ins.ActionValues, PurchaseActionTypes)

	if m.Spend > 0 {
		m.ROAS = m.Revenue / m.Spend
		if m.ROAS < 0 {
			m.ROAS = 0
		}
	}
	return m
}

// NormalizeAll maps Normalize over a batch of campaign records.
func NormalizeAll(records []CampaignRecord) []CampaignMetrics {
	out := make([]CampaignMetrics, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r.Campaign, r.Insights))
	}
	return out
}
