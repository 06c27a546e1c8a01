package advisor

import (
	"fmt"
	"strings"

	"github.com/ignite/ads-advisor/internal/insights"
)

// buildSystemPrompt returns the system prompt shared by every backend in the
// fallback chain. The thresholds here must match the classifier.
func buildSystemPrompt() string {
	return `You are an EXPERT paid-social media buyer and performance strategist. You analyze Meta Ads campaign data and give direct, numbers-first recommendations. You are not a generic chatbot - you are a strict advisor who prioritizes profit.

## HEALTH POLICY YOU ENFORCE
| State | Condition | Action |
|-------|-----------|--------|
| 🟢 green | ROAS >= 2.0 AND CTR >= 1.5% AND frequency <= 3.0 | scale |
| 🟡 yellow | mixed signals | optimize |
| 🔴 red | ROAS < 1.0 OR CTR < 0.8% OR frequency > 5.0 | review or cut |
| ⚪ gray | no spend and no impressions | no data |

## DOMAIN KNOWLEDGE
- ROAS below 1.0 means the campaign loses money on every conversion.
- CTR under 0.8% usually signals creative fatigue or poor audience fit.
- Frequency above 5.0 means the audience is saturated; expect rising CPMs.
- A healthy funnel narrows: add-to-cart >= initiate-checkout >= purchases. Broken ordering usually means attribution or pixel issues, not user behavior.
- CPA must be read against margin, not in isolation.

## HOW TO RESPOND
- Use markdown. Lead with the answer, then the numbers that support it.
- Reference campaigns by name with their health badge.
- Use actual figures from the context block. Never invent data.
- Every finding ends with a concrete action and an expected impact.
- If the context has no campaigns for a question, say so plainly.

Be specific, be strict, be brief.`
}

// buildContextMessage renders the aggregated snapshot plus one line per
// campaign, in the order provided. Currency and window labels are passed
// through verbatim.
func buildContextMessage(req AdvisoryRequest) string {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	window := req.Window
	if window == "" {
		window = "current window"
	}

	t := req.Totals
	var sb strings.Builder

	fmt.Fprintf(&sb, "## 📊 Account Snapshot (%s)\n", window)
	fmt.Fprintf(&sb, "- Campaigns: %d (🟢 %d / 🟡 %d / 🔴 %d / ⚪ %d)\n",
		t.Campaigns, t.Health.Green, t.Health.Yellow, t.Health.Red, t.Health.Gray)
	fmt.Fprintf(&sb, "- Spend: %.2f %s | Revenue: %.2f %s | ROAS: %.2f\n",
		t.Spend, currency, t.Revenue, currency, t.ROASGeneral)
	fmt.Fprintf(&sb, "- Purchases: %d | CPA: %.2f %s | Avg CTR: %.2f%%\n",
		t.Purchases, t.CPAGeneral, currency, t.CTRAverage)
	fmt.Fprintf(&sb, "- Funnel: %s add-to-cart, %s initiate-checkout, %s purchases\n",
		formatCount(t.AddToCart), formatCount(t.InitiateCheckout), formatCount(t.Purchases))

	if len(req.Records) > 0 {
		sb.WriteString("\n## Campaigns\n")
		for _, m := range req.Records {
			state, reason := insights.ClassifyWithReason(m)
			fmt.Fprintf(&sb, "%s %s [%s] spend %.2f, roas %.2f, ctr %.2f%%, freq %.1f, purchases %d. %s\n",
				state.Emoji(), m.Name, m.Status, m.Spend, m.ROAS, m.CTR, m.Frequency, m.Purchases, reason)
		}
	}

	return sb.String()
}

// buildDiagnosticPrompt synthesizes the single user turn for the one-shot
// account diagnostic. The section list is fixed; the model must answer every
// section even when the data cannot support it.
func buildDiagnosticPrompt(req AdvisoryRequest) string {
	var sb strings.Builder

	sb.WriteString(buildContextMessage(req))
	sb.WriteString(`
Produce a full account diagnostic with exactly these six sections, in this order:

1. **Executive Summary** - account state in three sentences or fewer
2. **Fatigued Creatives** - campaigns with frequency or CTR problems
3. **Scale Candidates** - green campaigns with room to grow, with suggested budget steps
4. **Optimization Candidates** - yellow campaigns and the single highest-leverage fix for each
5. **Shutdown Candidates** - red campaigns to pause or kill, with the figure that condemns them
6. **Next Steps** - a prioritized checklist for the next 7 days

Rules: use only the data above. Where a section has no qualifying campaigns or the data is insufficient, write "Insufficient data." for that section instead of speculating.`)

	return sb.String()
}

// formatCount renders counts compactly (1.2K, 3.4M) for prompt context.
func formatCount(n int64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
