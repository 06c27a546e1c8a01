package insights

import (
	"fmt"

	"github.com/ignite/ads-advisor/internal/meta"
)

// HealthState is the ordinal campaign health classification.
type HealthState string

const (
	HealthGreen  HealthState = "green"  // scale
	HealthYellow HealthState = "yellow" // optimize
	HealthRed    HealthState = "red"    // review
	HealthGray   HealthState = "gray"   // no data
)

// Classification thresholds. Green is conjunctive (all bars must clear),
// red is disjunctive (any single flag disqualifies).
const (
	GreenMinROAS      = 2.0
	GreenMinCTR       = 1.5
	GreenMaxFrequency = 3.0

	RedMaxROAS      = 1.0
	RedMinCTR       = 0.8
	RedMaxFrequency = 5.0
)

// healthRule pairs a predicate with the state it yields. Rules are evaluated
// top to bottom, first match wins, so the order here is load-bearing: a
// dormant campaign must hit the gray rule before the red rule can see its
// zero ROAS.
type healthRule struct {
	state  HealthState
	match  func(m meta.CampaignMetrics) bool
	reason func(m meta.CampaignMetrics) string
}

var healthRules = []healthRule{
	{
		state: HealthGray,
		match: func(m meta.CampaignMetrics) bool {
			return m.Spend == 0 && m.Impressions == 0
		},
		reason: func(m meta.CampaignMetrics) string {
			return "No delivery in the window"
		},
	},
	{
		state: HealthGreen,
		match: func(m meta.CampaignMetrics) bool {
			return m.ROAS >= GreenMinROAS && m.CTR >= GreenMinCTR && m.Frequency <= GreenMaxFrequency
		},
		reason: func(m meta.CampaignMetrics) string {
			return fmt.Sprintf("ROAS %.2f with CTR %.2f%% and frequency %.1f", m.ROAS, m.CTR, m.Frequency)
		},
	},
	{
		state: HealthRed,
		match: func(m meta.CampaignMetrics) bool {
			return m.ROAS < RedMaxROAS || m.CTR < RedMinCTR || m.Frequency > RedMaxFrequency
		},
		reason: func(m meta.CampaignMetrics) string {
			switch {
			case m.ROAS < RedMaxROAS:
				return fmt.Sprintf("ROAS %.2f below break-even", m.ROAS)
			case m.CTR < RedMinCTR:
				return fmt.Sprintf("CTR %.2f%% below %.1f%%", m.CTR, RedMinCTR)
			default:
				return fmt.Sprintf("Frequency %.1f above %.1f, audience fatigued", m.Frequency, RedMaxFrequency)
			}
		},
	},
	{
		state: HealthYellow,
		match: func(m meta.CampaignMetrics) bool { return true },
		reason: func(m meta.CampaignMetrics) string {
			return fmt.Sprintf("Mixed signals: ROAS %.2f, CTR %.2f%%, frequency %.1f", m.ROAS, m.CTR, m.Frequency)
		},
	},
}

// Classify maps one metrics record to its health state. Pure and total:
// every record lands in exactly one state, same input same answer.
func Classify(m meta.CampaignMetrics) HealthState {
	s, _ := ClassifyWithReason(m)
	return s
}

// ClassifyWithReason is Classify plus a short human-readable explanation for
// status badges and advisory context.
func ClassifyWithReason(m meta.CampaignMetrics) (HealthState, string) {
	for _, r := range healthRules {
		if r.match(m) {
			return r.state, r.reason(m)
		}
	}
	// Unreachable: the last rule always matches.
	return HealthYellow, ""
}

// Emoji returns the badge used in chat and report output.
func (s HealthState) Emoji() string {
	switch s {
	case HealthGreen:
		return "🟢"
	case HealthYellow:
		return "🟡"
	case HealthRed:
		return "🔴"
	default:
		return "⚪"
	}
}
