package meta

import (
	"strconv"
	"strings"
)

// Synonym tables for the action types the platform has used for the same
// logical event across API versions. One table per metric; these must match
// the wire strings exactly, and table order is priority order.
var (
	// PurchaseActionTypes covers the purchase event. Also used against the
	// action_values sequence for revenue lookups.
	PurchaseActionTypes = []string{
		"omni_purchase",
		"purchase",
		"offsite_conversion.fb_pixel_purchase",
	}

	// AddToCartActionTypes covers the add-to-cart funnel event.
	AddToCartActionTypes = []string{
		"omni_add_to_cart",
		"add_to_cart",
		"offsite_conversion.fb_pixel_add_to_cart",
	}

	// InitiateCheckoutActionTypes covers the initiate-checkout funnel event.
	InitiateCheckoutActionTypes = []string{
		"omni_initiated_checkout",
		"initiate_checkout",
		"offsite_conversion.fb_pixel_initiate_checkout",
	}
)

// ExtractActionCount scans actions once and returns the value of the best
// synonym match, truncated to a count. When the platform reports the same
// logical event under several type strings, the earliest synonym-table entry
// wins; among rows with the same type string the first row wins. Returns 0
// for an empty list, no match, or an unparseable value.
func ExtractActionCount(actions []RawAction, synonyms []string) int64 {
	return int64(parseFloat(matchAction(actions, synonyms)))
}

// ExtractActionValue is ExtractActionCount for currency-valued sequences
// (action_values rows keep the decimal part).
func ExtractActionValue(values []RawAction, synonyms []string) float64 {
	return parseFloat(matchAction(values, synonyms))
}

// matchAction returns the raw value of the row whose action_type sits
// earliest in synonyms, or "" when nothing matches.
func matchAction(rows []RawAction, synonyms []string) string {
	best := len(synonyms)
	var raw string
	for _, a := range rows {
		idx := typeIndex(synonyms, a.ActionType)
		if idx < 0 || idx >= best {
			continue
		}
		best, raw = idx, a.Value
	}
	return raw
}

func typeIndex(synonyms []string, actionType string) int {
	for i, s := range synonyms {
		if s == actionType {
			return i
		}
	}
	return -1
}

// parseFloat parses a decimal string, falling back to 0 on any failure.
// Malformed numerics are a normal upstream condition, not a fault.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
