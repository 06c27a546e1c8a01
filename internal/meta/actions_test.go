package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractActionCount(t *testing.T) {
	tests := []struct {
		name     string
		actions  []RawAction
		synonyms []string
		want     int64
	}{
		{
			name:     "empty list",
			actions:  nil,
			synonyms: PurchaseActionTypes,
			want:     0,
		},
		{
			name: "no matching action type",
			actions: []RawAction{
				{ActionType: "link_click", Value: "42"},
				{ActionType: "post_engagement", Value: "7"},
			},
			synonyms: PurchaseActionTypes,
			want:     0,
		},
		{
			name: "simple purchase match",
			actions: []RawAction{
				{ActionType: "purchase", Value: "12"},
			},
			synonyms: PurchaseActionTypes,
			want:     12,
		},
		{
			name: "earlier synonym wins on duplicate logical event",
			actions: []RawAction{
				{ActionType: "omni_purchase", Value: "5"},
				{ActionType: "purchase", Value: "9"},
			},
			synonyms: PurchaseActionTypes,
			want:     5,
		},
		{
			name: "synonym priority beats row order",
			actions: []RawAction{
				{ActionType: "purchase", Value: "9"},
				{ActionType: "omni_purchase", Value: "5"},
			},
			synonyms: PurchaseActionTypes,
			want:     5,
		},
		{
			name: "same type string keeps the first row",
			actions: []RawAction{
				{ActionType: "omni_purchase", Value: "5"},
				{ActionType: "omni_purchase", Value: "9"},
			},
			synonyms: PurchaseActionTypes,
			want:     5,
		},
		{
			name: "legacy pixel synonym matches",
			actions: []RawAction{
				{ActionType: "offsite_conversion.fb_pixel_add_to_cart", Value: "31"},
			},
			synonyms: AddToCartActionTypes,
			want:     31,
		},
		{
			name: "unparseable value degrades to zero",
			actions: []RawAction{
				{ActionType: "purchase", Value: "n/a"},
			},
			synonyms: PurchaseActionTypes,
			want:     0,
		},
		{
			name: "decimal value truncates to count",
			actions: []RawAction{
				{ActionType: "initiate_checkout", Value: "17.0"},
			},
			synonyms: InitiateCheckoutActionTypes,
			want:     17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractActionCount(tt.actions, tt.synonyms)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractActionValue(t *testing.T) {
	values := []RawAction{
		{ActionType: "omni_add_to_cart", Value: "199.90"},
		{ActionType: "omni_purchase", Value: "456.78"},
	}

	assert.Equal(t, 456.78, ExtractActionValue(values, PurchaseActionTypes))
	assert.Equal(t, 199.90, ExtractActionValue(values, AddToCartActionTypes))
	assert.Equal(t, float64(0), ExtractActionValue(values, InitiateCheckoutActionTypes))
	assert.Equal(t, float64(0), ExtractActionValue(nil, PurchaseActionTypes))
}

func TestSynonymTables(t *testing.T) {
	// Wire strings the platform has used across API versions. These must not
	// drift: normalization silently returns zeros when a synonym is missing.
	assert.Equal(t, []string{
		"omni_purchase",
		"purchase",
		"offsite_conversion.fb_pixel_purchase",
	}, PurchaseActionTypes)

	assert.Equal(t, []string{
		"omni_add_to_cart",
		"add_to_cart",
		"offsite_conversion.fb_pixel_add_to_cart",
	}, AddToCartActionTypes)

	assert.Equal(t, []string{
		"omni_initiated_checkout",
		"initiate_checkout",
		"offsite_conversion.fb_pixel_initiate_checkout",
	}, InitiateCheckoutActionTypes)
}
