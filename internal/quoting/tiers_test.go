package quoting

import (
	"testing"

	"github.com/fabworks/sheetquote/internal/catalog"
)

func intPtr(v int) *int { return &v }

func TestResolveTierEmptyListFallsBackToIdentity(t *testing.T) {
	mult, matched := ResolveTier(nil, 25)
	if mult != 1.0 {
		t.Fatalf("multiplier = %v, want 1.0", mult)
	}
	if matched != nil {
		t.Fatalf("expected no matched tier, got %+v", matched)
	}
}

func TestResolveTierBoundariesAndFallback(t *testing.T) {
	tiers := []catalog.QuantityTier{
		{MinQty: 1, MaxQty: intPtr(49), Multiplier: 1.0, Label: "sample"},
		{MinQty: 50, Multiplier: 0.9, Label: "volume"},
	}

	cases := []struct {
		qty   int
		mult  float64
		label string
	}{
		{qty: 50, mult: 0.9, label: "volume"},
		{qty: 49, mult: 1.0, label: "sample"},
		{qty: 0, mult: 1.0, label: "sample"}, // below every range: lowest tier wins
		{qty: 5000, mult: 0.9, label: "volume"},
	}

	for _, tc := range cases {
		mult, matched := ResolveTier(tiers, tc.qty)
		if mult != tc.mult {
			t.Fatalf("qty=%d: multiplier = %v, want %v", tc.qty, mult, tc.mult)
		}
		if matched == nil || matched.Label != tc.label {
			t.Fatalf("qty=%d: matched tier = %+v, want label %q", tc.qty, matched, tc.label)
		}
	}
}

func TestResolveTierOverlapLaterTierWins(t *testing.T) {
	tiers := []catalog.QuantityTier{
		{MinQty: 1, MaxQty: intPtr(100), Multiplier: 1.0, Label: "base"},
		{MinQty: 50, MaxQty: intPtr(100), Multiplier: 0.85, Label: "break"},
	}

	mult, matched := ResolveTier(tiers, 75)
	if mult != 0.85 || matched == nil || matched.Label != "break" {
		t.Fatalf("overlapping ranges should resolve to the higher break, got mult=%v matched=%+v", mult, matched)
	}
}

func TestResolveTierDoesNotMutateInput(t *testing.T) {
	tiers := []catalog.QuantityTier{
		{MinQty: 100, Multiplier: 0.8},
		{MinQty: 1, MaxQty: intPtr(99), Multiplier: 1.0},
	}

	ResolveTier(tiers, 10)

	if tiers[0].MinQty != 100 || tiers[1].MinQty != 1 {
		t.Fatalf("input tier order changed: %+v", tiers)
	}
}
