package quoting

import (
	"sort"

	"github.com/fabworks/sheetquote/internal/catalog"
)

// ResolveTier maps a quantity to its price multiplier. Tiers are
// scanned in ascending min_qty order and the last containing tier
// wins, so overlapping ranges resolve in favor of the higher break.
// A quantity outside every range falls back to the lowest tier; the
// resolver always produces a multiplier so a quote is never blocked.
func ResolveTier(tiers []catalog.QuantityTier, qty int) (float64, *catalog.QuantityTier) {
	if len(tiers) == 0 {
		return 1.0, nil
	}

	sorted := make([]catalog.QuantityTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQty < sorted[j].MinQty
	})

	var matched *catalog.QuantityTier
	for i := range sorted {
		t := &sorted[i]
		if qty >= t.MinQty && (t.MaxQty == nil || qty <= *t.MaxQty) {
			matched = t
		}
	}
	if matched == nil {
		matched = &sorted[0]
	}

	tier := *matched
	return tier.Multiplier, &tier
}
