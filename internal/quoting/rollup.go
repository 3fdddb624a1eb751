package quoting

import "github.com/fabworks/sheetquote/internal/catalog"

// Rollup aggregates bucket totals into the final pricing figures.
// Overhead applies to the subtotal (shipping included), tax applies
// after overhead, and the margin branch turns total cost into a price:
// gross_margin divides by (1 - margin) while markup multiplies by
// (1 + margin). A gross margin at or above 100% is clamped to the
// bare cost instead of dividing by zero or a negative. The quantity
// tier multiplier applies last, to the final price only.
func Rollup(buckets Buckets, params QuoteParameters, tiers []catalog.QuantityTier) Summary {
	subtotal := buckets.Material + buckets.Process + buckets.Purchased + buckets.Packaging + buckets.Shipping
	overhead := subtotal * params.OverheadPct
	preTax := subtotal + overhead
	tax := preTax * params.TaxPct
	totalCost := preTax + tax

	finalPrice := priceFromCost(totalCost, params.MarginPct, params.PricingMode)

	multiplier, matched := ResolveTier(tiers, params.Quantity)
	finalPrice *= multiplier

	unitPrice := 0.0
	if params.Quantity > 0 {
		unitPrice = finalPrice / float64(params.Quantity)
	}

	return Summary{
		Subtotal:    subtotal,
		Overhead:    overhead,
		PreTax:      preTax,
		Tax:         tax,
		TotalCost:   totalCost,
		FinalPrice:  finalPrice,
		UnitPrice:   unitPrice,
		Multiplier:  multiplier,
		MatchedTier: matched,
	}
}

func priceFromCost(totalCost, marginPct float64, mode string) float64 {
	if mode == PricingGrossMargin {
		if marginPct >= 1 {
			return totalCost
		}
		return totalCost / (1 - marginPct)
	}
	return totalCost * (1 + marginPct)
}
