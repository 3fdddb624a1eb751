package quoting

import (
	"fmt"
	"math"

	"github.com/fabworks/sheetquote/internal/catalog"
)

// Calculate prices a product's full bill of materials and rolls the
// line costs up into a final quote. Unresolvable line references and
// unpriceable materials degrade to a zero contribution plus a warning;
// the quote always completes.
func Calculate(product catalog.Product, params QuoteParameters, cat *catalog.Catalog) Result {
	res := Result{
		SKU:         product.SKU,
		ProductName: product.Name,
		Quantity:    params.Quantity,
		PricingMode: params.PricingMode,
	}
	res.Buckets.Shipping = params.ShippingPerOrder

	for _, line := range product.BomLines {
		switch line.Type {
		case catalog.LinePart:
			evaluatePartLine(line, params, cat, &res)
		case catalog.LinePurchased:
			evaluatePurchasedLine(line, params.Quantity, cat, &res)
		case catalog.LinePackaging:
			evaluatePackagingLine(line, product, params.Quantity, cat, &res)
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("bom line %s: unknown line type %q, line skipped", line.Code, line.Type))
		}
	}

	res.Summary = Rollup(res.Buckets, params, cat.Tiers)
	return res
}

func evaluatePartLine(line catalog.BomLine, params QuoteParameters, cat *catalog.Catalog, res *Result) {
	part, ok := cat.Parts[line.Code]
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("part not found: %s", line.Code))
		return
	}

	partQty := int(math.Ceil(float64(params.Quantity) * lineQty(line.QtyPerUnit)))

	var (
		materialCost   float64
		sheetSpec      string
		piecesPerSheet int
		sheetsNeeded   int
	)

	material, haveMaterial := cat.Materials[part.MaterialCode]
	switch {
	case !haveMaterial:
		res.Warnings = append(res.Warnings, fmt.Sprintf("part %s: material not found: %s", part.PartCode, part.MaterialCode))
	case material.PricingMode == catalog.PricingBySheet:
		rows, recommended := EvaluateSheetOptions(material.SheetOptions, part, partQty)
		if recommended == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("part %s: material %s has no sheet options, unpriceable", part.PartCode, material.Code))
			break
		}

		for _, row := range rows {
			res.Alternatives = append(res.Alternatives, SheetAlternative{PartCode: part.PartCode, SheetRow: row})
		}

		chosen := recommended
		if ov, has := params.Overrides[part.PartCode]; has {
			if overridden := ApplySheetOverride(rows, part, partQty, ov); overridden != nil {
				chosen = overridden
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf("part %s: override sheet spec %q matches no candidate, recommendation kept", part.PartCode, ov.SheetSpec))
			}
		}

		materialCost = chosen.MaterialCost
		sheetSpec = chosen.SheetSpec
		piecesPerSheet = chosen.PiecesPerSheet
		sheetsNeeded = chosen.SheetsNeeded
	default:
		// Weight-priced material on a fabricated part is not costed by
		// the BOM flow; the template variant owns weight-based costing.
		res.Warnings = append(res.Warnings, fmt.Sprintf("part %s: material %s is priced by weight, material cost omitted", part.PartCode, part.MaterialCode))
	}

	processCost, processRows, processWarnings := ProcessCosts(part.ProcessSteps, cat.Processes, partQty, part.PartCode)
	res.ProcessRows = append(res.ProcessRows, processRows...)
	res.Warnings = append(res.Warnings, processWarnings...)

	lineTotal := materialCost + processCost
	unitCost := 0.0
	if partQty > 0 {
		unitCost = lineTotal / float64(partQty)
	}

	res.Buckets.Material += materialCost
	res.Buckets.Process += processCost

	res.Lines = append(res.Lines, CostedLine{
		LineType:       catalog.LinePart,
		Code:           part.PartCode,
		Name:           part.Name,
		QtyTotal:       float64(partQty),
		UOM:            "pc",
		UnitCost:       unitCost,
		LineTotal:      lineTotal,
		MaterialCost:   materialCost,
		ProcessCost:    processCost,
		SheetSpec:      sheetSpec,
		PiecesPerSheet: piecesPerSheet,
		SheetsNeeded:   sheetsNeeded,
		Optional:       line.Optional,
	})
}

func evaluatePurchasedLine(line catalog.BomLine, qty int, cat *catalog.Catalog, res *Result) {
	item, ok := cat.Purchased[line.Code]
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("purchased item not found: %s", line.Code))
		return
	}

	baseQty := float64(qty) * lineQty(line.QtyPerUnit)
	totalQty := baseQty
	if item.MOQQty > 0 && totalQty < item.MOQQty {
		totalQty = item.MOQQty
	}

	lineTotal := totalQty * item.UnitCost * (1 + item.WastePct)
	res.Buckets.Purchased += lineTotal

	res.Lines = append(res.Lines, CostedLine{
		LineType:  catalog.LinePurchased,
		Code:      item.ItemCode,
		Name:      item.Name,
		QtyTotal:  totalQty,
		UOM:       item.UOM,
		UnitCost:  item.UnitCost,
		LineTotal: lineTotal,
		Optional:  line.Optional,
	})
}

func evaluatePackagingLine(line catalog.BomLine, product catalog.Product, qty int, cat *catalog.Catalog, res *Result) {
	rule, ok := cat.Packaging[line.Code]
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("packaging rule not found: %s", line.Code))
		return
	}

	var totalQty float64
	if rule.Kind == catalog.PackPerUnit {
		// The BOM line quantity wins over the rule's own per-unit usage.
		perUnit := line.QtyPerUnit
		if perUnit <= 0 {
			perUnit = lineQty(rule.QtyPerUnit)
		}
		totalQty = float64(qty) * perUnit
	} else {
		unitsPerCarton := rule.UnitsPerCarton
		if unitsPerCarton <= 0 {
			unitsPerCarton = product.UnitsPerCarton
		}
		cartons := 0
		if unitsPerCarton > 0 {
			cartons = int(math.Ceil(float64(qty) / float64(unitsPerCarton)))
		}
		totalQty = float64(cartons) * lineQty(rule.QtyPerCarton)
	}

	lineTotal := totalQty * rule.UnitCost
	res.Buckets.Packaging += lineTotal

	res.Lines = append(res.Lines, CostedLine{
		LineType:  catalog.LinePackaging,
		Code:      rule.ItemCode,
		Name:      rule.ItemCode,
		QtyTotal:  totalQty,
		UOM:       "pack",
		UnitCost:  rule.UnitCost,
		LineTotal: lineTotal,
		Optional:  line.Optional,
	})
}

// lineQty defaults an unset quantity-per-unit to one.
func lineQty(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
