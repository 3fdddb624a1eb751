package quoting

import (
	"strings"
	"testing"

	"github.com/fabworks/sheetquote/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Bundle{
		Materials: []catalog.Material{
			{
				Code:        "SS304",
				Name:        "Stainless 304",
				PricingMode: catalog.PricingBySheet,
				SheetOptions: []catalog.SheetOption{
					{SheetLengthMM: 2440, SheetWidthMM: 1220, ThicknessMM: 1.5, SheetPrice: 320},
				},
			},
			{Code: "AL6061", Name: "Aluminium 6061", PricingMode: catalog.PricingByWeight, PricePerKg: 4.2},
			{Code: "EMPTY", Name: "No stock", PricingMode: catalog.PricingBySheet},
		},
		Processes: []catalog.ProcessDefinition{
			{Code: "LASER", Name: "Laser cutting", UnitRatePerMin: 2.5, SetupCost: 80},
			{Code: "BEND", Name: "Press brake", UnitRatePerMin: 1.2, SetupCost: 40},
		},
		Parts: []catalog.Part{
			{
				PartCode: "PT-1", Name: "Bracket", MaterialCode: "SS304",
				ThicknessMM: 1.5, BlankLengthMM: 300, BlankWidthMM: 200,
				AllowRotate: true, EdgeMarginMM: 10, KerfMM: 2, NestEfficiency: 0.85,
				ProcessSteps: []catalog.ProcessStep{
					{ProcessCode: "LASER", MinutesPerUnit: 2, Enabled: true},
					{ProcessCode: "BEND", MinutesPerUnit: 0.5, Enabled: true},
				},
			},
			{
				PartCode: "PT-W", Name: "Weight part", MaterialCode: "AL6061",
				ThicknessMM: 2, BlankLengthMM: 100, BlankWidthMM: 100,
				AllowRotate: true, EdgeMarginMM: 10, KerfMM: 2, NestEfficiency: 0.85,
				ProcessSteps: []catalog.ProcessStep{
					{ProcessCode: "LASER", MinutesPerUnit: 1, Enabled: true},
				},
			},
		},
		PurchasedItems: []catalog.PurchasedItem{
			{ItemCode: "HINGE", Name: "Hinge", UnitCost: 1.5, UOM: "pc", WastePct: 0.02, MOQQty: 500},
		},
		PackagingRules: catalog.PackagingRules{
			PerUnit: []catalog.PackagingRule{
				{ItemCode: "BAG", UnitCost: 0.1, QtyPerUnit: 1},
			},
			PerCarton: []catalog.PackagingRule{
				{ItemCode: "CARTON", UnitCost: 2.5, QtyPerCarton: 1},
			},
		},
		QuantityTiers: []catalog.QuantityTier{
			{MinQty: 1, MaxQty: intPtr(49), Multiplier: 1.0, Label: "sample"},
			{MinQty: 50, Multiplier: 0.9, Label: "volume"},
		},
		Products: []catalog.Product{
			{
				SKU: "FG-100", Name: "Enclosure", UnitsPerCarton: 20,
				BomLines: []catalog.BomLine{
					{Type: "part", Code: "PT-1", QtyPerUnit: 1},
					{Type: "purchased", Code: "HINGE", QtyPerUnit: 2},
					{Type: "packaging", Code: "BAG", QtyPerUnit: 1},
					{Type: "packaging", Code: "CARTON"},
				},
			},
		},
	})
}

func testParams(qty int) QuoteParameters {
	return QuoteParameters{
		Quantity:         qty,
		OverheadPct:      0.05,
		TaxPct:           0.13,
		MarginPct:        0.18,
		PricingMode:      PricingGrossMargin,
		ShippingPerOrder: 120,
	}
}

func TestCalculatePricesAllLineTypes(t *testing.T) {
	cat := testCatalog()
	product := cat.Products["FG-100"]

	res := Calculate(product, testParams(100), cat)

	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Lines) != 4 {
		t.Fatalf("expected 4 costed lines, got %d", len(res.Lines))
	}

	// Part: 3 sheets of 320 (34 pieces/sheet for 100 blanks) + process
	// cost 2*2.5*100+80 + 0.5*1.2*100+40 = 580 + 100.
	part := res.Lines[0]
	nearlyEqual(t, "part materialCost", part.MaterialCost, 960)
	nearlyEqual(t, "part processCost", part.ProcessCost, 680)
	nearlyEqual(t, "part lineTotal", part.LineTotal, 1640)
	nearlyEqual(t, "part unitCost", part.UnitCost, 16.40)
	if part.SheetSpec != "2440x1220x1.5mm" {
		t.Fatalf("sheetSpec = %q", part.SheetSpec)
	}
	if part.SheetsNeeded != 3 || part.PiecesPerSheet != 34 {
		t.Fatalf("unexpected layout on part line: %+v", part)
	}

	// Purchased: base 200 below the 500 MOQ, waste 2%.
	purchased := res.Lines[1]
	nearlyEqual(t, "purchased qty", purchased.QtyTotal, 500)
	nearlyEqual(t, "purchased lineTotal", purchased.LineTotal, 500*1.5*1.02)

	// Packaging per unit, then per carton with the product's 20/carton.
	bag := res.Lines[2]
	nearlyEqual(t, "bag lineTotal", bag.LineTotal, 100*0.1)
	carton := res.Lines[3]
	nearlyEqual(t, "carton qty", carton.QtyTotal, 5)
	nearlyEqual(t, "carton lineTotal", carton.LineTotal, 5*2.5)

	nearlyEqual(t, "material bucket", res.Buckets.Material, 960)
	nearlyEqual(t, "process bucket", res.Buckets.Process, 680)
	nearlyEqual(t, "purchased bucket", res.Buckets.Purchased, 765)
	nearlyEqual(t, "packaging bucket", res.Buckets.Packaging, 22.5)
	nearlyEqual(t, "shipping bucket", res.Buckets.Shipping, 120)

	// qty 100 hits the 0.9 volume tier.
	nearlyEqual(t, "multiplier", res.Summary.Multiplier, 0.9)
	subtotal := 960 + 680 + 765 + 22.5 + 120.0
	totalCost := subtotal * 1.05 * 1.13
	nearlyEqual(t, "totalCost", res.Summary.TotalCost, totalCost)
	nearlyEqual(t, "finalPrice", res.Summary.FinalPrice, totalCost/0.82*0.9)
	nearlyEqual(t, "unitPrice", res.Summary.UnitPrice, totalCost/0.82*0.9/100)

	if len(res.ProcessRows) != 2 {
		t.Fatalf("expected 2 process rows, got %d", len(res.ProcessRows))
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].PartCode != "PT-1" {
		t.Fatalf("expected the ranked sheet alternative for PT-1, got %+v", res.Alternatives)
	}
}

func TestCalculateUnknownPartFailsSoft(t *testing.T) {
	cat := testCatalog()
	product := catalog.Product{
		SKU: "FG-BAD", Name: "Broken", UnitsPerCarton: 10,
		BomLines: []catalog.BomLine{
			{Type: "part", Code: "NO-SUCH-PART", QtyPerUnit: 1},
			{Type: "purchased", Code: "HINGE", QtyPerUnit: 1},
		},
	}

	res := Calculate(product, testParams(100), cat)

	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "NO-SUCH-PART") {
		t.Fatalf("expected exactly one warning for the unknown part, got %v", res.Warnings)
	}
	if len(res.Lines) != 1 || res.Lines[0].Code != "HINGE" {
		t.Fatalf("remaining lines should still price, got %+v", res.Lines)
	}
	nearlyEqual(t, "material bucket", res.Buckets.Material, 0)
	nearlyEqual(t, "process bucket", res.Buckets.Process, 0)
}

func TestCalculateByWeightPartOmitsMaterialCost(t *testing.T) {
	cat := testCatalog()
	product := catalog.Product{
		SKU: "FG-W", Name: "Weight product",
		BomLines: []catalog.BomLine{{Type: "part", Code: "PT-W", QtyPerUnit: 1}},
	}

	res := Calculate(product, testParams(10), cat)

	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "priced by weight") {
		t.Fatalf("expected the by-weight warning, got %v", res.Warnings)
	}
	nearlyEqual(t, "material bucket", res.Buckets.Material, 0)
	// Process costing still runs: 1*2.5*10 + 80.
	nearlyEqual(t, "process bucket", res.Buckets.Process, 105)
}

func TestCalculateUnpriceableSheetMaterial(t *testing.T) {
	cat := testCatalog()
	part := cat.Parts["PT-1"]
	part.PartCode = "PT-E"
	part.MaterialCode = "EMPTY"
	cat.Parts["PT-E"] = part

	product := catalog.Product{
		SKU: "FG-E", Name: "Empty material",
		BomLines: []catalog.BomLine{{Type: "part", Code: "PT-E", QtyPerUnit: 1}},
	}

	res := Calculate(product, testParams(10), cat)

	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "no sheet options") {
		t.Fatalf("expected the unpriceable warning, got %v", res.Warnings)
	}
	nearlyEqual(t, "material bucket", res.Buckets.Material, 0)
	if res.Buckets.Process == 0 {
		t.Fatalf("process costing should still contribute")
	}
	if len(res.Lines) != 1 {
		t.Fatalf("unpriceable material keeps the line with zero material cost, got %+v", res.Lines)
	}
}

func TestCalculateSheetOverrideChangesRecommendation(t *testing.T) {
	cat := testCatalog()
	product := cat.Products["FG-100"]

	params := testParams(100)
	params.Overrides = Overrides{"PT-1": {PiecesPerSheet: 10}}

	res := Calculate(product, params, cat)

	part := res.Lines[0]
	if part.PiecesPerSheet != 10 {
		t.Fatalf("piecesPerSheet = %d, want override 10", part.PiecesPerSheet)
	}
	if part.SheetsNeeded != 10 { // ceil(100/10)
		t.Fatalf("sheetsNeeded = %d, want 10", part.SheetsNeeded)
	}
	nearlyEqual(t, "material bucket", res.Buckets.Material, 10*320)
}

func TestCalculateIsReproducible(t *testing.T) {
	cat := testCatalog()
	product := cat.Products["FG-100"]

	first := Calculate(product, testParams(100), cat)
	second := Calculate(product, testParams(100), cat)

	nearlyEqual(t, "finalPrice", second.Summary.FinalPrice, first.Summary.FinalPrice)
	if len(first.Lines) != len(second.Lines) || len(first.ProcessRows) != len(second.ProcessRows) {
		t.Fatalf("repeated calculations diverged")
	}
}
