package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/sheetquote/internal/cart"
	"github.com/fabworks/sheetquote/internal/quoting"
)

func sampleResult() *quoting.Result {
	return &quoting.Result{
		SKU:         "FG-100",
		ProductName: "Control Cabinet",
		Quantity:    100,
		PricingMode: quoting.PricingGrossMargin,
		Lines: []quoting.CostedLine{
			{
				LineType: "part", Code: "PT-1", Name: "Side Panel",
				QtyTotal: 200, UOM: "pcs", LineTotal: 1640,
				MaterialCost: 960, ProcessCost: 680,
				SheetSpec: "2440x1220x1.5mm", PiecesPerSheet: 34, SheetsNeeded: 6,
			},
			{
				LineType: "purchased", Code: "HINGE", Name: "Hinge",
				QtyTotal: 500, UOM: "pcs", UnitCost: 1.5, LineTotal: 765,
			},
		},
		ProcessRows: []quoting.ProcessCostRow{
			{
				PartCode: "PT-1", ProcessCode: "LASER", Name: "Laser Cutting",
				MinutesPerUnit: 2, RatePerMin: 1.2, Qty: 200,
				RuntimeCost: 480, SetupCost: 80, TotalCost: 560,
			},
		},
		Alternatives: []quoting.SheetAlternative{
			{
				PartCode: "PT-1",
				SheetRow: quoting.SheetRow{
					SheetSpec: "2440x1220x1.5mm", SheetPrice: 320,
					PiecesPerSheet: 34, SheetsNeeded: 6, MaterialCost: 1920,
				},
			},
		},
		Buckets: quoting.Buckets{Material: 960, Process: 680, Purchased: 765, Packaging: 22.5, Shipping: 120},
		Summary: quoting.Summary{
			Subtotal: 2547.5, TotalCost: 3022.1, FinalPrice: 3685.5,
			UnitPrice: 36.855, Multiplier: 0.9,
		},
	}
}

func TestQuoteWorkbookSheets(t *testing.T) {
	hdr := QuoteHeader{
		QuoteNo: "Q-2026-001", Customer: "Acme", Currency: "USD",
		SKU: "FG-100", ProductName: "Control Cabinet", Quantity: 100,
	}

	f, err := QuoteWorkbook(hdr, sampleResult())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Quote_Header", "Cost_Summary", "BOM_Breakdown",
		"Process_Breakdown", "Sheet_Alternatives",
	}, f.GetSheetList())

	quoteNo, err := f.GetCellValue("Quote_Header", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-001", quoteNo)

	sku, err := f.GetCellValue("Quote_Header", "B4")
	require.NoError(t, err)
	assert.Equal(t, "FG-100", sku)
}

func TestQuoteWorkbookTables(t *testing.T) {
	f, err := QuoteWorkbook(QuoteHeader{QuoteNo: "Q-1"}, sampleResult())
	require.NoError(t, err)
	defer f.Close()

	code, err := f.GetCellValue("BOM_Breakdown", "B2")
	require.NoError(t, err)
	assert.Equal(t, "PT-1", code)

	spec, err := f.GetCellValue("BOM_Breakdown", "J2")
	require.NoError(t, err)
	assert.Equal(t, "2440x1220x1.5mm", spec)

	proc, err := f.GetCellValue("Process_Breakdown", "B2")
	require.NoError(t, err)
	assert.Equal(t, "LASER", proc)

	altPart, err := f.GetCellValue("Sheet_Alternatives", "A2")
	require.NoError(t, err)
	assert.Equal(t, "PT-1", altPart)

	total, err := f.GetCellValue("Cost_Summary", "B10")
	require.NoError(t, err)
	assert.Equal(t, "3022.1", total)
}

func TestCartWorkbook(t *testing.T) {
	lines := []cart.Line{
		{SKU: "FG-100", ProductName: "Control Cabinet", Qty: 100, UnitPrice: 19.82, LineTotal: 1982, CostTotal: 1625.2},
		{SKU: "FG-200", ProductName: "Bracket Kit", Qty: 50, UnitPrice: 19.01, LineTotal: 950.5, CostTotal: 800},
	}

	totals := cart.Summarize(lines, 120)
	f, err := CartWorkbook(QuoteHeader{QuoteNo: "Q-2", Currency: "USD"}, lines, totals)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Quote_Header", "Quote_Lines"}, f.GetSheetList())

	sku, err := f.GetCellValue("Quote_Lines", "A2")
	require.NoError(t, err)
	assert.Equal(t, "FG-100", sku)

	// totals row sits one blank row below the last line
	label, err := f.GetCellValue("Quote_Lines", "A5")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", label)

	subtotal, err := f.GetCellValue("Quote_Lines", "E5")
	require.NoError(t, err)
	assert.Equal(t, "2932.5", subtotal)

	// header carries lines subtotal, order shipping and final total
	shippingLabel, err := f.GetCellValue("Quote_Header", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Order Shipping", shippingLabel)

	shipping, err := f.GetCellValue("Quote_Header", "B8")
	require.NoError(t, err)
	assert.Equal(t, "120", shipping)

	final, err := f.GetCellValue("Quote_Header", "B9")
	require.NoError(t, err)
	assert.Equal(t, "3052.5", final)
}
