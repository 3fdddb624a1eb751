// Package export renders quote results and cart contents as xlsx
// workbooks. Sheet and column order are fixed so exported files can be
// diffed between revisions of a quote.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fabworks/sheetquote/internal/cart"
	"github.com/fabworks/sheetquote/internal/quoting"
)

// QuoteHeader identifies the quote a workbook belongs to.
type QuoteHeader struct {
	QuoteNo     string
	Customer    string
	Currency    string
	SKU         string
	ProductName string
	Quantity    int
}

// QuoteWorkbook builds the single-product quote workbook with the
// Quote_Header, Cost_Summary, BOM_Breakdown, Process_Breakdown and
// Sheet_Alternatives tables.
func QuoteWorkbook(hdr QuoteHeader, res *quoting.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Quote_Header"); err != nil {
		return nil, fmt.Errorf("rename header sheet: %w", err)
	}

	writeHeaderSheet(f, hdr)

	if err := writeCostSummary(f, res); err != nil {
		return nil, err
	}
	if err := writeBomBreakdown(f, res); err != nil {
		return nil, err
	}
	if err := writeProcessBreakdown(f, res); err != nil {
		return nil, err
	}
	if err := writeSheetAlternatives(f, res); err != nil {
		return nil, err
	}
	return f, nil
}

// CartWorkbook builds the multi-product order workbook with the
// Quote_Header and Quote_Lines tables. The header carries the cart
// totals: lines subtotal, the once-per-order shipping charge, and the
// final total.
func CartWorkbook(hdr QuoteHeader, lines []cart.Line, totals cart.Totals) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Quote_Header"); err != nil {
		return nil, fmt.Errorf("rename header sheet: %w", err)
	}

	writeHeaderSheet(f, hdr)
	setRow(f, "Quote_Header", 7, []interface{}{"Lines Subtotal", totals.LinesSubtotal})
	setRow(f, "Quote_Header", 8, []interface{}{"Order Shipping", totals.OrderShipping})
	setRow(f, "Quote_Header", 9, []interface{}{"Final Total", totals.Total})

	if _, err := f.NewSheet("Quote_Lines"); err != nil {
		return nil, fmt.Errorf("create lines sheet: %w", err)
	}
	setRow(f, "Quote_Lines", 1, []interface{}{
		"SKU", "Product", "Qty", "Unit Price", "Line Total", "Cost Total",
		"Material", "Process", "Packaging", "Shipping", "Processes",
	})
	row := 2
	for _, l := range lines {
		setRow(f, "Quote_Lines", row, []interface{}{
			l.SKU, l.ProductName, l.Qty, l.UnitPrice, l.LineTotal, l.CostTotal,
			l.MaterialCost, l.ProcessCost, l.PackagingCost, l.ShippingAlloc, l.ProcessSummary,
		})
		row++
	}

	setRow(f, "Quote_Lines", row+1, []interface{}{
		"TOTAL", "", totals.Qty, "", totals.LinesSubtotal, totals.CostTotal,
	})
	return f, nil
}

func writeHeaderSheet(f *excelize.File, hdr QuoteHeader) {
	rows := [][2]interface{}{
		{"Quote No", hdr.QuoteNo},
		{"Customer", hdr.Customer},
		{"Currency", hdr.Currency},
		{"SKU", hdr.SKU},
		{"Product", hdr.ProductName},
		{"Quantity", hdr.Quantity},
	}
	for i, r := range rows {
		setRow(f, "Quote_Header", i+1, []interface{}{r[0], r[1]})
	}
}

func writeCostSummary(f *excelize.File, res *quoting.Result) error {
	if _, err := f.NewSheet("Cost_Summary"); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	s := res.Summary
	rows := [][2]interface{}{
		{"Material Total", res.Buckets.Material},
		{"Process Total", res.Buckets.Process},
		{"Purchased Total", res.Buckets.Purchased},
		{"Packaging Total", res.Buckets.Packaging},
		{"Shipping", res.Buckets.Shipping},
		{"Subtotal", s.Subtotal},
		{"Overhead", s.Overhead},
		{"Pre-Tax", s.PreTax},
		{"Tax", s.Tax},
		{"Total Cost", s.TotalCost},
		{"Pricing Mode", res.PricingMode},
		{"Tier Multiplier", s.Multiplier},
		{"Final Price", s.FinalPrice},
		{"Unit Price", s.UnitPrice},
	}
	for i, r := range rows {
		setRow(f, "Cost_Summary", i+1, []interface{}{r[0], r[1]})
	}
	return nil
}

func writeBomBreakdown(f *excelize.File, res *quoting.Result) error {
	if _, err := f.NewSheet("BOM_Breakdown"); err != nil {
		return fmt.Errorf("create bom sheet: %w", err)
	}
	setRow(f, "BOM_Breakdown", 1, []interface{}{
		"Type", "Code", "Name", "Qty", "UOM", "Unit Cost", "Line Total",
		"Material", "Process", "Sheet Spec", "Pieces/Sheet", "Sheets",
	})
	for i, l := range res.Lines {
		setRow(f, "BOM_Breakdown", i+2, []interface{}{
			l.LineType, l.Code, l.Name, l.QtyTotal, l.UOM, l.UnitCost, l.LineTotal,
			l.MaterialCost, l.ProcessCost, l.SheetSpec, l.PiecesPerSheet, l.SheetsNeeded,
		})
	}
	return nil
}

func writeProcessBreakdown(f *excelize.File, res *quoting.Result) error {
	if _, err := f.NewSheet("Process_Breakdown"); err != nil {
		return fmt.Errorf("create process sheet: %w", err)
	}
	setRow(f, "Process_Breakdown", 1, []interface{}{
		"Part", "Process", "Name", "Min/Unit", "Rate/Min", "Qty",
		"Runtime Cost", "Setup Cost", "Total",
	})
	for i, r := range res.ProcessRows {
		setRow(f, "Process_Breakdown", i+2, []interface{}{
			r.PartCode, r.ProcessCode, r.Name, r.MinutesPerUnit, r.RatePerMin, r.Qty,
			r.RuntimeCost, r.SetupCost, r.TotalCost,
		})
	}
	return nil
}

func writeSheetAlternatives(f *excelize.File, res *quoting.Result) error {
	if _, err := f.NewSheet("Sheet_Alternatives"); err != nil {
		return fmt.Errorf("create alternatives sheet: %w", err)
	}
	setRow(f, "Sheet_Alternatives", 1, []interface{}{
		"Part", "Sheet Spec", "Sheet Price", "Pieces/Sheet", "Sheets Needed", "Material Cost",
	})
	for i, a := range res.Alternatives {
		setRow(f, "Sheet_Alternatives", i+2, []interface{}{
			a.PartCode, a.SheetSpec, a.SheetPrice, a.PiecesPerSheet, a.SheetsNeeded, a.MaterialCost,
		})
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	// SetSheetRow only fails on malformed cell references, which the
	// fixed "A<row>" anchor rules out.
	_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values)
}
