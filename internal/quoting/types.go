// Package quoting turns a product's bill of materials, a requested
// quantity and a set of pricing parameters into an itemized cost
// breakdown and a final price. Every function is pure with respect to
// its inputs: the same product, parameters and catalog always produce
// the same result, whether called once or from an override loop.
package quoting

import "github.com/fabworks/sheetquote/internal/catalog"

// Pricing modes for turning total cost into a selling price.
const (
	PricingGrossMargin = "gross_margin"
	PricingMarkup      = "markup"
)

// ProcessCostRow is one priced routing step of a fabricated part.
type ProcessCostRow struct {
	PartCode       string  `json:"part_code"`
	ProcessCode    string  `json:"process_code"`
	Name           string  `json:"name"`
	MinutesPerUnit float64 `json:"minutes_per_unit"`
	RatePerMin     float64 `json:"rate_per_min"`
	Qty            int     `json:"qty"`
	RuntimeCost    float64 `json:"runtime_cost"`
	SetupCost      float64 `json:"setup_cost"`
	TotalCost      float64 `json:"total_cost"`
}

// LayoutResult is the outcome of fitting blanks onto one sheet option.
// PiecesPerSheetCalc is the calculated value before any engineering
// override, kept for audit; PiecesPerSheet is the effective value.
type LayoutResult struct {
	CountA             int `json:"count_a"`
	CountB             int `json:"count_b"`
	RawCount           int `json:"raw_count"`
	PiecesPerSheetCalc int `json:"pieces_per_sheet_calc"`
	PiecesPerSheet     int `json:"pieces_per_sheet"`
	SheetsNeeded       int `json:"sheets_needed"`
}

// SheetRow is one costed sheet-stock candidate for a part.
type SheetRow struct {
	SheetSpec      string              `json:"sheet_spec"`
	SheetPrice     float64             `json:"sheet_price"`
	PiecesPerSheet int                 `json:"pieces_per_sheet"`
	SheetsNeeded   int                 `json:"sheets_needed"`
	MaterialCost   float64             `json:"material_cost"`
	Option         catalog.SheetOption `json:"-"`
	Layout         LayoutResult        `json:"layout"`
}

// SheetAlternative is a ranked sheet candidate tagged with the part it
// was evaluated for, as exported in the Sheet_Alternatives table.
type SheetAlternative struct {
	PartCode string `json:"part_code"`
	SheetRow
}

// CostedLine is one resolved BOM line.
type CostedLine struct {
	LineType       string  `json:"line_type"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	QtyTotal       float64 `json:"qty_total"`
	UOM            string  `json:"uom"`
	UnitCost       float64 `json:"unit_cost"`
	LineTotal      float64 `json:"line_total"`
	MaterialCost   float64 `json:"material_cost"`
	ProcessCost    float64 `json:"process_cost"`
	SheetSpec      string  `json:"sheet_spec,omitempty"`
	PiecesPerSheet int     `json:"pieces_per_sheet,omitempty"`
	SheetsNeeded   int     `json:"sheets_needed,omitempty"`
	Optional       bool    `json:"optional"`
}

// Override pins an engineering decision for one part: a specific sheet
// spec from the ranked candidates, an overridden pieces-per-sheet
// count, or both. Zero values leave the calculated choice in place.
type Override struct {
	SheetSpec      string `json:"sheet_spec"`
	PiecesPerSheet int    `json:"pieces_per_sheet"`
}

// Overrides maps part codes to engineering overrides.
type Overrides map[string]Override

// QuoteParameters are the caller-supplied inputs of one calculation.
type QuoteParameters struct {
	Quantity         int       `json:"quantity"`
	OverheadPct      float64   `json:"overhead_pct"`
	TaxPct           float64   `json:"tax_pct"`
	MarginPct        float64   `json:"margin_pct"`
	PricingMode      string    `json:"pricing_mode"`
	ScrapRate        float64   `json:"scrap_rate"`
	ShippingPerOrder float64   `json:"shipping_per_order"`
	Overrides        Overrides `json:"overrides,omitempty"`
}

// Buckets are the four cost totals plus order shipping that feed the
// rollup.
type Buckets struct {
	Material  float64 `json:"material_total"`
	Process   float64 `json:"process_total"`
	Purchased float64 `json:"purchased_total"`
	Packaging float64 `json:"packaging_total"`
	Shipping  float64 `json:"shipping_cost"`
}

// Summary carries every intermediate rollup value, never only the
// final number.
type Summary struct {
	Subtotal    float64               `json:"subtotal"`
	Overhead    float64               `json:"overhead"`
	PreTax      float64               `json:"pre_tax"`
	Tax         float64               `json:"tax"`
	TotalCost   float64               `json:"total_cost"`
	FinalPrice  float64               `json:"final_price_total"`
	UnitPrice   float64               `json:"unit_price"`
	Multiplier  float64               `json:"multiplier"`
	MatchedTier *catalog.QuantityTier `json:"matched_tier,omitempty"`
}

// Result is the full output of a BOM-driven quote calculation.
type Result struct {
	SKU          string             `json:"sku"`
	ProductName  string             `json:"product_name"`
	Quantity     int                `json:"quantity"`
	PricingMode  string             `json:"pricing_mode"`
	Lines        []CostedLine       `json:"lines"`
	ProcessRows  []ProcessCostRow   `json:"process_rows"`
	Alternatives []SheetAlternative `json:"sheet_alternatives"`
	Buckets      Buckets            `json:"buckets"`
	Summary      Summary            `json:"summary"`
	Warnings     []string           `json:"warnings,omitempty"`
}
