package catalog

import (
	"encoding/json"
	"strconv"
)

// Material pricing modes.
const (
	PricingByWeight = "by_weight"
	PricingBySheet  = "by_sheet"
)

// Packaging rule kinds.
const (
	PackPerUnit   = "per_unit"
	PackPerCarton = "per_carton"
)

// BOM line types.
const (
	LinePart      = "part"
	LinePurchased = "purchased"
	LinePackaging = "packaging"
)

// Material is a raw material that parts are made from. PricingMode
// decides which costing path applies: by_weight materials carry
// PricePerKg, by_sheet materials carry SheetOptions.
type Material struct {
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	PricingMode  string        `json:"pricing_mode"`
	PricePerKg   float64       `json:"price_per_kg"`
	SheetOptions []SheetOption `json:"sheet_options"`
}

// SheetOption is one purchasable sheet stock of a by_sheet material.
type SheetOption struct {
	SheetLengthMM float64 `json:"sheet_length_mm"`
	SheetWidthMM  float64 `json:"sheet_width_mm"`
	ThicknessMM   float64 `json:"thickness_mm"`
	SheetPrice    float64 `json:"sheet_price"`
}

// Spec returns the option's display spec, e.g. "2440x1220x1.5mm".
func (o SheetOption) Spec() string {
	return formatMM(o.SheetLengthMM) + "x" + formatMM(o.SheetWidthMM) + "x" + formatMM(o.ThicknessMM) + "mm"
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProcessDefinition is a manufacturing operation priced per minute
// with a one-time setup cost.
type ProcessDefinition struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	UnitRatePerMin float64 `json:"unit_rate_per_min"`
	SetupCost      float64 `json:"setup_cost"`
	Description    string  `json:"description"`
}

// ProcessStep is one routing step of a Part.
type ProcessStep struct {
	ProcessCode    string  `json:"process_code"`
	MinutesPerUnit float64 `json:"minutes_per_unit"`
	Enabled        bool    `json:"enabled"`
}

// UnmarshalJSON keeps enabled defaulting to true when the key is absent.
func (s *ProcessStep) UnmarshalJSON(data []byte) error {
	type alias ProcessStep
	tmp := alias{Enabled: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*s = ProcessStep(tmp)
	return nil
}

// Part is a fabricated item cut from sheet stock.
type Part struct {
	PartCode       string        `json:"part_code"`
	Name           string        `json:"name"`
	MaterialCode   string        `json:"material_code"`
	ThicknessMM    float64       `json:"thickness_mm"`
	BlankLengthMM  float64       `json:"blank_length_mm"`
	BlankWidthMM   float64       `json:"blank_width_mm"`
	AllowRotate    bool          `json:"allow_rotate"`
	EdgeMarginMM   float64       `json:"edge_margin_mm"`
	KerfMM         float64       `json:"kerf_mm"`
	NestEfficiency float64       `json:"nest_efficiency"`
	ProcessSteps   []ProcessStep `json:"process_steps"`
}

// UnmarshalJSON applies the layout defaults used when catalog records
// omit optional nesting fields.
func (p *Part) UnmarshalJSON(data []byte) error {
	type alias Part
	tmp := alias{
		AllowRotate:    true,
		EdgeMarginMM:   10,
		KerfMM:         2,
		NestEfficiency: 0.85,
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*p = Part(tmp)
	return nil
}

// PurchasedItem is a bought-in component. MOQQty of zero means no
// minimum order quantity.
type PurchasedItem struct {
	ItemCode string  `json:"item_code"`
	Name     string  `json:"name"`
	UnitCost float64 `json:"unit_cost"`
	UOM      string  `json:"uom"`
	WastePct float64 `json:"waste_pct"`
	MOQQty   float64 `json:"moq_qty"`
}

// PackagingRule prices packaging either per finished unit or per
// shipping carton.
type PackagingRule struct {
	ItemCode       string  `json:"item_code"`
	Kind           string  `json:"-"`
	UnitCost       float64 `json:"unit_cost"`
	QtyPerUnit     float64 `json:"qty_per_unit"`
	QtyPerCarton   float64 `json:"qty_per_carton"`
	UnitsPerCarton int     `json:"units_per_carton"`
}

// QuantityTier maps an order quantity range to a price multiplier.
// MaxQty nil means the range is open-ended.
type QuantityTier struct {
	MinQty     int     `json:"min_qty"`
	MaxQty     *int    `json:"max_qty"`
	Multiplier float64 `json:"multiplier"`
	Label      string  `json:"label"`
}

// BomLine is one component line of a Product's bill of materials.
// QtyPerUnit of zero means the line did not set a quantity.
type BomLine struct {
	Type       string  `json:"type"`
	Code       string  `json:"code"`
	QtyPerUnit float64 `json:"qty_per_unit"`
	Optional   bool    `json:"optional"`
}

// Product is a finished good assembled from BOM lines.
type Product struct {
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	UnitsPerCarton int       `json:"units_per_carton"`
	BomLines       []BomLine `json:"bom_lines"`
}

// TemplateProcess is a default routing entry of a ProductTemplate.
type TemplateProcess struct {
	ProcessCode string  `json:"process_code"`
	Minutes     float64 `json:"minutes"`
}

// ProductTemplate is the template-driven quoting variant: a single
// part priced by weight with a default process routing.
type ProductTemplate struct {
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	MaterialCode     string            `json:"material_code"`
	WeightKgPerUnit  float64           `json:"weight_kg_per_unit"`
	DefaultProcesses []TemplateProcess `json:"default_processes"`
}

// Settings holds catalog-wide quoting defaults.
type Settings struct {
	Currency            string  `json:"currency"`
	ManagementFeePct    float64 `json:"management_fee_pct"`
	TaxPct              float64 `json:"tax_pct"`
	DefaultProfitPct    float64 `json:"default_profit_pct"`
	WastagePct          float64 `json:"wastage_pct"`
	FreightCostPerOrder float64 `json:"freight_cost_per_order"`
}
