package quoting

import (
	"fmt"

	"github.com/fabworks/sheetquote/internal/catalog"
)

// Process costing bases for the template-driven variant.
const (
	BasisPerHour  = "per_hour"
	BasisPerPiece = "per_piece"
	BasisFixed    = "fixed"
)

// TemplateProcessInput adjusts one routing step of a template quote:
// disable it, change its costing basis, or override its minutes.
type TemplateProcessInput struct {
	Enabled bool    `json:"enabled"`
	Basis   string  `json:"basis"`
	Minutes float64 `json:"minutes"`
}

// TemplateParameters are the caller-supplied inputs of a
// template-driven quote.
type TemplateParameters struct {
	Quantity          int                             `json:"quantity"`
	ScrapRate         float64                         `json:"scrap_rate"`
	OverheadPct       float64                         `json:"overhead_pct"`
	TaxPct            float64                         `json:"tax_pct"`
	MarginPct         float64                         `json:"margin_pct"`
	PricingMode       string                          `json:"pricing_mode"`
	PackagingPerPiece float64                         `json:"packaging_per_piece"`
	ShippingPerOrder  float64                         `json:"shipping_per_order"`
	ProcessInputs     map[string]TemplateProcessInput `json:"process_inputs,omitempty"`
}

// TemplateProcessRow is one priced routing step of a template quote.
type TemplateProcessRow struct {
	ProcessCode    string  `json:"process_code"`
	Name           string  `json:"name"`
	Basis          string  `json:"basis"`
	MinutesPerUnit float64 `json:"minutes_per_unit"`
	RatePerMin     float64 `json:"rate_per_min"`
	Qty            int     `json:"qty"`
	RuntimeCost    float64 `json:"runtime_cost"`
	SetupCost      float64 `json:"setup_cost"`
	TotalCost      float64 `json:"total_cost"`
}

// TemplateResult is the full output of a template-driven calculation.
type TemplateResult struct {
	SKU          string               `json:"sku"`
	ProductName  string               `json:"product_name"`
	Quantity     int                  `json:"quantity"`
	PricingMode  string               `json:"pricing_mode"`
	MaterialCost float64              `json:"material_cost"`
	ProcessCost  float64              `json:"process_cost"`
	Packaging    float64              `json:"packaging_cost"`
	Shipping     float64              `json:"shipping_cost"`
	ProcessRows  []TemplateProcessRow `json:"process_rows"`
	Summary      Summary              `json:"summary"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// CalculateTemplate prices a product template: weight-based material
// cost with a scrap allowance, the template's default routing adjusted
// by per-process inputs, flat per-piece packaging and order shipping.
// It shares tier resolution and the rollup math with the BOM engine.
func CalculateTemplate(tpl catalog.ProductTemplate, params TemplateParameters, cat *catalog.Catalog) TemplateResult {
	res := TemplateResult{
		SKU:         tpl.SKU,
		ProductName: tpl.Name,
		Quantity:    params.Quantity,
		PricingMode: params.PricingMode,
		Packaging:   float64(params.Quantity) * params.PackagingPerPiece,
		Shipping:    params.ShippingPerOrder,
	}

	material, ok := cat.Materials[tpl.MaterialCode]
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("template %s: material not found: %s", tpl.SKU, tpl.MaterialCode))
	}
	res.MaterialCost = float64(params.Quantity) * tpl.WeightKgPerUnit * material.PricePerKg * (1 + params.ScrapRate)

	for _, proc := range tpl.DefaultProcesses {
		def, ok := cat.Processes[proc.ProcessCode]
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("template %s: unknown process %q, step skipped", tpl.SKU, proc.ProcessCode))
			continue
		}

		basis := BasisPerHour
		minutes := proc.Minutes
		if in, has := params.ProcessInputs[proc.ProcessCode]; has {
			if !in.Enabled {
				continue
			}
			if in.Basis != "" {
				basis = in.Basis
			}
			if in.Minutes > 0 {
				minutes = in.Minutes
			}
		}

		runtimeCost := 0.0
		rowQty := 0
		if basis != BasisFixed {
			runtimeCost = minutes * def.UnitRatePerMin * float64(params.Quantity)
			rowQty = params.Quantity
		}
		stepTotal := runtimeCost + def.SetupCost
		res.ProcessCost += stepTotal

		res.ProcessRows = append(res.ProcessRows, TemplateProcessRow{
			ProcessCode:    def.Code,
			Name:           def.Name,
			Basis:          basis,
			MinutesPerUnit: minutes,
			RatePerMin:     def.UnitRatePerMin,
			Qty:            rowQty,
			RuntimeCost:    runtimeCost,
			SetupCost:      def.SetupCost,
			TotalCost:      stepTotal,
		})
	}

	buckets := Buckets{
		Material:  res.MaterialCost,
		Process:   res.ProcessCost,
		Packaging: res.Packaging,
		Shipping:  res.Shipping,
	}
	rollupParams := QuoteParameters{
		Quantity:    params.Quantity,
		OverheadPct: params.OverheadPct,
		TaxPct:      params.TaxPct,
		MarginPct:   params.MarginPct,
		PricingMode: params.PricingMode,
	}
	res.Summary = Rollup(buckets, rollupParams, cat.Tiers)
	return res
}
