package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// PackagingRules groups packaging rules by kind, matching the catalog
// file layout.
type PackagingRules struct {
	PerUnit   []PackagingRule `json:"per_unit"`
	PerCarton []PackagingRule `json:"per_carton"`
}

// Bundle is the raw catalog file contents.
type Bundle struct {
	Settings         Settings            `json:"settings"`
	Materials        []Material          `json:"materials"`
	Processes        []ProcessDefinition `json:"processes"`
	QuantityTiers    []QuantityTier      `json:"quantity_tiers"`
	Parts            []Part              `json:"parts"`
	PurchasedItems   []PurchasedItem     `json:"purchased_items"`
	PackagingRules   PackagingRules      `json:"packaging_rules"`
	Products         []Product           `json:"products"`
	ProductTemplates []ProductTemplate   `json:"product_templates"`
}

// Catalog is the keyed, read-only view the quoting engine works
// against. All lookups are by code/sku; the engine never mutates it.
type Catalog struct {
	Settings  Settings
	Materials map[string]Material
	Processes map[string]ProcessDefinition
	Parts     map[string]Part
	Purchased map[string]PurchasedItem
	Packaging map[string]PackagingRule
	Tiers     []QuantityTier
	Products  map[string]Product
	Templates map[string]ProductTemplate
}

// requiredSections are the top-level keys a catalog file must carry.
// A missing section here is the only fatal loading condition.
var requiredSections = []string{"materials", "processes", "products"}

// Load reads and indexes a catalog bundle from a JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	for _, name := range requiredSections {
		if _, ok := sections[name]; !ok {
			return nil, fmt.Errorf("catalog file missing required section %q", name)
		}
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode catalog bundle: %w", err)
	}

	return New(bundle), nil
}

// New indexes a bundle into keyed maps. Later duplicates win, matching
// plain map construction over the source lists.
func New(bundle Bundle) *Catalog {
	cat := &Catalog{
		Settings:  bundle.Settings,
		Materials: make(map[string]Material, len(bundle.Materials)),
		Processes: make(map[string]ProcessDefinition, len(bundle.Processes)),
		Parts:     make(map[string]Part, len(bundle.Parts)),
		Purchased: make(map[string]PurchasedItem, len(bundle.PurchasedItems)),
		Packaging: make(map[string]PackagingRule),
		Tiers:     bundle.QuantityTiers,
		Products:  make(map[string]Product, len(bundle.Products)),
		Templates: make(map[string]ProductTemplate, len(bundle.ProductTemplates)),
	}

	for _, m := range bundle.Materials {
		cat.Materials[m.Code] = m
	}
	for _, p := range bundle.Processes {
		cat.Processes[p.Code] = p
	}
	for _, p := range bundle.Parts {
		cat.Parts[p.PartCode] = p
	}
	for _, i := range bundle.PurchasedItems {
		cat.Purchased[i.ItemCode] = i
	}
	for _, r := range bundle.PackagingRules.PerUnit {
		r.Kind = PackPerUnit
		cat.Packaging[r.ItemCode] = r
	}
	for _, r := range bundle.PackagingRules.PerCarton {
		r.Kind = PackPerCarton
		cat.Packaging[r.ItemCode] = r
	}
	for _, p := range bundle.Products {
		cat.Products[p.SKU] = p
	}
	for _, t := range bundle.ProductTemplates {
		cat.Templates[t.SKU] = t
	}

	return cat
}
