// Package cart persists priced quote lines so several products can be
// accumulated into a single order before export.
package cart

import (
	"database/sql"
	"fmt"
)

// Line is one priced product in the cart. ParamsJSON holds a snapshot
// of the quote request so the line can be re-priced later.
type Line struct {
	ID             int64   `json:"id"`
	SKU            string  `json:"sku"`
	ProductName    string  `json:"product_name"`
	Qty            int     `json:"qty"`
	UnitPrice      float64 `json:"unit_price"`
	LineTotal      float64 `json:"line_total"`
	CostTotal      float64 `json:"cost_total"`
	MaterialCost   float64 `json:"material_cost"`
	ProcessCost    float64 `json:"process_cost"`
	PackagingCost  float64 `json:"packaging_cost"`
	ShippingAlloc  float64 `json:"shipping_alloc"`
	ProcessSummary string  `json:"process_summary"`
	ParamsJSON     string  `json:"params_json,omitempty"`
}

// Store provides cart line persistence on top of the cart_lines table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a line and returns its assigned id.
func (s *Store) Add(line Line) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO cart_lines (
			sku, product_name, qty,
			unit_price, line_total, cost_total,
			material_cost, process_cost, packaging_cost, shipping_alloc,
			process_summary, params_json
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		line.SKU, line.ProductName, line.Qty,
		line.UnitPrice, line.LineTotal, line.CostTotal,
		line.MaterialCost, line.ProcessCost, line.PackagingCost, line.ShippingAlloc,
		line.ProcessSummary, line.ParamsJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert cart line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cart line id: %w", err)
	}
	return id, nil
}

// List returns all cart lines in insertion order.
func (s *Store) List() ([]Line, error) {
	rows, err := s.db.Query(`
		SELECT id, sku, product_name, qty,
		       unit_price, line_total, cost_total,
		       material_cost, process_cost, packaging_cost, shipping_alloc,
		       process_summary, params_json
		FROM cart_lines
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.ID, &l.SKU, &l.ProductName, &l.Qty,
			&l.UnitPrice, &l.LineTotal, &l.CostTotal,
			&l.MaterialCost, &l.ProcessCost, &l.PackagingCost, &l.ShippingAlloc,
			&l.ProcessSummary, &l.ParamsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// Remove deletes one line. Removing an unknown id is not an error.
func (s *Store) Remove(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM cart_lines WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove cart line %d: %w", id, err)
	}
	return nil
}

// Clear empties the cart.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM cart_lines`); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Totals sums cost and price over every cart line. Shipping is an
// order-level charge applied once across the whole cart, so the final
// total is the lines subtotal plus order shipping.
type Totals struct {
	Lines         int     `json:"lines"`
	Qty           int     `json:"qty"`
	CostTotal     float64 `json:"cost_total"`
	LinesSubtotal float64 `json:"lines_subtotal"`
	OrderShipping float64 `json:"order_shipping"`
	Total         float64 `json:"total"`
}

// Summarize computes cart totals from the given lines. orderShipping
// is charged once per order; an empty cart carries no shipping.
func Summarize(lines []Line, orderShipping float64) Totals {
	t := Totals{Lines: len(lines)}
	for _, l := range lines {
		t.Qty += l.Qty
		t.CostTotal += l.CostTotal
		t.LinesSubtotal += l.LineTotal
	}
	if len(lines) > 0 {
		t.OrderShipping = orderShipping
	}
	t.Total = t.LinesSubtotal + t.OrderShipping
	return t
}
