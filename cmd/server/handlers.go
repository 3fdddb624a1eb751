package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/fabworks/sheetquote/internal/cart"
	"github.com/fabworks/sheetquote/internal/catalog"
	"github.com/fabworks/sheetquote/internal/export"
	"github.com/fabworks/sheetquote/internal/quoting"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		s.logger.Error("validate credentials", "err", err)
		respondError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	respondJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCatalogProducts(w http.ResponseWriter, r *http.Request) {
	type productSummary struct {
		SKU      string `json:"sku"`
		Name     string `json:"name"`
		BomLines int    `json:"bom_lines"`
	}
	out := make([]productSummary, 0, len(s.catalog.Products))
	for _, p := range s.catalog.Products {
		out = append(out, productSummary{SKU: p.SKU, Name: p.Name, BomLines: len(p.BomLines)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	respondJSON(w, http.StatusOK, out)
}

func (s *server) handleCatalogTemplates(w http.ResponseWriter, r *http.Request) {
	type templateSummary struct {
		SKU          string `json:"sku"`
		Name         string `json:"name"`
		MaterialCode string `json:"material_code"`
	}
	out := make([]templateSummary, 0, len(s.catalog.Templates))
	for _, t := range s.catalog.Templates {
		out = append(out, templateSummary{SKU: t.SKU, Name: t.Name, MaterialCode: t.MaterialCode})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	respondJSON(w, http.StatusOK, out)
}

func (s *server) handleCatalogMaterials(w http.ResponseWriter, r *http.Request) {
	codes := make([]string, 0, len(s.catalog.Materials))
	for code := range s.catalog.Materials {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]any, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.catalog.Materials[code])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *server) handleCatalogProcesses(w http.ResponseWriter, r *http.Request) {
	codes := make([]string, 0, len(s.catalog.Processes))
	for code := range s.catalog.Processes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]any, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.catalog.Processes[code])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *server) handleCatalogParts(w http.ResponseWriter, r *http.Request) {
	codes := make([]string, 0, len(s.catalog.Parts))
	for code := range s.catalog.Parts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]any, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.catalog.Parts[code])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *server) handleCatalogPurchased(w http.ResponseWriter, r *http.Request) {
	codes := make([]string, 0, len(s.catalog.Purchased))
	for code := range s.catalog.Purchased {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]any, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.catalog.Purchased[code])
	}
	respondJSON(w, http.StatusOK, out)
}

// packagingRuleView re-exposes the rule kind the loader tags onto each
// record, which the catalog type itself keeps out of JSON.
type packagingRuleView struct {
	catalog.PackagingRule
	Kind string `json:"kind"`
}

func (s *server) handleCatalogPackaging(w http.ResponseWriter, r *http.Request) {
	codes := make([]string, 0, len(s.catalog.Packaging))
	for code := range s.catalog.Packaging {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]packagingRuleView, 0, len(codes))
	for _, code := range codes {
		rule := s.catalog.Packaging[code]
		out = append(out, packagingRuleView{PackagingRule: rule, Kind: rule.Kind})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *server) handleCatalogTiers(w http.ResponseWriter, r *http.Request) {
	tiers := s.catalog.Tiers
	if tiers == nil {
		tiers = []catalog.QuantityTier{}
	}
	respondJSON(w, http.StatusOK, tiers)
}

// quoteRequest prices one product. Omitted pricing fields fall back to
// the stored quote defaults.
type quoteRequest struct {
	SKU              string            `json:"sku"`
	Quantity         int               `json:"quantity"`
	OverheadPct      *float64          `json:"overhead_pct,omitempty"`
	TaxPct           *float64          `json:"tax_pct,omitempty"`
	MarginPct        *float64          `json:"margin_pct,omitempty"`
	PricingMode      string            `json:"pricing_mode,omitempty"`
	ScrapRate        *float64          `json:"scrap_rate,omitempty"`
	ShippingPerOrder *float64          `json:"shipping_per_order,omitempty"`
	Overrides        quoting.Overrides `json:"overrides,omitempty"`
}

// quoteDefaults mirrors the quote_defaults singleton row.
type quoteDefaults struct {
	Currency         string
	OverheadPct      float64
	TaxPct           float64
	MarginPct        float64
	ScrapRate        float64
	ShippingPerOrder float64
	PricingMode      string
}

func (s *server) loadQuoteDefaults() (quoteDefaults, error) {
	var d quoteDefaults
	err := s.db.QueryRow(`
		SELECT currency, overhead_pct, tax_pct, margin_pct, scrap_rate, shipping_per_order, pricing_mode
		FROM quote_defaults
		WHERE id = 1
	`).Scan(&d.Currency, &d.OverheadPct, &d.TaxPct, &d.MarginPct, &d.ScrapRate, &d.ShippingPerOrder, &d.PricingMode)
	if errors.Is(err, sql.ErrNoRows) {
		return quoteDefaults{}, fmt.Errorf("quote defaults singleton not found")
	}
	if err != nil {
		return quoteDefaults{}, fmt.Errorf("query quote defaults: %w", err)
	}
	return d, nil
}

func (s *server) buildQuoteParams(req quoteRequest) (quoting.QuoteParameters, quoteDefaults, error) {
	defaults, err := s.loadQuoteDefaults()
	if err != nil {
		return quoting.QuoteParameters{}, quoteDefaults{}, err
	}

	params := quoting.QuoteParameters{
		Quantity:         req.Quantity,
		OverheadPct:      defaults.OverheadPct,
		TaxPct:           defaults.TaxPct,
		MarginPct:        defaults.MarginPct,
		PricingMode:      defaults.PricingMode,
		ScrapRate:        defaults.ScrapRate,
		ShippingPerOrder: defaults.ShippingPerOrder,
		Overrides:        req.Overrides,
	}
	if req.OverheadPct != nil {
		params.OverheadPct = *req.OverheadPct
	}
	if req.TaxPct != nil {
		params.TaxPct = *req.TaxPct
	}
	if req.MarginPct != nil {
		params.MarginPct = *req.MarginPct
	}
	if req.PricingMode != "" {
		params.PricingMode = req.PricingMode
	}
	if req.ScrapRate != nil {
		params.ScrapRate = *req.ScrapRate
	}
	if req.ShippingPerOrder != nil {
		params.ShippingPerOrder = *req.ShippingPerOrder
	}
	return params, defaults, nil
}

func validateQuoteRequest(req quoteRequest) string {
	if strings.TrimSpace(req.SKU) == "" {
		return "sku is required"
	}
	if req.Quantity <= 0 {
		return "quantity must be greater than zero"
	}
	if req.PricingMode != "" && req.PricingMode != quoting.PricingGrossMargin && req.PricingMode != quoting.PricingMarkup {
		return "pricing_mode must be gross_margin or markup"
	}
	return ""
}

func (s *server) calculateQuote(req quoteRequest) (*quoting.Result, quoteDefaults, int, string) {
	if msg := validateQuoteRequest(req); msg != "" {
		return nil, quoteDefaults{}, http.StatusBadRequest, msg
	}

	product, ok := s.catalog.Products[req.SKU]
	if !ok {
		return nil, quoteDefaults{}, http.StatusNotFound, fmt.Sprintf("product not found: %s", req.SKU)
	}

	params, defaults, err := s.buildQuoteParams(req)
	if err != nil {
		s.logger.Error("load quote defaults", "err", err)
		return nil, quoteDefaults{}, http.StatusInternalServerError, "failed to load quote defaults"
	}

	res := quoting.Calculate(product, params, s.catalog)
	return &res, defaults, 0, ""
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, _, status, msg := s.calculateQuote(req)
	if msg != "" {
		respondError(w, status, msg)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type quoteExportRequest struct {
	quoteRequest
	QuoteNo  string `json:"quote_no,omitempty"`
	Customer string `json:"customer,omitempty"`
}

func (s *server) handleQuoteExport(w http.ResponseWriter, r *http.Request) {
	var req quoteExportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, defaults, status, msg := s.calculateQuote(req.quoteRequest)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	hdr := export.QuoteHeader{
		QuoteNo:     req.QuoteNo,
		Customer:    req.Customer,
		Currency:    defaults.Currency,
		SKU:         res.SKU,
		ProductName: res.ProductName,
		Quantity:    res.Quantity,
	}
	if hdr.QuoteNo == "" {
		hdr.QuoteNo = newQuoteNo()
	}

	f, err := export.QuoteWorkbook(hdr, res)
	if err != nil {
		s.logger.Error("build quote workbook", "sku", res.SKU, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer f.Close()

	writeWorkbook(w, f, hdr.QuoteNo+".xlsx")
}

// templateQuoteRequest prices a product template. Pricing fields fall
// back to the stored quote defaults the same way quoteRequest does;
// packaging_per_piece defaults to zero.
type templateQuoteRequest struct {
	SKU               string                                  `json:"sku"`
	Quantity          int                                     `json:"quantity"`
	OverheadPct       *float64                                `json:"overhead_pct,omitempty"`
	TaxPct            *float64                                `json:"tax_pct,omitempty"`
	MarginPct         *float64                                `json:"margin_pct,omitempty"`
	PricingMode       string                                  `json:"pricing_mode,omitempty"`
	ScrapRate         *float64                                `json:"scrap_rate,omitempty"`
	ShippingPerOrder  *float64                                `json:"shipping_per_order,omitempty"`
	PackagingPerPiece float64                                 `json:"packaging_per_piece,omitempty"`
	ProcessInputs     map[string]quoting.TemplateProcessInput `json:"process_inputs,omitempty"`
}

func (s *server) handleTemplateQuote(w http.ResponseWriter, r *http.Request) {
	var req templateQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateQuoteRequest(quoteRequest{SKU: req.SKU, Quantity: req.Quantity, PricingMode: req.PricingMode}); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	tpl, ok := s.catalog.Templates[req.SKU]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("template not found: %s", req.SKU))
		return
	}

	base, _, err := s.buildTemplateParams(req)
	if err != nil {
		s.logger.Error("load quote defaults", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load quote defaults")
		return
	}

	res := quoting.CalculateTemplate(tpl, base, s.catalog)
	respondJSON(w, http.StatusOK, res)
}

func (s *server) buildTemplateParams(req templateQuoteRequest) (quoting.TemplateParameters, quoteDefaults, error) {
	merged, defaults, err := s.buildQuoteParams(quoteRequest{
		SKU:              req.SKU,
		Quantity:         req.Quantity,
		OverheadPct:      req.OverheadPct,
		TaxPct:           req.TaxPct,
		MarginPct:        req.MarginPct,
		PricingMode:      req.PricingMode,
		ScrapRate:        req.ScrapRate,
		ShippingPerOrder: req.ShippingPerOrder,
	})
	if err != nil {
		return quoting.TemplateParameters{}, quoteDefaults{}, err
	}

	return quoting.TemplateParameters{
		Quantity:          merged.Quantity,
		ScrapRate:         merged.ScrapRate,
		OverheadPct:       merged.OverheadPct,
		TaxPct:            merged.TaxPct,
		MarginPct:         merged.MarginPct,
		PricingMode:       merged.PricingMode,
		PackagingPerPiece: req.PackagingPerPiece,
		ShippingPerOrder:  merged.ShippingPerOrder,
		ProcessInputs:     req.ProcessInputs,
	}, defaults, nil
}

func (s *server) handleCartList(w http.ResponseWriter, r *http.Request) {
	lines, err := s.cart.List()
	if err != nil {
		s.logger.Error("list cart", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to list cart")
		return
	}
	defaults, err := s.loadQuoteDefaults()
	if err != nil {
		s.logger.Error("load quote defaults", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load quote defaults")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"lines":  lines,
		"totals": cart.Summarize(lines, defaults.ShippingPerOrder),
	})
}

// handleCartAdd prices the requested product and stores the result as
// a cart line, keeping the request as a re-priceable snapshot.
func (s *server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, _, status, msg := s.calculateQuote(req)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	paramsJSON, err := json.Marshal(req)
	if err != nil {
		s.logger.Error("marshal quote request", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to snapshot request")
		return
	}

	procs := make([]string, 0, len(res.ProcessRows))
	for _, row := range res.ProcessRows {
		procs = append(procs, row.ProcessCode)
	}

	line := cart.Line{
		SKU:            res.SKU,
		ProductName:    res.ProductName,
		Qty:            res.Quantity,
		UnitPrice:      res.Summary.UnitPrice,
		LineTotal:      res.Summary.FinalPrice,
		CostTotal:      res.Summary.TotalCost,
		MaterialCost:   res.Buckets.Material,
		ProcessCost:    res.Buckets.Process,
		PackagingCost:  res.Buckets.Packaging,
		ShippingAlloc:  res.Buckets.Shipping,
		ProcessSummary: joinDistinct(procs),
		ParamsJSON:     string(paramsJSON),
	}

	id, err := s.cart.Add(line)
	if err != nil {
		s.logger.Error("add cart line", "sku", line.SKU, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to add cart line")
		return
	}
	line.ID = id

	respondJSON(w, http.StatusCreated, map[string]any{
		"line":     line,
		"warnings": res.Warnings,
	})
}

func (s *server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid cart line id")
		return
	}
	if err := s.cart.Remove(id); err != nil {
		s.logger.Error("remove cart line", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to remove cart line")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.Clear(); err != nil {
		s.logger.Error("clear cart", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCartExport(w http.ResponseWriter, r *http.Request) {
	lines, err := s.cart.List()
	if err != nil {
		s.logger.Error("list cart", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to list cart")
		return
	}
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	defaults, err := s.loadQuoteDefaults()
	if err != nil {
		s.logger.Error("load quote defaults", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load quote defaults")
		return
	}

	hdr := export.QuoteHeader{
		QuoteNo:  r.URL.Query().Get("quote_no"),
		Customer: r.URL.Query().Get("customer"),
		Currency: defaults.Currency,
	}
	if hdr.QuoteNo == "" {
		hdr.QuoteNo = newQuoteNo()
	}

	f, err := export.CartWorkbook(hdr, lines, cart.Summarize(lines, defaults.ShippingPerOrder))
	if err != nil {
		s.logger.Error("build cart workbook", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer f.Close()

	writeWorkbook(w, f, hdr.QuoteNo+".xlsx")
}

func newQuoteNo() string {
	return "Q-" + strings.ToUpper(uuid.NewString()[:8])
}

func writeWorkbook(w http.ResponseWriter, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	// Headers are already sent once streaming starts; a write failure
	// here only means the client went away.
	_, _ = f.WriteTo(w)
}
