package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fabworks/sheetquote/internal/cart"
	"github.com/fabworks/sheetquote/internal/catalog"
	"github.com/fabworks/sheetquote/internal/config"
	"github.com/fabworks/sheetquote/internal/db"
	"github.com/fabworks/sheetquote/internal/migrations"
	"github.com/fabworks/sheetquote/internal/seed"
)

type server struct {
	auth    *authService
	db      *sql.DB
	cart    *cart.Store
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			logger.Error("run migrations", "err", err)
			os.Exit(1)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		logger.Error("seed database", "err", err)
		os.Exit(1)
	}
	if stats.Inserts > 0 {
		logger.Info("seed complete", "inserts", stats.Inserts)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("load catalog", "path", cfg.CatalogPath, "err", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded",
		"products", len(cat.Products),
		"templates", len(cat.Templates),
		"parts", len(cat.Parts))

	srv := &server{
		auth:    newAuthService(database, cfg.SessionSecret),
		db:      database,
		cart:    cart.NewStore(database),
		catalog: cat,
		logger:  logger.With("component", "server"),
	}

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/healthz", s.handleHealth)

	r.Get("/api/catalog/products", s.handleCatalogProducts)
	r.Get("/api/catalog/templates", s.handleCatalogTemplates)
	r.Get("/api/catalog/materials", s.handleCatalogMaterials)
	r.Get("/api/catalog/processes", s.handleCatalogProcesses)
	r.Get("/api/catalog/parts", s.handleCatalogParts)
	r.Get("/api/catalog/purchased", s.handleCatalogPurchased)
	r.Get("/api/catalog/packaging", s.handleCatalogPackaging)
	r.Get("/api/catalog/tiers", s.handleCatalogTiers)

	r.Post("/api/quote", s.handleQuote)
	r.Post("/api/quote/export", s.handleQuoteExport)
	r.Post("/api/template-quote", s.handleTemplateQuote)

	r.Get("/api/cart", s.handleCartList)
	r.Post("/api/cart", s.handleCartAdd)
	r.Delete("/api/cart", s.handleCartClear)
	r.Delete("/api/cart/{id}", s.handleCartRemove)
	r.Get("/api/cart/export", s.handleCartExport)

	return r
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		if !isAuthenticated(r, s.auth) {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func joinDistinct(values []string) string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}
