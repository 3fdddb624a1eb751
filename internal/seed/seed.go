package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	Currency      string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Defaults inserted into the quote_defaults singleton on first run.
// They match the demo catalog's settings section.
const (
	defaultOverheadPct = 0.05
	defaultTaxPct      = 0.13
	defaultMarginPct   = 0.18
	defaultScrapRate   = 0.03
	defaultShipping    = 120
	defaultCurrency    = "USD"
	defaultPricing     = "gross_margin"
)

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureQuoteDefaults(tx, cfg.Currency, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureQuoteDefaults(tx *sql.Tx, currency string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM quote_defaults WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check quote defaults existence: %w", err)
	}
	if exists {
		return nil
	}

	if currency == "" {
		currency = defaultCurrency
	}

	if _, err := tx.Exec(`
		INSERT INTO quote_defaults (
			id,
			currency,
			overhead_pct,
			tax_pct,
			margin_pct,
			scrap_rate,
			shipping_per_order,
			pricing_mode
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, currency, defaultOverheadPct, defaultTaxPct, defaultMarginPct, defaultScrapRate, defaultShipping, defaultPricing); err != nil {
		return fmt.Errorf("insert quote defaults singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

// hashPassword matches the credential hashing used by the server's
// auth service.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
