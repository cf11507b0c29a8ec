package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates an empty development database with a small category tree
// and a few products so the storefront has something to render. Users are
// never seeded; accounts exist only through Telegram login.
func Seed(db *sql.DB) error {
	// Check if any categories exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	var electronics, clothing, phones string
	if err := tx.QueryRow(`
		INSERT INTO categories (name) VALUES ('Electronics') RETURNING id
	`).Scan(&electronics); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRow(`
		INSERT INTO categories (name) VALUES ('Clothing') RETURNING id
	`).Scan(&clothing); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRow(`
		INSERT INTO categories (name, parent_id) VALUES ('Phones', $1) RETURNING id
	`, electronics).Scan(&phones); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	products := []struct {
		category    string
		name        string
		description string
		price       string
		stock       int
	}{
		{phones, "Budget Smartphone", "6.5-inch display, 128 GB storage.", "129.99", 25},
		{phones, "Flagship Smartphone", "OLED display, 256 GB storage, 5G.", "699.00", 10},
		{electronics, "Wireless Earbuds", "Bluetooth 5.3, 24h battery with case.", "39.90", 50},
		{clothing, "Classic T-Shirt", "100% cotton, unisex fit.", "14.50", 100},
	}
	for _, p := range products {
		if _, err := tx.Exec(`
			INSERT INTO products (category_id, name, description, price, stock)
			VALUES ($1, $2, $3, $4, $5)
		`, p.category, p.name, p.description, p.price, p.stock); err != nil {
			return fmt.Errorf("seed insert product %q: %w", p.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo catalog",
		"categories", 3,
		"products", len(products),
	)

	return nil
}
