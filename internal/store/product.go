// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"telemart/internal/models"
)

// ProductStore manages products in the database.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, category_id, name, description, price, old_price, stock, image, rating, num_reviews, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description,
		&p.Price, &p.OldPrice, &p.Stock, &p.Image,
		&p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products ordered by creation date, newest first, with
// pagination. A nil categoryID and empty search match everything; the
// search term matches case-insensitive substrings of the product name.
func (s *ProductStore) List(categoryID *uuid.UUID, search string, limit, offset int) ([]models.Product, error) {
	rows, err := s.db.Query(`
		SELECT `+productColumns+`
		FROM products
		WHERE ($1::uuid IS NULL OR category_id = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, categoryID, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Count returns the number of products matching the same filters List uses.
func (s *ProductStore) Count(categoryID *uuid.UUID, search string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM products
		WHERE ($1::uuid IS NULL OR category_id = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
	`, categoryID, search).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		INSERT INTO products (category_id, name, description, price, old_price, stock, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		p.CategoryID, p.Name, p.Description, p.Price, p.OldPrice, p.Stock, p.Image,
	)
	result, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product and returns the stored row.
// Returns nil if the product does not exist. Rating and num_reviews are
// derived from reviews and never written here.
func (s *ProductStore) Update(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		UPDATE products SET
			category_id = $1, name = $2, description = $3, price = $4,
			old_price = $5, stock = $6, image = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+productColumns,
		p.CategoryID, p.Name, p.Description, p.Price, p.OldPrice, p.Stock, p.Image, p.ID,
	)
	result, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return result, nil
}

// Delete removes a product by ID.
func (s *ProductStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// OpenOrderCount returns how many orders still reference the product in
// a status other than completed or refunded. Products with open orders
// must not be deleted individually.
func (s *ProductStore) OpenOrderCount(productID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT o.id)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.product_id = $1
		  AND o.status NOT IN ('completed', 'refunded')
	`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open orders for product: %w", err)
	}
	return count, nil
}
