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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, parent_id, image, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.ParentID, &c.Image,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with product counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.parent_id, c.image,
		       c.created_at, c.updated_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.ParentID, &c.Image,
			&c.CreatedAt, &c.UpdatedAt,
			&c.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree returns categories as a nested tree structure.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Category, parentID *uuid.UUID, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = buildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, parent_id, image)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Name, c.ParentID, c.Image,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category and returns the stored row.
// Returns nil if the category does not exist.
func (s *CategoryStore) Update(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		UPDATE categories SET
			name = $1, parent_id = $2, image = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		c.Name, c.ParentID, c.Image, c.ID,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// ParentMap returns the id -> parent id adjacency for every category.
// The hierarchy checks in the catalog package walk this map instead of
// issuing one query per tree level.
func (s *CategoryStore) ParentMap() (map[uuid.UUID]*uuid.UUID, error) {
	rows, err := s.db.Query(`SELECT id, parent_id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("category parent map: %w", err)
	}
	defer rows.Close()

	parents := make(map[uuid.UUID]*uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var parentID *uuid.UUID
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("scan parent pair: %w", err)
		}
		parents[id] = parentID
	}
	return parents, rows.Err()
}

// DeleteCascade removes the given categories and every product that
// belongs to them in a single transaction. The caller passes the full
// id set (the category plus all its descendants); products go first so
// the category rows have no dependents left when they are deleted.
// Returns the number of categories and products removed.
func (s *CategoryStore) DeleteCascade(ids []uuid.UUID) (int, int, error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	idParam := uuidStrings(ids)

	res, err := tx.Exec(`DELETE FROM products WHERE category_id = ANY($1::uuid[])`, idParam)
	if err != nil {
		return 0, 0, fmt.Errorf("delete products in cascade: %w", err)
	}
	productCount, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("count deleted products: %w", err)
	}

	res, err = tx.Exec(`DELETE FROM categories WHERE id = ANY($1::uuid[])`, idParam)
	if err != nil {
		return 0, 0, fmt.Errorf("delete categories in cascade: %w", err)
	}
	categoryCount, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("count deleted categories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit cascade: %w", err)
	}
	return int(categoryCount), int(productCount), nil
}
