// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"telemart/internal/models"
	"telemart/internal/store"
)

var (
	// ErrCategoryNotFound is returned when a category id resolves to nothing.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrParentNotFound is returned when a referenced parent category
	// does not exist.
	ErrParentNotFound = errors.New("parent category not found")

	// ErrCyclicParent is returned when a parent move would place a
	// category inside its own subtree.
	ErrCyclicParent = errors.New("category cannot be moved under its own subtree")

	// ErrProductNotFound is returned when a product id resolves to nothing.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductInOpenOrders is returned when a product delete is
	// blocked by orders that are still in flight.
	ErrProductInOpenOrders = errors.New("product is referenced by open orders")
)

// Manager applies the catalog's write rules on top of the stores.
// Reads go straight to the stores; every mutation passes through here.
type Manager struct {
	categories *store.CategoryStore
	products   *store.ProductStore
}

// NewManager returns a catalog Manager.
func NewManager(categories *store.CategoryStore, products *store.ProductStore) *Manager {
	return &Manager{categories: categories, products: products}
}

// CreateCategory creates a category, requiring the parent to exist
// when one is given.
func (m *Manager) CreateCategory(name string, parentID *uuid.UUID, image string) (*models.Category, error) {
	if parentID != nil {
		parent, err := m.categories.FindByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
	}
	return m.categories.Create(&models.Category{Name: name, ParentID: parentID, Image: image})
}

// UpdateCategory renames or moves a category. A move is rejected when
// the new parent does not exist or sits inside the category's own
// subtree; a category can never become its own ancestor.
func (m *Manager) UpdateCategory(id uuid.UUID, name string, parentID *uuid.UUID, image string) (*models.Category, error) {
	existing, err := m.categories.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCategoryNotFound
	}

	if parentID != nil {
		parent, err := m.categories.FindByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}

		parents, err := m.categories.ParentMap()
		if err != nil {
			return nil, err
		}
		if IsDescendant(parents, *parentID, id) {
			return nil, ErrCyclicParent
		}
	}

	return m.categories.Update(&models.Category{ID: id, Name: name, ParentID: parentID, Image: image})
}

// DeleteCategory removes a category, everything under it and all their
// products in one transaction. Returns how many categories and products
// went away.
func (m *Manager) DeleteCategory(id uuid.UUID) (int, int, error) {
	existing, err := m.categories.FindByID(id)
	if err != nil {
		return 0, 0, err
	}
	if existing == nil {
		return 0, 0, ErrCategoryNotFound
	}

	parents, err := m.categories.ParentMap()
	if err != nil {
		return 0, 0, err
	}
	ids := append([]uuid.UUID{id}, DescendantIDs(parents, id)...)

	return m.categories.DeleteCascade(ids)
}

// CreateProduct creates a product under an existing category.
func (m *Manager) CreateProduct(p *models.Product) (*models.Product, error) {
	category, err := m.categories.FindByID(p.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return m.products.Create(p)
}

// UpdateProduct rewrites a product's editable fields. The target
// category must exist.
func (m *Manager) UpdateProduct(p *models.Product) (*models.Product, error) {
	existing, err := m.products.FindByID(p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProductNotFound
	}

	category, err := m.categories.FindByID(p.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	return m.products.Update(p)
}

// DeleteProduct removes a product unless an order outside completed or
// refunded still references it. Cascading category deletion does not
// come through here and removes products unconditionally; order history
// stays intact either way thanks to the item snapshots.
func (m *Manager) DeleteProduct(id uuid.UUID) error {
	existing, err := m.products.FindByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}

	open, err := m.products.OpenOrderCount(id)
	if err != nil {
		return err
	}
	if open > 0 {
		return fmt.Errorf("%w: %d open", ErrProductInOpenOrders, open)
	}

	return m.products.Delete(id)
}
