// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"telemart/internal/cache"
	"telemart/internal/catalog"
	"telemart/internal/models"
	"telemart/internal/storage"
	"telemart/internal/store"
)

// Categories groups the category handlers. Reads are public and served
// through the catalog cache; writes are admin-only and clear it.
type Categories struct {
	manager    *catalog.Manager
	categories *store.CategoryStore
	cache      *cache.CatalogCache
	storage    *storage.Client
}

// NewCategories creates a new Categories handler group. The storage
// client may be nil; replaced images are then left in place.
func NewCategories(manager *catalog.Manager, categories *store.CategoryStore, catalogCache *cache.CatalogCache, storageClient *storage.Client) *Categories {
	return &Categories{manager: manager, categories: categories, cache: catalogCache, storage: storageClient}
}

// List returns the full category tree, roots first with children nested.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	key := cache.CategoriesKey()
	if body, ok := h.cache.Get(r.Context(), key); ok {
		respondRawJSON(w, http.StatusOK, body)
		return
	}

	tree, err := h.categories.Tree()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if tree == nil {
		tree = []models.Category{}
	}

	body, err := json.Marshal(map[string]any{"categories": tree})
	if err != nil {
		slog.Error("failed to encode category tree", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, body)
	respondRawJSON(w, http.StatusOK, body)
}

// Get returns a single category by id.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// Create adds a category, optionally under a parent.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.manager.CreateCategory(req.Name, req.ParentID, req.Image)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, category)
}

// Update renames or moves a category. A replaced image is removed from
// object storage after the row is written.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	previous, err := h.categories.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	category, err := h.manager.UpdateCategory(id, req.Name, req.ParentID, req.Image)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if previous != nil && previous.Image != category.Image {
		removeStoredImage(r.Context(), h.storage, previous.Image)
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, category)
}

// Delete removes a category together with its subtree and the products
// in it, and reports how many rows of each went away.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categoriesRemoved, productsRemoved, err := h.manager.DeleteCategory(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	slog.Info("category deleted", "id", id, "categories_removed", categoriesRemoved, "products_removed", productsRemoved)
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"categories_removed": categoriesRemoved,
		"products_removed":   productsRemoved,
	})
}
