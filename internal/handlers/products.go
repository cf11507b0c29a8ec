package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"telemart/internal/cache"
	"telemart/internal/catalog"
	"telemart/internal/models"
	"telemart/internal/storage"
	"telemart/internal/store"
)

// pageSize is the fixed product page length served to the Mini App.
const pageSize = 12

// Products groups the product handlers.
type Products struct {
	manager  *catalog.Manager
	products *store.ProductStore
	reviews  *store.ReviewStore
	cache    *cache.CatalogCache
	storage  *storage.Client
}

// NewProducts creates a new Products handler group. The storage client
// may be nil; replaced and orphaned images are then left in place.
func NewProducts(manager *catalog.Manager, products *store.ProductStore, reviews *store.ReviewStore, catalogCache *cache.CatalogCache, storageClient *storage.Client) *Products {
	return &Products{manager: manager, products: products, reviews: reviews, cache: catalogCache, storage: storageClient}
}

// removeStoredImage deletes an uploaded object once no catalog row
// references it any more. URLs outside our bucket are left alone, and
// failures only warn — the catalog write has already happened.
func removeStoredImage(ctx context.Context, client *storage.Client, url string) {
	if client == nil || url == "" {
		return
	}
	key, ok := client.ExtractS3Key(url)
	if !ok {
		return
	}
	if err := client.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete stored image", "key", key, "error", err)
	}
}

// List returns a page of products, optionally narrowed by category and
// by a case-insensitive name search.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	var categoryID *uuid.UUID
	categoryParam := r.URL.Query().Get("category")
	if categoryParam != "" {
		id, err := uuid.Parse(categoryParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		categoryID = &id
	}
	search := r.URL.Query().Get("search")

	key := cache.ProductsKey(categoryParam, search, page)
	if body, ok := h.cache.Get(r.Context(), key); ok {
		respondRawJSON(w, http.StatusOK, body)
		return
	}

	products, err := h.products.List(categoryID, search, pageSize, (page-1)*pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	total, err := h.products.Count(categoryID, search)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{
		"products": products,
		"page":     page,
		"pages":    (total + pageSize - 1) / pageSize,
		"total":    total,
	})
	if err != nil {
		slog.Error("failed to encode product page", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, body)
	respondRawJSON(w, http.StatusOK, body)
}

// Get returns a single product by id.
func (h *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.ProductKey(id.String())
	if body, ok := h.cache.Get(r.Context(), key); ok {
		respondRawJSON(w, http.StatusOK, body)
		return
	}

	product, err := h.products.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	body, err := json.Marshal(product)
	if err != nil {
		slog.Error("failed to encode product", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, body)
	respondRawJSON(w, http.StatusOK, body)
}

// Reviews returns the reviews left for a product, newest first.
func (h *Products) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	reviews, err := h.reviews.ListByProduct(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// Create adds a product to the catalog.
func (h *Products) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.manager.CreateProduct(&models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		OldPrice:    req.OldPrice,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, product)
}

// Update replaces a product's editable fields. A replaced image is
// removed from object storage after the row is written.
func (h *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	previous, err := h.products.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	product, err := h.manager.UpdateProduct(&models.Product{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		OldPrice:    req.OldPrice,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if previous != nil && previous.Image != product.Image {
		removeStoredImage(r.Context(), h.storage, previous.Image)
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, product)
}

// Delete removes a product unless it still appears in open orders. The
// product's image goes with it.
func (h *Products) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	previous, err := h.products.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.manager.DeleteProduct(id); err != nil {
		respondServiceError(w, err)
		return
	}
	if previous != nil {
		removeStoredImage(r.Context(), h.storage, previous.Image)
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
