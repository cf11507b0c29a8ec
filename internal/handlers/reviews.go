package handlers

import (
	"net/http"

	"telemart/internal/cache"
	"telemart/internal/middleware"
	"telemart/internal/models"
	"telemart/internal/reviews"
	"telemart/internal/store"
)

// Reviews groups the review handlers. Creating or deleting a review
// moves the product's rating aggregate, so both paths clear the catalog
// cache.
type Reviews struct {
	reviews *reviews.Service
	store   *store.ReviewStore
	cache   *cache.CatalogCache
}

// NewReviews creates a new Reviews handler group.
func NewReviews(reviewService *reviews.Service, reviewStore *store.ReviewStore, catalogCache *cache.CatalogCache) *Reviews {
	return &Reviews{reviews: reviewService, store: reviewStore, cache: catalogCache}
}

// Create adds a review from the authenticated user. Eligibility (a
// completed order containing the product) is checked by the service.
func (h *Reviews) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.Create(user, req.ProductID, req.OrderID, req.Rating, req.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, review)
}

// List returns every review for the admin panel, newest first.
func (h *Reviews) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Review{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": list})
}

// Delete removes a review and recomputes the product's aggregate.
func (h *Reviews) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.reviews.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	h.cache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
