package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"telemart/internal/catalog"
	"telemart/internal/orders"
	"telemart/internal/reviews"
	"telemart/internal/store"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondRawJSON writes an already-encoded JSON body, as served from the
// catalog cache.
func respondRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError writes the standard error body {"error": msg}.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps domain errors onto the HTTP taxonomy:
// unresolved ids 404, rule violations and conflicts 400, ownership and
// eligibility 403. Anything unrecognized is logged and surfaces as a
// bare 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var notFound *store.ProductNotFoundError
	var shortStock *store.InsufficientStockError

	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrParentNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, reviews.ErrReviewNotFound),
		errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrCyclicParent),
		errors.Is(err, catalog.ErrProductInOpenOrders),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, reviews.ErrAlreadyReviewed),
		errors.Is(err, store.ErrDuplicateReview),
		errors.As(err, &shortStock):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrForbidden),
		errors.Is(err, reviews.ErrNotEligible):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// idParam reads the {id} URL parameter as a UUID.
func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id")
	}
	return id, nil
}

// validatable is implemented by the request DTOs in dto.go.
type validatable interface {
	Validate() error
}

// decodeJSON decodes the request body into dst and runs its validation.
func decodeJSON(r *http.Request, dst validatable) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed json body")
	}
	return dst.Validate()
}
