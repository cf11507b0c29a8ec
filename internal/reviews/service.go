// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reviews gates review creation on purchase history: only the
// buyer of a completed order may review a product from it, once.
package reviews

import (
	"errors"

	"github.com/google/uuid"

	"telemart/internal/models"
	"telemart/internal/store"
)

var (
	// ErrNotEligible is returned when the referenced order does not
	// exist, is not the requester's, is not completed, or does not
	// contain the product.
	ErrNotEligible = errors.New("order does not make the user eligible to review this product")

	// ErrAlreadyReviewed is returned when the order already spent its
	// single review.
	ErrAlreadyReviewed = errors.New("order already has a review submitted")

	// ErrReviewNotFound is returned when a review id resolves to nothing.
	ErrReviewNotFound = errors.New("review not found")
)

// Service enforces review eligibility on top of the stores.
type Service struct {
	reviews *store.ReviewStore
	orders  *store.OrderStore
}

// NewService returns a reviews Service.
func NewService(reviews *store.ReviewStore, orders *store.OrderStore) *Service {
	return &Service{reviews: reviews, orders: orders}
}

// Create checks the requester's eligibility and persists the review.
// The author's display name is captured as it is now; later profile
// changes do not rewrite published reviews. The duplicate check runs
// here for a clean error, and the database unique index answers for
// two requests racing past it.
func (s *Service) Create(user *models.User, productID, orderID uuid.UUID, rating int, text string) (*models.Review, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != user.ID {
		return nil, ErrNotEligible
	}
	if order.Status != models.OrderCompleted {
		return nil, ErrNotEligible
	}
	if !orderContains(order, productID) {
		return nil, ErrNotEligible
	}
	if order.ReviewSubmitted {
		return nil, ErrAlreadyReviewed
	}

	exists, err := s.reviews.ExistsForProductUser(productID, user.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, store.ErrDuplicateReview
	}

	return s.reviews.Create(&models.Review{
		UserID:     user.ID,
		ProductID:  productID,
		OrderID:    orderID,
		AuthorName: user.DisplayName(),
		Rating:     rating,
		Text:       text,
	})
}

// orderContains reports whether the order's snapshot items include the
// product.
func orderContains(order *models.Order, productID uuid.UUID) bool {
	for _, it := range order.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Delete removes a review and refreshes the product's aggregates. The
// order's review_submitted flag stays set.
func (s *Service) Delete(id uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.Delete(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}
