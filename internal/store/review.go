// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"telemart/internal/models"
)

// ErrDuplicateReview is returned when a user already reviewed a product.
// The unique index on (product_id, user_id) backs this even when two
// requests race past the application-level check.
var ErrDuplicateReview = errors.New("user already reviewed this product")

// ReviewStore manages product reviews in the database.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore returns a new ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

const reviewColumns = `id, user_id, product_id, order_id, author_name, rating, text, created_at`

// scanReview scans a row into a Review struct.
func scanReview(scanner interface{ Scan(...any) error }) (*models.Review, error) {
	var r models.Review
	err := scanner.Scan(
		&r.ID, &r.UserID, &r.ProductID, &r.OrderID,
		&r.AuthorName, &r.Rating, &r.Text, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create persists a review in a single transaction: the review row, the
// order's review_submitted flag and the product's rating aggregates all
// land together.
func (s *ReviewStore) Create(r *models.Review) (*models.Review, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO reviews (user_id, product_id, order_id, author_name, rating, text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+reviewColumns,
		r.UserID, r.ProductID, r.OrderID, r.AuthorName, r.Rating, r.Text,
	)
	result, err := scanReview(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE orders SET review_submitted = TRUE, updated_at = NOW()
		WHERE id = $1
	`, r.OrderID); err != nil {
		return nil, fmt.Errorf("mark order reviewed: %w", err)
	}

	if err := recomputeProductRating(tx, r.ProductID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}
	return result, nil
}

// Delete removes a review and refreshes the product's rating aggregates
// in the same transaction. The order's review_submitted flag stays set:
// a deleted review does not reopen the order for another one. Returns
// the deleted review, or nil if it did not exist.
func (s *ReviewStore) Delete(id uuid.UUID) (*models.Review, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`DELETE FROM reviews WHERE id = $1 RETURNING `+reviewColumns, id)
	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete review: %w", err)
	}

	if err := recomputeProductRating(tx, r.ProductID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review delete: %w", err)
	}
	return r, nil
}

// recomputeProductRating rewrites a product's denormalized rating and
// review count from the reviews table.
func recomputeProductRating(tx *sql.Tx, productID uuid.UUID) error {
	_, err := tx.Exec(`
		UPDATE products SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1), 0),
			num_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1),
			updated_at = NOW()
		WHERE id = $1
	`, productID)
	if err != nil {
		return fmt.Errorf("recompute product rating: %w", err)
	}
	return nil
}

// FindByID retrieves a review by ID. Returns nil if not found.
func (s *ReviewStore) FindByID(id uuid.UUID) (*models.Review, error) {
	row := s.db.QueryRow(`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review by id: %w", err)
	}
	return r, nil
}

// ListByProduct returns a product's reviews, newest first.
func (s *ReviewStore) ListByProduct(productID uuid.UUID) ([]models.Review, error) {
	rows, err := s.db.Query(`
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by product: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// List returns all reviews, newest first.
func (s *ReviewStore) List() ([]models.Review, error) {
	rows, err := s.db.Query(`
		SELECT ` + reviewColumns + `
		FROM reviews
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// collectReviews drains a result set of review rows.
func collectReviews(rows *sql.Rows) ([]models.Review, error) {
	var reviews []models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

// ExistsForProductUser reports whether the user already has a review on
// the product, from any order.
func (s *ReviewStore) ExistsForProductUser(productID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2)
	`, productID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return exists, nil
}
