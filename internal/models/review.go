package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's product review, permitted only after a completed
// order containing the product. AuthorName is captured at creation so a
// later account rename does not rewrite old reviews.
type Review struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ProductID  uuid.UUID `json:"product_id"`
	OrderID    uuid.UUID `json:"order_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
