// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a purchasable catalog item. Prices use decimal so order
// totals never accumulate float drift. OldPrice, when set, is the
// pre-discount price shown struck through in the storefront and must be
// strictly greater than Price.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price"`
	Stock       int              `json:"stock"`
	Image       string           `json:"image"`
	Rating      decimal.Decimal  `json:"rating"`
	NumReviews  int              `json:"num_reviews"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
