// dto.go declares the request bodies the API accepts. Each type carries
// its own Validate method; the rules that need live data (resolving ids,
// status membership, stock) live in the services.
package handlers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// requiredUUID rejects the zero UUID, which json decoding leaves behind
// when the field is absent or malformed.
func requiredUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return errors.New("is required")
	}
	return nil
}

type loginRequest struct {
	InitData string `json:"init_data"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InitData, validation.Required),
	)
}

type categoryRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
	Image    string     `json:"image"`
}

func (r categoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

type productRequest struct {
	CategoryID  uuid.UUID        `json:"category_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price"`
	Stock       int              `json:"stock"`
	Image       string           `json:"image"`
}

func (r productRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.CategoryID, validation.By(requiredUUID)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Stock, validation.Min(0)),
	); err != nil {
		return err
	}
	// Decimal fields are structs, so the threshold rules don't apply.
	if r.Price.LessThanOrEqual(decimal.Zero) {
		return errors.New("price must be greater than zero")
	}
	if r.OldPrice != nil && r.OldPrice.LessThanOrEqual(r.Price) {
		return errors.New("old_price must be greater than price")
	}
	return nil
}

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r orderItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.By(requiredUUID)),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

type orderRequest struct {
	Items             []orderItemRequest `json:"items"`
	PaymentScreenshot string             `json:"payment_screenshot"`
}

func (r orderRequest) Validate() error {
	// Each element is validated through its own Validate method.
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Required, validation.Length(1, 100)),
	)
}

type reviewRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
}

func (r reviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.By(requiredUUID)),
		validation.Field(&r.OrderID, validation.By(requiredUUID)),
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Text, validation.Length(0, 2000)),
	)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (r statusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required),
	)
}
