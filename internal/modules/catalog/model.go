package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with its live price and stock count.
type Product struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Category string          `json:"category"` // free-text label, not a reference
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	// Version increases on every write to the row; stock commits check it.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a named grouping. Products refer to it by name only.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductRequest holds the editable fields of a product.
type ProductRequest struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// CategoryRequest holds the editable fields of a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
