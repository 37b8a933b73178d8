package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Movement is a single recorded change to a product's stock count.
type Movement struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	StockFrom int       `json:"stock_from"`
	StockTo   int       `json:"stock_to"`
	CreatedAt time.Time `json:"created_at"`
}

// Reasons recorded against movements.
const (
	ReasonRestock = "restock"
	ReasonAdjust  = "adjust"
	ReasonCount   = "count"
)

// LowStockItem is a product at or below the reorder threshold.
type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Stock     int       `json:"stock"`
}
