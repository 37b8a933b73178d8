package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines stock storage outside of checkout.
type Repository interface {
	// AdjustStock applies delta atomically and fails with a catalog.StockError
	// if the result would be negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, reason string) (*Movement, error)
	// SetStock overwrites the count, recording the difference as a movement.
	SetStock(ctx context.Context, id uuid.UUID, qty int) (*Movement, error)
	ListLowStock(ctx context.Context, threshold int) ([]*LowStockItem, error)
}
