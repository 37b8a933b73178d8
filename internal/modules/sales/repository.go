package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrSaleNotFound = errors.New("sale not found")

// Repository is the read side of the sales ledger. Sales are only ever
// written by checkout as part of an atomic commit.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// List returns matching sales newest first.
	List(ctx context.Context, f Filter) ([]*Sale, error)
}
