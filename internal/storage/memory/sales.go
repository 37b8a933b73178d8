package memory

import (
	"context"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/google/uuid"
)

type salesRepo struct{ s *Store }

func (r salesRepo) GetByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.ledger {
		if sale.ID == id {
			return cloneSale(sale), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", sales.ErrSaleNotFound, id)
}

// List walks the ledger backwards so the newest sale comes first.
func (r salesRepo) List(_ context.Context, f sales.Filter) ([]*sales.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*sales.Sale
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if f.Match(r.s.ledger[i]) {
			out = append(out, cloneSale(r.s.ledger[i]))
		}
	}
	return out, nil
}
