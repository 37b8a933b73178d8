package memory

import (
	"context"
	"sort"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/inventory"
	"github.com/google/uuid"
)

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int, reason string) (*inventory.Movement, error) {
	return r.apply(id, reason, func(current int) int { return current + delta })
}

func (r inventoryRepo) SetStock(_ context.Context, id uuid.UUID, qty int) (*inventory.Movement, error) {
	return r.apply(id, inventory.ReasonCount, func(int) int { return qty })
}

func (r inventoryRepo) apply(id uuid.UUID, reason string, next func(int) int) (*inventory.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, &catalog.NotFoundError{ProductID: id}
	}
	target := next(p.Stock)
	if target < 0 {
		return nil, &catalog.StockError{ProductID: id, Requested: p.Stock - target, Available: p.Stock}
	}
	now := r.s.now()
	m := &inventory.Movement{
		ID:        uuid.New(),
		ProductID: id,
		Delta:     target - p.Stock,
		Reason:    reason,
		StockFrom: p.Stock,
		StockTo:   target,
		CreatedAt: now,
	}
	p.Stock = target
	p.Version++
	p.UpdatedAt = now
	r.s.products[id] = p
	return m, nil
}

func (r inventoryRepo) ListLowStock(_ context.Context, threshold int) ([]*inventory.LowStockItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*inventory.LowStockItem
	for _, p := range r.s.products {
		if p.Stock <= threshold {
			out = append(out, &inventory.LowStockItem{ProductID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Stock})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
