package memory

import (
	"context"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/checkout"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/google/uuid"
)

var _ checkout.Repository = (*Store)(nil)

// Atomic runs fn with the store locked. Writes are staged on the tx and
// applied only if fn returns nil.
func (s *Store) Atomic(ctx context.Context, fn func(tx checkout.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s, stock: map[uuid.UUID]int{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	for id, stock := range tx.stock {
		p := s.products[id]
		p.Stock = stock
		p.Version++
		p.UpdatedAt = now
		s.products[id] = p
	}
	s.ledger = append(s.ledger, tx.sales...)
	s.outbox = append(s.outbox, tx.records...)
	return nil
}

type memTx struct {
	s       *Store
	stock   map[uuid.UUID]int
	sales   []*sales.Sale
	records []outbox.Record
}

// view returns the product as this tx sees it. The store lock is held.
func (t *memTx) view(id uuid.UUID) (catalog.Product, bool) {
	p, ok := t.s.products[id]
	if !ok {
		return p, false
	}
	if staged, ok := t.stock[id]; ok {
		p.Stock = staged
		p.Version++
	}
	return p, true
}

func (t *memTx) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := t.view(id)
	if !ok {
		return nil, &catalog.NotFoundError{ProductID: id}
	}
	return &p, nil
}

func (t *memTx) DecrementStock(_ context.Context, id uuid.UUID, qty int, expectedVersion int64) error {
	p, ok := t.view(id)
	if !ok {
		return &catalog.NotFoundError{ProductID: id}
	}
	if p.Version != expectedVersion {
		return &catalog.ConcurrentModificationError{ProductID: id, Expected: expectedVersion, Actual: p.Version}
	}
	if p.Stock < qty {
		return &catalog.StockError{ProductID: id, Requested: qty, Available: p.Stock}
	}
	t.stock[id] = p.Stock - qty
	return nil
}

func (t *memTx) AppendSale(_ context.Context, s *sales.Sale) error {
	t.sales = append(t.sales, cloneSale(s))
	return nil
}

func (t *memTx) Enqueue(_ context.Context, rec outbox.Record) error {
	t.records = append(t.records, rec)
	return nil
}
