// Package memory is an in-process backend for every repository in the
// service. One mutex guards all state, so a checkout commit is a single
// critical section over catalog, ledger and outbox.
package memory

import (
	"sync"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/cashier"
	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/inventory"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	products   map[uuid.UUID]catalog.Product
	categories map[uuid.UUID]catalog.Category
	ledger     []*sales.Sale
	cashiers   map[uuid.UUID]cashier.Cashier
	outbox     []outbox.Record

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		products:   map[uuid.UUID]catalog.Product{},
		categories: map[uuid.UUID]catalog.Category{},
		cashiers:   map[uuid.UUID]cashier.Cashier{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Catalog() catalog.Repository     { return catalogRepo{s} }
func (s *Store) Sales() sales.Repository         { return salesRepo{s} }
func (s *Store) Cashiers() cashier.Repository    { return cashierRepo{s} }
func (s *Store) Outbox() outbox.Store            { return outboxStore{s} }
func (s *Store) Inventory() inventory.Repository { return inventoryRepo{s} }

func cloneSale(src *sales.Sale) *sales.Sale {
	dst := *src
	dst.Lines = append([]sales.SaleLine(nil), src.Lines...)
	return &dst
}
