package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tx is the set of writes a settle may perform. Nothing written through a
// Tx is visible to others until the enclosing Atomic call returns nil.
type Tx interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	// DecrementStock removes qty units if the product is still at
	// expectedVersion and has at least qty in stock.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int, expectedVersion int64) error
	AppendSale(ctx context.Context, s *sales.Sale) error
	Enqueue(ctx context.Context, rec outbox.Record) error
}

// Repository runs fn as one all-or-nothing unit against catalog, ledger and
// outbox. Any error from fn discards every write made through tx.
type Repository interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// SettleRequest is how the customer pays for a cart.
type SettleRequest struct {
	TaxRate        decimal.Decimal
	Method         payment.Method
	AmountTendered decimal.NullDecimal
}

// Engine turns carts into committed sales.
type Engine struct {
	repo    Repository
	tenders payment.Registry
	topic   string
	now     func() time.Time
	newID   func() uuid.UUID
}

func NewEngine(repo Repository, tenders payment.Registry, topic string) *Engine {
	if tenders == nil {
		tenders = payment.DefaultRegistry()
	}
	return &Engine{repo: repo, tenders: tenders, topic: topic, now: time.Now, newID: uuid.New}
}

// WithClock replaces the clock used for sale timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Settle validates cart against live stock and prices, takes payment, and
// commits the stock decrement, the sale and its event together. On any
// error nothing is written and the cart is untouched.
func (e *Engine) Settle(ctx context.Context, cart *Cart, req SettleRequest) (*sales.Sale, error) {
	if cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	if req.TaxRate.IsNegative() {
		return nil, ErrInvalidTaxRate
	}
	tender, err := e.tenders.Lookup(req.Method)
	if err != nil {
		return nil, err
	}

	cartLines := cart.Lines()
	var sale *sales.Sale
	err = e.repo.Atomic(ctx, func(tx Tx) error {
		products := make([]*catalog.Product, len(cartLines))
		priced := make([]pricing.Line, len(cartLines))
		saleLines := make([]sales.SaleLine, len(cartLines))
		for i, l := range cartLines {
			p, err := tx.GetProduct(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if l.Quantity > p.Stock {
				return &catalog.StockError{ProductID: p.ID, Requested: l.Quantity, Available: p.Stock}
			}
			products[i] = p
			priced[i] = pricing.Line{Quantity: l.Quantity, UnitPrice: p.Price}
			saleLines[i] = sales.SaleLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    l.Quantity,
				UnitPrice:   p.Price,
			}
		}

		totals := pricing.Calculate(priced, req.TaxRate)
		settlement, err := tender.Settle(totals.Total, req.AmountTendered)
		if err != nil {
			return err
		}

		for i, l := range cartLines {
			if err := tx.DecrementStock(ctx, l.ProductID, l.Quantity, products[i].Version); err != nil {
				return err
			}
		}

		s := &sales.Sale{
			ID:             e.newID(),
			Lines:          saleLines,
			Subtotal:       totals.Subtotal,
			TaxRate:        req.TaxRate,
			Tax:            totals.Tax,
			Total:          totals.Total,
			PaymentMethod:  req.Method,
			AmountTendered: settlement.AmountTendered,
			Change:         settlement.Change,
			CreatedAt:      e.now().UTC(),
		}
		if err := tx.AppendSale(ctx, s); err != nil {
			return fmt.Errorf("append sale: %w", err)
		}

		rec, err := outbox.NewRecord(e.topic, s.ID.String(), outbox.EventSaleCommitted, s, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("encode sale event: %w", err)
		}
		if err := tx.Enqueue(ctx, rec); err != nil {
			return fmt.Errorf("enqueue sale event: %w", err)
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
