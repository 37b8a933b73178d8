package checkout

import (
	"context"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductReader is the catalog lookup the cart and sessions need.
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Line is one product and its requested quantity.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is an ordered selection of products, one line per product. It holds
// no prices or stock counts; callers pass the live product on every change.
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
	index map[uuid.UUID]int
}

func NewCart() *Cart {
	return &Cart{index: map[uuid.UUID]int{}}
}

// Add increments the product's line or inserts it with quantity 1.
func (c *Cart) Add(p *catalog.Product) error {
	i, ok := c.index[p.ID]
	want := 1
	if ok {
		want = c.lines[i].Quantity + 1
	}
	if want > p.Stock {
		return &catalog.StockError{ProductID: p.ID, Requested: want, Available: p.Stock}
	}
	if ok {
		c.lines[i].Quantity = want
		return nil
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, Line{ProductID: p.ID, Quantity: 1})
	return nil
}

// Adjust changes a line's quantity by delta. A result of zero or less is
// ignored; lines only disappear through Remove.
func (c *Cart) Adjust(p *catalog.Product, delta int) error {
	i, ok := c.index[p.ID]
	if !ok {
		return ErrLineNotFound
	}
	want := c.lines[i].Quantity + delta
	if want <= 0 {
		return nil
	}
	if want > p.Stock {
		return &catalog.StockError{ProductID: p.ID, Requested: want, Available: p.Stock}
	}
	c.lines[i].Quantity = want
	return nil
}

// Remove deletes the product's line if present.
func (c *Cart) Remove(id uuid.UUID) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = map[uuid.UUID]int{}
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

// Quantity returns the requested quantity for id, or 0.
func (c *Cart) Quantity(id uuid.UUID) int {
	if i, ok := c.index[id]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

// Totals prices the cart at the catalog's current prices.
func (c *Cart) Totals(ctx context.Context, products ProductReader, ratePercent decimal.Decimal) (pricing.Totals, error) {
	lines := make([]pricing.Line, 0, len(c.lines))
	for _, l := range c.lines {
		p, err := products.GetByID(ctx, l.ProductID)
		if err != nil {
			return pricing.Totals{}, err
		}
		lines = append(lines, pricing.Line{Quantity: l.Quantity, UnitPrice: p.Price})
	}
	return pricing.Calculate(lines, ratePercent), nil
}
