package sales

import (
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable ledger entry written once by checkout.
type Sale struct {
	ID       uuid.UUID       `json:"id"`
	Lines    []SaleLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	// TaxRate is the percentage the sale was settled at.
	TaxRate        decimal.Decimal     `json:"tax_rate"`
	Tax            decimal.Decimal     `json:"tax"`
	Total          decimal.Decimal     `json:"total"`
	PaymentMethod  payment.Method      `json:"payment_method"`
	AmountTendered decimal.NullDecimal `json:"amount_tendered"` // cash only
	Change         decimal.Decimal     `json:"change"`
	CreatedAt      time.Time           `json:"created_at"`
}

// SaleLine snapshots a product as it was sold.
type SaleLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// LineTotal is quantity × unit price at full precision.
func (l SaleLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PricingLines returns the sale's lines in the form pricing works on.
func (s *Sale) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = pricing.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return lines
}

// Totals returns the stored subtotal, tax and total.
func (s *Sale) Totals() pricing.Totals {
	return pricing.Totals{Subtotal: s.Subtotal, Tax: s.Tax, Total: s.Total}
}

// Units is the number of product units on the sale.
func (s *Sale) Units() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Filter narrows ledger queries. Zero values match everything.
type Filter struct {
	From   *time.Time     // inclusive
	To     *time.Time     // exclusive
	Method payment.Method // empty for any
}

// Match reports whether s passes the filter.
func (f Filter) Match(s *Sale) bool {
	if f.From != nil && s.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !s.CreatedAt.Before(*f.To) {
		return false
	}
	if f.Method != "" && s.PaymentMethod != f.Method {
		return false
	}
	return true
}

// Summary aggregates a set of sales.
type Summary struct {
	SaleCount   int             `json:"sale_count"`
	Revenue     decimal.Decimal `json:"revenue"`
	Tax         decimal.Decimal `json:"tax"`
	ItemsSold   int             `json:"items_sold"`
	BestSellers []BestSeller    `json:"best_sellers"`
}

// BestSeller is one product ranked by units sold.
type BestSeller struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Mismatch is a stored field that does not match its recomputed value.
type Mismatch struct {
	Field    string          `json:"field"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
}
