package payment

import (
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/shopspring/decimal"
)

// Tender settles a sale total for one payment method.
// To accept another method, implement this interface and register it.
type Tender interface {
	Settle(total decimal.Decimal, tendered decimal.NullDecimal) (Settlement, error)
}

// Registry maps methods to their Tender.
type Registry map[Method]Tender

// DefaultRegistry accepts cash and card.
func DefaultRegistry() Registry {
	return Registry{
		MethodCash: CashTender{},
		MethodCard: CardTender{},
	}
}

// Lookup returns the tender for m.
func (r Registry) Lookup(m Method) (Tender, error) {
	t, ok := r[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, m)
	}
	return t, nil
}

// CashTender requires an amount covering the total and gives change.
type CashTender struct{}

func (CashTender) Settle(total decimal.Decimal, tendered decimal.NullDecimal) (Settlement, error) {
	if !tendered.Valid || tendered.Decimal.LessThan(total) {
		return Settlement{}, &InsufficientPaymentError{Total: total, Tendered: tendered}
	}
	return Settlement{
		AmountTendered: tendered,
		Change:         pricing.Change(tendered.Decimal, total),
	}, nil
}

// CardTender treats the card as authorized for exactly the total.
// Any tendered amount is ignored.
type CardTender struct{}

func (CardTender) Settle(decimal.Decimal, decimal.NullDecimal) (Settlement, error) {
	return Settlement{Change: decimal.Zero}, nil
}
