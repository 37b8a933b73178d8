package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Method is how a sale was paid.
type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

var (
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
)

// ParseMethod accepts any casing of a supported method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCash, MethodCard:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (allowed: cash, card)", ErrUnsupportedMethod, s)
}

// Settlement is the tendered/change outcome of paying a total.
type Settlement struct {
	// AmountTendered is set for cash only.
	AmountTendered decimal.NullDecimal
	Change         decimal.Decimal
}

// InsufficientPaymentError carries the amounts involved in a rejected cash payment.
type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Tendered decimal.NullDecimal
}

func (e *InsufficientPaymentError) Error() string {
	if !e.Tendered.Valid {
		return fmt.Sprintf("insufficient payment: amount_tendered is required for cash (total %s)", e.Total.StringFixed(2))
	}
	return fmt.Sprintf("insufficient payment: tendered %s, total %s",
		e.Tendered.Decimal.StringFixed(2), e.Total.StringFixed(2))
}

func (e *InsufficientPaymentError) Is(target error) bool { return target == ErrInsufficientPayment }
