package checkout

import (
	"errors"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidTaxRate  = errors.New("tax rate must be >= 0")
	ErrLineNotFound    = errors.New("product is not in the cart")
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionBusy     = errors.New("checkout session is settling")
	ErrSessionClosed   = errors.New("checkout session is already committed")
)

// Errors raised by collaborators that settle and the cart surface unchanged.
var (
	ErrInsufficientStock      = catalog.ErrInsufficientStock
	ErrConcurrentModification = catalog.ErrConcurrentModification
	ErrProductNotFound        = catalog.ErrProductNotFound
	ErrInsufficientPayment    = payment.ErrInsufficientPayment
	ErrUnsupportedMethod      = payment.ErrUnsupportedMethod
)

// Outcome labels a settle result for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrInvalidTaxRate), errors.Is(err, ErrUnsupportedMethod):
		return "invalid_request"
	case errors.Is(err, ErrSessionBusy), errors.Is(err, ErrSessionClosed):
		return "session_state"
	}
	return "error"
}
