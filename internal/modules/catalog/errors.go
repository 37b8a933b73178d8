package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound        = errors.New("product not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrDuplicateSKU           = errors.New("sku already exists")
	ErrDuplicateCategory      = errors.New("category already exists")
	ErrInvalidProduct         = errors.New("invalid product")
)

// NotFoundError names the product that does not exist.
type NotFoundError struct{ ProductID uuid.UUID }

func (e *NotFoundError) Error() string { return fmt.Sprintf("product %s not found", e.ProductID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// StockError reports a request for more units than a product has.
type StockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConcurrentModificationError reports that a product changed between read and write.
type ConcurrentModificationError struct {
	ProductID uuid.UUID
	Expected  int64
	Actual    int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("product %s was modified concurrently (version %d, now %d)",
		e.ProductID, e.Expected, e.Actual)
}

func (e *ConcurrentModificationError) Is(target error) bool { return target == ErrConcurrentModification }

// ProductIDOf extracts the product id carried by a catalog error, if any.
func ProductIDOf(err error) (uuid.UUID, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.ProductID, true
	}
	var se *StockError
	if errors.As(err, &se) {
		return se.ProductID, true
	}
	var cm *ConcurrentModificationError
	if errors.As(err, &cm) {
		return cm.ProductID, true
	}
	return uuid.Nil, false
}
