package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/platform/logging"
	"github.com/google/uuid"
)

// ErrInvalidQuantity is returned for quantities the operation cannot accept.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Service defines stock maintenance outside of checkout.
type Service interface {
	Restock(ctx context.Context, productID uuid.UUID, qty int) (*Movement, error)
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (*Movement, error)
	SetStock(ctx context.Context, productID uuid.UUID, qty int) (*Movement, error)
	// LowStock lists products at or below threshold; threshold <= 0 uses the default.
	LowStock(ctx context.Context, threshold int) ([]*LowStockItem, error)
}

type service struct {
	repo             Repository
	defaultThreshold int
}

// NewService creates a new inventory service.
func NewService(repo Repository, defaultThreshold int) Service {
	return &service{repo: repo, defaultThreshold: defaultThreshold}
}

func (s *service) Restock(ctx context.Context, productID uuid.UUID, qty int) (*Movement, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: restock quantity must be greater than zero", ErrInvalidQuantity)
	}
	return s.record(s.repo.AdjustStock(ctx, productID, qty, ReasonRestock))
}

func (s *service) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*Movement, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment must be non-zero", ErrInvalidQuantity)
	}
	return s.record(s.repo.AdjustStock(ctx, productID, delta, ReasonAdjust))
}

func (s *service) SetStock(ctx context.Context, productID uuid.UUID, qty int) (*Movement, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrInvalidQuantity)
	}
	return s.record(s.repo.SetStock(ctx, productID, qty))
}

func (s *service) LowStock(ctx context.Context, threshold int) ([]*LowStockItem, error) {
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}
	return s.repo.ListLowStock(ctx, threshold)
}

func (s *service) record(m *Movement, err error) (*Movement, error) {
	if err != nil {
		return nil, err
	}
	logging.Log(logging.Fields{
		Service:   "inventory",
		ProductID: m.ProductID.String(),
		Step:      m.Reason,
		Status:    "applied",
		Message:   fmt.Sprintf("stock %d -> %d", m.StockFrom, m.StockTo),
	})
	return m, nil
}
