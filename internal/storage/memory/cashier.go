package memory

import (
	"context"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/modules/cashier"
	"github.com/google/uuid"
)

type cashierRepo struct{ s *Store }

func (r cashierRepo) Create(_ context.Context, c *cashier.Cashier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.cashiers {
		if existing.Email == c.Email {
			return fmt.Errorf("%w: %s", cashier.ErrDuplicateEmail, c.Email)
		}
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.cashiers[c.ID] = *c
	return nil
}

func (r cashierRepo) GetByEmail(_ context.Context, email string) (*cashier.Cashier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cashiers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, cashier.ErrCashierNotFound
}

func (r cashierRepo) GetByID(_ context.Context, id uuid.UUID) (*cashier.Cashier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cashiers[id]
	if !ok {
		return nil, cashier.ErrCashierNotFound
	}
	return &c, nil
}
