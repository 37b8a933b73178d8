package cashier

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Roles a cashier account may hold.
const (
	RoleCashier = "CASHIER"
	RoleManager = "MANAGER"
)

var (
	ErrCashierNotFound = errors.New("cashier not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrInvalidCashier  = errors.New("invalid cashier")
)

// Cashier is an account allowed to operate the register.
type Cashier struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository defines cashier storage.
type Repository interface {
	Create(ctx context.Context, c *Cashier) error
	GetByEmail(ctx context.Context, email string) (*Cashier, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Cashier, error)
}
