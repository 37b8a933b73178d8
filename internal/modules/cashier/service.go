package cashier

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service defines cashier account management.
type Service interface {
	Register(ctx context.Context, email, password, name, role string) (*Cashier, error)
	Get(ctx context.Context, id uuid.UUID) (*Cashier, error)
}

const minPasswordLen = 8

type service struct {
	repo Repository
}

// NewService creates a new cashier service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password, name, role string) (*Cashier, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidCashier)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidCashier, minPasswordLen)
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	switch role {
	case "":
		role = RoleCashier
	case RoleCashier, RoleManager:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidCashier, role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	c := &Cashier{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(name),
		Role:         role,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Cashier, error) {
	return s.repo.GetByID(ctx, id)
}
