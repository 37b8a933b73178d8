package cashier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/platform/database"
	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL cashier repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *Cashier) error {
	query := `
		INSERT INTO cashiers (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.Email, c.PasswordHash, c.Name, c.Role).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, c.Email)
	}
	return err
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Cashier, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Cashier, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *postgresRepository) get(ctx context.Context, where string, arg interface{}) (*Cashier, error) {
	c := &Cashier{}
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM cashiers
	` + where
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.Name,
		&c.Role,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCashierNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
