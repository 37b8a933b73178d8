package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines product and category storage.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	// GetByID returns a *NotFoundError when the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	CurrentStock(ctx context.Context, id uuid.UUID) (int, error)
	List(ctx context.Context, category string) ([]*Product, error)
	// Update writes p if its Version still matches and increments it.
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	// RenameCategory renames the category and relabels its products together.
	RenameCategory(ctx context.Context, oldName, newName string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}
