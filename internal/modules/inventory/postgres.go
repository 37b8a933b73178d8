package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// AdjustStock locks the row for the duration of the change.
func (r *postgresRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int, reason string) (*Movement, error) {
	return r.apply(ctx, id, reason, func(current int) int { return current + delta })
}

func (r *postgresRepo) SetStock(ctx context.Context, id uuid.UUID, qty int) (*Movement, error) {
	return r.apply(ctx, id, ReasonCount, func(int) int { return qty })
}

func (r *postgresRepo) apply(ctx context.Context, id uuid.UUID, reason string, next func(int) int) (*Movement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &catalog.NotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}

	target := next(current)
	if target < 0 {
		return nil, &catalog.StockError{ProductID: id, Requested: current - target, Available: current}
	}

	m := &Movement{
		ID:        uuid.New(),
		ProductID: id,
		Delta:     target - current,
		Reason:    reason,
		StockFrom: current,
		StockTo:   target,
	}
	err = tx.QueryRowContext(ctx, `
		UPDATE products SET stock=$1, version=version+1, updated_at=NOW()
		WHERE id=$2 RETURNING updated_at`, target, id).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return m, tx.Commit()
}

func (r *postgresRepo) ListLowStock(ctx context.Context, threshold int) ([]*LowStockItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, sku, stock FROM products
		WHERE stock <= $1 ORDER BY stock ASC, name ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LowStockItem
	for rows.Next() {
		it := &LowStockItem{}
		if err := rows.Scan(&it.ProductID, &it.Name, &it.SKU, &it.Stock); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
