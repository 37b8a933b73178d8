package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository commits settles in one database transaction with an
// optimistic version check on every decremented product.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type pgTx struct{ tx *sql.Tx }

func (t *pgTx) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+catalog.ProductColumns+` FROM products WHERE id=$1`, id)
	p, err := catalog.ScanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &catalog.NotFoundError{ProductID: id}
	}
	return p, err
}

func (t *pgTx) DecrementStock(ctx context.Context, id uuid.UUID, qty int, expectedVersion int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products SET stock=stock-$1, version=version+1, updated_at=NOW()
		WHERE id=$2 AND version=$3 AND stock >= $1`, qty, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	// Nothing matched: find out which condition failed.
	var stock int
	var version int64
	err = t.tx.QueryRowContext(ctx, `SELECT stock, version FROM products WHERE id=$1`, id).Scan(&stock, &version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &catalog.NotFoundError{ProductID: id}
	case err != nil:
		return err
	case version != expectedVersion:
		return &catalog.ConcurrentModificationError{ProductID: id, Expected: expectedVersion, Actual: version}
	}
	return &catalog.StockError{ProductID: id, Requested: qty, Available: stock}
}

func (t *pgTx) AppendSale(ctx context.Context, s *sales.Sale) error {
	return sales.Insert(ctx, t.tx, s)
}

func (t *pgTx) Enqueue(ctx context.Context, rec outbox.Record) error {
	return outbox.Insert(ctx, t.tx, rec)
}
