package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/stockly-pos/internal/platform/database"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// ProductColumns is the select list ScanProduct expects.
const ProductColumns = `id,name,sku,category,price,stock,version,created_at,updated_at`

// ScanProduct reads one row selected with ProductColumns.
func ScanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.Stock,
		&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, sku, category, price, stock, version)
		VALUES ($1,$2,$3,$4,$5,$6,1)
		RETURNING version, created_at, updated_at`,
		p.ID, p.Name, p.SKU, p.Category, p.Price, p.Stock).
		Scan(&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, p.SKU)
	}
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ProductColumns+` FROM products WHERE id=$1`, id)
	p, err := ScanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ProductID: id}
	}
	return p, err
}

func (r *postgresRepo) CurrentStock(ctx context.Context, id uuid.UUID) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id=$1`, id).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &NotFoundError{ProductID: id}
	}
	return stock, err
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]*Product, error) {
	query := `SELECT ` + ProductColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	if category != "" {
		query += ` AND category=$1`
		args = append(args, category)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := ScanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name=$1, sku=$2, category=$3, price=$4, stock=$5,
		    version=version+1, updated_at=NOW()
		WHERE id=$6 AND version=$7
		RETURNING version, updated_at`,
		p.Name, p.SKU, p.Category, p.Price, p.Stock, p.ID, p.Version).
		Scan(&p.Version, &p.UpdatedAt)
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, p.SKU)
	case errors.Is(err, sql.ErrNoRows):
		current, gerr := r.GetByID(ctx, p.ID)
		if gerr != nil {
			return gerr
		}
		return &ConcurrentModificationError{ProductID: p.ID, Expected: p.Version, Actual: current.Version}
	}
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ProductID: id}
	}
	return nil
}

// ── categories ────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateCategory(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, description) VALUES ($1,$2,$3)
		RETURNING created_at`, c.ID, c.Name, c.Description).Scan(&c.CreatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
	}
	return err
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []*Category
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// RenameCategory relabels products inside the same transaction as the rename.
func (r *postgresRepo) RenameCategory(ctx context.Context, oldName, newName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE categories SET name=$1 WHERE name=$2`, newName, oldName)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, newName)
	}
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, oldName)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE products SET category=$1, version=version+1, updated_at=NOW()
		WHERE category=$2`, newName, oldName); err != nil {
		return fmt.Errorf("relabel products: %w", err)
	}
	return tx.Commit()
}

// DeleteCategory leaves products labelled with the old name untouched.
func (r *postgresRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	return nil
}
