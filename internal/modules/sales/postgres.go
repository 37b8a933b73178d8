package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// Execer is the subset of *sql.Tx that Insert needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Insert writes the sale header and its lines using tx. It is called from
// inside the checkout transaction and never commits on its own.
func Insert(ctx context.Context, tx Execer, s *Sale) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales
		  (id, subtotal, tax_rate, tax, total, payment_method, amount_tendered, change_due, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.Subtotal, s.TaxRate, s.Tax, s.Total, s.PaymentMethod,
		s.AmountTendered, s.Change, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for i, l := range s.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			s.ID, i, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert sale_item: %w", err)
		}
	}
	return nil
}

const saleColumns = `id,subtotal,tax_rate,tax,total,payment_method,amount_tendered,change_due,created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	s, err := r.scanSale(r.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id=$1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSaleNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	s.Lines, err = r.listLines(ctx, s.ID)
	return s, err
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []interface{}{}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	if f.Method != "" {
		args = append(args, f.Method)
		query += fmt.Sprintf(` AND payment_method = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Sale
	for rows.Next() {
		s, err := r.scanSale(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		if s.Lines, err = r.listLines(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *postgresRepo) scanSale(scan func(...interface{}) error) (*Sale, error) {
	s := &Sale{}
	err := scan(&s.ID, &s.Subtotal, &s.TaxRate, &s.Tax, &s.Total, &s.PaymentMethod,
		&s.AmountTendered, &s.Change, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) listLines(ctx context.Context, saleID uuid.UUID) ([]SaleLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price
		FROM sale_items WHERE sale_id=$1 ORDER BY position ASC`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
