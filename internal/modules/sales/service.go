package sales

import (
	"context"
	"io"
	"sort"

	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the read-only sales ledger.
type Service interface {
	List(ctx context.Context, f Filter) ([]*Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*Sale, error)
	Summary(ctx context.Context, f Filter) (*Summary, error)
	Receipt(ctx context.Context, id uuid.UUID) (string, error)
	ExportCSV(ctx context.Context, w io.Writer, f Filter) error
}

const bestSellerLimit = 5

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) List(ctx context.Context, f Filter) ([]*Sale, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Summary(ctx context.Context, f Filter) (*Summary, error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return Summarize(list), nil
}

func (s *service) Receipt(ctx context.Context, id uuid.UUID) (string, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderReceipt(sale), nil
}

func (s *service) ExportCSV(ctx context.Context, w io.Writer, f Filter) error {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return err
	}
	return WriteCSV(w, list)
}

// Summarize aggregates sales. Best sellers are ranked by units, then by name.
func Summarize(list []*Sale) *Summary {
	sum := &Summary{Revenue: decimal.Zero, Tax: decimal.Zero, BestSellers: []BestSeller{}}
	byProduct := map[uuid.UUID]*BestSeller{}
	for _, sale := range list {
		sum.SaleCount++
		sum.Revenue = sum.Revenue.Add(sale.Total)
		sum.Tax = sum.Tax.Add(sale.Tax)
		for _, l := range sale.Lines {
			sum.ItemsSold += l.Quantity
			b, ok := byProduct[l.ProductID]
			if !ok {
				b = &BestSeller{ProductID: l.ProductID, ProductName: l.ProductName, Revenue: decimal.Zero}
				byProduct[l.ProductID] = b
			}
			b.Quantity += l.Quantity
			b.Revenue = b.Revenue.Add(l.LineTotal())
		}
	}

	for _, b := range byProduct {
		sum.BestSellers = append(sum.BestSellers, *b)
	}
	sort.Slice(sum.BestSellers, func(i, j int) bool {
		a, b := sum.BestSellers[i], sum.BestSellers[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductName < b.ProductName
	})
	if len(sum.BestSellers) > bestSellerLimit {
		sum.BestSellers = sum.BestSellers[:bestSellerLimit]
	}
	return sum
}

// Verify recomputes subtotal, tax and total from the sale's lines and tax
// rate and returns every stored value that differs.
func Verify(s *Sale) []Mismatch {
	computed := pricing.Calculate(s.PricingLines(), s.TaxRate)
	var out []Mismatch
	check := func(field string, stored, want decimal.Decimal) {
		if !stored.Equal(want) {
			out = append(out, Mismatch{Field: field, Stored: stored, Computed: want})
		}
	}
	check("subtotal", s.Subtotal, computed.Subtotal)
	check("tax", s.Tax, computed.Tax)
	check("total", s.Total, computed.Total)
	if s.AmountTendered.Valid {
		check("change", s.Change, pricing.Change(s.AmountTendered.Decimal, s.Total))
	}
	return out
}
