package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/checkout"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var salesFilterAll = sales.Filter{}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tendered(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func newProduct(t *testing.T, store *memory.Store, name, price string, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		ID:       uuid.New(),
		Name:     name,
		SKU:      "SKU-" + name,
		Category: "General",
		Price:    dec(price),
		Stock:    stock,
	}
	require.NoError(t, store.Catalog().Create(context.Background(), p))
	return p
}

func newEngine(store *memory.Store) *checkout.Engine {
	return checkout.NewEngine(store, payment.DefaultRegistry(), "stockly.sales").
		WithClock(func() time.Time { return fixedNow })
}

func stockOf(t *testing.T, store *memory.Store, id uuid.UUID) int {
	t.Helper()
	n, err := store.Catalog().CurrentStock(context.Background(), id)
	require.NoError(t, err)
	return n
}

func ledgerLen(t *testing.T, store *memory.Store) int {
	t.Helper()
	list, err := store.Sales().List(context.Background(), salesFilterAll)
	require.NoError(t, err)
	return len(list)
}

func cartWith(t *testing.T, store *memory.Store, adds ...uuid.UUID) *checkout.Cart {
	t.Helper()
	cart := checkout.NewCart()
	for _, id := range adds {
		p, err := store.Catalog().GetByID(context.Background(), id)
		require.NoError(t, err)
		require.NoError(t, cart.Add(p))
	}
	return cart
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
