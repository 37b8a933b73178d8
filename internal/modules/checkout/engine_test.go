package checkout_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/checkout"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/georgemunganga/stockly-pos/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSettleCashScenario(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	cart := cartWith(t, store, a.ID, a.ID)

	sale, err := newEngine(store).Settle(ctx, cart, checkout.SettleRequest{
		TaxRate:        dec("10"),
		Method:         payment.MethodCash,
		AmountTendered: tendered("25.00"),
	})
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(dec("20.00")))
	assert.True(t, sale.Tax.Equal(dec("2.00")))
	assert.True(t, sale.Total.Equal(dec("22.00")))
	assert.True(t, sale.Change.Equal(dec("3.00")))
	assert.True(t, sale.AmountTendered.Valid)
	assert.True(t, sale.TaxRate.Equal(dec("10")))
	assert.Equal(t, payment.MethodCash, sale.PaymentMethod)
	assert.Equal(t, fixedNow, sale.CreatedAt)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, a.ID, sale.Lines[0].ProductID)
	assert.Equal(t, "A", sale.Lines[0].ProductName)
	assert.Equal(t, 2, sale.Lines[0].Quantity)
	assert.True(t, sale.Lines[0].UnitPrice.Equal(dec("10.00")))

	assert.Equal(t, 1, stockOf(t, store, a.ID))

	list, err := store.Sales().List(ctx, sales.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sale, list[0])

	// settling never clears the cart; that is the caller's job
	assert.Equal(t, 2, cart.Quantity(a.ID))
}

func TestSettleInsufficientPaymentLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	cart := cartWith(t, store, a.ID, a.ID)

	for _, amount := range []decimal.NullDecimal{tendered("20.00"), tendered("21.999"), {}} {
		_, err := newEngine(store).Settle(ctx, cart, checkout.SettleRequest{
			TaxRate:        dec("10"),
			Method:         payment.MethodCash,
			AmountTendered: amount,
		})
		require.ErrorIs(t, err, checkout.ErrInsufficientPayment)
	}

	assert.Equal(t, 3, stockOf(t, store, a.ID))
	assert.Zero(t, ledgerLen(t, store))
	pending, err := store.Outbox().Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSettleExactCashHasZeroChange(t *testing.T) {
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	sale, err := newEngine(store).Settle(context.Background(), cartWith(t, store, a.ID), checkout.SettleRequest{
		TaxRate:        dec("10"),
		Method:         payment.MethodCash,
		AmountTendered: tendered("11.00"),
	})
	require.NoError(t, err)
	assert.True(t, sale.Change.IsZero())
}

func TestSettleCardIgnoresTendered(t *testing.T) {
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	sale, err := newEngine(store).Settle(context.Background(), cartWith(t, store, a.ID), checkout.SettleRequest{
		TaxRate:        dec("10"),
		Method:         payment.MethodCard,
		AmountTendered: tendered("1.00"),
	})
	require.NoError(t, err)
	assert.False(t, sale.AmountTendered.Valid)
	assert.True(t, sale.Change.IsZero())
	assert.True(t, sale.Total.Equal(dec("11")))
	assert.Equal(t, 2, stockOf(t, store, a.ID))
}

func TestSettleEmptyCart(t *testing.T) {
	store := memory.NewStore()
	newProduct(t, store, "A", "10.00", 3)

	_, err := newEngine(store).Settle(context.Background(), checkout.NewCart(), checkout.SettleRequest{
		TaxRate: dec("10"),
		Method:  payment.MethodCard,
	})
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Zero(t, ledgerLen(t, store))
}

func TestSettleRejectsBadRequest(t *testing.T) {
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	cart := cartWith(t, store, a.ID)

	_, err := newEngine(store).Settle(context.Background(), cart, checkout.SettleRequest{
		TaxRate: dec("-1"),
		Method:  payment.MethodCard,
	})
	assert.ErrorIs(t, err, checkout.ErrInvalidTaxRate)

	_, err = newEngine(store).Settle(context.Background(), cart, checkout.SettleRequest{
		TaxRate: dec("10"),
		Method:  payment.Method("voucher"),
	})
	assert.ErrorIs(t, err, checkout.ErrUnsupportedMethod)
	assert.Equal(t, 3, stockOf(t, store, a.ID))
}

func TestSettleRevalidatesStockAtCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	b := newProduct(t, store, "B", "5.00", 5)
	cart := cartWith(t, store, b.ID, a.ID, a.ID)

	// stock drops after the lines were added
	_, err := store.Inventory().SetStock(ctx, a.ID, 1)
	require.NoError(t, err)

	_, err = newEngine(store).Settle(ctx, cart, checkout.SettleRequest{TaxRate: dec("10"), Method: payment.MethodCard})
	require.ErrorIs(t, err, checkout.ErrInsufficientStock)
	id, ok := catalog.ProductIDOf(err)
	require.True(t, ok)
	assert.Equal(t, a.ID, id)

	// no partial decrement of the line that did fit
	assert.Equal(t, 5, stockOf(t, store, b.ID))
	assert.Equal(t, 1, stockOf(t, store, a.ID))
	assert.Zero(t, ledgerLen(t, store))
	assert.Equal(t, 2, cart.Quantity(a.ID))
}

func TestSettleDeletedProduct(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	cart := cartWith(t, store, a.ID)
	require.NoError(t, store.Catalog().Delete(ctx, a.ID))

	_, err := newEngine(store).Settle(ctx, cart, checkout.SettleRequest{TaxRate: dec("10"), Method: payment.MethodCard})
	assert.ErrorIs(t, err, checkout.ErrProductNotFound)
}

func TestSettleCapturesPriceAndNameAtCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	cart := cartWith(t, store, a.ID)

	a.Price = dec("8.00")
	a.Name = "A (sale)"
	require.NoError(t, store.Catalog().Update(ctx, a))

	sale, err := newEngine(store).Settle(ctx, cart, checkout.SettleRequest{TaxRate: dec("0"), Method: payment.MethodCard})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("8")))
	assert.Equal(t, "A (sale)", sale.Lines[0].ProductName)

	// later edits do not reach the recorded sale
	a, err = store.Catalog().GetByID(ctx, a.ID)
	require.NoError(t, err)
	a.Price = dec("99")
	a.Name = "renamed"
	require.NoError(t, store.Catalog().Update(ctx, a))
	require.NoError(t, store.Catalog().Delete(ctx, a.ID))

	got, err := store.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "A (sale)", got.Lines[0].ProductName)
	assert.True(t, got.Lines[0].UnitPrice.Equal(dec("8.00")))
	assert.Empty(t, sales.Verify(got))
}

func TestSettleEnqueuesSaleEvent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)

	sale, err := newEngine(store).Settle(ctx, cartWith(t, store, a.ID), checkout.SettleRequest{
		TaxRate: dec("10"),
		Method:  payment.MethodCard,
	})
	require.NoError(t, err)

	pending, err := store.Outbox().Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, outbox.EventSaleCommitted, pending[0].EventType)
	assert.Equal(t, "stockly.sales", pending[0].Topic)
	assert.Equal(t, sale.ID.String(), pending[0].Key)

	var decoded sales.Sale
	require.NoError(t, json.Unmarshal(pending[0].Payload, &decoded))
	assert.Equal(t, sale.ID, decoded.ID)
	assert.True(t, decoded.Total.Equal(sale.Total))
}

func TestSettleRoundTripsThroughVerify(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := []uuid.UUID{
		newProduct(t, store, "A", "0.333", 10).ID,
		newProduct(t, store, "B", "19.99", 10).ID,
		newProduct(t, store, "C", "1.005", 10).ID,
	}
	for _, rate := range []string{"0", "7.5", "10", "16.125"} {
		cart := cartWith(t, store, ids[0], ids[1], ids[2], ids[2])
		sale, err := newEngine(store).Settle(ctx, cart, checkout.SettleRequest{
			TaxRate:        dec(rate),
			Method:         payment.MethodCash,
			AmountTendered: tendered("100"),
		})
		require.NoError(t, err)

		stored, err := store.Sales().GetByID(ctx, sale.ID)
		require.NoError(t, err)
		assert.Empty(t, sales.Verify(stored), "rate %s", rate)
	}
}

func TestConcurrentSettleNeverOversells(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	engine := newEngine(store)

	const terminals = 8
	carts := make([]*checkout.Cart, terminals)
	for i := range carts {
		carts[i] = cartWith(t, store, a.ID, a.ID)
	}

	results := make([]error, terminals)
	var g errgroup.Group
	for i := range carts {
		i := i
		g.Go(func() error {
			_, results[i] = engine.Settle(ctx, carts[i], checkout.SettleRequest{
				TaxRate: dec("10"),
				Method:  payment.MethodCard,
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	committed := 0
	for _, err := range results {
		if err == nil {
			committed++
			continue
		}
		assert.True(t, errorsIsAny(err, checkout.ErrInsufficientStock, checkout.ErrConcurrentModification), err)
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, stockOf(t, store, a.ID))
	assert.Equal(t, 1, ledgerLen(t, store))
}

// staleRepo hands the engine product reads that another writer has since
// overtaken, as a rival commit between read and conditional update would.
type staleRepo struct {
	inner checkout.Repository
	stale uuid.UUID
	skew  func(p *catalog.Product)
}

func (r *staleRepo) Atomic(ctx context.Context, fn func(tx checkout.Tx) error) error {
	return r.inner.Atomic(ctx, func(tx checkout.Tx) error {
		return fn(&staleTx{Tx: tx, repo: r})
	})
}

type staleTx struct {
	checkout.Tx
	repo *staleRepo
}

func (t *staleTx) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, err := t.Tx.GetProduct(ctx, id)
	if err != nil || id != t.repo.stale {
		return p, err
	}
	read := *p
	t.repo.skew(&read)
	return &read, nil
}

func TestSettleAbortsWhenProductChangedAfterRead(t *testing.T) {
	cases := []struct {
		name    string
		bStock  int // B's real stock once the cart is built
		skew    func(p *catalog.Product)
		want    error
		outcome string
	}{
		{
			name:    "version moved",
			bStock:  2,
			skew:    func(p *catalog.Product) { p.Version-- },
			want:    checkout.ErrConcurrentModification,
			outcome: "concurrent_modification",
		},
		{
			name:    "stock sold elsewhere",
			bStock:  1,
			skew:    func(p *catalog.Product) { p.Stock += 10 },
			want:    checkout.ErrInsufficientStock,
			outcome: "insufficient_stock",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			a := newProduct(t, store, "A", "4.00", 5)
			b := newProduct(t, store, "B", "6.00", 2)
			cart := cartWith(t, store, a.ID, a.ID, b.ID, b.ID)
			if tc.bStock != 2 {
				_, err := store.Inventory().SetStock(ctx, b.ID, tc.bStock)
				require.NoError(t, err)
			}
			repo := &staleRepo{inner: store, stale: b.ID, skew: tc.skew}
			engine := checkout.NewEngine(repo, payment.DefaultRegistry(), "stockly.sales")

			sale, err := engine.Settle(ctx, cart, checkout.SettleRequest{TaxRate: dec("10"), Method: payment.MethodCard})
			require.Error(t, err)
			assert.Nil(t, sale)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.outcome, checkout.Outcome(err))
			id, ok := catalog.ProductIDOf(err)
			require.True(t, ok)
			assert.Equal(t, b.ID, id)

			// A's decrement was staged before B failed and must be discarded.
			assert.Equal(t, 5, stockOf(t, store, a.ID))
			assert.Equal(t, tc.bStock, stockOf(t, store, b.ID))
			assert.Zero(t, ledgerLen(t, store))
			pending, err := store.Outbox().Pending(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, pending)
			assert.Equal(t, 4, cart.Quantity(a.ID)+cart.Quantity(b.ID))
		})
	}
}
