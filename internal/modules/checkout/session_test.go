package checkout_test

import (
	"context"
	"testing"

	"github.com/georgemunganga/stockly-pos/internal/modules/checkout"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRepo blocks inside Atomic until release is closed.
type gatedRepo struct {
	inner   checkout.Repository
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRepo) Atomic(ctx context.Context, fn func(tx checkout.Tx) error) error {
	close(g.entered)
	<-g.release
	return g.inner.Atomic(ctx, fn)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	sess := checkout.NewSession(store.Catalog())

	assert.Equal(t, checkout.StateBuilding, sess.State())
	require.NoError(t, sess.Add(ctx, a.ID))
	require.NoError(t, sess.Add(ctx, a.ID))

	v, err := sess.View(ctx, dec("10"))
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "22.00", v.Totals.Total.StringFixed(2))

	sale, err := sess.Settle(ctx, newEngine(store), checkout.SettleRequest{
		TaxRate:        dec("10"),
		Method:         payment.MethodCash,
		AmountTendered: tendered("25"),
	})
	require.NoError(t, err)
	assert.Equal(t, checkout.StateCommitted, sess.State())
	assert.Equal(t, sale, sess.Sale())

	v, err = sess.View(ctx, dec("10"))
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	require.NotNil(t, v.SaleID)
	assert.Equal(t, sale.ID, *v.SaleID)

	assert.ErrorIs(t, sess.Add(ctx, a.ID), checkout.ErrSessionClosed)
	assert.ErrorIs(t, sess.Remove(a.ID), checkout.ErrSessionClosed)
	_, err = sess.Settle(ctx, newEngine(store), checkout.SettleRequest{TaxRate: dec("10"), Method: payment.MethodCard})
	assert.ErrorIs(t, err, checkout.ErrSessionClosed)
}

func TestSessionFailedSettleReturnsToBuilding(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	sess := checkout.NewSession(store.Catalog())
	require.NoError(t, sess.Add(ctx, a.ID))
	require.NoError(t, sess.Add(ctx, a.ID))

	_, err := sess.Settle(ctx, newEngine(store), checkout.SettleRequest{
		TaxRate:        dec("10"),
		Method:         payment.MethodCash,
		AmountTendered: tendered("20"),
	})
	require.ErrorIs(t, err, checkout.ErrInsufficientPayment)
	assert.Equal(t, checkout.StateBuilding, sess.State())

	v, err := sess.View(ctx, dec("10"))
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 2, v.Lines[0].Quantity)

	// retry with enough cash
	_, err = sess.Settle(ctx, newEngine(store), checkout.SettleRequest{
		TaxRate:        dec("10"),
		Method:         payment.MethodCash,
		AmountTendered: tendered("22"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stockOf(t, store, a.ID))
}

func TestSessionRejectsMutationsWhileSettling(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 3)
	gate := &gatedRepo{inner: store, entered: make(chan struct{}), release: make(chan struct{})}
	engine := checkout.NewEngine(gate, payment.DefaultRegistry(), "stockly.sales")

	sess := checkout.NewSession(store.Catalog())
	require.NoError(t, sess.Add(ctx, a.ID))

	done := make(chan error, 1)
	go func() {
		_, err := sess.Settle(ctx, engine, checkout.SettleRequest{TaxRate: dec("10"), Method: payment.MethodCard})
		done <- err
	}()
	<-gate.entered

	assert.Equal(t, checkout.StateSettling, sess.State())
	assert.ErrorIs(t, sess.Add(ctx, a.ID), checkout.ErrSessionBusy)
	assert.ErrorIs(t, sess.Adjust(ctx, a.ID, 1), checkout.ErrSessionBusy)
	assert.ErrorIs(t, sess.Remove(a.ID), checkout.ErrSessionBusy)
	assert.ErrorIs(t, sess.Cancel(), checkout.ErrSessionBusy)

	close(gate.release)
	require.NoError(t, <-done)
	assert.Equal(t, checkout.StateCommitted, sess.State())
	assert.Equal(t, 2, stockOf(t, store, a.ID))
}

func TestSessionAdjustReadsLiveStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 2)
	sess := checkout.NewSession(store.Catalog())
	require.NoError(t, sess.Add(ctx, a.ID))

	assert.ErrorIs(t, sess.Adjust(ctx, a.ID, 2), checkout.ErrInsufficientStock)

	_, err := store.Inventory().AdjustStock(ctx, a.ID, 5, "restock")
	require.NoError(t, err)
	require.NoError(t, sess.Adjust(ctx, a.ID, 2))

	assert.ErrorIs(t, sess.Adjust(ctx, uuid.New(), 1), checkout.ErrLineNotFound)
	assert.ErrorIs(t, sess.Add(ctx, uuid.New()), checkout.ErrProductNotFound)
}

func TestSessionCancelKeepsSessionOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "10.00", 2)
	sess := checkout.NewSession(store.Catalog())
	require.NoError(t, sess.Add(ctx, a.ID))

	require.NoError(t, sess.Cancel())
	assert.Equal(t, checkout.StateBuilding, sess.State())

	_, err := sess.Settle(ctx, newEngine(store), checkout.SettleRequest{TaxRate: dec("10"), Method: payment.MethodCard})
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StateBuilding, sess.State())
}

func TestSessionRegistry(t *testing.T) {
	store := memory.NewStore()
	reg := checkout.NewSessionRegistry()
	s := reg.Create(store.Catalog())

	got, err := reg.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, reg.Len())

	reg.Delete(s.ID)
	_, err = reg.Get(s.ID)
	assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
}

func TestAddAfterProductDeletedReportsMissingLine(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := newProduct(t, store, "A", "5.00", 3)
	b := newProduct(t, store, "B", "10.00", 5)
	svc := checkout.NewService(newEngine(store), store.Catalog(), dec("10"), nil)

	v, err := svc.Open(ctx)
	require.NoError(t, err)
	id := v.ID
	_, err = svc.AddLine(ctx, id, a.ID)
	require.NoError(t, err)
	require.NoError(t, store.Catalog().Delete(ctx, a.ID))

	for i := 0; i < 2; i++ {
		v, err = svc.AddLine(ctx, id, b.ID)
		require.NoError(t, err, "an applied add must not report failure")
	}
	require.Len(t, v.Lines, 2)
	assert.True(t, v.Lines[0].Missing)
	assert.Equal(t, a.ID, v.Lines[0].ProductID)
	assert.False(t, v.Lines[1].Missing)
	assert.Equal(t, 2, v.Lines[1].Quantity)
	assert.Equal(t, "22.00", v.Totals.Total.StringFixed(2))

	_, err = svc.Settle(ctx, id, checkout.SettleInput{Method: payment.MethodCard})
	assert.ErrorIs(t, err, checkout.ErrProductNotFound)

	v, err = svc.RemoveLine(ctx, id, a.ID)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 2, v.Lines[0].Quantity)
}
