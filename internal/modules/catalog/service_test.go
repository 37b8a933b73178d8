package catalog_test

import (
	"context"
	"testing"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() catalog.ProductRequest {
	return catalog.ProductRequest{
		Name:     " Notebook ",
		SKU:      "NB-01",
		Category: "Stationery",
		Price:    decimal.RequireFromString("3.50"),
		Stock:    10,
	}
}

func TestCreateProductValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*catalog.ProductRequest)
	}{
		{"missing name", func(r *catalog.ProductRequest) { r.Name = "  " }},
		{"missing sku", func(r *catalog.ProductRequest) { r.SKU = "" }},
		{"zero price", func(r *catalog.ProductRequest) { r.Price = decimal.Zero }},
		{"negative price", func(r *catalog.ProductRequest) { r.Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(r *catalog.ProductRequest) { r.Stock = -1 }},
	}
	svc := catalog.NewService(memory.NewStore().Catalog())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := svc.CreateProduct(context.Background(), req)
			assert.ErrorIs(t, err, catalog.ErrInvalidProduct)
		})
	}
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore().Catalog())

	p, err := svc.CreateProduct(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Notebook", p.Name)
	assert.Equal(t, int64(1), p.Version)

	_, err = svc.CreateProduct(ctx, validRequest())
	assert.ErrorIs(t, err, catalog.ErrDuplicateSKU)

	req := validRequest()
	req.Price = decimal.RequireFromString("4.00")
	updated, err := svc.UpdateProduct(ctx, p.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, int64(2), updated.Version)

	list, err := svc.ListProducts(ctx, "Stationery")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.ListProducts(ctx, "Food")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), catalog.ErrProductNotFound)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore().Catalog())

	_, err := svc.CreateCategory(ctx, catalog.CategoryRequest{Name: ""})
	assert.ErrorIs(t, err, catalog.ErrInvalidProduct)

	c, err := svc.CreateCategory(ctx, catalog.CategoryRequest{Name: "Stationery"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, catalog.CategoryRequest{Name: "Stationery"})
	assert.ErrorIs(t, err, catalog.ErrDuplicateCategory)

	p, err := svc.CreateProduct(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.RenameCategory(ctx, "Stationery", "Office"))
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Category)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Office", cats[0].Name)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	got, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Category)
}

func TestProductIDOf(t *testing.T) {
	p, err := catalog.NewService(memory.NewStore().Catalog()).CreateProduct(context.Background(), validRequest())
	require.NoError(t, err)

	id, ok := catalog.ProductIDOf(&catalog.StockError{ProductID: p.ID})
	assert.True(t, ok)
	assert.Equal(t, p.ID, id)

	_, ok = catalog.ProductIDOf(catalog.ErrInvalidProduct)
	assert.False(t, ok)
}
