package catalog

import (
	"context"
	"testing"

	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/infrastructure/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCascadesToBasketLines(t *testing.T) {
	products := memory.NewProductRepository()
	lines := memory.NewLineStore()
	svc := NewService(products, lines, nil)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, &product.Product{ID: "5", Title: "whatnot", AvailableCount: 3}))
	require.NoError(t, svc.Save(ctx, &product.Product{ID: "7", Title: "other", AvailableCount: 3}))

	alice := basketdomain.UserOwner("alice")
	require.NoError(t, lines.Upsert(ctx, alice, "5", 2))
	require.NoError(t, lines.Upsert(ctx, alice, "7", 1))

	require.NoError(t, svc.Delete(ctx, "5"))

	_, err := svc.Get(ctx, "5")
	assert.ErrorIs(t, err, product.ErrNotFound)

	got, err := lines.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].ProductID)
}

func TestDeleteUnknownProduct(t *testing.T) {
	svc := NewService(memory.NewProductRepository(), memory.NewLineStore(), nil)
	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestListReturnsSavedProducts(t *testing.T) {
	svc := NewService(memory.NewProductRepository(), memory.NewLineStore(), nil)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, &product.Product{ID: "5"}))
	require.NoError(t, svc.Save(ctx, &product.Product{ID: "7"}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
