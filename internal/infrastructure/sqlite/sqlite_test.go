package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	orderdomain "github.com/Denis-77/megano-store/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *LineStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return NewLineStore(db)
}

func TestLineStoreUpsertReplacesQuantity(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	alice := basketdomain.UserOwner("alice")

	require.NoError(t, s.Upsert(ctx, alice, "5", 2))
	require.NoError(t, s.Upsert(ctx, alice, "5", 3))

	qty, err := s.Get(ctx, alice, "5")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)
}

func TestLineStoreMissingLineIsZero(t *testing.T) {
	s := openTestDB(t)
	qty, err := s.Get(context.Background(), basketdomain.UserOwner("alice"), "nope")
	require.NoError(t, err)
	assert.Zero(t, qty)
}

func TestLineStoreUpsertZeroDeletes(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	alice := basketdomain.UserOwner("alice")

	require.NoError(t, s.Upsert(ctx, alice, "5", 2))
	require.NoError(t, s.Upsert(ctx, alice, "5", 0))

	lines, err := s.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLineStoreOwnersDoNotCollide(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	// A user and a guest session with the same raw id are distinct owners.
	require.NoError(t, s.Upsert(ctx, basketdomain.UserOwner("42"), "5", 1))
	require.NoError(t, s.Upsert(ctx, basketdomain.GuestOwner("42"), "5", 9))

	qty, err := s.Get(ctx, basketdomain.UserOwner("42"), "5")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	require.NoError(t, s.Clear(ctx, basketdomain.UserOwner("42")))
	qty, err = s.Get(ctx, basketdomain.GuestOwner("42"), "5")
	require.NoError(t, err)
	assert.Equal(t, 9, qty)
}

func TestLineStorePurgeProduct(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, basketdomain.UserOwner("alice"), "5", 1))
	require.NoError(t, s.Upsert(ctx, basketdomain.UserOwner("bob"), "5", 2))
	require.NoError(t, s.Upsert(ctx, basketdomain.UserOwner("bob"), "7", 2))

	require.NoError(t, s.PurgeProduct(ctx, "5"))

	lines, err := s.List(ctx, basketdomain.UserOwner("bob"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "7", lines[0].ProductID)
}

func TestOrderStoreRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	s := NewOrderStore(db)

	o, err := orderdomain.New("o1", "alice", []orderdomain.Line{
		{ProductID: "5", Title: "whatnot", Quantity: 2, UnitPriceCents: 1999},
		{ProductID: "7", Title: "other", Quantity: 1, UnitPriceCents: 500},
	}, 4498, orderdomain.Delivery{City: "Riga", PaymentType: "online"})
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, o))

	got, err := s.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, o.UserID, got.UserID)
	assert.Equal(t, o.TotalCostCents, got.TotalCostCents)
	assert.Equal(t, o.Status, got.Status)
	assert.Equal(t, "Riga", got.Delivery.City)
	assert.ElementsMatch(t, o.Lines, got.Lines)
	assert.True(t, got.CreatedAt.Equal(o.CreatedAt))

	require.NoError(t, got.MarkAwaitingPayment())
	require.NoError(t, s.Update(ctx, got))

	got, err = s.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusAwaitingPayment, got.Status)

	byUser, err := s.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, &orderdomain.Order{ID: "missing"}), orderdomain.ErrNotFound)
}
