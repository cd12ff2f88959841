package basket

import (
	"context"
	"testing"

	domain "github.com/Denis-77/megano-store/internal/domain/basket"
	"github.com/Denis-77/megano-store/internal/infrastructure/memory"
	"github.com/Denis-77/megano-store/internal/infrastructure/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestSession(t *testing.T, blob string) *memory.SessionHandle {
	t.Helper()
	handle := memory.NewSessionStore().Handle("s1")
	if blob != "" {
		require.NoError(t, handle.SetBlob(context.Background(), blob))
	}
	return handle
}

func TestMergeFoldsGuestLinesIntoUserBasket(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "5", 10)
	f.addProduct(t, "7", 10)
	handle := guestSession(t, `{"5": 2, "7": 1}`)

	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))

	owner := domain.UserOwner("u1")
	qty, err := f.lines.Get(context.Background(), owner, "5")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	qty, err = f.lines.Get(context.Background(), owner, "7")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	blob, err := handle.GetBlob(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blob)
}

func TestMergeClampsInsteadOfRejecting(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "5", 2)
	owner := domain.UserOwner("u1")

	// The user already holds the whole stock; a normal add would reject.
	_, err := f.ledger.Add(context.Background(), owner, "5", 2)
	require.NoError(t, err)

	handle := guestSession(t, `{"5": 1}`)
	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))

	qty, err := f.lines.Get(context.Background(), owner, "5")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestMergeSkipsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "5", 10)
	handle := guestSession(t, `{"5": 1, "gone": 4}`)

	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))

	owner := domain.UserOwner("u1")
	qty, err := f.lines.Get(context.Background(), owner, "5")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	qty, err = f.lines.Get(context.Background(), owner, "gone")
	require.NoError(t, err)
	assert.Zero(t, qty)
}

func TestMergeDiscardIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "5", 10)
	handle := guestSession(t, `{"5": 2}`)

	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))
	// The blob was consumed; running the merge again is a no-op.
	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))

	qty, err := f.lines.Get(context.Background(), domain.UserOwner("u1"), "5")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestMergeNoGuestBasketIsNoOp(t *testing.T) {
	f := newFixture(t)
	handle := guestSession(t, "")

	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))

	lines, err := f.ledger.List(context.Background(), domain.UserOwner("u1"))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMergeCorruptBlobPropagates(t *testing.T) {
	f := newFixture(t)
	handle := guestSession(t, "not json")

	err := f.ledger.MergeOnLogin(context.Background(), "u1", handle)
	assert.ErrorIs(t, err, domain.ErrCorruptState)

	// The session layer decides what to do with a corrupt blob; it stays put.
	blob, getErr := handle.GetBlob(context.Background())
	require.NoError(t, getErr)
	assert.Equal(t, "not json", blob)
}

func TestGuestBasketThenLogin(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "5", 3)

	store := memory.NewSessionStore()
	handle := store.Handle("s1")
	guestLedger := f.ledger.WithLines(session.NewLineStore(handle))
	guest := domain.GuestOwner("s1")

	// Guest picks up one unit, then one more.
	_, err := guestLedger.Add(context.Background(), guest, "5", 1)
	require.NoError(t, err)
	_, err = guestLedger.Add(context.Background(), guest, "5", 1)
	require.NoError(t, err)

	blob, err := handle.GetBlob(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"5": 2}`, blob)

	require.NoError(t, f.ledger.MergeOnLogin(context.Background(), "u1", handle))

	qty, err := f.lines.Get(context.Background(), domain.UserOwner("u1"), "5")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	blob, err = handle.GetBlob(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blob)
}

func TestGuestAddFollowsSameClampRules(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "5", 2)

	handle := memory.NewSessionStore().Handle("s1")
	guestLedger := f.ledger.WithLines(session.NewLineStore(handle))
	guest := domain.GuestOwner("s1")

	line, err := guestLedger.Add(context.Background(), guest, "5", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	_, err = guestLedger.Add(context.Background(), guest, "5", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
