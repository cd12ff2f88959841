package basket

import "context"

// LineStore persists basket lines for one kind of owner. The durable store
// keeps per-user rows; the guest adapter keeps lines inside the session blob.
type LineStore interface {
	// Get returns the current quantity for (owner, productID), 0 if absent.
	Get(ctx context.Context, owner Owner, productID string) (int, error)
	Upsert(ctx context.Context, owner Owner, productID string, quantity int) error
	Delete(ctx context.Context, owner Owner, productID string) error
	List(ctx context.Context, owner Owner) ([]Line, error)
	// Clear drops every line the owner has.
	Clear(ctx context.Context, owner Owner) error
	// PurgeProduct drops the product's lines across all owners. Used by the
	// explicit product-delete cascade.
	PurgeProduct(ctx context.Context, productID string) error
}

// SessionStore reads and writes the opaque guest basket blob owned by a
// single anonymous session.
type SessionStore interface {
	GetBlob(ctx context.Context) (string, error)
	SetBlob(ctx context.Context, blob string) error
	ClearBlob(ctx context.Context) error
}
