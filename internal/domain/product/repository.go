package product

import "context"

// Lookup is the read-side contract the basket ledger depends on.
type Lookup interface {
	Get(ctx context.Context, id string) (*Product, error)
}

type Repository interface {
	Lookup
	Save(ctx context.Context, p *Product) error
	// Delete removes the product. Cascading deletion of basket lines is the
	// caller's responsibility; see the catalog service.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Product, error)
}

type ReviewRepository interface {
	Add(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID string) ([]*Review, error)
}
