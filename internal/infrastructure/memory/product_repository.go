package memory

import (
	"context"
	"sync"

	domain "github.com/Denis-77/megano-store/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	reviews  map[string][]*domain.Review
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
		reviews:  make(map[string][]*domain.Review),
	}
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	delete(r.reviews, id)
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *ProductRepository) AddReview(ctx context.Context, rv *domain.Review) error {
	_ = ctx
	if rv == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *rv
	r.reviews[rv.ProductID] = append(r.reviews[rv.ProductID], &clone)
	return nil
}

func (r *ProductRepository) ListReviewsByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Review, 0, len(r.reviews[productID]))
	for _, rv := range r.reviews[productID] {
		clone := *rv
		out = append(out, &clone)
	}
	return out, nil
}

// Reviews adapts the repository to the product.ReviewRepository port.
func (r *ProductRepository) Reviews() domain.ReviewRepository {
	return reviewStore{r}
}

type reviewStore struct{ r *ProductRepository }

func (s reviewStore) Add(ctx context.Context, rv *domain.Review) error {
	return s.r.AddReview(ctx, rv)
}

func (s reviewStore) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	return s.r.ListReviewsByProduct(ctx, productID)
}
