package catalog

import (
	"context"
	"fmt"

	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/observability"
)

const catalogService = "catalog-service"

// Service covers the thin catalog surface: product reads plus the explicit
// deletion policy. Removing a product cascades to its basket lines by an
// explicit call, not by storage-level magic; guest session blobs cannot be
// reached here and are cleaned up lazily when the login merge skips ids that
// no longer resolve.
type Service struct {
	products product.Repository
	lines    basketdomain.LineStore
	log      observability.Logger
}

func NewService(products product.Repository, lines basketdomain.LineStore, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		products: products,
		lines:    lines,
		log:      tel.Logger().With(observability.F("service", catalogService)),
	}
}

func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*product.Product, error) {
	return s.products.List(ctx)
}

func (s *Service) Save(ctx context.Context, p *product.Product) error {
	if err := s.products.Save(ctx, p); err != nil {
		return fmt.Errorf("catalog: save: %w", err)
	}
	return nil
}

// Delete removes the product and then its basket lines, in that order, so a
// concurrent add cannot resurrect a line for a product that still resolves.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("catalog: delete: %w", err)
	}
	if err := s.lines.PurgeProduct(ctx, id); err != nil {
		return fmt.Errorf("catalog: delete cascade: %w", err)
	}
	s.log.Info("product_deleted", observability.F("product_id", id))
	return nil
}
