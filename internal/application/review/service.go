package review

import (
	"context"
	"fmt"

	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/observability"
)

const reviewService = "review-service"

type Service struct {
	products product.Repository
	reviews  product.ReviewRepository
	log      observability.Logger
}

func NewService(products product.Repository, reviews product.ReviewRepository, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		products: products,
		reviews:  reviews,
		log:      tel.Logger().With(observability.F("service", reviewService)),
	}
}

// Add stores the review and then recomputes the product rating as an
// explicit post-commit step. The rating is the mean of all rates for the
// product rounded to one decimal place.
func (s *Service) Add(ctx context.Context, productID, userID, text string, rate int) error {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("review: add: %w", err)
	}

	r, err := product.NewReview(productID, userID, text, rate)
	if err != nil {
		return err
	}
	if err := s.reviews.Add(ctx, r); err != nil {
		return fmt.Errorf("review: add: %w", err)
	}

	all, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("review: recompute rating: %w", err)
	}
	rates := make([]int, 0, len(all))
	for _, rv := range all {
		rates = append(rates, rv.Rate)
	}
	p.Rating = product.AverageRating(rates)
	if err := s.products.Save(ctx, p); err != nil {
		return fmt.Errorf("review: recompute rating: %w", err)
	}

	s.log.Info("review_added",
		observability.F("product_id", productID),
		observability.F("rating", p.Rating),
	)
	return nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]*product.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
