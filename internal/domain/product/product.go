package product

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound    = errors.New("product: not found")
	ErrInvalidRate = errors.New("product: rate must be between 1 and 5")
)

// Product is a catalog entry. AvailableCount is the authoritative cap for any
// basket line referencing the product.
type Product struct {
	ID             string
	Title          string
	Description    string
	PriceCents     int64
	AvailableCount int
	Rating         float64
	Sold           int
	FreeDelivery   bool
	Category       string
	Tags           []string
	CreatedAt      time.Time
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Tags = append([]string(nil), p.Tags...)
	return &clone
}

type Review struct {
	ProductID string
	UserID    string
	Text      string
	Rate      int
	Date      time.Time
}

func NewReview(productID, userID, text string, rate int) (*Review, error) {
	if rate < 1 || rate > 5 {
		return nil, ErrInvalidRate
	}
	return &Review{
		ProductID: productID,
		UserID:    userID,
		Text:      text,
		Rate:      rate,
		Date:      time.Now().UTC(),
	}, nil
}

// AverageRating computes the mean of the given rates rounded to one decimal
// place, half away from zero. Zero reviews yield a zero rating.
func AverageRating(rates []int) float64 {
	if len(rates) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rates {
		sum += r
	}
	mean := float64(sum) / float64(len(rates))
	return math.Round(mean*10) / 10
}
