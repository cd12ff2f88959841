package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrNoLines         = errors.New("order: at least one line is required")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
	ErrInvalidState    = errors.New("order: invalid status transition")
)

type Status string

const (
	StatusProductsSelected Status = "products selected"
	StatusAwaitingPayment  Status = "awaiting payment"
	StatusPaid             Status = "paid"
	StatusPaymentFailed    Status = "payment failed"
)

// Line is an immutable snapshot of one basket line at draft time. Prices are
// captured here and never re-read from the catalog.
type Line struct {
	ProductID      string
	Title          string
	Quantity       int
	UnitPriceCents int64
}

// Delivery captures the contact and shipping details copied from the user's
// profile when the order is drafted.
type Delivery struct {
	Name         string
	Email        string
	Phone        string
	City         string
	Address      string
	DeliveryType string
	PaymentType  string
}

type Order struct {
	ID             string
	UserID         string
	Lines          []Line
	TotalCostCents int64
	Status         Status
	Delivery       Delivery
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func New(id, userID string, lines []Line, totalCostCents int64, delivery Delivery) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now().UTC()
	return &Order{
		ID:             id,
		UserID:         userID,
		Lines:          append([]Line(nil), lines...),
		TotalCostCents: totalCostCents,
		Status:         StatusProductsSelected,
		Delivery:       delivery,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MarkAwaitingPayment moves a freshly drafted order to the payment step.
func (o *Order) MarkAwaitingPayment() error {
	if o.Status != StatusProductsSelected && o.Status != StatusPaymentFailed {
		return ErrInvalidState
	}
	o.Status = StatusAwaitingPayment
	o.touch()
	return nil
}

func (o *Order) MarkPaid() error {
	if o.Status != StatusAwaitingPayment {
		return ErrInvalidState
	}
	o.Status = StatusPaid
	o.touch()
	return nil
}

func (o *Order) MarkPaymentFailed() error {
	if o.Status != StatusAwaitingPayment {
		return ErrInvalidState
	}
	o.Status = StatusPaymentFailed
	o.touch()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
