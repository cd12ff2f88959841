package worker

import (
	"context"
	"errors"
	"fmt"

	domorder "github.com/Denis-77/megano-store/internal/domain/order"
	domoutbox "github.com/Denis-77/megano-store/internal/domain/outbox"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/observability"
	"github.com/Denis-77/megano-store/internal/observability/logctx"
)

// Worker keeps the catalog's sold counters in step with drafted orders by
// consuming order.created events off the bus.
type Worker struct {
	subscriber domoutbox.Subscriber
	products   product.Repository
	log        observability.Logger
}

func New(subscriber domoutbox.Subscriber, products product.Repository, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber: subscriber,
		products:   products,
		log:        tel.Logger().With(observability.F("component", "catalog_worker")),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domorder.EventOrderCreated, w.handleOrderCreated)
}

func (w *Worker) handleOrderCreated(ctx context.Context, e domoutbox.Event) error {
	logger := logctx.FromOr(ctx, w.log)
	evt, ok := e.(domorder.OrderCreatedEvent)
	if !ok {
		return nil
	}

	for _, line := range evt.Lines {
		p, err := w.products.Get(ctx, line.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("catalog worker: %w", err)
		}
		p.Sold += line.Quantity
		if err := w.products.Save(ctx, p); err != nil {
			return fmt.Errorf("catalog worker: %w", err)
		}
	}

	logger.Info("sold_counters_updated",
		observability.F("order_id", evt.OrderID),
		observability.F("lines", len(evt.Lines)),
	)
	return nil
}
