package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	domain "github.com/Denis-77/megano-store/internal/domain/order"
	"github.com/Denis-77/megano-store/internal/domain/outbox"
	"github.com/Denis-77/megano-store/internal/domain/payment"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/observability"
	"github.com/Denis-77/megano-store/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	orderService      = "order-service"
	useCaseOrderDraft = "order.draft"
	spanPrefix        = "UC."
	publishPeer       = "outbox"
	publishTimeout    = 300 * time.Millisecond
)

type IDGenerator interface {
	NewID() string
}

// SnapshotLine is one client-submitted (product, quantity, price) tuple. The
// snapshot is taken at face value: it is not re-validated against the live
// basket or against stock, which was already checked when items entered the
// basket.
type SnapshotLine struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

type DraftResult struct {
	OrderID        string
	TotalCostCents int64
	Status         domain.Status
}

// Hook runs after an order is successfully persisted.
type Hook func(ctx context.Context, o *domain.Order)

type Service struct {
	repo      domain.Repository
	products  product.Lookup
	lines     basketdomain.LineStore
	idGen     IDGenerator
	publisher outbox.Publisher

	log          observability.Logger
	tel          observability.Observability
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	pubCounter   observability.Counter
	hooks        []Hook
}

func NewService(
	repo domain.Repository,
	products product.Lookup,
	lines basketdomain.LineStore,
	idGen IDGenerator,
	publisher outbox.Publisher,
	tel observability.Observability,
	hooks ...Hook,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &Service{
		repo:         repo,
		products:     products,
		lines:        lines,
		idGen:        idGen,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		pubCounter:   metrics.Counter(observability.MOrderEventPublishes),
		hooks:        hooks,
	}
}

// Draft snapshots the submitted lines into an immutable order, totals them
// with half-up rounding on the currency unit, and clears the whole of the
// user's basket — not just the lines included in the draft.
func (s *Service) Draft(ctx context.Context, userID string, snapshot []SnapshotLine, delivery domain.Delivery) (_ *DraftResult, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseOrderDraft))

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"OrderDraft",
		attribute.String("use_case", useCaseOrderDraft),
		attribute.String("order.user_id", userID),
		attribute.Int("order.snapshot_lines", len(snapshot)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var publishErr error

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderDraft),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat,
			observability.L("use_case", useCaseOrderDraft),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if userID == "" {
		outcome, statusText = "error", "USER_ID_REQUIRED"
		return nil, errors.New("order: user id is required")
	}
	if len(snapshot) == 0 {
		outcome, statusText = "error", "EMPTY_SNAPSHOT"
		return nil, domain.ErrNoLines
	}

	var total float64
	lines := make([]domain.Line, 0, len(snapshot))
	for _, sl := range snapshot {
		if sl.Quantity <= 0 {
			outcome, statusText = "error", "QUANTITY_INVALID"
			return nil, domain.ErrInvalidQuantity
		}
		total += sl.UnitPrice * float64(sl.Quantity)

		p, lookupErr := s.products.Get(ctx, sl.ProductID)
		if errors.Is(lookupErr, product.ErrNotFound) {
			// The submitted snapshot may reference a product removed since it
			// was rendered; it still contributes to the total but gets no line.
			continue
		}
		if lookupErr != nil {
			outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
			return nil, fmt.Errorf("order: draft: %w", lookupErr)
		}
		lines = append(lines, domain.Line{
			ProductID:      p.ID,
			Title:          p.Title,
			Quantity:       sl.Quantity,
			UnitPriceCents: p.PriceCents,
		})
	}
	if len(lines) == 0 {
		outcome, statusText = "error", "NO_KNOWN_PRODUCTS"
		return nil, domain.ErrNoLines
	}

	totalCents := domain.CentsHalfUp(total)

	entity, err := domain.New(s.idGen.NewID(), userID, lines, totalCents, delivery)
	if err != nil {
		outcome, statusText = "error", "DOMAIN_CONSTRUCTION_FAILED"
		return nil, fmt.Errorf("order: draft: %w", err)
	}

	if err = s.repo.Insert(ctx, entity); err != nil {
		outcome, statusText = "error", "REPO_INSERT_FAILED"
		return nil, fmt.Errorf("order: draft: %w", err)
	}

	if err = s.lines.Clear(ctx, basketdomain.UserOwner(userID)); err != nil {
		outcome, statusText = "error", "BASKET_CLEAR_FAILED"
		return nil, fmt.Errorf("order: draft: %w", err)
	}

	for _, h := range s.hooks {
		h(ctx, entity)
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		publishErr = s.publisher.Publish(pubCtx, domain.NewOrderCreatedEvent(entity))
		cancel()

		pubOutcome := "success"
		if publishErr != nil {
			pubOutcome = "error"
			statusText = "EVENT_PUBLISH_FAILED"
		}
		s.pubCounter.Add(1,
			observability.L("peer", publishPeer),
			observability.L("outcome", pubOutcome),
		)
	}

	return &DraftResult{
		OrderID:        entity.ID,
		TotalCostCents: entity.TotalCostCents,
		Status:         entity.Status,
	}, nil
}

// ConfirmPayment runs the toy gateway check against the submitted card
// number and settles the order either way.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, cardNumber string) (domain.Status, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("order: confirm payment: %w", err)
	}

	if o.Status == domain.StatusProductsSelected || o.Status == domain.StatusPaymentFailed {
		if err := o.MarkAwaitingPayment(); err != nil {
			return "", err
		}
	}

	if cardErr := payment.ValidateCardNumber(cardNumber); cardErr != nil {
		if err := o.MarkPaymentFailed(); err != nil {
			return "", err
		}
		if err := s.repo.Update(ctx, o); err != nil {
			return "", fmt.Errorf("order: confirm payment: %w", err)
		}
		return o.Status, cardErr
	}

	if err := o.MarkPaid(); err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return "", fmt.Errorf("order: confirm payment: %w", err)
	}
	return o.Status, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
