package basket

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Denis-77/megano-store/internal/domain/basket"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/observability"
	"github.com/Denis-77/megano-store/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	basketService       = "basket-service"
	useCaseBasketAdd    = "basket.add"
	useCaseBasketRemove = "basket.remove"
	spanPrefix          = "UC."
)

// Hook runs after a successful line write. It is the explicit post-commit
// replacement for implicit persistence-event dispatch: a deleted line is
// reported with quantity zero.
type Hook func(ctx context.Context, line domain.Line)

// Ledger owns all quantity arithmetic and stock-clamping rules for basket
// lines, independent of whether the owner is a guest or an authenticated
// user. Every operation re-reads the current line and stock cap; nothing is
// cached across calls.
type Ledger struct {
	lines    domain.LineStore
	products product.Lookup
	tel      observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	hooks        []Hook
}

func NewLedger(lines domain.LineStore, products product.Lookup, tel observability.Observability, hooks ...Hook) *Ledger {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &Ledger{
		lines:        lines,
		products:     products,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", basketService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		hooks:        hooks,
	}
}

// WithLines returns a ledger bound to a different line store, sharing
// telemetry and hooks. Guest requests use this to operate on the
// session-blob-backed store with the same clamping rules.
func (l *Ledger) WithLines(lines domain.LineStore) *Ledger {
	clone := *l
	clone.lines = lines
	return &clone
}

// Add folds requested quantity into the owner's line for the product,
// clamping against current stock. A request on top of an existing line that
// would exceed the cap is rejected; an oversized first request is silently
// truncated to the cap.
func (l *Ledger) Add(ctx context.Context, owner domain.Owner, productID string, qty int) (_ domain.Line, err error) {
	logger := logctx.FromOr(ctx, l.log).With(observability.F("use_case", useCaseBasketAdd))

	ctx, span := l.tel.Tracer().Start(ctx, spanPrefix+"BasketAdd",
		attribute.String("use_case", useCaseBasketAdd),
		attribute.String("basket.owner_kind", string(owner.Kind)),
		attribute.String("basket.product_id", productID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		l.reqCounter.Add(1,
			observability.L("use_case", useCaseBasketAdd),
			observability.L("outcome", outcome),
		)
		l.durHistogram.Observe(lat,
			observability.L("use_case", useCaseBasketAdd),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("product_id", productID),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if qty <= 0 {
		outcome, statusText = "error", "QUANTITY_INVALID"
		return domain.Line{}, domain.ErrInvalidQuantity
	}

	p, err := l.products.Get(ctx, productID)
	if err != nil {
		outcome, statusText = "error", "PRODUCT_NOT_FOUND"
		return domain.Line{}, fmt.Errorf("basket: add: %w", err)
	}

	existing, err := l.lines.Get(ctx, owner, productID)
	if err != nil {
		outcome, statusText = "error", "LINE_READ_FAILED"
		return domain.Line{}, fmt.Errorf("basket: add: %w", err)
	}

	stockCap := p.AvailableCount
	if existing > 0 && existing+qty > stockCap {
		outcome, statusText = "error", "INSUFFICIENT_STOCK"
		return domain.Line{}, domain.ErrInsufficientStock
	}

	newQty := existing + qty
	if newQty > stockCap {
		newQty = stockCap
		statusText = "CLAMPED"
	}

	line := domain.Line{Owner: owner, ProductID: productID, Quantity: newQty}
	if newQty == 0 {
		// Nothing in stock and nothing already held: a zero line is never stored.
		return line, nil
	}

	if err := l.lines.Upsert(ctx, owner, productID, newQty); err != nil {
		outcome, statusText = "error", "LINE_WRITE_FAILED"
		return domain.Line{}, fmt.Errorf("basket: add: %w", err)
	}
	l.afterWrite(ctx, line)
	return line, nil
}

// Remove decrements the owner's line for the product. Removing more than is
// present is not an error; it empties the line.
func (l *Ledger) Remove(ctx context.Context, owner domain.Owner, productID string, qty int) (err error) {
	logger := logctx.FromOr(ctx, l.log).With(observability.F("use_case", useCaseBasketRemove))
	start := time.Now()
	outcome := "success"

	defer func() {
		l.reqCounter.Add(1,
			observability.L("use_case", useCaseBasketRemove),
			observability.L("outcome", outcome),
		)
		l.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseBasketRemove),
		)
		if err != nil {
			logger.Info("use_case_done",
				observability.F("outcome", outcome),
				observability.F("product_id", productID),
				observability.F("error", err.Error()),
			)
			return
		}
		logger.Info("use_case_done",
			observability.F("outcome", outcome),
			observability.F("product_id", productID),
		)
	}()

	if qty <= 0 {
		outcome = "error"
		return domain.ErrInvalidQuantity
	}

	existing, err := l.lines.Get(ctx, owner, productID)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("basket: remove: %w", err)
	}
	if existing == 0 {
		outcome = "error"
		return domain.ErrNotFound
	}

	if existing <= qty {
		if err := l.lines.Delete(ctx, owner, productID); err != nil {
			outcome = "error"
			return fmt.Errorf("basket: remove: %w", err)
		}
		l.afterWrite(ctx, domain.Line{Owner: owner, ProductID: productID, Quantity: 0})
		return nil
	}

	newQty := existing - qty
	if err := l.lines.Upsert(ctx, owner, productID, newQty); err != nil {
		outcome = "error"
		return fmt.Errorf("basket: remove: %w", err)
	}
	l.afterWrite(ctx, domain.Line{Owner: owner, ProductID: productID, Quantity: newQty})
	return nil
}

// List returns all lines for the owner. Ordering is whatever the store
// yields; it is stable only within a single read.
func (l *Ledger) List(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	lines, err := l.lines.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("basket: list: %w", err)
	}
	return lines, nil
}

// IsRecoverable reports whether the error is one of the ledger's structured,
// caller-recoverable failures.
func IsRecoverable(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrCorruptState) ||
		errors.Is(err, product.ErrNotFound)
}

func (l *Ledger) afterWrite(ctx context.Context, line domain.Line) {
	for _, h := range l.hooks {
		h(ctx, line)
	}
}
