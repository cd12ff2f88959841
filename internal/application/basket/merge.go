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

const useCaseBasketMerge = "basket.merge_on_login"

// MergeOnLogin folds the guest-session basket into the authenticated user's
// durable basket, exactly once per blob instance, then discards the blob.
//
// Unlike Add, the merge never rejects: quantities that would overflow the
// stock cap are clamped, and entries whose product no longer exists are
// skipped, so stale guest data can never make a login fail. The blob is
// treated as consumed the moment merging begins; it is cleared even when the
// merge wrote nothing.
func (l *Ledger) MergeOnLogin(ctx context.Context, userID string, session domain.SessionStore) (err error) {
	logger := logctx.FromOr(ctx, l.log).With(observability.F("use_case", useCaseBasketMerge))

	ctx, span := l.tel.Tracer().Start(ctx, spanPrefix+"BasketMergeOnLogin",
		attribute.String("use_case", useCaseBasketMerge),
		attribute.String("basket.user_id", userID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	merged, skipped := 0, 0

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
			observability.L("use_case", useCaseBasketMerge),
			observability.L("outcome", outcome),
		)
		l.durHistogram.Observe(lat,
			observability.L("use_case", useCaseBasketMerge),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("merged", merged),
			observability.F("skipped", skipped),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	blob, err := session.GetBlob(ctx)
	if err != nil {
		outcome, statusText = "error", "SESSION_READ_FAILED"
		return fmt.Errorf("basket: merge: %w", err)
	}
	if blob == "" {
		statusText = "NO_GUEST_BASKET"
		return nil
	}

	guest, err := domain.DecodeGuestBasket(blob)
	if err != nil {
		// Corrupt blobs propagate; the session layer decides whether to reset.
		outcome, statusText = "error", "CORRUPT_GUEST_BASKET"
		return err
	}

	// The blob is consumed from here on, whatever happens below.
	defer func() {
		if clearErr := session.ClearBlob(ctx); clearErr != nil && err == nil {
			outcome, statusText = "error", "SESSION_CLEAR_FAILED"
			err = fmt.Errorf("basket: merge: %w", clearErr)
		}
	}()

	owner := domain.UserOwner(userID)
	for productID, guestQty := range guest {
		if guestQty <= 0 {
			skipped++
			continue
		}

		p, lookupErr := l.products.Get(ctx, productID)
		if errors.Is(lookupErr, product.ErrNotFound) {
			// The product was removed from the catalog while the guest held it.
			skipped++
			continue
		}
		if lookupErr != nil {
			outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
			return fmt.Errorf("basket: merge: %w", lookupErr)
		}

		existing, readErr := l.lines.Get(ctx, owner, productID)
		if readErr != nil {
			outcome, statusText = "error", "LINE_READ_FAILED"
			return fmt.Errorf("basket: merge: %w", readErr)
		}

		newQty := existing + guestQty
		if newQty > p.AvailableCount {
			newQty = p.AvailableCount
		}
		if newQty == 0 {
			skipped++
			continue
		}

		if writeErr := l.lines.Upsert(ctx, owner, productID, newQty); writeErr != nil {
			outcome, statusText = "error", "LINE_WRITE_FAILED"
			return fmt.Errorf("basket: merge: %w", writeErr)
		}
		l.afterWrite(ctx, domain.Line{Owner: owner, ProductID: productID, Quantity: newQty})
		merged++
	}

	return nil
}
