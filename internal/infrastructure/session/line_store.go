package session

import (
	"context"
	"fmt"

	domain "github.com/Denis-77/megano-store/internal/domain/basket"
)

// LineStore adapts one guest session's blob to the basket.LineStore port so
// the ledger can apply the same clamping rules to guests as to users. Every
// operation decodes the current blob, mutates the mapping and encodes it
// back; quantities that reach zero drop their key rather than being stored.
type LineStore struct {
	session domain.SessionStore
}

func NewLineStore(session domain.SessionStore) *LineStore {
	return &LineStore{session: session}
}

func (s *LineStore) Get(ctx context.Context, owner domain.Owner, productID string) (int, error) {
	_ = owner
	m, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return m[productID], nil
}

func (s *LineStore) Upsert(ctx context.Context, owner domain.Owner, productID string, quantity int) error {
	_ = owner
	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		delete(m, productID)
	} else {
		m[productID] = quantity
	}
	return s.store(ctx, m)
}

func (s *LineStore) Delete(ctx context.Context, owner domain.Owner, productID string) error {
	_ = owner
	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	delete(m, productID)
	return s.store(ctx, m)
}

func (s *LineStore) List(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Line, 0, len(m))
	for productID, qty := range m {
		out = append(out, domain.Line{Owner: owner, ProductID: productID, Quantity: qty})
	}
	return out, nil
}

func (s *LineStore) Clear(ctx context.Context, owner domain.Owner) error {
	_ = owner
	return s.session.ClearBlob(ctx)
}

func (s *LineStore) PurgeProduct(ctx context.Context, productID string) error {
	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	delete(m, productID)
	return s.store(ctx, m)
}

func (s *LineStore) load(ctx context.Context) (map[string]int, error) {
	blob, err := s.session.GetBlob(ctx)
	if err != nil {
		return nil, fmt.Errorf("session basket: read: %w", err)
	}
	return domain.DecodeGuestBasket(blob)
}

func (s *LineStore) store(ctx context.Context, m map[string]int) error {
	if len(m) == 0 {
		return s.session.ClearBlob(ctx)
	}
	blob, err := domain.EncodeGuestBasket(m)
	if err != nil {
		return err
	}
	return s.session.SetBlob(ctx, blob)
}
