package memory

import (
	"context"
	"sync"

	domain "github.com/Denis-77/megano-store/internal/domain/basket"
)

// LineStore keeps durable basket lines in process memory, keyed by owner.
type LineStore struct {
	mu    sync.RWMutex
	lines map[domain.Owner]map[string]int
}

func NewLineStore() *LineStore {
	return &LineStore{
		lines: make(map[domain.Owner]map[string]int),
	}
}

func (s *LineStore) Get(ctx context.Context, owner domain.Owner, productID string) (int, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lines[owner][productID], nil
}

func (s *LineStore) Upsert(ctx context.Context, owner domain.Owner, productID string, quantity int) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lines[owner] == nil {
		s.lines[owner] = make(map[string]int)
	}
	s.lines[owner][productID] = quantity
	return nil
}

func (s *LineStore) Delete(ctx context.Context, owner domain.Owner, productID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines[owner], productID)
	return nil
}

func (s *LineStore) List(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Line, 0, len(s.lines[owner]))
	for productID, qty := range s.lines[owner] {
		out = append(out, domain.Line{Owner: owner, ProductID: productID, Quantity: qty})
	}
	return out, nil
}

func (s *LineStore) Clear(ctx context.Context, owner domain.Owner) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, owner)
	return nil
}

func (s *LineStore) PurgeProduct(ctx context.Context, productID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	for owner, byProduct := range s.lines {
		delete(byProduct, productID)
		if len(byProduct) == 0 {
			delete(s.lines, owner)
		}
	}
	return nil
}
