package memory

import (
	"context"
	"sync"
)

// SessionStore holds guest basket blobs keyed by session id. Each session
// owns its blob exclusively; SessionHandle narrows the store to one session
// so callers see the basket.SessionStore contract.
type SessionStore struct {
	mu    sync.RWMutex
	blobs map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		blobs: make(map[string]string),
	}
}

// Handle returns a view bound to a single session's blob.
func (s *SessionStore) Handle(sessionID string) *SessionHandle {
	return &SessionHandle{store: s, sessionID: sessionID}
}

type SessionHandle struct {
	store     *SessionStore
	sessionID string
}

func (h *SessionHandle) GetBlob(ctx context.Context) (string, error) {
	_ = ctx

	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	return h.store.blobs[h.sessionID], nil
}

func (h *SessionHandle) SetBlob(ctx context.Context, blob string) error {
	_ = ctx

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	h.store.blobs[h.sessionID] = blob
	return nil
}

func (h *SessionHandle) ClearBlob(ctx context.Context) error {
	_ = ctx

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	delete(h.store.blobs, h.sessionID)
	return nil
}
