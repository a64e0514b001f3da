package store

import (
	"sync"

	"github.com/stylenest/stylenest-backend/models"
)

// SessionStore holds guest state keyed by an opaque session identifier.
// The HTTP layer owns issuing the identifier (a cookie); this layer only
// reads and writes the cart attached to it.
type SessionStore interface {
	GetCart(sessionID string) ([]models.CartItem, error)
	SetCart(sessionID string, items []models.CartItem) error
	Destroy(sessionID string) error
}

// MemorySessionStore is the in-process SessionStore. Guest carts are
// ephemeral by contract, so process lifetime is an acceptable bound.
type MemorySessionStore struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{carts: make(map[string][]models.CartItem)}
}

func (m *MemorySessionStore) GetCart(sessionID string) ([]models.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.carts[sessionID]
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemorySessionStore) SetCart(sessionID string, items []models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.CartItem, len(items))
	copy(cp, items)
	m.carts[sessionID] = cp
	return nil
}

func (m *MemorySessionStore) Destroy(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
