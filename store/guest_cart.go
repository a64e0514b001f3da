package store

import (
	"context"

	"github.com/stylenest/stylenest-backend/models"
)

// GuestCartStore keeps cart lines on the session, keyed by the opaque
// session identifier the HTTP layer issues to anonymous visitors.
type GuestCartStore struct {
	Sessions SessionStore
}

func NewGuestCartStore(sessions SessionStore) *GuestCartStore {
	return &GuestCartStore{Sessions: sessions}
}

func (g *GuestCartStore) Get(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return g.Sessions.GetCart(sessionID)
}

func (g *GuestCartStore) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	return g.Sessions.SetCart(sessionID, items)
}

func (g *GuestCartStore) Clear(ctx context.Context, sessionID string) error {
	return g.Sessions.SetCart(sessionID, nil)
}
