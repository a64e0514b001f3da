// Package store holds the dual-mode cart: the same line-item operations work
// over a guest cart attached to a session and a user cart embedded in the
// user document, unified behind the CartStore interface.
package store

import (
	"context"

	"github.com/stylenest/stylenest-backend/models"
)

// CartStore abstracts where a cart's lines live. Implementations: guest
// carts on the session store, user carts embedded in the user document.
type CartStore interface {
	Get(ctx context.Context, key string) ([]models.CartItem, error)
	Save(ctx context.Context, key string, items []models.CartItem) error
	Clear(ctx context.Context, key string) error
}

// ProductFinder resolves product ids against the live catalog. Inactive
// products are reported as models.ErrProductNotFound.
type ProductFinder interface {
	FindActiveByID(ctx context.Context, id string) (*models.Product, error)
}
