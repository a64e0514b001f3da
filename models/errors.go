package models

import "errors"

// Business-rule errors returned by the cart, catalog and order layers.
// Handlers translate these to HTTP statuses; anything else is treated as
// an internal storage failure.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrVariantUnavailable = errors.New("requested size/color combination is unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryInUse      = errors.New("category has active products or subcategories")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrDuplicate          = errors.New("duplicate value for a unique field")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)
