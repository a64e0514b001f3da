package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one cart line. The (ProductID, Size, Color) triple is unique
// within a cart: a repeated add merges quantities instead of appending.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color" json:"color"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Matches reports whether the line refers to the same (product, size, color)
// as the given key. Color is compared case-insensitively, same as variants.
func (c CartItem) Matches(productID primitive.ObjectID, size, color string) bool {
	return c.ProductID == productID && c.Size == size && strings.EqualFold(c.Color, color)
}

// FindLine returns the index of the line matching (productID, size, color),
// or -1 when the cart has no such line.
func FindLine(items []CartItem, productID primitive.ObjectID, size, color string) int {
	for i, it := range items {
		if it.Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

// MergeLine adds a line into items, summing quantities when a line with the
// same (product, size, color) already exists, appending otherwise.
func MergeLine(items []CartItem, line CartItem) []CartItem {
	if i := FindLine(items, line.ProductID, line.Size, line.Color); i >= 0 {
		items[i].Quantity += line.Quantity
		return items
	}
	return append(items, line)
}

// RemoveLine drops the matching line. Removing a line that does not exist is
// not an error; the input is returned unchanged.
func RemoveLine(items []CartItem, productID primitive.ObjectID, size, color string) []CartItem {
	if i := FindLine(items, productID, size, color); i >= 0 {
		return append(items[:i], items[i+1:]...)
	}
	return items
}

// CartViewItem is a cart line resolved against the live catalog. Lines whose
// product is gone, inactive, or whose variant can no longer cover the
// requested quantity carry InStock=false and contribute nothing to totals.
type CartViewItem struct {
	ProductID primitive.ObjectID `json:"productId"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug,omitempty"`
	Image     string             `json:"image,omitempty"`
	Size      string             `json:"size"`
	Color     string             `json:"color"`
	Quantity  int                `json:"quantity"`
	UnitPrice float64            `json:"unitPrice"`
	Total     float64            `json:"total"`
	InStock   bool               `json:"inStock"`
}
