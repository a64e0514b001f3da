package store

import (
	"context"
	"strings"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/pricing"
)

// CartManager implements the cart operations over any CartStore. Stock is
// checked optimistically here; the authoritative check is the conditional
// decrement at checkout.
type CartManager struct {
	Store    CartStore
	Products ProductFinder
	Coupons  pricing.CouponResolver
}

func NewCartManager(store CartStore, products ProductFinder, coupons pricing.CouponResolver) *CartManager {
	return &CartManager{Store: store, Products: products, Coupons: coupons}
}

// CartView is the resolved cart returned to the caller: every line checked
// against the live catalog plus a pricing preview over the in-stock lines.
type CartView struct {
	Items   []models.CartViewItem `json:"items"`
	Count   int                   `json:"count"`
	Pricing models.Pricing        `json:"pricing"`
}

// Add puts quantity units of (productID, size, color) into the cart,
// merging into an existing line when one matches. Returns the new line count.
func (m *CartManager) Add(ctx context.Context, key, productID, size, color string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, models.ErrInvalidQuantity
	}

	product, err := m.Products.FindActiveByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	variant, ok := product.FindVariant(size, color)
	if !ok {
		return 0, models.ErrVariantUnavailable
	}

	items, err := m.Store.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	existing := 0
	if i := models.FindLine(items, product.ID, size, color); i >= 0 {
		existing = items[i].Quantity
	}
	if variant.Stock < existing+quantity {
		return 0, models.ErrInsufficientStock
	}

	items = models.MergeLine(items, models.CartItem{
		ProductID: product.ID,
		Size:      size,
		Color:     variant.Color,
		Quantity:  quantity,
	})
	if err := m.Store.Save(ctx, key, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Update sets the quantity of an existing line. Quantity zero removes the
// line. Stock is re-validated the same way Add validates it.
func (m *CartManager) Update(ctx context.Context, key, productID, size, color string, quantity int) (int, error) {
	if quantity == 0 {
		return m.Remove(ctx, key, productID, size, color)
	}
	if quantity < 0 {
		return 0, models.ErrInvalidQuantity
	}

	product, err := m.Products.FindActiveByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	variant, ok := product.FindVariant(size, color)
	if !ok {
		return 0, models.ErrVariantUnavailable
	}
	if variant.Stock < quantity {
		return 0, models.ErrInsufficientStock
	}

	items, err := m.Store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	i := models.FindLine(items, product.ID, size, color)
	if i < 0 {
		return 0, models.ErrItemNotFound
	}
	items[i].Quantity = quantity

	if err := m.Store.Save(ctx, key, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Remove drops a line. Removing a line that is not in the cart is a no-op,
// not an error.
func (m *CartManager) Remove(ctx context.Context, key, productID, size, color string) (int, error) {
	product, err := m.Products.FindActiveByID(ctx, productID)
	if err != nil {
		// the line may reference a product that has since been deactivated;
		// removal must still work, so fall back to matching by raw id
		items, gerr := m.Store.Get(ctx, key)
		if gerr != nil {
			return 0, gerr
		}
		filtered := items[:0]
		for _, it := range items {
			if it.ProductID.Hex() == productID && it.Size == size && strings.EqualFold(it.Color, color) {
				continue
			}
			filtered = append(filtered, it)
		}
		if err := m.Store.Save(ctx, key, filtered); err != nil {
			return 0, err
		}
		return len(filtered), nil
	}

	items, err := m.Store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	items = models.RemoveLine(items, product.ID, size, color)
	if err := m.Store.Save(ctx, key, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Clear empties the cart unconditionally.
func (m *CartManager) Clear(ctx context.Context, key string) error {
	return m.Store.Clear(ctx, key)
}

// View resolves every line against the live catalog. Lines that no longer
// resolve (product gone or inactive, variant gone, stock below the requested
// quantity) are flagged inStock=false and excluded from totals rather than
// silently dropped; the caller decides whether that blocks checkout.
func (m *CartManager) View(ctx context.Context, key, couponCode string) (*CartView, error) {
	items, err := m.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]models.CartViewItem, 0, len(items))}
	var priced []pricing.Line

	for _, it := range items {
		vi := models.CartViewItem{
			ProductID: it.ProductID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		}

		product, err := m.Products.FindActiveByID(ctx, it.ProductID.Hex())
		if err == nil {
			vi.Name = product.Name
			vi.Slug = product.Slug
			if len(product.Images) > 0 {
				vi.Image = product.Images[0]
			}
			if variant, ok := product.FindVariant(it.Size, it.Color); ok && variant.Stock >= it.Quantity {
				vi.InStock = true
				vi.UnitPrice = product.UnitPrice(variant)
				vi.Total = pricing.LineTotal(vi.UnitPrice, it.Quantity)
				priced = append(priced, pricing.Line{UnitPrice: vi.UnitPrice, Quantity: it.Quantity})
			}
		} else if err != models.ErrProductNotFound {
			return nil, err
		}

		view.Items = append(view.Items, vi)
	}

	view.Count = len(view.Items)
	view.Pricing = pricing.Compute(priced, couponCode, m.Coupons)
	return view, nil
}

// TransferOnLogin merges a guest cart into the given user's cart, summing
// quantities by (product, size, color). Lines that no longer fit current
// stock are dropped from the merge rather than failing the whole login.
// The guest cart is cleared regardless of partial failures.
func TransferOnLogin(ctx context.Context, guest, user CartStore, products ProductFinder, sessionID, userID string) error {
	guestItems, err := guest.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	defer guest.Clear(ctx, sessionID)

	if len(guestItems) == 0 {
		return nil
	}

	userItems, err := user.Get(ctx, userID)
	if err != nil {
		return err
	}

	for _, line := range guestItems {
		product, err := products.FindActiveByID(ctx, line.ProductID.Hex())
		if err != nil {
			continue
		}
		variant, ok := product.FindVariant(line.Size, line.Color)
		if !ok {
			continue
		}
		existing := 0
		if i := models.FindLine(userItems, line.ProductID, line.Size, line.Color); i >= 0 {
			existing = userItems[i].Quantity
		}
		if variant.Stock < existing+line.Quantity {
			continue
		}
		userItems = models.MergeLine(userItems, line)
	}

	return user.Save(ctx, userID, userItems)
}
