package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/pricing"
)

// fakeCatalog serves products from a map, mimicking the active-only
// behavior of the Mongo finder.
type fakeCatalog struct {
	products map[string]*models.Product
}

func (f *fakeCatalog) FindActiveByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok || !p.IsActive {
		return nil, models.ErrProductNotFound
	}
	return p, nil
}

func newTestProduct(price float64, variants ...models.Variant) *models.Product {
	p := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     "Classic Tee",
		Slug:     "classic-tee",
		Price:    price,
		Images:   []string{"products/classic-tee.jpg"},
		Variants: variants,
		IsActive: true,
	}
	p.RecomputeTotalStock()
	return p
}

func newTestManager(products ...*models.Product) (*CartManager, *fakeCatalog) {
	catalog := &fakeCatalog{products: map[string]*models.Product{}}
	for _, p := range products {
		catalog.products[p.ID.Hex()] = p
	}
	mgr := NewCartManager(
		NewGuestCartStore(NewMemorySessionStore()),
		catalog,
		pricing.DefaultCoupons(),
	)
	return mgr, catalog
}

func TestAddMergesSameVariant(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 55})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	count, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// a second add of the same variant merges, never duplicates
	count, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	items, err := mgr.Store.Get(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddDistinctVariantsAppend(t *testing.T) {
	p := newTestProduct(29.99,
		models.Variant{Size: "M", Color: "Black", Stock: 5},
		models.Variant{Size: "L", Color: "Black", Stock: 5},
	)
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)
	count, err := mgr.Add(ctx, "sess", p.ID.Hex(), "L", "Black", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddValidation(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 3})
	mgr, catalog := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", primitive.NewObjectID().Hex(), "M", "Black", 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "XL", "Black", 1)
	assert.ErrorIs(t, err, models.ErrVariantUnavailable)

	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 4)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", -3)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	// merge case: existing 2 + new 2 exceeds stock 3
	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 2)
	require.NoError(t, err)
	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 2)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// inactive product behaves like a missing one
	p.IsActive = false
	_, err = mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	_ = catalog
}

func TestUpdateQuantity(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 2)
	require.NoError(t, err)

	_, err = mgr.Update(ctx, "sess", p.ID.Hex(), "M", "Black", 7)
	require.NoError(t, err)
	items, _ := mgr.Store.Get(ctx, "sess")
	assert.Equal(t, 7, items[0].Quantity)

	_, err = mgr.Update(ctx, "sess", p.ID.Hex(), "M", "Black", 11)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	_, err = mgr.Update(ctx, "sess", p.ID.Hex(), "M", "Black", -1)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	// quantity zero removes the line
	count, err := mgr.Update(ctx, "sess", p.ID.Hex(), "M", "Black", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// updating a line that is no longer there
	_, err = mgr.Update(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)

	count, err := mgr.Remove(ctx, "sess", p.ID.Hex(), "M", "Black")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = mgr.Remove(ctx, "sess", p.ID.Hex(), "M", "Black")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRemoveSurvivesDeactivatedProduct(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)

	p.IsActive = false
	count, err := mgr.Remove(ctx, "sess", p.ID.Hex(), "M", "Black")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRemoveDeactivatedProductIgnoresColorCase(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)

	p.IsActive = false
	count, err := mgr.Remove(ctx, "sess", p.ID.Hex(), "M", "black")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestClear(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 2)
	require.NoError(t, err)
	require.NoError(t, mgr.Clear(ctx, "sess"))

	items, err := mgr.Store.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestViewPricesInStockLines(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 55})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 2)
	require.NoError(t, err)

	view, err := mgr.View(ctx, "sess", "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].InStock)
	assert.Equal(t, 29.99, view.Items[0].UnitPrice)
	assert.Equal(t, 59.98, view.Items[0].Total)
	assert.Equal(t, 59.98, view.Pricing.Subtotal)
	assert.Equal(t, 6.0, view.Pricing.Tax)
	assert.Equal(t, 10.0, view.Pricing.Shipping)
	assert.Equal(t, 75.98, view.Pricing.Total)
}

func TestViewUsesVariantPriceOverride(t *testing.T) {
	override := 24.99
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 5, Price: &override})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)

	view, err := mgr.View(ctx, "sess", "")
	require.NoError(t, err)
	assert.Equal(t, 24.99, view.Items[0].UnitPrice)
}

func TestViewFlagsUnavailableLines(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 5})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 5)
	require.NoError(t, err)

	// stock drops below the requested quantity after the add
	p.Variants[0].Stock = 2

	view, err := mgr.View(ctx, "sess", "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "unavailable lines are surfaced, not dropped")
	assert.False(t, view.Items[0].InStock)
	assert.Equal(t, 0.0, view.Items[0].Total)
	assert.Equal(t, 0.0, view.Pricing.Subtotal)
}

func TestViewFlagsDeactivatedProduct(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 5})
	mgr, _ := newTestManager(p)
	ctx := context.Background()

	_, err := mgr.Add(ctx, "sess", p.ID.Hex(), "M", "Black", 1)
	require.NoError(t, err)
	p.IsActive = false

	view, err := mgr.View(ctx, "sess", "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.False(t, view.Items[0].InStock)
}

func TestTransferOnLoginIntoEmptyCart(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	catalog := &fakeCatalog{products: map[string]*models.Product{p.ID.Hex(): p}}

	sessions := NewMemorySessionStore()
	guest := NewGuestCartStore(sessions)
	user := NewGuestCartStore(NewMemorySessionStore()) // any CartStore works
	ctx := context.Background()

	require.NoError(t, guest.Save(ctx, "sess", []models.CartItem{
		{ProductID: p.ID, Size: "M", Color: "Black", Quantity: 2},
	}))

	require.NoError(t, TransferOnLogin(ctx, guest, user, catalog, "sess", "user1"))

	userItems, err := user.Get(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, userItems, 1)
	assert.Equal(t, 2, userItems[0].Quantity)

	guestItems, err := guest.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, guestItems, "guest cart cleared after transfer")
}

func TestTransferOnLoginMergesQuantities(t *testing.T) {
	p := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	catalog := &fakeCatalog{products: map[string]*models.Product{p.ID.Hex(): p}}

	guest := NewGuestCartStore(NewMemorySessionStore())
	user := NewGuestCartStore(NewMemorySessionStore())
	ctx := context.Background()

	require.NoError(t, guest.Save(ctx, "sess", []models.CartItem{
		{ProductID: p.ID, Size: "M", Color: "Black", Quantity: 2},
	}))
	require.NoError(t, user.Save(ctx, "user1", []models.CartItem{
		{ProductID: p.ID, Size: "M", Color: "Black", Quantity: 3},
	}))

	require.NoError(t, TransferOnLogin(ctx, guest, user, catalog, "sess", "user1"))

	userItems, _ := user.Get(ctx, "user1")
	require.Len(t, userItems, 1)
	assert.Equal(t, 5, userItems[0].Quantity)
}

func TestTransferOnLoginDropsUnmergeableLines(t *testing.T) {
	ok := newTestProduct(29.99, models.Variant{Size: "M", Color: "Black", Stock: 10})
	scarce := newTestProduct(49.99, models.Variant{Size: "S", Color: "Red", Stock: 1})
	catalog := &fakeCatalog{products: map[string]*models.Product{
		ok.ID.Hex():     ok,
		scarce.ID.Hex(): scarce,
	}}

	guest := NewGuestCartStore(NewMemorySessionStore())
	user := NewGuestCartStore(NewMemorySessionStore())
	ctx := context.Background()

	require.NoError(t, guest.Save(ctx, "sess", []models.CartItem{
		{ProductID: ok.ID, Size: "M", Color: "Black", Quantity: 1},
		// over stock
		{ProductID: scarce.ID, Size: "S", Color: "Red", Quantity: 5},
		// product gone
		{ProductID: primitive.NewObjectID(), Size: "M", Color: "Black", Quantity: 1},
	}))

	require.NoError(t, TransferOnLogin(ctx, guest, user, catalog, "sess", "user1"))

	userItems, _ := user.Get(ctx, "user1")
	require.Len(t, userItems, 1, "only the mergeable line survives")
	assert.Equal(t, ok.ID, userItems[0].ProductID)

	guestItems, _ := guest.Get(ctx, "sess")
	assert.Empty(t, guestItems, "guest cart cleared even on partial merge")
}
