package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCheckoutScenario(t *testing.T) {
	// two units at 29.99: subtotal 59.98, tax 6.00, shipping 10 (<=100)
	p := Compute([]Line{{UnitPrice: 29.99, Quantity: 2}}, "", nil)

	assert.Equal(t, 59.98, p.Subtotal)
	assert.Equal(t, 6.0, p.Tax)
	assert.Equal(t, 10.0, p.Shipping)
	assert.Equal(t, 0.0, p.Discount)
	assert.Equal(t, 75.98, p.Total)
}

func TestComputeTotalIdentity(t *testing.T) {
	lines := []Line{
		{UnitPrice: 19.99, Quantity: 3},
		{UnitPrice: 45.50, Quantity: 1},
		{UnitPrice: 7.25, Quantity: 4},
	}
	p := Compute(lines, "", nil)
	assert.InDelta(t, p.Subtotal+p.Tax+p.Shipping-p.Discount, p.Total, 1e-9)
}

func TestComputeFreeShippingBoundary(t *testing.T) {
	// exactly 100 still pays shipping; strictly above 100 ships free
	at := Compute([]Line{{UnitPrice: 100, Quantity: 1}}, "", nil)
	assert.Equal(t, 10.0, at.Shipping)

	above := Compute([]Line{{UnitPrice: 100.01, Quantity: 1}}, "", nil)
	assert.Equal(t, 0.0, above.Shipping)
}

func TestComputeTaxRounding(t *testing.T) {
	// subtotal 10.05 -> tax 1.005 rounds half away from zero to 1.01
	p := Compute([]Line{{UnitPrice: 10.05, Quantity: 1}}, "", nil)
	assert.Equal(t, 1.01, p.Tax)
}

func TestComputeEmptyCart(t *testing.T) {
	p := Compute(nil, "", nil)
	assert.Equal(t, 0.0, p.Subtotal)
	assert.Equal(t, 0.0, p.Tax)
	// no items still quotes the flat fee; callers reject empty checkouts anyway
	assert.Equal(t, 10.0, p.Shipping)
}

func TestPercentCoupon(t *testing.T) {
	p := Compute([]Line{{UnitPrice: 50, Quantity: 1}}, "WELCOME10", DefaultCoupons())
	assert.Equal(t, 5.0, p.Discount)
	assert.Equal(t, 50.0+5.0+10.0-5.0, p.Total)
}

func TestCouponCodeNormalization(t *testing.T) {
	p := Compute([]Line{{UnitPrice: 50, Quantity: 1}}, "  welcome10 ", DefaultCoupons())
	assert.Equal(t, 5.0, p.Discount)
}

func TestUnknownCouponIsNoDiscount(t *testing.T) {
	p := Compute([]Line{{UnitPrice: 50, Quantity: 1}}, "NOPE", DefaultCoupons())
	assert.Equal(t, 0.0, p.Discount)
}

func TestFlatCouponCappedAtSubtotal(t *testing.T) {
	coupons := StaticCoupons{"FLAT50": {Code: "FLAT50", Flat: 50}}
	p := Compute([]Line{{UnitPrice: 20, Quantity: 1}}, "FLAT50", coupons)
	assert.Equal(t, 20.0, p.Discount)
	// total never goes negative from a discount
	assert.GreaterOrEqual(t, p.Total, 0.0)
}

func TestVariantPriceOverrideFeedsLines(t *testing.T) {
	// the engine only sees unit prices; the override resolution happens in
	// the cart layer, so identical lines with different unit prices must not
	// collapse
	p := Compute([]Line{
		{UnitPrice: 29.99, Quantity: 1},
		{UnitPrice: 34.99, Quantity: 1},
	}, "", nil)
	require.Equal(t, 64.98, p.Subtotal)
}

func TestNoPerLineDriftAccumulation(t *testing.T) {
	// 0.10 is not representable in binary floating point; 100 lines of it
	// must still sum to exactly 10.00
	lines := make([]Line, 100)
	for i := range lines {
		lines[i] = Line{UnitPrice: 0.10, Quantity: 1}
	}
	p := Compute(lines, "", nil)
	assert.Equal(t, 10.0, p.Subtotal)
	assert.Equal(t, 1.0, p.Tax)
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 59.98, LineTotal(29.99, 2))
	assert.Equal(t, 0.3, LineTotal(0.10, 3))
}
