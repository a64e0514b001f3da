// Package pricing computes order totals from validated cart lines. It is a
// pure function of its inputs: no database access, no clock, no state.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stylenest/stylenest-backend/models"
)

const (
	taxRate           = "0.10"
	freeShippingAbove = "100"
	flatShippingFee   = "10"
)

// Line is one priced cart line: the effective unit price (variant override
// already resolved) and the quantity purchased.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Coupon is a resolved discount: either a percentage of the subtotal or a
// flat amount, never both.
type Coupon struct {
	Code    string
	Percent float64 // e.g. 10 for 10% off
	Flat    float64
}

// CouponResolver maps a coupon code to a discount. Resolvers return false for
// unrecognized codes; an unrecognized code is not an error, just no discount.
type CouponResolver interface {
	Resolve(code string) (Coupon, bool)
}

// StaticCoupons is the shipped resolver: a fixed table of codes. The real
// coupon catalog lives behind the same interface once there is one.
type StaticCoupons map[string]Coupon

func (s StaticCoupons) Resolve(code string) (Coupon, bool) {
	c, ok := s[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// DefaultCoupons recognizes the single launch code.
func DefaultCoupons() CouponResolver {
	return StaticCoupons{
		"WELCOME10": {Code: "WELCOME10", Percent: 10},
	}
}

// Compute derives the pricing breakdown for a set of lines. Each derived
// field is rounded once (half away from zero, 2 decimals); lines are summed
// in decimal so float drift never accumulates.
func Compute(lines []Line, couponCode string, coupons CouponResolver) models.Pricing {
	subtotal := decimal.Zero
	for _, l := range lines {
		unit := decimal.NewFromFloat(l.UnitPrice)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(decimal.RequireFromString(taxRate)).Round(2)

	shipping := decimal.RequireFromString(flatShippingFee)
	if subtotal.GreaterThan(decimal.RequireFromString(freeShippingAbove)) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if couponCode != "" && coupons != nil {
		if c, ok := coupons.Resolve(couponCode); ok {
			if c.Percent > 0 {
				discount = subtotal.Mul(decimal.NewFromFloat(c.Percent)).Div(decimal.NewFromInt(100)).Round(2)
			} else {
				discount = decimal.NewFromFloat(c.Flat).Round(2)
			}
			// a discount never exceeds what is being discounted
			if discount.GreaterThan(subtotal) {
				discount = subtotal
			}
		}
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount).Round(2)

	return models.Pricing{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Discount: discount.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// LineTotal is the rounded unitPrice×quantity for one line, used for the
// per-item totals snapshotted onto orders and cart views.
func LineTotal(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}
