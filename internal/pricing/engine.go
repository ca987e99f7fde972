package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/shopmithra/mithra-backend/pkg/config"
	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	"github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Line is one priced cart row. Quantities are validated upstream; the engine
// still refuses negatives so a bad caller cannot produce a negative charge.
type Line struct {
	UnitPriceMinor int64
	Qty            int
}

// Engine computes price breakdowns from cart lines and an optional coupon.
// All arithmetic happens in integer minor units; percentages go through
// decimal with half-up rounding so 2.5 paise rounds to 3, never truncates.
type Engine struct {
	currency          string
	shippingFlatMinor int64
	taxRatePercent    decimal.Decimal
}

// NewEngine parses the configured tax rate once so quote paths never fail on
// config parsing.
func NewEngine(cfg config.PricingConfig) (*Engine, error) {
	rate, err := decimal.NewFromString(cfg.TaxRatePercent)
	if err != nil {
		return nil, errors.Newf(errors.CodeValidation, "invalid tax rate %q", cfg.TaxRatePercent)
	}
	if rate.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "tax rate must be non-negative")
	}
	return &Engine{
		currency:          cfg.Currency,
		shippingFlatMinor: cfg.ShippingFlatMinor,
		taxRatePercent:    rate,
	}, nil
}

// Currency returns the ISO currency code all quotes are issued in.
func (e *Engine) Currency() string {
	return e.currency
}

// Subtotal sums the lines. Lines with non-positive quantity or negative unit
// price are rejected rather than silently skipped.
func (e *Engine) Subtotal(lines []Line) (int64, error) {
	var subtotal int64
	for _, line := range lines {
		if line.Qty <= 0 {
			return 0, errors.New(errors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPriceMinor < 0 {
			return 0, errors.New(errors.CodeValidation, "line unit price must be non-negative")
		}
		subtotal += line.UnitPriceMinor * int64(line.Qty)
	}
	return subtotal, nil
}

// Discount computes the coupon's discount against the subtotal. The result is
// clamped to the coupon's max discount and never exceeds the subtotal, so the
// total cannot go negative.
func (e *Engine) Discount(coupon *models.Coupon, subtotalMinor int64) int64 {
	if coupon == nil || subtotalMinor <= 0 {
		return 0
	}

	var discount int64
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		raw := decimal.NewFromInt(subtotalMinor).
			Mul(coupon.DiscountValue).
			Div(hundred)
		// Round half up so the discount matches what the storefront displays.
		discount = raw.Round(0).IntPart()
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue.Round(0).IntPart()
	default:
		return 0
	}

	if coupon.MaxDiscountMinor != nil && discount > *coupon.MaxDiscountMinor {
		discount = *coupon.MaxDiscountMinor
	}
	if discount > subtotalMinor {
		discount = subtotalMinor
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// Tax applies the configured rate to the subtotal. Tax is charged on the
// undiscounted subtotal; coupons reduce the merchant's take, not the tax base.
func (e *Engine) Tax(subtotalMinor int64) int64 {
	if subtotalMinor <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotalMinor).
		Mul(e.taxRatePercent).
		Div(hundred).
		Round(0).
		IntPart()
}

// Shipping returns the flat shipping fee. An empty cart ships nothing.
func (e *Engine) Shipping(subtotalMinor int64) int64 {
	if subtotalMinor <= 0 {
		return 0
	}
	return e.shippingFlatMinor
}

// ComputeBreakdown produces the full quote for a cart and optional coupon.
func (e *Engine) ComputeBreakdown(lines []Line, coupon *models.Coupon) (types.PriceBreakdown, error) {
	subtotal, err := e.Subtotal(lines)
	if err != nil {
		return types.PriceBreakdown{}, err
	}

	discount := e.Discount(coupon, subtotal)
	shipping := e.Shipping(subtotal)
	tax := e.Tax(subtotal)

	breakdown := types.PriceBreakdown{
		SubtotalMinor: subtotal,
		DiscountMinor: discount,
		ShippingMinor: shipping,
		TaxMinor:      tax,
		TotalMinor:    subtotal - discount + shipping + tax,
		Currency:      e.currency,
	}
	if coupon != nil {
		breakdown.CouponCode = coupon.Code
	}
	return breakdown, nil
}

// LinesFromCart adapts persisted cart items into priceable lines.
func LinesFromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{UnitPriceMinor: item.UnitPriceMinor, Qty: item.Qty})
	}
	return lines
}
