package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmithra/mithra-backend/pkg/config"
	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(config.PricingConfig{
		Currency:          "INR",
		ShippingFlatMinor: 5000,
		TaxRatePercent:    "18",
	})
	require.NoError(t, err)
	return engine
}

func percentCoupon(code string, pct int64) *models.Coupon {
	return &models.Coupon{
		Code:          code,
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(pct),
	}
}

func TestNewEngineRejectsBadTaxRate(t *testing.T) {
	_, err := NewEngine(config.PricingConfig{Currency: "INR", TaxRatePercent: "abc"})
	require.Error(t, err)

	_, err = NewEngine(config.PricingConfig{Currency: "INR", TaxRatePercent: "-1"})
	require.Error(t, err)
}

func TestComputeBreakdownWithPercentCoupon(t *testing.T) {
	engine := newTestEngine(t)

	// One thousand rupees of goods, twenty percent off, flat fifty rupee
	// shipping, eighteen percent tax on the undiscounted subtotal.
	lines := []Line{
		{UnitPriceMinor: 40000, Qty: 2},
		{UnitPriceMinor: 20000, Qty: 1},
	}

	breakdown, err := engine.ComputeBreakdown(lines, percentCoupon("SAVE20", 20))
	require.NoError(t, err)

	assert.Equal(t, int64(100000), breakdown.SubtotalMinor)
	assert.Equal(t, int64(20000), breakdown.DiscountMinor)
	assert.Equal(t, int64(5000), breakdown.ShippingMinor)
	assert.Equal(t, int64(18000), breakdown.TaxMinor)
	assert.Equal(t, int64(103000), breakdown.TotalMinor)
	assert.Equal(t, "INR", breakdown.Currency)
	assert.Equal(t, "SAVE20", breakdown.CouponCode)
}

func TestComputeBreakdownNoCoupon(t *testing.T) {
	engine := newTestEngine(t)

	breakdown, err := engine.ComputeBreakdown([]Line{{UnitPriceMinor: 100000, Qty: 1}}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(0), breakdown.DiscountMinor)
	assert.Equal(t, int64(123000), breakdown.TotalMinor)
	assert.Empty(t, breakdown.CouponCode)
}

func TestComputeBreakdownEmptyCart(t *testing.T) {
	engine := newTestEngine(t)

	breakdown, err := engine.ComputeBreakdown(nil, percentCoupon("SAVE20", 20))
	require.NoError(t, err)

	assert.Equal(t, int64(0), breakdown.SubtotalMinor)
	assert.Equal(t, int64(0), breakdown.DiscountMinor)
	assert.Equal(t, int64(0), breakdown.ShippingMinor)
	assert.Equal(t, int64(0), breakdown.TaxMinor)
	assert.Equal(t, int64(0), breakdown.TotalMinor)
}

func TestDiscountRoundsHalfUp(t *testing.T) {
	engine := newTestEngine(t)

	// 10% of 105 minor units is 10.5, which rounds up to 11.
	discount := engine.Discount(percentCoupon("TEN", 10), 105)
	assert.Equal(t, int64(11), discount)
}

func TestDiscountRespectsMaxCap(t *testing.T) {
	engine := newTestEngine(t)

	limit := int64(10000)
	coupon := percentCoupon("SAVE20", 20)
	coupon.MaxDiscountMinor = &limit

	assert.Equal(t, int64(10000), engine.Discount(coupon, 100000))
}

func TestFixedDiscountCannotExceedSubtotal(t *testing.T) {
	engine := newTestEngine(t)

	coupon := &models.Coupon{
		Code:          "FLAT500",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50000),
	}

	assert.Equal(t, int64(30000), engine.Discount(coupon, 30000))
	assert.Equal(t, int64(50000), engine.Discount(coupon, 80000))
}

func TestTaxAppliesToUndiscountedSubtotal(t *testing.T) {
	engine := newTestEngine(t)

	lines := []Line{{UnitPriceMinor: 100000, Qty: 1}}
	withCoupon, err := engine.ComputeBreakdown(lines, percentCoupon("SAVE20", 20))
	require.NoError(t, err)
	without, err := engine.ComputeBreakdown(lines, nil)
	require.NoError(t, err)

	assert.Equal(t, without.TaxMinor, withCoupon.TaxMinor)
}

func TestSubtotalRejectsInvalidLines(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Subtotal([]Line{{UnitPriceMinor: 100, Qty: 0}})
	require.Error(t, err)

	_, err = engine.Subtotal([]Line{{UnitPriceMinor: -1, Qty: 1}})
	require.Error(t, err)
}

func TestLinesFromCart(t *testing.T) {
	items := []models.CartItem{
		{UnitPriceMinor: 40000, Qty: 2},
		{UnitPriceMinor: 20000, Qty: 1},
	}
	lines := LinesFromCart(items)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(40000), lines[0].UnitPriceMinor)
	assert.Equal(t, 2, lines[0].Qty)
}
