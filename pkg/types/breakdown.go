package types

// PriceBreakdown is the derived quote for a cart. All amounts are integer
// minor currency units. It is recomputed on every cart or coupon change and
// never persisted independently of an order.
type PriceBreakdown struct {
	SubtotalMinor int64  `json:"subtotal_minor"`
	DiscountMinor int64  `json:"discount_minor"`
	ShippingMinor int64  `json:"shipping_minor"`
	TaxMinor      int64  `json:"tax_minor"`
	TotalMinor    int64  `json:"total_minor"`
	Currency      string `json:"currency"`
	CouponCode    string `json:"coupon_code,omitempty"`
}
