package checkout

import (
	"github.com/shopmithra/mithra-backend/pkg/enums"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

// QuoteInput asks for a price breakdown, optionally with a coupon applied.
type QuoteInput struct {
	CouponCode string `json:"coupon_code,omitempty"`
}

// BeginInput is the place-order payload. The storefront never sends amounts;
// the server recomputes the charge from the cart it holds.
type BeginInput struct {
	Customer        types.Customer `json:"customer" validate:"required"`
	ShippingAddress types.Address  `json:"shipping_address" validate:"required"`
	BillingAddress  *types.Address `json:"billing_address,omitempty"`
	CouponCode      string         `json:"coupon_code,omitempty"`
}

// BeginResult hands the storefront everything the payment widget needs.
type BeginResult struct {
	State          enums.CheckoutState  `json:"state"`
	KeyID          string               `json:"key_id"`
	GatewayOrderID string               `json:"gateway_order_id"`
	AmountMinor    int64                `json:"amount_minor"`
	Currency       string               `json:"currency"`
	Breakdown      types.PriceBreakdown `json:"breakdown"`
}

// PaymentSuccessInput is the widget's success payload, forwarded verbatim.
type PaymentSuccessInput struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// PaymentFailedInput carries the widget's payment.failed event details.
type PaymentFailedInput struct {
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// StateDTO is the polling view of the session.
type StateDTO struct {
	State          enums.CheckoutState   `json:"state"`
	GatewayOrderID string                `json:"gateway_order_id,omitempty"`
	Breakdown      *types.PriceBreakdown `json:"breakdown,omitempty"`
}
