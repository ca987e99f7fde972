package checkout

import (
	"context"
	"net/mail"
	"time"

	"github.com/shopmithra/mithra-backend/internal/orders"
	"github.com/shopmithra/mithra-backend/internal/pricing"
	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
	"github.com/shopmithra/mithra-backend/pkg/metrics"
	"github.com/shopmithra/mithra-backend/pkg/razorpay"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

type cartReader interface {
	Get(ctx context.Context, sessionKey string) (*models.CartRecord, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, subtotalMinor int64) (*models.Coupon, error)
}

type gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*razorpay.GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
}

type orderCommitter interface {
	Commit(ctx context.Context, input orders.CommitInput) (*models.Order, error)
}

// ServiceParams groups dependencies for the checkout orchestrator.
type ServiceParams struct {
	Carts    cartReader
	Coupons  couponValidator
	Engine   *pricing.Engine
	Gateway  gateway
	Orders   orderCommitter
	Sessions *SessionStore
	Logger   *logger.Logger
}

// Service drives a checkout attempt end to end: quote, gateway order,
// widget callbacks, signature verification and the final commit.
type Service interface {
	Quote(ctx context.Context, sessionKey, couponCode string) (types.PriceBreakdown, error)
	Begin(ctx context.Context, sessionKey string, input BeginInput) (*BeginResult, error)
	HandleSuccess(ctx context.Context, sessionKey string, input PaymentSuccessInput) (*models.Order, error)
	HandleFailure(ctx context.Context, sessionKey string, input PaymentFailedInput) error
	HandleDismiss(ctx context.Context, sessionKey string) error
	State(ctx context.Context, sessionKey string) (StateDTO, error)
}

type service struct {
	carts    cartReader
	coupons  couponValidator
	engine   *pricing.Engine
	gateway  gateway
	orders   orderCommitter
	sessions *SessionStore
	logg     *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart reader is required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon validator is required")
	}
	if params.Engine == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pricing engine is required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order committer is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	return &service{
		carts:    params.Carts,
		coupons:  params.Coupons,
		engine:   params.Engine,
		gateway:  params.Gateway,
		orders:   params.Orders,
		sessions: params.Sessions,
		logg:     params.Logger,
	}, nil
}

// Quote recomputes the breakdown for the current cart. Applying and removing
// a coupon round-trips to the identical no-coupon breakdown.
func (s *service) Quote(ctx context.Context, sessionKey, couponCode string) (types.PriceBreakdown, error) {
	cart, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return types.PriceBreakdown{}, err
	}
	return s.priceCart(ctx, cart, couponCode)
}

// Begin claims the session, prices the cart server-side and registers a
// gateway order for the total. Any failure releases the claim so the shopper
// lands back in idle and can retry.
func (s *service) Begin(ctx context.Context, sessionKey string, input BeginInput) (*BeginResult, error) {
	if err := validateBeginInput(input); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	session := &Session{
		SessionKey:      sessionKey,
		State:           enums.CheckoutStateAwaitingGatewayOrder,
		Customer:        input.Customer,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Outcome:         enums.PaymentOutcomePending,
		UpdatedAt:       time.Now().UTC(),
	}
	claimed, err := s.sessions.Claim(ctx, session)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout is already in progress for this cart")
	}
	metrics.CheckoutAttempts.Inc()

	breakdown, err := s.priceCart(ctx, cart, input.CouponCode)
	if err != nil {
		s.release(ctx, sessionKey)
		return nil, err
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, breakdown.TotalMinor, breakdown.Currency, sessionKey)
	if err != nil {
		s.release(ctx, sessionKey)
		metrics.PaymentFailures.WithLabelValues(metrics.ReasonGatewayOrder).Inc()
		return nil, err
	}
	metrics.GatewayOrdersCreated.Inc()

	session.GatewayOrderID = gatewayOrder.ID
	session.Breakdown = breakdown
	if !session.Transition(enums.CheckoutStateWidgetOpen) {
		s.release(ctx, sessionKey)
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout session in unexpected state")
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.release(ctx, sessionKey)
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithCartSession(ctx, sessionKey)
		s.logg.Info(lctx, "gateway order created, widget opening")
	}

	return &BeginResult{
		State:          session.State,
		KeyID:          s.gateway.KeyID(),
		GatewayOrderID: gatewayOrder.ID,
		AmountMinor:    breakdown.TotalMinor,
		Currency:       breakdown.Currency,
		Breakdown:      breakdown,
	}, nil
}

// HandleSuccess verifies the widget's success payload and commits the order.
// Verification and commit failures are the two paths that must surface the
// gateway payment id to the shopper, because funds may already be captured.
func (s *service) HandleSuccess(ctx context.Context, sessionKey string, input PaymentSuccessInput) (*models.Order, error) {
	session, err := s.sessions.Load(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if session == nil || session.State != enums.CheckoutStateWidgetOpen {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"no open payment widget for this cart (state %s)", stateOrIdle(session))
	}

	session.PaymentID = input.RazorpayPaymentID
	if !session.Transition(enums.CheckoutStateVerifyingPayment) {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout session in unexpected state")
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	if input.RazorpayOrderID != session.GatewayOrderID {
		return nil, s.failVerification(ctx, sessionKey, input.RazorpayPaymentID)
	}
	if err := s.gateway.VerifyPaymentSignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature); err != nil {
		return nil, s.failVerification(ctx, sessionKey, input.RazorpayPaymentID)
	}
	metrics.PaymentsVerified.Inc()

	if !session.Transition(enums.CheckoutStateCommittingOrder) {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout session in unexpected state")
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		s.release(ctx, sessionKey)
		return nil, err
	}

	order, err := s.orders.Commit(ctx, orders.CommitInput{
		SessionKey:      sessionKey,
		Cart:            cart,
		Breakdown:       session.Breakdown,
		Customer:        session.Customer,
		ShippingAddress: session.ShippingAddress,
		BillingAddress:  session.BillingAddress,
		PaymentID:       input.RazorpayPaymentID,
		GatewayOrderID:  input.RazorpayOrderID,
	})
	if err != nil {
		// The session returns to idle but the error keeps the payment id in
		// front of the shopper for reconciliation with support.
		s.release(ctx, sessionKey)
		return nil, err
	}

	session.Outcome = enums.PaymentOutcomeSucceeded
	if session.Transition(enums.CheckoutStateDone) {
		_ = s.sessions.Save(ctx, session)
	}

	if s.logg != nil {
		lctx := s.logg.WithPaymentID(s.logg.WithCartSession(ctx, sessionKey), input.RazorpayPaymentID)
		s.logg.Info(lctx, "payment verified and order committed")
	}
	return order, nil
}

// HandleFailure resets the session after the widget reports a failed payment
// attempt. The gateway's reason is surfaced verbatim; the cart is untouched
// and the shopper may retry.
func (s *service) HandleFailure(ctx context.Context, sessionKey string, input PaymentFailedInput) error {
	session, err := s.sessions.Load(ctx, sessionKey)
	if err != nil {
		return err
	}
	if session == nil || session.State != enums.CheckoutStateWidgetOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no open payment widget for this cart")
	}

	s.release(ctx, sessionKey)
	metrics.PaymentFailures.WithLabelValues(metrics.ReasonWidgetFailed).Inc()

	message := "payment failed"
	if input.Description != "" {
		message = "payment failed: " + input.Description
	}
	if s.logg != nil {
		lctx := s.logg.WithCartSession(ctx, sessionKey)
		s.logg.Warn(lctx, "gateway reported payment failure: "+input.Reason)
	}
	return pkgerrors.New(pkgerrors.CodeGatewayPayment, message).
		WithDetails(map[string]any{"reason": input.Reason})
}

// HandleDismiss quietly returns the session to idle when the shopper closes
// the widget without paying. Not an error.
func (s *service) HandleDismiss(ctx context.Context, sessionKey string) error {
	session, err := s.sessions.Load(ctx, sessionKey)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if session.State != enums.CheckoutStateWidgetOpen && session.State != enums.CheckoutStateAwaitingGatewayOrder {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is past the point of dismissal")
	}
	s.release(ctx, sessionKey)
	metrics.PaymentFailures.WithLabelValues(metrics.ReasonDismissed).Inc()
	return nil
}

// State reports the session's current position in the flow.
func (s *service) State(ctx context.Context, sessionKey string) (StateDTO, error) {
	session, err := s.sessions.Load(ctx, sessionKey)
	if err != nil {
		return StateDTO{}, err
	}
	dto := StateDTO{State: stateOrIdle(session)}
	if session != nil {
		dto.GatewayOrderID = session.GatewayOrderID
		if session.Breakdown.TotalMinor > 0 {
			breakdown := session.Breakdown
			dto.Breakdown = &breakdown
		}
	}
	return dto, nil
}

func validateBeginInput(input BeginInput) error {
	if !input.ShippingAddress.Complete() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	if input.Customer.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if _, err := mail.ParseAddress(input.Customer.Email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid customer email is required")
	}
	if countDigits(input.Customer.Phone) < 10 {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone must have at least 10 digits")
	}
	if input.BillingAddress != nil && !input.BillingAddress.Complete() {
		return pkgerrors.New(pkgerrors.CodeValidation, "billing address is incomplete")
	}
	return nil
}

func countDigits(value string) int {
	count := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

func (s *service) priceCart(ctx context.Context, cart *models.CartRecord, couponCode string) (types.PriceBreakdown, error) {
	lines := pricing.LinesFromCart(cart.Items)
	subtotal, err := s.engine.Subtotal(lines)
	if err != nil {
		return types.PriceBreakdown{}, err
	}

	var coupon *models.Coupon
	if couponCode != "" {
		coupon, err = s.coupons.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return types.PriceBreakdown{}, err
		}
	}
	return s.engine.ComputeBreakdown(lines, coupon)
}

func (s *service) failVerification(ctx context.Context, sessionKey, paymentID string) error {
	s.release(ctx, sessionKey)
	metrics.PaymentFailures.WithLabelValues(metrics.ReasonVerification).Inc()
	if s.logg != nil {
		lctx := s.logg.WithPaymentID(s.logg.WithCartSession(ctx, sessionKey), paymentID)
		s.logg.Error(lctx, "payment verification failed", nil)
	}
	return pkgerrors.Newf(pkgerrors.CodeVerification,
		"payment %s could not be verified, please contact support with this payment id", paymentID).
		WithDetails(map[string]any{"payment_id": paymentID})
}

func (s *service) release(ctx context.Context, sessionKey string) {
	if err := s.sessions.Clear(ctx, sessionKey); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to clear checkout session: "+err.Error())
	}
}
