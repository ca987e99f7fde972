package enums

// CheckoutState is the explicit payment-session state machine. It replaces
// the loose loading/widget-open boolean combinations a storefront UI tends to
// accumulate, so impossible states cannot be represented.
type CheckoutState string

const (
	CheckoutStateIdle                 CheckoutState = "idle"
	CheckoutStateAwaitingGatewayOrder CheckoutState = "awaiting_gateway_order"
	CheckoutStateWidgetOpen           CheckoutState = "widget_open"
	CheckoutStateVerifyingPayment     CheckoutState = "verifying_payment"
	CheckoutStateCommittingOrder      CheckoutState = "committing_order"
	CheckoutStateDone                 CheckoutState = "done"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:                 {CheckoutStateAwaitingGatewayOrder},
	CheckoutStateAwaitingGatewayOrder: {CheckoutStateWidgetOpen, CheckoutStateIdle},
	CheckoutStateWidgetOpen:           {CheckoutStateVerifyingPayment, CheckoutStateIdle},
	CheckoutStateVerifyingPayment:     {CheckoutStateCommittingOrder, CheckoutStateIdle},
	CheckoutStateCommittingOrder:      {CheckoutStateDone, CheckoutStateIdle},
	CheckoutStateDone:                 {},
}

// CanTransitionTo reports whether the session may move from s to next.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s CheckoutState) Terminal() bool {
	return len(checkoutTransitions[s]) == 0
}

// Busy reports whether the session is inside the processing span during which
// the place-order control must stay disabled.
func (s CheckoutState) Busy() bool {
	switch s {
	case CheckoutStateAwaitingGatewayOrder, CheckoutStateWidgetOpen,
		CheckoutStateVerifyingPayment, CheckoutStateCommittingOrder:
		return true
	}
	return false
}
