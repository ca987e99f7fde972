package checkout

import (
	"time"

	"github.com/shopmithra/mithra-backend/pkg/enums"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

// Session is the transient record of one checkout attempt, held in redis for
// the life of the attempt. It pins the quote and the gateway order handle so
// the amount the shopper saw is the amount that gets committed, and its state
// machine is what keeps a double-submitted place-order from creating two
// gateway orders.
type Session struct {
	SessionKey      string               `json:"session_key"`
	State           enums.CheckoutState  `json:"state"`
	GatewayOrderID  string               `json:"gateway_order_id,omitempty"`
	Breakdown       types.PriceBreakdown `json:"breakdown"`
	Customer        types.Customer       `json:"customer"`
	ShippingAddress types.Address        `json:"shipping_address"`
	BillingAddress  *types.Address       `json:"billing_address,omitempty"`
	Outcome         enums.PaymentOutcome `json:"outcome"`
	PaymentID       string               `json:"payment_id,omitempty"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Transition moves the session to next if the state machine allows it.
func (s *Session) Transition(next enums.CheckoutState) bool {
	if !s.State.CanTransitionTo(next) {
		return false
	}
	s.State = next
	s.UpdatedAt = time.Now().UTC()
	return true
}
