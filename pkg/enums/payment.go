package enums

// PaymentMethod identifies how an order was paid.
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
)

// PaymentStatus reflects the settled state recorded with an order.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// PaymentOutcome is the terminal result of one widget-driven payment attempt.
type PaymentOutcome string

const (
	PaymentOutcomePending   PaymentOutcome = "pending"
	PaymentOutcomeSucceeded PaymentOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
	PaymentOutcomeDismissed PaymentOutcome = "dismissed"
)
