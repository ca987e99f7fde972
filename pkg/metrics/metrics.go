package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CheckoutAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mithra",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Checkout sessions started.",
	})

	GatewayOrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mithra",
		Subsystem: "checkout",
		Name:      "gateway_orders_created_total",
		Help:      "Gateway orders successfully registered with Razorpay.",
	})

	PaymentsVerified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mithra",
		Subsystem: "checkout",
		Name:      "payments_verified_total",
		Help:      "Payments whose gateway signature verified.",
	})

	PaymentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mithra",
		Subsystem: "checkout",
		Name:      "payment_failures_total",
		Help:      "Payment attempts that ended without a committed order.",
	}, []string{"reason"})

	OrdersCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mithra",
		Subsystem: "checkout",
		Name:      "orders_committed_total",
		Help:      "Orders durably recorded after verification.",
	})
)

// Failure reason labels for PaymentFailures.
const (
	ReasonGatewayOrder = "gateway_order"
	ReasonWidgetFailed = "widget_failed"
	ReasonDismissed    = "dismissed"
	ReasonVerification = "verification"
	ReasonCommit       = "commit"
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
