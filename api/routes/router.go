package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmithra/mithra-backend/api/controllers"
	"github.com/shopmithra/mithra-backend/api/middleware"
	"github.com/shopmithra/mithra-backend/internal/cart"
	checkoutsvc "github.com/shopmithra/mithra-backend/internal/checkout"
	"github.com/shopmithra/mithra-backend/internal/coupons"
	"github.com/shopmithra/mithra-backend/internal/orders"
	"github.com/shopmithra/mithra-backend/pkg/config"
	"github.com/shopmithra/mithra-backend/pkg/logger"
	"github.com/shopmithra/mithra-backend/pkg/metrics"
	"github.com/shopmithra/mithra-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	couponService coupons.Service,
	checkoutService checkoutsvc.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/quote", controllers.CartQuote(checkoutService, logg))
		})

		r.Post("/coupons/validate", controllers.CouponValidate(checkoutService, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.With(middleware.CheckoutRateLimit(redisClient, logg)).Post("/", controllers.CheckoutBegin(checkoutService, logg))
			r.Get("/", controllers.CheckoutState(checkoutService, logg))
			r.Post("/payment/success", controllers.CheckoutPaymentSuccess(checkoutService, logg))
			r.Post("/payment/failed", controllers.CheckoutPaymentFailed(checkoutService, logg))
			r.Post("/dismiss", controllers.CheckoutDismiss(checkoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", controllers.AdminCouponCreate(couponService, logg))
			r.Get("/", controllers.AdminCouponList(couponService, logg))
			r.Delete("/{code}", controllers.AdminCouponDeactivate(couponService, logg))
		})

		r.Post("/orders/{orderId}/status", controllers.OrderUpdateStatus(orderService, logg))
	})

	return r
}
