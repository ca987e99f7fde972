package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/internal/cart"
	checkoutsvc "github.com/shopmithra/mithra-backend/internal/checkout"
	"github.com/shopmithra/mithra-backend/internal/coupons"
	"github.com/shopmithra/mithra-backend/internal/orders"
	"github.com/shopmithra/mithra-backend/pkg/config"
	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	"github.com/shopmithra/mithra-backend/pkg/logger"
	"github.com/shopmithra/mithra-backend/pkg/redis"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, sessionKey string) (*models.CartRecord, error) {
	return &models.CartRecord{ID: uuid.New(), SessionKey: sessionKey}, nil
}

func (stubCartService) AddItem(context.Context, string, cart.AddItemInput) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItemQty(context.Context, string, uuid.UUID, int) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(context.Context, string, uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(context.Context, string) error { return nil }

func (stubCartService) PurgeStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type stubCouponService struct{}

func (stubCouponService) Validate(context.Context, string, int64) (*models.Coupon, error) {
	return nil, nil
}

func (stubCouponService) Create(context.Context, coupons.CreateCouponInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponService) List(context.Context) ([]models.Coupon, error) {
	return []models.Coupon{}, nil
}

func (stubCouponService) Deactivate(context.Context, string) error { return nil }

func (stubCouponService) ConsumeUsage(context.Context, *gorm.DB, string) error { return nil }

func (stubCouponService) ExpireLapsed(context.Context) (int64, error) { return 0, nil }

type stubCheckoutService struct{}

func (stubCheckoutService) Quote(context.Context, string, string) (types.PriceBreakdown, error) {
	return types.PriceBreakdown{Currency: "INR"}, nil
}

func (stubCheckoutService) Begin(context.Context, string, checkoutsvc.BeginInput) (*checkoutsvc.BeginResult, error) {
	panic("unimplemented")
}

func (stubCheckoutService) HandleSuccess(context.Context, string, checkoutsvc.PaymentSuccessInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubCheckoutService) HandleFailure(context.Context, string, checkoutsvc.PaymentFailedInput) error {
	return nil
}

func (stubCheckoutService) HandleDismiss(context.Context, string) error { return nil }

func (stubCheckoutService) State(context.Context, string) (checkoutsvc.StateDTO, error) {
	return checkoutsvc.StateDTO{State: enums.CheckoutStateIdle}, nil
}

type stubOrderService struct{}

func (stubOrderService) Commit(context.Context, orders.CommitInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) List(context.Context, string) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrderService) Get(context.Context, string, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
	panic("unimplemented")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubCartService{},
		stubCouponService{},
		stubCheckoutService{},
		stubOrderService{},
	)
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterHealthReadyReportsRedisOutage(t *testing.T) {
	// The nil redis client fails its ping, so readiness must go unhealthy.
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", rec.Code)
	}
}

func TestRouterShopperRoutesRequireCartSession(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-Cart-Session, got %d", rec.Code)
	}
}

func TestRouterCartGet(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Cart-Session", "cart_abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterCheckoutState(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout", nil)
	req.Header.Set("X-Cart-Session", "cart_abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterCheckoutRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set("X-Cart-Session", "cart_abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	req.Header.Set("X-Cart-Session", "cart_abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
