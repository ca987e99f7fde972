package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopmithra/mithra-backend/pkg/logger"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func idempotencyTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   time.Duration
		ok     bool
	}{
		{"checkout open", http.MethodPost, "/api/v1/checkout", criticalIdempotencyTTL, true},
		{"payment success", http.MethodPost, "/api/v1/checkout/payment/success", criticalIdempotencyTTL, true},
		{"admin coupon create", http.MethodPost, "/api/admin/v1/coupons", defaultIdempotencyTTL, true},
		{"order status", http.MethodPost, "/api/admin/v1/orders/0c1b/status", defaultIdempotencyTTL, true},
		{"cart get skipped", http.MethodGet, "/api/v1/cart", 0, false},
		{"payment failed skipped", http.MethodPost, "/api/v1/checkout/payment/failed", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := routeTTL(tc.method, tc.path)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("routeTTL(%s %s) = (%v, %v), want (%v, %v)", tc.method, tc.path, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	logg := idempotencyTestLogger()

	calls := 0
	handler := Idempotency(store, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"gateway_order_id":"order_Nxy123"}}`))
	}))

	makeRequest := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
		req = req.WithContext(WithCartSession(req.Context(), "cart_abc"))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := makeRequest(`{"coupon_code":""}`)
	if first.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("first call: code=%d calls=%d", first.Code, calls)
	}

	second := makeRequest(`{"coupon_code":""}`)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201", second.Code)
	}
	if calls != 1 {
		t.Fatalf("handler re-invoked on replay, calls=%d", calls)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newFakeStore()
	logg := idempotencyTestLogger()

	handler := Idempotency(store, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	makeRequest := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
		req = req.WithContext(WithCartSession(req.Context(), "cart_abc"))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := makeRequest(`{"coupon_code":"A"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first call failed: %d", rec.Code)
	}
	rec := makeRequest(`{"coupon_code":"B"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new body, got %d", rec.Code)
	}
}

func TestIdempotencyRequiresKeyOnGuardedRoutes(t *testing.T) {
	store := newFakeStore()
	logg := idempotencyTestLogger()

	handler := Idempotency(store, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
}

func TestIdempotencySkipsUnguardedRoutes(t *testing.T) {
	store := newFakeStore()
	logg := idempotencyTestLogger()

	handler := Idempotency(store, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/payment/failed", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unguarded route should pass through, got %d", rec.Code)
	}
	if len(store.data) != 0 {
		t.Fatalf("no record should be stored for unguarded routes")
	}
}
