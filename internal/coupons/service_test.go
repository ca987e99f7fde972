package coupons

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
)

type stubCouponStore struct {
	coupons        map[string]*models.Coupon
	findErr        error
	createErr      error
	incrementRows  int64
	incrementErr   error
	deactivateRows int64
	expiredRows    int64
	created        []*models.Coupon
}

func (s *stubCouponStore) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if coupon, ok := s.coupons[code]; ok {
		return coupon, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponStore) Create(_ context.Context, coupon *models.Coupon) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, coupon)
	return nil
}

func (s *stubCouponStore) List(_ context.Context) ([]models.Coupon, error) {
	out := make([]models.Coupon, 0, len(s.coupons))
	for _, coupon := range s.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

func (s *stubCouponStore) Deactivate(_ context.Context, _ string) (int64, error) {
	return s.deactivateRows, nil
}

func (s *stubCouponStore) IncrementUsage(_ context.Context, _ *gorm.DB, _ string) (int64, error) {
	return s.incrementRows, s.incrementErr
}

func (s *stubCouponStore) DeactivateExpired(_ context.Context, _ time.Time) (int64, error) {
	return s.expiredRows, nil
}

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func validCoupon(code string) *models.Coupon {
	return &models.Coupon{
		Code:          code,
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		StartsAt:      testNow.Add(-24 * time.Hour),
		EndsAt:        testNow.Add(24 * time.Hour),
		IsActive:      true,
	}
}

func newTestService(t *testing.T, store *stubCouponStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: store,
		Now:  func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc
}

func TestValidateEmptyCodeFailsFast(t *testing.T) {
	store := &stubCouponStore{findErr: fmt.Errorf("must not be called")}
	svc := newTestService(t, store)

	_, err := svc.Validate(context.Background(), "   ", 100000)
	require.Error(t, err)
	assert.Equal(t, ReasonEmptyCode, pkgerrors.As(err).Message())
}

func TestValidateHappyPath(t *testing.T) {
	store := &stubCouponStore{coupons: map[string]*models.Coupon{"SAVE20": validCoupon("SAVE20")}}
	svc := newTestService(t, store)

	coupon, err := svc.Validate(context.Background(), "SAVE20", 100000)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", coupon.Code)
}

func TestValidateRejections(t *testing.T) {
	inactive := validCoupon("OFF")
	inactive.IsActive = false

	notStarted := validCoupon("SOON")
	notStarted.StartsAt = testNow.Add(time.Hour)

	expired := validCoupon("OLD")
	expired.EndsAt = testNow.Add(-time.Hour)

	limit := 5
	exhausted := validCoupon("FULL")
	exhausted.UsageLimit = &limit
	exhausted.UsedCount = 5

	minPurchase := int64(50000)
	tooSmall := validCoupon("BIG")
	tooSmall.MinPurchaseMinor = &minPurchase

	store := &stubCouponStore{coupons: map[string]*models.Coupon{
		"OFF":  inactive,
		"SOON": notStarted,
		"OLD":  expired,
		"FULL": exhausted,
		"BIG":  tooSmall,
	}}
	svc := newTestService(t, store)

	cases := []struct {
		code     string
		subtotal int64
		reason   string
	}{
		{"MISSING", 100000, ReasonNotFound},
		{"OFF", 100000, ReasonInactive},
		{"SOON", 100000, ReasonNotStarted},
		{"OLD", 100000, ReasonExpired},
		{"FULL", 100000, ReasonUsageLimit},
		{"BIG", 40000, ReasonMinPurchase},
	}

	for _, tc := range cases {
		_, err := svc.Validate(context.Background(), tc.code, tc.subtotal)
		require.Error(t, err, tc.code)
		assert.Equal(t, tc.reason, pkgerrors.As(err).Message(), tc.code)
	}
}

func TestValidateUsageLimitBeatsAmount(t *testing.T) {
	limit := 1
	coupon := validCoupon("ONCE")
	coupon.UsageLimit = &limit
	coupon.UsedCount = 1

	store := &stubCouponStore{coupons: map[string]*models.Coupon{"ONCE": coupon}}
	svc := newTestService(t, store)

	_, err := svc.Validate(context.Background(), "ONCE", 1)
	require.Error(t, err)
	assert.Equal(t, ReasonUsageLimit, pkgerrors.As(err).Message())

	_, err = svc.Validate(context.Background(), "ONCE", 10000000)
	require.Error(t, err)
	assert.Equal(t, ReasonUsageLimit, pkgerrors.As(err).Message())
}

func TestValidateTransportFailureIsGeneric(t *testing.T) {
	store := &stubCouponStore{findErr: fmt.Errorf("connection refused")}
	svc := newTestService(t, store)

	_, err := svc.Validate(context.Background(), "SAVE20", 100000)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Equal(t, ReasonRetry, typed.Message())
}

func TestCreateValidatesTerms(t *testing.T) {
	store := &stubCouponStore{}
	svc := newTestService(t, store)

	_, err := svc.Create(context.Background(), CreateCouponInput{
		Code:          "BAD",
		DiscountType:  "bogus",
		DiscountValue: decimal.NewFromInt(10),
		StartsAt:      testNow,
		EndsAt:        testNow.Add(time.Hour),
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateCouponInput{
		Code:          "BAD",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartsAt:      testNow.Add(time.Hour),
		EndsAt:        testNow,
	})
	require.Error(t, err)

	coupon, err := svc.Create(context.Background(), CreateCouponInput{
		Code:          "  save20 ",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		StartsAt:      testNow,
		EndsAt:        testNow.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", coupon.Code)
	assert.True(t, coupon.IsActive)
	require.Len(t, store.created, 1)
}

func TestConsumeUsageConflictOnZeroRows(t *testing.T) {
	store := &stubCouponStore{incrementRows: 0}
	svc := newTestService(t, store)

	err := svc.ConsumeUsage(context.Background(), nil, "SAVE20")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	store.incrementRows = 1
	require.NoError(t, svc.ConsumeUsage(context.Background(), nil, "SAVE20"))
}

func TestDeactivateNotFound(t *testing.T) {
	store := &stubCouponStore{deactivateRows: 0}
	svc := newTestService(t, store)

	err := svc.Deactivate(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
