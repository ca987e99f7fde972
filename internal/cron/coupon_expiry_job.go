package cron

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopmithra/mithra-backend/pkg/logger"
)

type couponExpirer interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// CouponExpiryJobParams configures the coupon expiry sweep.
type CouponExpiryJobParams struct {
	Logger  *logger.Logger
	Coupons couponExpirer
}

type couponExpiryJob struct {
	logg    *logger.Logger
	coupons couponExpirer
}

// NewCouponExpiryJob deactivates coupons whose validity window has closed, so
// an expired code is refused even before a shopper tries it.
func NewCouponExpiryJob(params CouponExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	return &couponExpiryJob{logg: params.Logger, coupons: params.Coupons}, nil
}

func (j *couponExpiryJob) Name() string { return "coupon_expiry" }

func (j *couponExpiryJob) Run(ctx context.Context) error {
	expired, err := j.coupons.ExpireLapsed(ctx)
	if err != nil {
		return fmt.Errorf("expire coupons: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expired", strconv.FormatInt(expired, 10)), "deactivated lapsed coupons")
	}
	return nil
}
