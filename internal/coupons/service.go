package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

// Rejection reasons surfaced verbatim to the shopper.
const (
	ReasonEmptyCode   = "EMPTY_CODE"
	ReasonNotFound    = "invalid coupon code"
	ReasonInactive    = "this coupon is no longer active"
	ReasonNotStarted  = "this coupon is not active yet"
	ReasonExpired     = "this coupon has expired"
	ReasonUsageLimit  = "this coupon has reached its usage limit"
	ReasonMinPurchase = "order amount does not meet the coupon minimum"

	// ReasonRetry is the generic message for transport failures, where the
	// real cause stays in the logs.
	ReasonRetry = "could not validate coupon, please try again"
)

type couponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	List(ctx context.Context) ([]models.Coupon, error)
	Deactivate(ctx context.Context, code string) (int64, error)
	IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (int64, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// ServiceParams groups dependencies for the coupon service.
type ServiceParams struct {
	Repo   couponStore
	Logger *logger.Logger
	Now    func() time.Time
}

// Service exposes coupon validation and back-office management.
type Service interface {
	Validate(ctx context.Context, code string, subtotalMinor int64) (*models.Coupon, error)
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Deactivate(ctx context.Context, code string) error
	ConsumeUsage(ctx context.Context, tx *gorm.DB, code string) error
	ExpireLapsed(ctx context.Context) (int64, error)
}

type service struct {
	repo couponStore
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a coupon service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

// Validate checks a code against the subtotal and returns the coupon when it
// applies. Every rejection carries a shopper-facing reason; only transport
// failures get the generic retry message.
func (s *service) Validate(ctx context.Context, code string, subtotalMinor int64) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonEmptyCode)
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, ReasonNotFound)
		}
		if s.logg != nil {
			s.logg.Error(ctx, "coupon lookup failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, ReasonRetry)
	}

	now := s.now()
	switch {
	case !coupon.IsActive:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonInactive)
	case now.Before(coupon.StartsAt):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonNotStarted)
	case now.After(coupon.EndsAt):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonExpired)
	case coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonUsageLimit)
	case coupon.MinPurchaseMinor != nil && subtotalMinor < *coupon.MinPurchaseMinor:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonMinPurchase)
	}

	return coupon, nil
}

// Create mints a back-office coupon after checking the terms make sense.
func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !input.DiscountType.Valid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown discount type %q", input.DiscountType)
	}
	if input.DiscountValue.IsNegative() || input.DiscountValue.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon window must end after it starts")
	}
	if input.UsageLimit != nil && *input.UsageLimit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}

	coupon := &models.Coupon{
		Code:             code,
		DiscountType:     input.DiscountType,
		DiscountValue:    input.DiscountValue,
		MinPurchaseMinor: input.MinPurchaseMinor,
		MaxDiscountMinor: input.MaxDiscountMinor,
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
		UsageLimit:       input.UsageLimit,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

// List returns all coupons for the back office.
func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

// Deactivate turns a coupon off by code.
func (s *service) Deactivate(ctx context.Context, code string) error {
	affected, err := s.repo.Deactivate(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate coupon")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, ReasonNotFound)
	}
	return nil
}

// ConsumeUsage records one redemption inside the commit transaction. Hitting
// the usage limit here means a concurrent commit took the last slot.
func (s *service) ConsumeUsage(ctx context.Context, tx *gorm.DB, code string) error {
	affected, err := s.repo.IncrementUsage(ctx, tx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, ReasonUsageLimit)
	}
	return nil
}

// ExpireLapsed deactivates coupons whose validity window has closed.
func (s *service) ExpireLapsed(ctx context.Context) (int64, error) {
	return s.repo.DeactivateExpired(ctx, s.now())
}
