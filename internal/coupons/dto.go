package coupons

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
)

// CreateCouponInput is the back-office payload for minting a coupon.
type CreateCouponInput struct {
	Code             string             `json:"code" validate:"required"`
	DiscountType     enums.DiscountType `json:"discount_type" validate:"required"`
	DiscountValue    decimal.Decimal    `json:"discount_value" validate:"required"`
	MinPurchaseMinor *int64             `json:"min_purchase_minor,omitempty"`
	MaxDiscountMinor *int64             `json:"max_discount_minor,omitempty"`
	StartsAt         time.Time          `json:"starts_at" validate:"required"`
	EndsAt           time.Time          `json:"ends_at" validate:"required"`
	UsageLimit       *int               `json:"usage_limit,omitempty"`
}

// CouponDTO is the API shape for a coupon.
type CouponDTO struct {
	Code             string             `json:"code"`
	DiscountType     enums.DiscountType `json:"discount_type"`
	DiscountValue    decimal.Decimal    `json:"discount_value"`
	MinPurchaseMinor *int64             `json:"min_purchase_minor,omitempty"`
	MaxDiscountMinor *int64             `json:"max_discount_minor,omitempty"`
	StartsAt         time.Time          `json:"starts_at"`
	EndsAt           time.Time          `json:"ends_at"`
	UsageLimit       *int               `json:"usage_limit,omitempty"`
	UsedCount        int                `json:"used_count"`
	IsActive         bool               `json:"is_active"`
}

// ToDTO maps the persisted coupon to its API shape.
func ToDTO(coupon *models.Coupon) CouponDTO {
	return CouponDTO{
		Code:             coupon.Code,
		DiscountType:     coupon.DiscountType,
		DiscountValue:    coupon.DiscountValue,
		MinPurchaseMinor: coupon.MinPurchaseMinor,
		MaxDiscountMinor: coupon.MaxDiscountMinor,
		StartsAt:         coupon.StartsAt,
		EndsAt:           coupon.EndsAt,
		UsageLimit:       coupon.UsageLimit,
		UsedCount:        coupon.UsedCount,
		IsActive:         coupon.IsActive,
	}
}
