package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopmithra/mithra-backend/pkg/enums"
)

// Coupon is a back-office managed discount code. DiscountValue is a percent
// for percentage coupons and a minor-unit amount for fixed coupons.
type Coupon struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType     enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue    decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinPurchaseMinor *int64             `gorm:"column:min_purchase_minor"`
	MaxDiscountMinor *int64             `gorm:"column:max_discount_minor"`
	StartsAt         time.Time          `gorm:"column:starts_at;not null"`
	EndsAt           time.Time          `gorm:"column:ends_at;not null"`
	UsageLimit       *int               `gorm:"column:usage_limit"`
	UsedCount        int                `gorm:"column:used_count;not null;default:0"`
	IsActive         bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
