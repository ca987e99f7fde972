package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmithra/mithra-backend/pkg/enums"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

// Order is the durable record produced by a verified checkout. The unique
// index on payment_id is what makes the commit idempotent: retrying a commit
// for the same gateway payment lands on the existing row.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionKey      string              `gorm:"column:session_key;not null;index"`
	Customer        types.Customer      `gorm:"column:customer;type:jsonb;serializer:json"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  *types.Address      `gorm:"column:billing_address;type:jsonb;serializer:json"`
	SubtotalMinor   int64               `gorm:"column:subtotal_minor;not null"`
	DiscountMinor   int64               `gorm:"column:discount_minor;not null;default:0"`
	ShippingMinor   int64               `gorm:"column:shipping_minor;not null;default:0"`
	TaxMinor        int64               `gorm:"column:tax_minor;not null;default:0"`
	TotalMinor      int64               `gorm:"column:total_minor;not null"`
	Currency        string              `gorm:"column:currency;type:text;not null"`
	CouponCode      *string             `gorm:"column:coupon_code"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentID       string              `gorm:"column:payment_id;not null;uniqueIndex"`
	GatewayOrderID  string              `gorm:"column:gateway_order_id;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'processing'"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the immutable snapshot of one cart line at commit time.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ImageURL       string    `gorm:"column:image_url"`
	UnitPriceMinor int64     `gorm:"column:unit_price_minor;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
