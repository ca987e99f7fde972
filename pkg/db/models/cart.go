package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmithra/mithra-backend/pkg/enums"
)

// CartRecord is the shopper's active cart, keyed by the opaque session key the
// storefront sends on every request.
type CartRecord struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionKey string           `gorm:"column:session_key;not null;uniqueIndex"`
	Status     enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one cart line with the product snapshot taken at add time.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ImageURL       string    `gorm:"column:image_url"`
	UnitPriceMinor int64     `gorm:"column:unit_price_minor;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
