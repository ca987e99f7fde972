package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog row the cart snapshots from. Catalog management is
// handled by the back-office dashboard; checkout only reads it.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	ImageURL       string    `gorm:"column:image_url"`
	UnitPriceMinor int64     `gorm:"column:unit_price_minor;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
