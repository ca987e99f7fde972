package cart

import (
	"github.com/google/uuid"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
)

// AddItemInput is the storefront payload for adding a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gte=1"`
}

// UpdateItemInput changes the quantity of one cart line.
type UpdateItemInput struct {
	Qty int `json:"qty" validate:"required,gte=1"`
}

// ItemDTO is one cart line as the storefront sees it.
type ItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ImageURL       string    `json:"image_url,omitempty"`
	UnitPriceMinor int64     `json:"unit_price_minor"`
	Qty            int       `json:"qty"`
}

// CartDTO is the full cart view.
type CartDTO struct {
	ID    uuid.UUID `json:"id"`
	Items []ItemDTO `json:"items"`
}

// ToDTO maps a persisted cart into its API shape.
func ToDTO(record *models.CartRecord) CartDTO {
	items := make([]ItemDTO, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, ItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ImageURL:       item.ImageURL,
			UnitPriceMinor: item.UnitPriceMinor,
			Qty:            item.Qty,
		})
	}
	return CartDTO{ID: record.ID, Items: items}
}
