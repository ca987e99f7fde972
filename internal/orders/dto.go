package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

// CommitInput carries everything the committer needs to durably record a
// verified payment as an order.
type CommitInput struct {
	SessionKey      string
	Cart            *models.CartRecord
	Breakdown       types.PriceBreakdown
	Customer        types.Customer
	ShippingAddress types.Address
	BillingAddress  *types.Address
	PaymentID       string
	GatewayOrderID  string
}

// UpdateStatusInput is the back-office fulfillment transition payload.
type UpdateStatusInput struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// ItemDTO is one order line.
type ItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ImageURL       string    `json:"image_url,omitempty"`
	UnitPriceMinor int64     `json:"unit_price_minor"`
	Qty            int       `json:"qty"`
}

// OrderDTO is the API shape of a committed order.
type OrderDTO struct {
	ID              uuid.UUID            `json:"id"`
	Items           []ItemDTO            `json:"items"`
	Customer        types.Customer       `json:"customer"`
	ShippingAddress types.Address        `json:"shipping_address"`
	BillingAddress  *types.Address       `json:"billing_address,omitempty"`
	Breakdown       types.PriceBreakdown `json:"breakdown"`
	PaymentMethod   enums.PaymentMethod  `json:"payment_method"`
	PaymentID       string               `json:"payment_id"`
	PaymentStatus   enums.PaymentStatus  `json:"payment_status"`
	Status          enums.OrderStatus    `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToDTO maps a persisted order to its API shape.
func ToDTO(order *models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ImageURL:       item.ImageURL,
			UnitPriceMinor: item.UnitPriceMinor,
			Qty:            item.Qty,
		})
	}
	breakdown := types.PriceBreakdown{
		SubtotalMinor: order.SubtotalMinor,
		DiscountMinor: order.DiscountMinor,
		ShippingMinor: order.ShippingMinor,
		TaxMinor:      order.TaxMinor,
		TotalMinor:    order.TotalMinor,
		Currency:      order.Currency,
	}
	if order.CouponCode != nil {
		breakdown.CouponCode = *order.CouponCode
	}
	return OrderDTO{
		ID:              order.ID,
		Items:           items,
		Customer:        order.Customer,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		Breakdown:       breakdown,
		PaymentMethod:   order.PaymentMethod,
		PaymentID:       order.PaymentID,
		PaymentStatus:   order.PaymentStatus,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
}
