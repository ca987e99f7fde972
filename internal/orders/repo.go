package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
)

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertIdempotent inserts the order unless a row for the same gateway
// payment already exists. Returns true when this call created the row.
func (r *Repository) InsertIdempotent(ctx context.Context, tx *gorm.DB, order *models.Order) (bool, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	result := conn.WithContext(ctx).
		Omit("Items").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_id"}},
			DoNothing: true,
		}).
		Create(order)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if len(order.Items) > 0 {
		if err := conn.WithContext(ctx).Create(&order.Items).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

// FindByPaymentID loads the order recorded for a gateway payment.
func (r *Repository) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Order, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	var order models.Order
	if err := conn.WithContext(ctx).
		Preload("Items").
		Where("payment_id = ?", paymentID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID loads one order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListBySessionKey returns the session's orders, newest first.
func (r *Repository) ListBySessionKey(ctx context.Context, sessionKey string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("session_key = ?", sessionKey).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves the fulfillment status. Zero rows means the order is gone.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}
