package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
)

// Repository encapsulates cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindBySessionKey loads the cart with its items, or gorm.ErrRecordNotFound.
func (r *Repository) FindBySessionKey(ctx context.Context, sessionKey string) (*models.CartRecord, error) {
	var cart models.CartRecord
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("session_key = ? AND status = ?", sessionKey, enums.CartStatusActive).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindOrCreateBySessionKey returns the active cart for the session, creating
// an empty one on first touch.
func (r *Repository) FindOrCreateBySessionKey(ctx context.Context, sessionKey string) (*models.CartRecord, error) {
	cart, err := r.FindBySessionKey(ctx, sessionKey)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.CartRecord{SessionKey: sessionKey, Status: enums.CartStatusActive}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindBySessionKey(ctx, sessionKey)
}

// UpsertItem adds a product line or bumps its quantity when it already exists.
func (r *Repository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"qty":        gorm.Expr("cart_items.qty + excluded.qty"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(item).Error
}

// UpdateItemQty sets the quantity of one line. Zero rows means the line is gone.
func (r *Repository) UpdateItemQty(ctx context.Context, cartID, itemID uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("qty", qty)
	return result.RowsAffected, result.Error
}

// RemoveItem deletes one line from the cart.
func (r *Repository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// ClearItems empties the cart without deleting the cart row.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// MarkConverted flags the cart as consumed by a committed order, inside the
// commit transaction.
func (r *Repository) MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	if err := conn.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Update("status", enums.CartStatusConverted).Error; err != nil {
		return err
	}
	return conn.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// DeleteStale removes active carts untouched for longer than age and their items.
func (r *Repository) DeleteStale(ctx context.Context, age time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-age)
	result := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.CartStatusActive, cutoff).
		Delete(&models.CartRecord{})
	return result.RowsAffected, result.Error
}
