package coupons

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
)

// Repository encapsulates coupon persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a coupon repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode loads a coupon by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Where("code = ?", normalizeCode(code)).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Create inserts a new coupon.
func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

// List returns all coupons, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Deactivate flips a coupon off without deleting its usage history.
func (r *Repository) Deactivate(ctx context.Context, code string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ?", normalizeCode(code)).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// IncrementUsage bumps used_count inside the supplied transaction, refusing
// to pass the usage limit. Zero rows affected means the limit was hit by a
// concurrent commit.
func (r *Repository) IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (int64, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	result := conn.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ? AND (usage_limit IS NULL OR used_count < usage_limit)", normalizeCode(code)).
		Update("used_count", gorm.Expr("used_count + 1"))
	return result.RowsAffected, result.Error
}

// DeactivateExpired flips off every active coupon whose window has closed.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("is_active = true AND ends_at < ?", now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
