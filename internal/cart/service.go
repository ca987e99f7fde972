package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
)

type cartStore interface {
	FindBySessionKey(ctx context.Context, sessionKey string) (*models.CartRecord, error)
	FindOrCreateBySessionKey(ctx context.Context, sessionKey string) (*models.CartRecord, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQty(ctx context.Context, cartID, itemID uuid.UUID, qty int) (int64, error)
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (int64, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	DeleteStale(ctx context.Context, age time.Duration, now time.Time) (int64, error)
}

type productCatalog interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// checkoutGuard reports whether a checkout is mid-flight for the session.
// Cart mutation is refused for the whole processing span so the priced cart
// cannot drift under an open payment widget.
type checkoutGuard interface {
	Busy(ctx context.Context, sessionKey string) (bool, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo     cartStore
	Products productCatalog
	Guard    checkoutGuard
	Logger   *logger.Logger
}

// Service exposes storefront cart operations keyed by the opaque session key.
type Service interface {
	Get(ctx context.Context, sessionKey string) (*models.CartRecord, error)
	AddItem(ctx context.Context, sessionKey string, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQty(ctx context.Context, sessionKey string, itemID uuid.UUID, qty int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, sessionKey string, itemID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, sessionKey string) error
	PurgeStale(ctx context.Context, age time.Duration) (int64, error)
}

type service struct {
	repo     cartStore
	products productCatalog
	guard    checkoutGuard
	logg     *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product catalog is required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout guard is required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		guard:    params.Guard,
		logg:     params.Logger,
	}, nil
}

// Get returns the session's cart, creating an empty one if needed.
func (s *service) Get(ctx context.Context, sessionKey string) (*models.CartRecord, error) {
	if sessionKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session key is required")
	}
	cart, err := s.repo.FindOrCreateBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// AddItem snapshots the product and adds it to the cart, merging quantities
// when the product is already present.
func (s *service) AddItem(ctx context.Context, sessionKey string, input AddItemInput) (*models.CartRecord, error) {
	if input.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.ensureNotBusy(ctx, sessionKey); err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindActiveByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	item := &models.CartItem{
		CartID:         cart.ID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		ImageURL:       product.ImageURL,
		UnitPriceMinor: product.UnitPriceMinor,
		Qty:            input.Qty,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.reload(ctx, sessionKey)
}

// UpdateItemQty sets the quantity of one line.
func (s *service) UpdateItemQty(ctx context.Context, sessionKey string, itemID uuid.UUID, qty int) (*models.CartRecord, error) {
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := s.ensureNotBusy(ctx, sessionKey); err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.UpdateItemQty(ctx, cart.ID, itemID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.reload(ctx, sessionKey)
}

// RemoveItem drops one line from the cart.
func (s *service) RemoveItem(ctx context.Context, sessionKey string, itemID uuid.UUID) (*models.CartRecord, error) {
	if err := s.ensureNotBusy(ctx, sessionKey); err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.RemoveItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.reload(ctx, sessionKey)
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context, sessionKey string) error {
	if err := s.ensureNotBusy(ctx, sessionKey); err != nil {
		return err
	}

	cart, err := s.Get(ctx, sessionKey)
	if err != nil {
		return err
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// PurgeStale deletes abandoned carts older than age.
func (s *service) PurgeStale(ctx context.Context, age time.Duration) (int64, error) {
	return s.repo.DeleteStale(ctx, age, time.Now().UTC())
}

func (s *service) ensureNotBusy(ctx context.Context, sessionKey string) error {
	if sessionKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session key is required")
	}
	busy, err := s.guard.Busy(ctx, sessionKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check checkout state")
	}
	if busy {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is locked while payment is processing")
	}
	return nil
}

func (s *service) reload(ctx context.Context, sessionKey string) (*models.CartRecord, error) {
	cart, err := s.repo.FindBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return cart, nil
}
