package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
	"github.com/shopmithra/mithra-backend/pkg/metrics"
)

type orderStore interface {
	InsertIdempotent(ctx context.Context, tx *gorm.DB, order *models.Order) (bool, error)
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListBySessionKey(ctx context.Context, sessionKey string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponRedeemer interface {
	ConsumeUsage(ctx context.Context, tx *gorm.DB, code string) error
}

type cartConverter interface {
	MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo    orderStore
	DB      txRunner
	Coupons couponRedeemer
	Carts   cartConverter
	Logger  *logger.Logger
}

// Service owns the durable order lifecycle: the idempotent commit after a
// verified payment and the fulfillment transitions that follow.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*models.Order, error)
	List(ctx context.Context, sessionKey string) ([]models.Order, error)
	Get(ctx context.Context, sessionKey string, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo    orderStore
	db      txRunner
	coupons couponRedeemer
	carts   cartConverter
	logg    *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon redeemer is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart converter is required")
	}
	return &service{
		repo:    params.Repo,
		db:      params.DB,
		coupons: params.Coupons,
		carts:   params.Carts,
		logg:    params.Logger,
	}, nil
}

// Commit records a verified payment as an order exactly once. The gateway
// payment id is the idempotency key: a retried commit for the same payment
// returns the already-recorded order and repeats none of the side effects.
func (s *service) Commit(ctx context.Context, input CommitInput) (*models.Order, error) {
	if input.PaymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	if input.GatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}
	if input.Cart == nil || len(input.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot commit an empty cart")
	}
	if !input.ShippingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	order := buildOrder(input)

	var committed *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertIdempotent(ctx, tx, order)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := s.repo.FindByPaymentID(ctx, tx, input.PaymentID)
			if err != nil {
				return err
			}
			committed = existing
			return nil
		}

		if order.CouponCode != nil {
			if err := s.coupons.ConsumeUsage(ctx, tx, *order.CouponCode); err != nil {
				return err
			}
		}
		if err := s.carts.MarkConverted(ctx, tx, input.Cart.ID); err != nil {
			return err
		}
		committed = order
		metrics.OrdersCommitted.Inc()
		return nil
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithPaymentID(ctx, input.PaymentID), "order commit failed", err)
		}
		metrics.PaymentFailures.WithLabelValues(metrics.ReasonCommit).Inc()
		// Funds are already captured when Commit runs, so every error exit
		// must keep the gateway payment id in front of the shopper.
		if typed := pkgerrors.As(err); typed != nil {
			return nil, pkgerrors.Wrap(typed.Code(), typed, typed.Message()+" (payment "+input.PaymentID+")").
				WithDetails(map[string]any{"payment_id": input.PaymentID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeCommit, err, "recording order for payment "+input.PaymentID).
			WithDetails(map[string]any{"payment_id": input.PaymentID})
	}
	return committed, nil
}

// List returns the session's orders.
func (s *service) List(ctx context.Context, sessionKey string) ([]models.Order, error) {
	if sessionKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session key is required")
	}
	list, err := s.repo.ListBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Get loads one order, scoped to the requesting session.
func (s *service) Get(ctx context.Context, sessionKey string, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if sessionKey != "" && order.SessionKey != sessionKey {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// UpdateStatus applies one fulfillment transition, enforcing the lifecycle.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", next)
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", order.Status, next)
	}
	if _, err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = next
	return order, nil
}

func buildOrder(input CommitInput) *models.Order {
	items := make([]models.OrderItem, 0, len(input.Cart.Items))
	for _, line := range input.Cart.Items {
		items = append(items, models.OrderItem{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			ImageURL:       line.ImageURL,
			UnitPriceMinor: line.UnitPriceMinor,
			Qty:            line.Qty,
		})
	}

	order := &models.Order{
		SessionKey:      input.SessionKey,
		Customer:        input.Customer,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		SubtotalMinor:   input.Breakdown.SubtotalMinor,
		DiscountMinor:   input.Breakdown.DiscountMinor,
		ShippingMinor:   input.Breakdown.ShippingMinor,
		TaxMinor:        input.Breakdown.TaxMinor,
		TotalMinor:      input.Breakdown.TotalMinor,
		Currency:        input.Breakdown.Currency,
		PaymentMethod:   enums.PaymentMethodRazorpay,
		PaymentID:       input.PaymentID,
		GatewayOrderID:  input.GatewayOrderID,
		PaymentStatus:   enums.PaymentStatusPaid,
		Status:          enums.OrderStatusProcessing,
		Items:           items,
	}
	if input.Breakdown.CouponCode != "" {
		code := input.Breakdown.CouponCode
		order.CouponCode = &code
	}
	return order
}
