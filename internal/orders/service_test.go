package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	"github.com/shopmithra/mithra-backend/pkg/enums"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/types"
)

type stubOrderStore struct {
	byPayment  map[string]*models.Order
	byID       map[uuid.UUID]*models.Order
	inserted   []*models.Order
	updateRows int64
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{
		byPayment:  map[string]*models.Order{},
		byID:       map[uuid.UUID]*models.Order{},
		updateRows: 1,
	}
}

func (s *stubOrderStore) InsertIdempotent(_ context.Context, _ *gorm.DB, order *models.Order) (bool, error) {
	if _, exists := s.byPayment[order.PaymentID]; exists {
		return false, nil
	}
	order.ID = uuid.New()
	s.byPayment[order.PaymentID] = order
	s.byID[order.ID] = order
	s.inserted = append(s.inserted, order)
	return true, nil
}

func (s *stubOrderStore) FindByPaymentID(_ context.Context, _ *gorm.DB, paymentID string) (*models.Order, error) {
	if order, ok := s.byPayment[paymentID]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.byID[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderStore) ListBySessionKey(_ context.Context, sessionKey string) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.byID {
		if order.SessionKey == sessionKey {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubOrderStore) UpdateStatus(_ context.Context, _ uuid.UUID, _ enums.OrderStatus) (int64, error) {
	return s.updateRows, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRedeemer struct {
	consumed []string
	err      error
}

func (s *stubRedeemer) ConsumeUsage(_ context.Context, _ *gorm.DB, code string) error {
	if s.err != nil {
		return s.err
	}
	s.consumed = append(s.consumed, code)
	return nil
}

type stubConverter struct {
	converted []uuid.UUID
}

func (s *stubConverter) MarkConverted(_ context.Context, _ *gorm.DB, cartID uuid.UUID) error {
	s.converted = append(s.converted, cartID)
	return nil
}

func shippingAddress() types.Address {
	return types.Address{
		FullName:   "Asha Rao",
		Line1:      "14 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func commitFixture() CommitInput {
	cartID := uuid.New()
	return CommitInput{
		SessionKey: "sess-1",
		Cart: &models.CartRecord{
			ID: cartID,
			Items: []models.CartItem{
				{ProductID: uuid.New(), ProductName: "Steel Bottle", UnitPriceMinor: 49900, Qty: 2},
			},
		},
		Breakdown: types.PriceBreakdown{
			SubtotalMinor: 99800,
			ShippingMinor: 5000,
			TaxMinor:      17964,
			TotalMinor:    122764,
			Currency:      "INR",
		},
		Customer:        types.Customer{Name: "Asha Rao", Email: "asha@example.com"},
		ShippingAddress: shippingAddress(),
		PaymentID:       "pay_Nxy456",
		GatewayOrderID:  "order_Nxy123",
	}
}

func newOrderService(t *testing.T, store *stubOrderStore, redeemer *stubRedeemer, converter *stubConverter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    store,
		DB:      stubTxRunner{},
		Coupons: redeemer,
		Carts:   converter,
	})
	require.NoError(t, err)
	return svc
}

func TestCommitRecordsOrderOnce(t *testing.T) {
	store := newStubOrderStore()
	redeemer := &stubRedeemer{}
	converter := &stubConverter{}
	svc := newOrderService(t, store, redeemer, converter)

	input := commitFixture()
	input.Breakdown.CouponCode = "SAVE20"
	input.Breakdown.DiscountMinor = 19960

	first, err := svc.Commit(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, enums.PaymentStatusPaid, first.PaymentStatus)
	assert.Equal(t, enums.OrderStatusProcessing, first.Status)
	require.NotNil(t, first.CouponCode)
	assert.Equal(t, "SAVE20", *first.CouponCode)

	// Retrying the same payment id must return the same order and repeat no
	// side effects.
	second, err := svc.Commit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.inserted, 1)
	assert.Equal(t, []string{"SAVE20"}, redeemer.consumed)
	assert.Len(t, converter.converted, 1)
}

func TestCommitWithoutCouponSkipsRedemption(t *testing.T) {
	store := newStubOrderStore()
	redeemer := &stubRedeemer{}
	converter := &stubConverter{}
	svc := newOrderService(t, store, redeemer, converter)

	_, err := svc.Commit(context.Background(), commitFixture())
	require.NoError(t, err)
	assert.Empty(t, redeemer.consumed)
	assert.Len(t, converter.converted, 1)
}

func TestCommitValidatesInput(t *testing.T) {
	svc := newOrderService(t, newStubOrderStore(), &stubRedeemer{}, &stubConverter{})

	missing := commitFixture()
	missing.PaymentID = ""
	_, err := svc.Commit(context.Background(), missing)
	require.Error(t, err)

	empty := commitFixture()
	empty.Cart.Items = nil
	_, err = svc.Commit(context.Background(), empty)
	require.Error(t, err)

	noAddress := commitFixture()
	noAddress.ShippingAddress = types.Address{}
	_, err = svc.Commit(context.Background(), noAddress)
	require.Error(t, err)
}

func TestCommitFailurePreservesPaymentID(t *testing.T) {
	store := newStubOrderStore()
	converter := &stubConverter{}
	redeemer := &stubRedeemer{err: gorm.ErrInvalidTransaction}
	svc := newOrderService(t, store, redeemer, converter)

	input := commitFixture()
	input.Breakdown.CouponCode = "SAVE20"

	_, err := svc.Commit(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeCommit, typed.Code())
	assert.Contains(t, typed.Message(), "pay_Nxy456")
}

func TestCommitTypedFailureKeepsPaymentID(t *testing.T) {
	store := newStubOrderStore()
	converter := &stubConverter{}
	// The usage-limit race between quoting and committing surfaces as a
	// typed conflict from the redeemer.
	redeemer := &stubRedeemer{err: pkgerrors.New(pkgerrors.CodeConflict, "this coupon has reached its usage limit")}
	svc := newOrderService(t, store, redeemer, converter)

	input := commitFixture()
	input.Breakdown.CouponCode = "SAVE20"

	_, err := svc.Commit(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Contains(t, typed.Message(), "usage limit")
	assert.Contains(t, typed.Message(), "pay_Nxy456")
	assert.Equal(t, map[string]any{"payment_id": "pay_Nxy456"}, typed.Details())
}

func TestGetScopedToSession(t *testing.T) {
	store := newStubOrderStore()
	svc := newOrderService(t, store, &stubRedeemer{}, &stubConverter{})

	committed, err := svc.Commit(context.Background(), commitFixture())
	require.NoError(t, err)

	found, err := svc.Get(context.Background(), "sess-1", committed.ID)
	require.NoError(t, err)
	assert.Equal(t, committed.ID, found.ID)

	_, err = svc.Get(context.Background(), "other-session", committed.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateStatusEnforcesLifecycle(t *testing.T) {
	store := newStubOrderStore()
	svc := newOrderService(t, store, &stubRedeemer{}, &stubConverter{})

	committed, err := svc.Commit(context.Background(), commitFixture())
	require.NoError(t, err)

	shipped, err := svc.UpdateStatus(context.Background(), committed.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, shipped.Status)

	// Delivered orders cannot move back to processing.
	delivered, err := svc.UpdateStatus(context.Background(), committed.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)

	_, err = svc.UpdateStatus(context.Background(), committed.ID, enums.OrderStatusProcessing)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}
