package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopmithra/mithra-backend/pkg/db/models"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
)

type stubCartStore struct {
	cart       *models.CartRecord
	upserted   []*models.CartItem
	updateRows int64
	removeRows int64
	cleared    bool
	staleRows  int64
}

func (s *stubCartStore) FindBySessionKey(_ context.Context, _ string) (*models.CartRecord, error) {
	if s.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cart, nil
}

func (s *stubCartStore) FindOrCreateBySessionKey(_ context.Context, sessionKey string) (*models.CartRecord, error) {
	if s.cart == nil {
		s.cart = &models.CartRecord{ID: uuid.New(), SessionKey: sessionKey}
	}
	return s.cart, nil
}

func (s *stubCartStore) UpsertItem(_ context.Context, item *models.CartItem) error {
	s.upserted = append(s.upserted, item)
	return nil
}

func (s *stubCartStore) UpdateItemQty(_ context.Context, _, _ uuid.UUID, _ int) (int64, error) {
	return s.updateRows, nil
}

func (s *stubCartStore) RemoveItem(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return s.removeRows, nil
}

func (s *stubCartStore) ClearItems(_ context.Context, _ uuid.UUID) error {
	s.cleared = true
	return nil
}

func (s *stubCartStore) DeleteStale(_ context.Context, _ time.Duration, _ time.Time) (int64, error) {
	return s.staleRows, nil
}

type stubCatalog struct {
	product *models.Product
}

func (s *stubCatalog) FindActiveByID(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	if s.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

type stubGuard struct {
	busy bool
	err  error
}

func (s *stubGuard) Busy(_ context.Context, _ string) (bool, error) {
	return s.busy, s.err
}

func newCartService(t *testing.T, store *stubCartStore, catalog *stubCatalog, guard *stubGuard) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: store, Products: catalog, Guard: guard})
	require.NoError(t, err)
	return svc
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	productID := uuid.New()
	store := &stubCartStore{}
	catalog := &stubCatalog{product: &models.Product{
		ID:             productID,
		Name:           "Steel Bottle",
		ImageURL:       "https://cdn.example/bottle.png",
		UnitPriceMinor: 49900,
	}}
	svc := newCartService(t, store, catalog, &stubGuard{})

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: productID, Qty: 2})
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	item := store.upserted[0]
	assert.Equal(t, "Steel Bottle", item.ProductName)
	assert.Equal(t, int64(49900), item.UnitPriceMinor)
	assert.Equal(t, 2, item.Qty)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := newCartService(t, &stubCartStore{}, &stubCatalog{}, &stubGuard{})

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: uuid.New(), Qty: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAddItemRejectsBadInput(t *testing.T) {
	svc := newCartService(t, &stubCartStore{}, &stubCatalog{}, &stubGuard{})

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: uuid.New(), Qty: 0})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.AddItem(context.Background(), "sess-1", AddItemInput{Qty: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestMutationsBlockedWhileCheckoutBusy(t *testing.T) {
	store := &stubCartStore{updateRows: 1, removeRows: 1}
	catalog := &stubCatalog{product: &models.Product{ID: uuid.New()}}
	svc := newCartService(t, store, catalog, &stubGuard{busy: true})

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: uuid.New(), Qty: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = svc.UpdateItemQty(context.Background(), "sess-1", uuid.New(), 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = svc.RemoveItem(context.Background(), "sess-1", uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	err = svc.Clear(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	assert.Empty(t, store.upserted)
	assert.False(t, store.cleared)
}

func TestUpdateItemQtyNotFound(t *testing.T) {
	store := &stubCartStore{updateRows: 0}
	svc := newCartService(t, store, &stubCatalog{}, &stubGuard{})

	_, err := svc.UpdateItemQty(context.Background(), "sess-1", uuid.New(), 3)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestClearEmptiesCart(t *testing.T) {
	store := &stubCartStore{}
	svc := newCartService(t, store, &stubCatalog{}, &stubGuard{})

	require.NoError(t, svc.Clear(context.Background(), "sess-1"))
	assert.True(t, store.cleared)
}
