package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmithra/mithra-backend/pkg/config"
	"github.com/shopmithra/mithra-backend/pkg/errors"
)

type stubOrders struct {
	response map[string]interface{}
	err      error
	lastData map[string]interface{}
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func signFixture(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewClientEnforcesKeyPrefix(t *testing.T) {
	_, err := NewClient(config.RazorpayConfig{
		KeyID:     "rzp_live_abc123",
		KeySecret: "secret",
		Env:       "test",
	}, nil)
	require.Error(t, err)

	_, err = NewClient(config.RazorpayConfig{
		KeyID:     "rzp_test_abc123",
		KeySecret: "secret",
		Env:       "live",
	}, nil)
	require.Error(t, err)

	client, err := NewClient(config.RazorpayConfig{
		KeyID:     "rzp_test_abc123",
		KeySecret: "secret",
		Env:       "test",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_abc123", client.KeyID())
}

func TestCreateOrderMapsGatewayResponse(t *testing.T) {
	stub := &stubOrders{response: map[string]interface{}{
		"id":       "order_Nxy123",
		"amount":   float64(121800),
		"currency": "INR",
		"receipt":  "cart_sess_1",
		"status":   "created",
	}}
	client := &Client{orders: stub, keyID: "rzp_test_abc", keySecret: "secret"}

	order, err := client.CreateOrder(context.Background(), 121800, "INR", "cart_sess_1")
	require.NoError(t, err)
	assert.Equal(t, "order_Nxy123", order.ID)
	assert.Equal(t, int64(121800), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, int64(121800), stub.lastData["amount"])
	assert.Equal(t, "INR", stub.lastData["currency"])
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	client := &Client{orders: &stubOrders{}, keySecret: "secret"}

	_, err := client.CreateOrder(context.Background(), 0, "INR", "r1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())

	_, err = client.CreateOrder(context.Background(), 100, "", "r1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestCreateOrderWrapsGatewayFailure(t *testing.T) {
	stub := &stubOrders{err: fmt.Errorf("BAD_REQUEST_ERROR: amount exceeds maximum")}
	client := &Client{orders: stub, keySecret: "secret"}

	_, err := client.CreateOrder(context.Background(), 100, "INR", "r1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeGatewayOrder, errors.As(err).Code())
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_Nxy123"
	paymentID := "pay_Nxy456"
	good := signFixture(secret, orderID, paymentID)

	client := &Client{keySecret: secret}

	require.NoError(t, client.VerifyPaymentSignature(orderID, paymentID, good))

	err := client.VerifyPaymentSignature(orderID, paymentID, signFixture("wrong_secret", orderID, paymentID))
	require.Error(t, err)
	assert.Equal(t, errors.CodeVerification, errors.As(err).Code())

	err = client.VerifyPaymentSignature(orderID, "", good)
	require.Error(t, err)
	assert.Equal(t, errors.CodeVerification, errors.As(err).Code())

	// Signing a different order id must not validate.
	err = client.VerifyPaymentSignature("order_other", paymentID, good)
	require.Error(t, err)
}
