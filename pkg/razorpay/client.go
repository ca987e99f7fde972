package razorpay

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/shopmithra/mithra-backend/pkg/config"
	"github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/logger"
)

// GatewayOrder is the subset of the Razorpay order object the checkout flow
// needs to open the payment widget.
type GatewayOrder struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK behind the narrow surface checkout uses.
type Client struct {
	orders    orderCreator
	keyID     string
	keySecret string
	logg      *logger.Logger
}

// NewClient validates gateway credentials against the configured environment
// and returns a ready client. Key prefixes are checked up front so a test key
// can never reach a live deployment.
func NewClient(cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are required")
	}
	env := cfg.Environment()
	switch env {
	case config.RazorpayEnvTest:
		if !strings.HasPrefix(cfg.KeyID, "rzp_test_") {
			return nil, fmt.Errorf("razorpay test environment requires an rzp_test_ key")
		}
	case config.RazorpayEnvLive:
		if !strings.HasPrefix(cfg.KeyID, "rzp_live_") {
			return nil, fmt.Errorf("razorpay live environment requires an rzp_live_ key")
		}
	default:
		return nil, fmt.Errorf("unsupported razorpay environment %q", cfg.Env)
	}

	sdk := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Client{
		orders:    sdk.Order,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		logg:      logg,
	}, nil
}

// KeyID returns the public key the storefront widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers an order with the gateway for the given amount in
// minor units. The receipt ties the gateway order back to the cart session.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	if amountMinor <= 0 {
		return nil, errors.New(errors.CodeValidation, "gateway order amount must be positive")
	}
	if currency == "" {
		return nil, errors.New(errors.CodeValidation, "gateway order currency is required")
	}

	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	raw, err := c.orders.Create(payload, nil)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(ctx, "razorpay order creation failed", err)
		}
		return nil, errors.Wrap(errors.CodeGatewayOrder, err, "creating gateway order")
	}

	order := &GatewayOrder{
		ID:          stringField(raw, "id"),
		AmountMinor: intField(raw, "amount"),
		Currency:    stringField(raw, "currency"),
		Receipt:     stringField(raw, "receipt"),
		Status:      stringField(raw, "status"),
	}
	if order.ID == "" {
		return nil, errors.New(errors.CodeGatewayOrder, "gateway returned an order without an id")
	}
	return order, nil
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
