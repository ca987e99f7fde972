package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/shopmithra/mithra-backend/pkg/errors"
)

// VerifyPaymentSignature checks the signature Razorpay hands back after a
// successful widget payment. The signed payload is "<order_id>|<payment_id>"
// and the expected value is an HMAC-SHA256 hex digest under the key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

// VerifySignature is the credential-explicit form used by tests and tooling.
func VerifySignature(keySecret, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return errors.New(errors.CodeVerification, "order id, payment id and signature are all required")
	}

	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New(errors.CodeVerification, "payment signature mismatch").
			WithDetails(map[string]any{"payment_id": paymentID})
	}
	return nil
}
