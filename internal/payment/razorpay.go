// Package payment wraps the Razorpay gateway used for member-facing
// payments: membership fees, renewals, and trainer add-ons.
package payment

import (
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

type Client struct {
	keyID     string
	keySecret string
	api       *razorpay.Client
}

func NewClient(keyID, keySecret string) *Client {
	c := &Client{keyID: keyID, keySecret: keySecret}
	if c.Configured() {
		c.api = razorpay.NewClient(keyID, keySecret)
	}
	return c
}

// Configured returns true if gateway credentials are set.
func (c *Client) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// KeyID is handed to the mobile client so it can open the checkout UI.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers a payment order with the gateway and returns the
// gateway's order ID. Amount is in rupees; Razorpay wants paise.
func (c *Client) CreateOrder(amountRupees float64, receipt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("payment gateway not configured")
	}

	data := map[string]interface{}{
		"amount":   int64(math.Round(amountRupees * 100)),
		"currency": "INR",
		"receipt":  receipt,
	}
	order, err := c.api.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	id, ok := order["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("create order: no id in gateway response")
	}
	return id, nil
}

// VerifySignature checks the HMAC the gateway attaches to a completed
// payment. A payment is only marked successful after this passes.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, c.keySecret)
}
