// Package gateway wraps the Razorpay SDK: order creation on the way out,
// webhook signature verification on the way back in.
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/config"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/retry"
)

// Currency for every gateway order. Amounts on the wire are paise.
const Currency = "INR"

// Keys of the metadata notes attached to every gateway order. Razorpay
// stores notes untouched and echoes them on webhook events; the tracking
// id note is the only channel correlating an event back to a ledger row.
const (
	NoteTrackingID   = "tracking_id"
	NoteProductName  = "product_name"
	NoteCustomerName = "customer_name"
)

// OrderNotes is the fixed metadata schema sent with each gateway order.
// Keeping it to these three fields keeps customer data shared with the
// gateway to a minimum.
type OrderNotes struct {
	TrackingID   string
	ProductName  string
	CustomerName string
}

// Order is the slice of Razorpay's order entity the checkout flow needs.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

// Client is the Razorpay-backed gateway client. Construct with New.
type Client struct {
	rz            *razorpay.Client
	keyID         string
	webhookSecret string
}

// New builds a gateway client from the configured key pair.
func New(cfg *config.Config) *Client {
	return &Client{
		rz:            razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		keyID:         cfg.RazorpayKeyID,
		webhookSecret: cfg.WebhookSecret,
	}
}

// KeyID returns the public key id the browser checkout widget needs.
func (c *Client) KeyID() string { return c.keyID }

// MinorUnits converts a major-unit amount (rupees) to minor units
// (paise), rounding half away from zero. Callers must not pass amounts
// that are already minor units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder registers an order with the gateway and returns its id and
// echoed amount. amountMinor must be positive. Transient failures are
// retried: an extra order in 'created' state on the gateway side is
// never charged, so the call is safe to repeat.
func (c *Client) CreateOrder(amountMinor int64, receipt string, notes OrderNotes) (*Order, error) {
	if amountMinor <= 0 {
		return nil, fmt.Errorf("create order: amount must be positive, got %d", amountMinor)
	}

	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": Currency,
		"receipt":  receipt,
		"notes": map[string]interface{}{
			NoteTrackingID:   notes.TrackingID,
			NoteProductName:  notes.ProductName,
			NoteCustomerName: notes.CustomerName,
		},
	}

	var body map[string]interface{}
	err := retry.Do(3, 500*time.Millisecond, func() error {
		var callErr error
		body, callErr = c.rz.Order.Create(data, nil)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order, err := orderFromResponse(body)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// orderFromResponse pulls the fields we use out of the SDK's generic
// response map. encoding/json hands every JSON number over as float64.
func orderFromResponse(body map[string]interface{}) (*Order, error) {
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("gateway response carries no order id")
	}
	order := &Order{ID: id}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok {
		order.Currency = currency
	}
	if status, ok := body["status"].(string); ok {
		order.Status = status
	}
	return order, nil
}

// VerifySignature reports whether signature is the hex HMAC-SHA256 of
// exactly body under secret. The comparison is constant time.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature verifies a webhook delivery against the
// configured shared secret.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	return VerifySignature(body, signature, c.webhookSecret)
}
