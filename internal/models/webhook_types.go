package models

import "encoding/json"

// EventPaymentCaptured is the only gateway event type that mutates the
// ledger. Everything else is acknowledged and dropped.
const EventPaymentCaptured = "payment.captured"

// WebhookEvent is the envelope Razorpay posts to our webhook endpoint.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

// WebhookPayload wraps the entity a payment event carries.
type WebhookPayload struct {
	Payment WebhookPayment `json:"payment"`
}

// WebhookPayment wraps the payment entity one level deeper, mirroring the
// gateway's payload shape.
type WebhookPayment struct {
	Entity PaymentEntity `json:"entity"`
}

// PaymentEntity carries the fields we read from a captured payment.
type PaymentEntity struct {
	ID      string `json:"id"`       // gateway payment id (pay_...)
	OrderID string `json:"order_id"` // gateway order id (order_...)
	Notes   Notes  `json:"notes"`
}

// Notes is the free-form metadata attached to a gateway order and echoed
// back on its payment events. Razorpay serialises empty notes as [] rather
// than {}, so unmarshalling has to tolerate both shapes.
type Notes map[string]string

// UnmarshalJSON accepts an object of string values, and treats any other
// shape (the empty-array case included) as no metadata at all.
func (n *Notes) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		*n = m
		return nil
	}
	*n = nil
	return nil
}
