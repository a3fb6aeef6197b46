package models

import "time"

// Order lifecycle statuses, exactly as written to the ledger's status column.
// The only transition is Pending Payment -> Payment Received; there are no
// refund or failure states in the ledger.
const (
	StatusPendingPayment  = "Pending Payment"
	StatusPaymentReceived = "Payment Received"
)

// PaymentIDPending is the placeholder written to the payment-id column when
// the row is created. The captured-payment webhook overwrites it with the
// real gateway payment id.
const PaymentIDPending = "pending"

// OrderRecord is the model for one row of the 'Orders' sheet.
// Field order matches the sheet column order (A..Q); the ledger package
// owns the serialization in both directions.
type OrderRecord struct {
	CreatedAt       time.Time `json:"createdAt"`
	TrackingID      string    `json:"trackingId"`
	PaymentID       string    `json:"paymentId"`
	CustomerName    string    `json:"customerName"`
	Phone           string    `json:"phone"`
	AddressLine1    string    `json:"addressLine1"`
	Landmark        string    `json:"landmark,omitempty"`
	Pincode         string    `json:"pincode"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	ProductName     string    `json:"productName"`
	Size            string    `json:"size"`
	PaymentMethod   string    `json:"paymentMethod"`
	AmountPaid      float64   `json:"amountPaid"`
	AmountRemaining float64   `json:"amountRemaining"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          string    `json:"status"`
}
