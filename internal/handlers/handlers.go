package handlers

import (
	"context"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/gateway"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/models"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/tracking"
)

// LedgerService is what the handlers need from the order ledger.
// *ledger.Client satisfies it; tests hand in an in-memory fake.
type LedgerService interface {
	AppendOrder(ctx context.Context, rec models.OrderRecord) error
	FindRowByTrackingID(ctx context.Context, trackingID string) (int, error)
	Order(ctx context.Context, row int) (*models.OrderRecord, error)
	MarkPaid(ctx context.Context, row int, paymentID string) error
}

// GatewayService is what the handlers need from the payment gateway.
// *gateway.Client satisfies it.
type GatewayService interface {
	CreateOrder(amountMinor int64, receipt string, notes gateway.OrderNotes) (*gateway.Order, error)
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Ledger  LedgerService
	Gateway GatewayService
	Tracker tracking.Generator
}
