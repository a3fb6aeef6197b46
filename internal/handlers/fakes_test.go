package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/gateway"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/ledger"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/middleware"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/models"
)

// newTestRouter wires the handlers under test onto a bare engine with
// the same middleware the real router carries.
func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/create-order", h.CreateOrder)
	r.POST("/razorpay-webhook", h.RazorpayWebhook)
	r.GET("/order-status/:tracking_id", h.GetOrderStatus)
	return r
}

// fakeLedger is an in-memory LedgerService for handler tests.
type fakeLedger struct {
	appended  []models.OrderRecord
	appendErr error

	column []string // tracking ids already in the sheet

	rows    map[string]int // tracking id -> sheet row
	orders  map[int]*models.OrderRecord
	findErr error

	paid          map[int]string // sheet row -> payment id
	markPaidErr   error
	markPaidCalls int
}

func (f *fakeLedger) AppendOrder(ctx context.Context, rec models.OrderRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rec)
	return nil
}

// TrackingColumn serves the preloaded column plus every appended row,
// the same view the real ledger gives the sequential generator.
func (f *fakeLedger) TrackingColumn(ctx context.Context) ([]string, error) {
	ids := append([]string(nil), f.column...)
	for _, rec := range f.appended {
		ids = append(ids, rec.TrackingID)
	}
	return ids, nil
}

func (f *fakeLedger) FindRowByTrackingID(ctx context.Context, trackingID string) (int, error) {
	if f.findErr != nil {
		return 0, f.findErr
	}
	row, ok := f.rows[trackingID]
	if !ok {
		return 0, ledger.ErrNotFound
	}
	return row, nil
}

func (f *fakeLedger) Order(ctx context.Context, row int) (*models.OrderRecord, error) {
	rec, ok := f.orders[row]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return rec, nil
}

func (f *fakeLedger) MarkPaid(ctx context.Context, row int, paymentID string) error {
	f.markPaidCalls++
	if f.markPaidErr != nil {
		return f.markPaidErr
	}
	if f.paid == nil {
		f.paid = make(map[int]string)
	}
	f.paid[row] = paymentID
	return nil
}

// createCall records one CreateOrder invocation on the fake gateway.
type createCall struct {
	amountMinor int64
	receipt     string
	notes       gateway.OrderNotes
}

// fakeGateway answers CreateOrder from a canned order and verifies
// webhook signatures against a fixed secret using the real HMAC check.
type fakeGateway struct {
	order     *gateway.Order
	createErr error
	created   []createCall
	secret    string
	keyID     string
}

func (f *fakeGateway) CreateOrder(amountMinor int64, receipt string, notes gateway.OrderNotes) (*gateway.Order, error) {
	f.created = append(f.created, createCall{amountMinor: amountMinor, receipt: receipt, notes: notes})
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.order != nil {
		return f.order, nil
	}
	return &gateway.Order{ID: "order_FAKE123", Amount: amountMinor, Currency: gateway.Currency, Status: "created"}, nil
}

func (f *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return gateway.VerifySignature(body, signature, f.secret)
}

func (f *fakeGateway) KeyID() string {
	if f.keyID != "" {
		return f.keyID
	}
	return "rzp_test_key"
}

// fixedTracker hands out one predetermined tracking id.
type fixedTracker struct {
	id  string
	err error
}

func (t fixedTracker) Issue(ctx context.Context, claim func(id string) error) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	if err := claim(t.id); err != nil {
		return "", err
	}
	return t.id, nil
}

// sign computes the hex HMAC-SHA256 a real gateway delivery would carry.
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
