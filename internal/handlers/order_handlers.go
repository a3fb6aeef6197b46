package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/gateway"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/ledger"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/models"
)

//
// --- Checkout Handlers (Storefront) ---
//

// displayProductName is the fixed product name written to the ledger and
// echoed to the storefront, whatever free-text label the request carried.
const displayProductName = "ShowPlaza Running Shoes"

// CustomerDetailsInput is the shipping block of the checkout payload.
type CustomerDetailsInput struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	AddressLine1  string `json:"address_line1" binding:"required"`
	Landmark      string `json:"landmark"`
	Pincode       string `json:"pincode" binding:"required"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
}

// OrderDataInput mirrors the storefront checkout payload.
type OrderDataInput struct {
	AmountPaid      float64              `json:"amount_paid" binding:"required,gt=0"`
	ProductName     string               `json:"product_name" binding:"required"`
	PaymentMethod   string               `json:"payment_method" binding:"required"`
	AmountRemaining float64              `json:"amount_remaining" binding:"min=0"`
	TotalAmount     float64              `json:"total_amount" binding:"required,gt=0"`
	CustomerDetails CustomerDetailsInput `json:"customer_details" binding:"required"`
}

// CreateOrderInput is the envelope the storefront posts.
type CreateOrderInput struct {
	Data OrderDataInput `json:"data" binding:"required"`
}

// CreateOrder is the handler for POST /create-order.
// It writes a pending row to the ledger first and only then registers the
// order with the gateway, so every gateway order is backed by a row the
// webhook can find.
func (h *Handlers) CreateOrder(c *gin.Context) {
	// 1. --- Bind & Validate Input ---
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "FAILED", "message": err.Error()})
		return
	}
	data := input.Data

	// 2. --- Derive Size from the Product Label ---
	// The storefront sends a free-text label like "Running Shoes (Size: 9)";
	// the ledger stores the fixed display name plus the extracted size.
	size := parseSize(data.ProductName)

	// 3. --- Issue the Tracking ID & Persist the Pending Row ---
	// The append runs as the generator's claim, inside its critical
	// section, so the sequential scheme can never hand two checkouts the
	// same id.
	rec := models.OrderRecord{
		CreatedAt:       time.Now(),
		PaymentID:       models.PaymentIDPending,
		CustomerName:    data.CustomerDetails.CustomerName,
		Phone:           data.CustomerDetails.CustomerPhone,
		AddressLine1:    data.CustomerDetails.AddressLine1,
		Landmark:        data.CustomerDetails.Landmark,
		Pincode:         data.CustomerDetails.Pincode,
		City:            data.CustomerDetails.City,
		State:           data.CustomerDetails.State,
		ProductName:     displayProductName,
		Size:            size,
		PaymentMethod:   data.PaymentMethod,
		AmountPaid:      data.AmountPaid,
		AmountRemaining: data.AmountRemaining,
		TotalAmount:     data.TotalAmount,
		Status:          models.StatusPendingPayment,
	}

	trackingID, err := h.Tracker.Issue(c, func(id string) error {
		rec.TrackingID = id
		return h.Ledger.AppendOrder(c, rec)
	})
	if err != nil {
		log.Printf("create-order: could not record a pending order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "FAILED", "message": "Could not record the order"})
		return
	}

	// 4. --- Register the Order with the Gateway ---
	// The notes carry the tracking id; they are the only link between a
	// webhook event and the ledger row. If this call fails the pending
	// row stays behind, there is no rollback.
	order, err := h.Gateway.CreateOrder(
		gateway.MinorUnits(data.AmountPaid),
		trackingID,
		gateway.OrderNotes{
			TrackingID:   trackingID,
			ProductName:  displayProductName,
			CustomerName: data.CustomerDetails.CustomerName,
		},
	)
	if err != nil {
		log.Printf("create-order: gateway order failed for %s: %v", trackingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "FAILED", "message": "Payment gateway rejected the order"})
		return
	}

	// 5. --- Send Success Response ---
	// Everything the browser checkout widget needs to open.
	c.JSON(http.StatusOK, gin.H{
		"status":       "SUCCESS",
		"order_id":     order.ID,
		"amount":       order.Amount,
		"key_id":       h.Gateway.KeyID(),
		"product_name": displayProductName,
		"custom_id":    trackingID,
	})
}

// sizeMarker opens the size token inside a product label.
const sizeMarker = "(Size:"

// sizeUnknown is stored when the label carries no parseable size.
const sizeUnknown = "N/A"

// parseSize extracts the size token from a label like
// "Running Shoes (Size: 9)". Labels without a well-formed token map to
// "N/A" rather than an error; the size column is informational.
func parseSize(label string) string {
	start := strings.Index(label, sizeMarker)
	if start == -1 {
		return sizeUnknown
	}
	rest := label[start+len(sizeMarker):]
	end := strings.Index(rest, ")")
	if end == -1 {
		return sizeUnknown
	}
	return strings.TrimSpace(rest[:end])
}

//
// --- Order Tracking Handlers (Public) ---
//

// OrderStatusView is the slice of a ledger row served to anonymous
// callers: enough for a "track my order" page. The customer's name,
// phone, address, and the gateway payment id stay in the ledger; the
// endpoint takes no auth and tracking ids are guessable.
type OrderStatusView struct {
	TrackingID      string    `json:"trackingId"`
	CreatedAt       time.Time `json:"createdAt"`
	ProductName     string    `json:"productName"`
	Size            string    `json:"size"`
	PaymentMethod   string    `json:"paymentMethod"`
	AmountPaid      float64   `json:"amountPaid"`
	AmountRemaining float64   `json:"amountRemaining"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          string    `json:"status"`
}

func publicStatusView(rec *models.OrderRecord) OrderStatusView {
	return OrderStatusView{
		TrackingID:      rec.TrackingID,
		CreatedAt:       rec.CreatedAt,
		ProductName:     rec.ProductName,
		Size:            rec.Size,
		PaymentMethod:   rec.PaymentMethod,
		AmountPaid:      rec.AmountPaid,
		AmountRemaining: rec.AmountRemaining,
		TotalAmount:     rec.TotalAmount,
		Status:          rec.Status,
	}
}

// GetOrderStatus is the handler for GET /order-status/:tracking_id.
// The storefront's "track my order" page polls it.
func (h *Handlers) GetOrderStatus(c *gin.Context) {
	trackingID := c.Param("tracking_id")

	// 1. --- Locate the Ledger Row ---
	row, err := h.Ledger.FindRowByTrackingID(c, trackingID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "FAILED", "message": "Order not found"})
			return
		}
		log.Printf("order-status: ledger lookup failed for %s: %v", trackingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "FAILED", "message": "Could not read the order"})
		return
	}

	// 2. --- Read It Back ---
	rec, err := h.Ledger.Order(c, row)
	if err != nil {
		log.Printf("order-status: ledger read failed for %s: %v", trackingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "FAILED", "message": "Could not read the order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "SUCCESS",
		"order":  publicStatusView(rec),
	})
}
