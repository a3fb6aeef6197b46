package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/gateway"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/ledger"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/middleware"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/models"
)

//
// --- Webhook Handlers (Gateway -> Us) ---
//

// SignatureHeader carries the gateway's HMAC signature on each delivery.
const SignatureHeader = "X-Razorpay-Signature"

// RazorpayWebhook is the handler for POST /razorpay-webhook.
// Razorpay redelivers anything we answer with a non-2xx, so after the
// signature check every outcome is acknowledged with 200 except a failed
// ledger write, where the redelivery is exactly what we want.
func (h *Handlers) RazorpayWebhook(c *gin.Context) {
	reqID := c.GetString(middleware.ContextRequestID)

	// 1. --- Read the Raw Body ---
	// The signature covers the exact bytes on the wire, so the body must
	// be captured before any JSON decoding touches it.
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "FAILED", "message": "Unreadable body"})
		return
	}

	// 2. --- Verify the Signature ---
	if !h.Gateway.VerifyWebhookSignature(body, c.GetHeader(SignatureHeader)) {
		log.Printf("webhook: signature mismatch (request_id=%s)", reqID)
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_signature"})
		return
	}

	// 3. --- Decode & Filter by Event Type ---
	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Signed by the gateway yet undecodable. Acknowledge so it is
		// not redelivered forever, and keep the evidence in the log.
		log.Printf("webhook: undecodable event body (request_id=%s): %v", reqID, err)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if event.Event != models.EventPaymentCaptured {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	// 4. --- Extract the Tracking ID from the Notes ---
	payment := event.Payload.Payment.Entity
	trackingID := payment.Notes[gateway.NoteTrackingID]
	if trackingID == "" {
		log.Printf("webhook: captured payment %s carries no tracking id (request_id=%s)", payment.ID, reqID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	// 5. --- Locate the Ledger Row ---
	row, err := h.Ledger.FindRowByTrackingID(c, trackingID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			// A payment for a row we never wrote. Log it for manual
			// follow-up and acknowledge; redelivery would find nothing
			// either.
			log.Printf("webhook: no ledger row for tracking id %s, payment %s (request_id=%s)", trackingID, payment.ID, reqID)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		log.Printf("webhook: ledger lookup failed for %s: %v (request_id=%s)", trackingID, err, reqID)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "FAILED", "message": "Ledger lookup failed"})
		return
	}

	// 6. --- Record the Payment ---
	// Payment id and status land in one batched write; replaying the
	// same event just overwrites the same values.
	if err := h.Ledger.MarkPaid(c, row, payment.ID); err != nil {
		log.Printf("webhook: ledger update failed for %s: %v (request_id=%s)", trackingID, err, reqID)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "FAILED", "message": "Ledger update failed"})
		return
	}

	log.Printf("webhook: payment %s recorded for %s (request_id=%s)", payment.ID, trackingID, reqID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
