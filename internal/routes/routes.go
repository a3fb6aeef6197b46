package routes

import (
	"net/http"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/handlers"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware tells the browser the storefront origin may send data
// to us. The webhook endpoint never sees a browser, so one origin is all
// we allow.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		// The browser sends an empty preflight request first to check
		// permissions. Reply with "204 No Content".
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SetupRouter wires the middleware and every route of the order API.
func SetupRouter(h *handlers.Handlers, allowedOrigin string) *gin.Engine {
	router := gin.Default()

	// Correlation id first so every later log line can carry it, CORS
	// before any handler runs.
	router.Use(middleware.RequestID())
	router.Use(CORSMiddleware(allowedOrigin))

	// --- Ping Route (Public) ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong!"})
	})

	// --- Checkout Routes (Storefront) ---
	router.POST("/create-order", h.CreateOrder)

	// --- Webhook Routes (Gateway) ---
	router.POST("/razorpay-webhook", h.RazorpayWebhook)

	// --- Order Tracking Routes (Public) ---
	router.GET("/order-status/:tracking_id", h.GetOrderStatus)

	return router
}
