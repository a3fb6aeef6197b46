package main

import (
	"context"
	"log"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/config"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/gateway"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/handlers"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/ledger"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/routes"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/tracking"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("CRITICAL ERROR: Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// 1. --- Ledger Connection (Google Sheets) ---
	ledgerClient, err := ledger.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize the ledger client: %v", err)
	}
	if err := ledgerClient.Ping(ctx); err != nil {
		log.Fatalf("Failed to reach the order ledger: %v", err)
	}
	log.Println("Order ledger connection verified.")

	// 2. --- Payment Gateway Client (Razorpay) ---
	gatewayClient := gateway.New(cfg)

	// 3. --- Tracking ID Generator ---
	var tracker tracking.Generator
	switch cfg.TrackingScheme {
	case config.SchemeSequential:
		// Sequential ids read the ledger tail before every issuance and
		// assume this process is the sheet's only writer.
		tracker = tracking.NewSequential(ledgerClient, cfg.TrackingPrefix, cfg.TrackingStartBatch)
	default:
		tracker = tracking.NewRandom(cfg.TrackingPrefix, cfg.TrackingRandomLen)
	}

	// --- Application Setup ---
	// We inject ALL dependencies into the Handlers struct.
	app := &handlers.Handlers{
		Ledger:  ledgerClient,
		Gateway: gatewayClient,
		Tracker: tracker,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, cfg.AllowedOrigin)

	// --- Start Server ---
	log.Printf("Starting ShowPlaza order API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
