package main

import (
	"log"

	"github.com/quickbite/payment-service/config"
	"github.com/quickbite/payment-service/controllers"
	"github.com/quickbite/payment-service/gateway"
	"github.com/quickbite/payment-service/notifier"
	"github.com/quickbite/payment-service/payment"
	"github.com/quickbite/payment-service/routes"
	"github.com/quickbite/payment-service/store"
	"github.com/quickbite/payment-service/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB(cfg)

	paymentStore := store.NewGormStore(config.DB)
	razorpayGateway := gateway.NewRazorpayGateway(
		cfg.RazorpayKey,
		cfg.RazorpaySecret,
		cfg.RazorpayWebhookSecret,
		cfg.PaymentTimeout,
		cfg.WebhookTolerance,
	)
	emailNotifier := notifier.NewEmailNotifier(notifier.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	orchestrator := payment.NewOrchestrator(paymentStore, razorpayGateway, cfg.PaymentTimeout)
	reconciler := payment.NewReconciler(paymentStore, razorpayGateway, emailNotifier)
	handler := controllers.NewHandler(orchestrator, reconciler, paymentStore)

	// Set up router
	router := routes.SetupRouter(handler)

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
