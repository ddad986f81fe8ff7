package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/quickbite/payment-service/controllers"
	"github.com/quickbite/payment-service/middleware"
	"github.com/quickbite/payment-service/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(handler *controllers.Handler) *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	// Gateway callbacks authenticate by signature, not by session
	router.POST("/webhook/razorpay", handler.RazorpayWebhook)

	// API version group
	api := router.Group("/" + utils.APIVersion)
	{
		payments := api.Group("/payments")
		payments.Use(middleware.AuthMiddleware())
		{
			payments.POST("", handler.StartPayment)
			payments.GET("/:order_id", handler.GetPayment)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("/transactions", handler.ListTransactions)
			admin.GET("/transactions/export/excel", handler.DownloadTransactionsExcel)
			admin.GET("/transactions/export/pdf", handler.DownloadTransactionsPDF)
		}
	}

	return router
}
