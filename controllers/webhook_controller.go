package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickbite/payment-service/gateway"
	"github.com/quickbite/payment-service/payment"
	"github.com/quickbite/payment-service/utils"
)

// POST /webhook/razorpay
//
// Response contract matters here: Razorpay redelivers on any non-2xx, so
// signature failures and unmatched events get terminal statuses while
// store failures get a 500 to trigger redelivery.
func (h *Handler) RazorpayWebhook(c *gin.Context) {
	utils.LogInfo("RazorpayWebhook called")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Unable to read request body", nil)
		return
	}
	signature := c.GetHeader("X-Razorpay-Signature")

	result, err := h.Reconciler.HandleEvent(c.Request.Context(), body, signature)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidSignature), errors.Is(err, gateway.ErrMalformedEvent):
			// Reason stays in the server log; the caller learns nothing about
			// why verification failed.
			utils.LogError("Webhook rejected from IP: %s", c.ClientIP())
			utils.BadRequest(c, "Webhook verification failed", nil)
		case errors.Is(err, payment.ErrUnknownOrder):
			utils.LogError("Webhook did not match any payment record")
			utils.NotFound(c, "No matching payment record")
		default:
			utils.LogError("Webhook processing failed: %v", err)
			utils.InternalServerError(c, utils.ErrInternalServer, nil)
		}
		return
	}

	utils.LogInfo("Webhook handled for order ID: %s, outcome: %s, status: %s", result.OrderID, result.Outcome, result.FinalStatus)
	c.JSON(http.StatusOK, gin.H{"received": true})
}
