package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/quickbite/payment-service/models"
	"github.com/quickbite/payment-service/payment"
	"github.com/quickbite/payment-service/store"
	"github.com/quickbite/payment-service/utils"
)

// POST /v1/payments
func (h *Handler) StartPayment(c *gin.Context) {
	utils.LogInfo("StartPayment called")
	userID, exists := c.Get("userID")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}

	var req struct {
		OrderID  string `json:"order_id" binding:"required"`
		Amount   int64  `json:"amount" binding:"required"`
		Currency string `json:"currency" binding:"required"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %v: %v", userID, err)
		utils.BadRequest(c, utils.ErrInvalidPaymentRequest, err.Error())
		return
	}

	if !utils.IsValidOrderID(req.OrderID) {
		utils.LogError("Malformed order ID from user ID: %v", userID)
		utils.ValidationError(c, utils.ErrInvalidPaymentRequest, gin.H{"order_id": "Order ID is malformed"})
		return
	}
	utils.LogInfo("Processing payment start for order ID: %s, user ID: %v", req.OrderID, userID)

	result, err := h.Orchestrator.StartPayment(c.Request.Context(), payment.StartRequest{
		OrderID:  req.OrderID,
		UserID:   userID.(uint),
		Amount:   req.Amount,
		Currency: req.Currency,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		var fieldErrors utils.FieldValidationErrors
		if errors.As(err, &fieldErrors) {
			utils.LogError("Validation failed for order ID: %s: %v", req.OrderID, err)
			utils.ValidationError(c, utils.ErrInvalidPaymentRequest, fieldErrors)
			return
		}
		var gatewayErr *payment.GatewayError
		if errors.As(err, &gatewayErr) {
			utils.LogError("Gateway failure for order ID: %s: %v", req.OrderID, err)
			utils.InternalServerError(c, utils.ErrPaymentStartFailed, gin.H{"retry": true})
			return
		}
		utils.LogError("Failed to start payment for order ID: %s: %v", req.OrderID, err)
		utils.InternalServerError(c, utils.ErrPaymentStartFailed, gin.H{"retry": true})
		return
	}

	if result.AlreadyPaid {
		utils.LogInfo("Payment already completed for order ID: %s", req.OrderID)
		utils.Success(c, utils.ErrPaymentAlreadyDone, gin.H{
			"payment_reference": result.ReferenceID,
			"already_paid":      true,
			"status":            result.Status,
		})
		return
	}

	utils.LogInfo("Payment ready for order ID: %s, reference: %s", req.OrderID, result.ReferenceID)
	utils.Success(c, "Payment initiated successfully", gin.H{
		"gateway_secret":    result.GatewaySecret,
		"payment_reference": result.ReferenceID,
		"already_paid":      false,
		"status":            result.Status,
	})
}

// GET /v1/payments/:order_id
func (h *Handler) GetPayment(c *gin.Context) {
	utils.LogInfo("GetPayment called")
	userID, exists := c.Get("userID")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}

	orderID := c.Param("order_id")
	if !utils.IsValidOrderID(orderID) {
		utils.BadRequest(c, utils.ErrInvalidPaymentRequest, nil)
		return
	}

	record, err := h.Store.FindByOrderID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			utils.LogError("Payment not found for order ID: %s", orderID)
			utils.NotFound(c, "Payment not found")
			return
		}
		utils.LogError("Failed to look up payment for order ID: %s: %v", orderID, err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}

	role, _ := c.Get("userRole")
	if record.UserID != userID.(uint) && role != "admin" {
		utils.LogError("User ID: %v attempted to read payment for order ID: %s owned by user ID: %d", userID, orderID, record.UserID)
		utils.NotFound(c, "Payment not found")
		return
	}

	data := gin.H{
		"payment_reference": record.ReferenceID,
		"order_id":          record.OrderID,
		"amount":            record.Amount,
		"currency":          record.Currency,
		"status":            record.Status,
		"created_at":        record.CreatedAt,
		"updated_at":        record.UpdatedAt,
	}
	// The checkout credential is only usable, and only disclosed, while
	// the payment is still pending.
	if record.Status == models.PaymentStatusPending {
		data["gateway_secret"] = record.GatewaySecret
	}

	utils.Success(c, "Payment retrieved successfully", data)
}
