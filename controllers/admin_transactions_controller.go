package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quickbite/payment-service/models"
	"github.com/quickbite/payment-service/store"
	"github.com/quickbite/payment-service/utils"
)

// GET /v1/admin/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	utils.LogInfo("ListTransactions called")

	pagination := utils.NewPagination(c)
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}
	filter.Limit = pagination.Limit
	filter.Offset = pagination.Offset

	records, total, err := h.Store.List(c.Request.Context(), filter)
	if err != nil {
		utils.LogError("Failed to list transactions: %v", err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}
	pagination.SetTotal(total)
	utils.LogDebug("Retrieved %d of %d transactions", len(records), total)

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, gin.H{
			"payment_reference": record.ReferenceID,
			"order_id":          record.OrderID,
			"user_id":           record.UserID,
			"amount":            record.Amount,
			"currency":          record.Currency,
			"status":            record.Status,
			"gateway_order_id":  record.GatewayOrderID,
			"created_at":        record.CreatedAt,
			"updated_at":        record.UpdatedAt,
		})
	}

	utils.SendPaginatedResponse(c, items, pagination)
}

// transactionFilter builds a store filter from status/from/to query
// parameters, answering the request itself on bad input.
func transactionFilter(c *gin.Context) (store.ListFilter, bool) {
	var filter store.ListFilter

	status := c.Query("status")
	switch status {
	case "", models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusFailed:
		filter.Status = status
	default:
		utils.LogError("Invalid status filter: %s", status)
		utils.BadRequest(c, "Invalid status filter", "Status must be pending, paid, or failed")
		return filter, false
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.BadRequest(c, "Invalid from date", "Expected format YYYY-MM-DD")
			return filter, false
		}
		filter.From = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.BadRequest(c, "Invalid to date", "Expected format YYYY-MM-DD")
			return filter, false
		}
		filter.To = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	return filter, true
}
