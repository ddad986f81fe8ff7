package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite/payment-service/gateway"
	"github.com/quickbite/payment-service/models"
	"github.com/quickbite/payment-service/store"
	"github.com/quickbite/payment-service/utils"
)

// SupportedCurrencies are the currency codes startPayment accepts.
var SupportedCurrencies = map[string]bool{
	"INR": true,
	"USD": true,
}

// StartRequest is one client attempt to pay for an order.
type StartRequest struct {
	OrderID  string
	UserID   uint
	Amount   int64 // smallest currency unit
	Currency string
	Email    string
	Phone    string
}

// StartResult is what the client needs to proceed with checkout.
// GatewaySecret is empty when AlreadyPaid is set: a completed payment
// never re-discloses its checkout credential.
type StartResult struct {
	GatewaySecret string
	ReferenceID   string
	AlreadyPaid   bool
	Status        string
}

// Orchestrator owns the startPayment decision: reuse a pending intent,
// refuse an already-paid order, retry a failed one, or create a fresh
// gateway intent. Correctness under concurrent duplicate submissions
// rests on the store's unique order_id index, not on in-process locks.
type Orchestrator struct {
	store   store.PaymentStore
	gateway gateway.Gateway
	timeout time.Duration
}

func NewOrchestrator(paymentStore store.PaymentStore, gw gateway.Gateway, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		store:   paymentStore,
		gateway: gw,
		timeout: timeout,
	}
}

// StartPayment validates the request, then drives the record lifecycle
// for the order. Safe to call repeatedly for the same order: once a
// record exists the stored secret is reused rather than creating a
// duplicate gateway intent.
func (o *Orchestrator) StartPayment(ctx context.Context, req StartRequest) (*StartResult, error) {
	req.Currency = strings.ToUpper(req.Currency)
	if err := validateStartRequest(req); err != nil {
		return nil, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	record, err := o.store.FindByOrderID(ctx, req.OrderID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	if record != nil {
		switch record.Status {
		case models.PaymentStatusPaid:
			utils.LogInfo("Payment already completed for order ID: %s", req.OrderID)
			return alreadyPaidResult(record), nil
		case models.PaymentStatusPending:
			utils.LogInfo("Reusing pending payment intent for order ID: %s", req.OrderID)
			return pendingResult(record), nil
		case models.PaymentStatusFailed:
			return o.retryFailed(ctx, req, record)
		}
	}

	return o.createFresh(ctx, req)
}

// createFresh opens a new gateway intent and persists the pending
// record. A losing racer falls back onto the winner's record instead of
// surfacing the duplicate-key error.
func (o *Orchestrator) createFresh(ctx context.Context, req StartRequest) (*StartResult, error) {
	referenceID := uuid.New().String()
	intent, err := o.createIntent(ctx, req, referenceID)
	if err != nil {
		return nil, err
	}

	record := &models.PaymentRecord{
		ReferenceID:    referenceID,
		OrderID:        req.OrderID,
		UserID:         req.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         models.PaymentStatusPending,
		GatewayOrderID: intent.ID,
		GatewaySecret:  intent.Secret,
		Email:          req.Email,
		Phone:          req.Phone,
	}

	if err := o.store.Insert(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicateOrder) {
			utils.LogInfo("Concurrent payment creation for order ID: %s, falling back to existing record", req.OrderID)
			utils.LogError("Orphaned gateway order %s for order ID: %s, flagged for reconciliation", intent.ID, req.OrderID)
			return o.resolveExisting(ctx, req.OrderID)
		}
		utils.LogError("Orphaned gateway order %s for order ID: %s, flagged for reconciliation", intent.ID, req.OrderID)
		return nil, err
	}

	utils.LogInfo("Created payment record %s for order ID: %s", record.ReferenceID, req.OrderID)
	return pendingResult(record), nil
}

// retryFailed mints a fresh gateway intent for a failed record. The
// renewal is conditional on the record still being failed; if another
// writer moved it first, the current state wins.
func (o *Orchestrator) retryFailed(ctx context.Context, req StartRequest, previous *models.PaymentRecord) (*StartResult, error) {
	utils.LogInfo("Retrying failed payment for order ID: %s, previous gateway order: %s", req.OrderID, previous.GatewayOrderID)

	intent, err := o.createIntent(ctx, req, previous.ReferenceID)
	if err != nil {
		return nil, err
	}

	applied, err := o.store.RenewForRetry(ctx, req.OrderID, store.RetryUpdate{
		Amount:         req.Amount,
		Currency:       req.Currency,
		GatewayOrderID: intent.ID,
		GatewaySecret:  intent.Secret,
		Email:          req.Email,
		Phone:          req.Phone,
	})
	if err != nil {
		utils.LogError("Orphaned gateway order %s for order ID: %s, flagged for reconciliation", intent.ID, req.OrderID)
		return nil, err
	}
	if !applied {
		utils.LogInfo("Lost retry race for order ID: %s, falling back to current record", req.OrderID)
		utils.LogError("Orphaned gateway order %s for order ID: %s, flagged for reconciliation", intent.ID, req.OrderID)
		return o.resolveExisting(ctx, req.OrderID)
	}

	// Re-read through the common path: a webhook may have already settled
	// the renewed attempt, and a terminal record must answer like one.
	return o.resolveExisting(ctx, req.OrderID)
}

// resolveExisting re-reads after a lost insert or renewal race and
// answers from whatever state the winner left behind.
func (o *Orchestrator) resolveExisting(ctx context.Context, orderID string) (*StartResult, error) {
	record, err := o.store.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if record.Status == models.PaymentStatusPaid {
		return alreadyPaidResult(record), nil
	}
	return pendingResult(record), nil
}

// createIntent opens a gateway intent carrying the record's reference
// in its correlation metadata.
func (o *Orchestrator) createIntent(ctx context.Context, req StartRequest, referenceID string) (*gateway.Intent, error) {
	intent, err := o.gateway.CreateIntent(ctx, req.Amount, req.Currency, gateway.IntentMetadata{
		OrderID:     req.OrderID,
		ReferenceID: referenceID,
	})
	if err != nil {
		utils.LogError("Gateway intent creation failed for order ID: %s: %v", req.OrderID, err)
		return nil, &GatewayError{Err: err}
	}
	return intent, nil
}

func validateStartRequest(req StartRequest) error {
	var fieldErrors utils.FieldValidationErrors
	if strings.TrimSpace(req.OrderID) == "" {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "order_id", Message: "Order ID is required"})
	}
	if req.Amount <= 0 {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "amount", Message: "Amount must be a positive value in the smallest currency unit"})
	}
	if !SupportedCurrencies[req.Currency] {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "currency", Message: "Currency is not supported"})
	}
	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "email", Message: "Invalid email address"})
	}
	if req.Phone != "" && !utils.IsValidPhone(req.Phone) {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "phone", Message: "Invalid phone number"})
	}
	if req.Email == "" && req.Phone == "" {
		fieldErrors = append(fieldErrors, utils.FieldValidationError{Field: "email", Message: "An email or phone contact is required"})
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

func pendingResult(record *models.PaymentRecord) *StartResult {
	return &StartResult{
		GatewaySecret: record.GatewaySecret,
		ReferenceID:   record.ReferenceID,
		Status:        record.Status,
	}
}

func alreadyPaidResult(record *models.PaymentRecord) *StartResult {
	return &StartResult{
		ReferenceID: record.ReferenceID,
		AlreadyPaid: true,
		Status:      record.Status,
	}
}
