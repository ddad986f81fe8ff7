package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickbite/payment-service/gateway"
	"github.com/quickbite/payment-service/models"
	"github.com/quickbite/payment-service/notifier"
	"github.com/quickbite/payment-service/store"
	"github.com/quickbite/payment-service/utils"
)

// Outcomes of applying a webhook event.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
)

// EventResult reports what HandleEvent did with a verified event.
type EventResult struct {
	Outcome     string
	OrderID     string
	EventType   string
	FinalStatus string
}

// Reconciler drives payment records from pending to a terminal status
// off asynchronous gateway webhooks. Event application is idempotent:
// gateways redeliver, and a redelivered event must change nothing and
// notify no one a second time.
type Reconciler struct {
	store    store.PaymentStore
	gateway  gateway.Gateway
	notifier notifier.Notifier
}

func NewReconciler(paymentStore store.PaymentStore, gw gateway.Gateway, n notifier.Notifier) *Reconciler {
	return &Reconciler{
		store:    paymentStore,
		gateway:  gw,
		notifier: n,
	}
}

// HandleEvent verifies the webhook's authenticity, correlates it to a
// payment record, and applies the state transition. Error mapping for
// callers: gateway.ErrInvalidSignature and gateway.ErrMalformedEvent
// mean reject outright; ErrUnknownOrder means unmatched correlation;
// anything else is a store failure and the caller should answer non-2xx
// so the gateway redelivers.
func (r *Reconciler) HandleEvent(ctx context.Context, payload []byte, signature string) (*EventResult, error) {
	event, err := r.gateway.VerifyAndParseEvent(payload, signature)
	if err != nil {
		// Potential security event, keep the reason server-side only.
		utils.LogError("Webhook rejected: %v", err)
		return nil, err
	}
	utils.LogInfo("Verified webhook event %s, type: %s, gateway order: %s", event.ID, event.Type, event.GatewayOrderID)

	record, err := r.correlate(ctx, event)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			r.logEvent(ctx, event, "", models.WebhookOutcomeUnmatched)
			utils.LogError("No payment record for webhook event %s, gateway order: %s", event.ID, event.GatewayOrderID)
			return nil, fmt.Errorf("gateway order %s: %w", event.GatewayOrderID, ErrUnknownOrder)
		}
		return nil, err
	}

	if event.GatewayOrderID != "" && event.GatewayOrderID != record.GatewayOrderID {
		// A retry renewal rebinds the record to a fresh gateway intent; an
		// event for the superseded intent must not complete the new attempt.
		utils.LogInfo("Ignoring event for superseded gateway order %s, order ID: %s now holds %s", event.GatewayOrderID, record.OrderID, record.GatewayOrderID)
		r.logEvent(ctx, event, record.OrderID, models.WebhookOutcomeIgnored)
		return &EventResult{
			Outcome:     OutcomeIgnored,
			OrderID:     record.OrderID,
			EventType:   event.Type,
			FinalStatus: record.Status,
		}, nil
	}

	switch event.Type {
	case gateway.EventPaymentSucceeded:
		return r.applyTransition(ctx, event, record, models.PaymentStatusPaid)
	case gateway.EventPaymentFailed:
		return r.applyTransition(ctx, event, record, models.PaymentStatusFailed)
	default:
		utils.LogInfo("Ignoring unhandled webhook event type for order ID: %s", record.OrderID)
		r.logEvent(ctx, event, record.OrderID, models.WebhookOutcomeIgnored)
		return &EventResult{
			Outcome:     OutcomeIgnored,
			OrderID:     record.OrderID,
			EventType:   event.Type,
			FinalStatus: record.Status,
		}, nil
	}
}

// correlate prefers the order_id we embedded in the intent metadata and
// falls back to the gateway's own order identifier.
func (r *Reconciler) correlate(ctx context.Context, event *gateway.Event) (*models.PaymentRecord, error) {
	if event.OrderID != "" {
		record, err := r.store.FindByOrderID(ctx, event.OrderID)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
	}
	if event.GatewayOrderID == "" {
		return nil, store.ErrRecordNotFound
	}
	return r.store.FindByGatewayOrderID(ctx, event.GatewayOrderID)
}

func (r *Reconciler) applyTransition(ctx context.Context, event *gateway.Event, record *models.PaymentRecord, target string) (*EventResult, error) {
	applied, err := r.store.TransitionStatus(ctx, record.OrderID, models.PaymentStatusPending, target)
	if err != nil {
		utils.LogError("Failed to transition order ID: %s to %s: %v", record.OrderID, target, err)
		return nil, err
	}

	if !applied {
		// Already terminal: a redelivered or conflicting event. Acknowledge
		// without touching state and without re-notifying.
		current, err := r.store.FindByOrderID(ctx, record.OrderID)
		if err != nil {
			return nil, err
		}
		utils.LogInfo("Duplicate webhook delivery for order ID: %s, status stays %s", record.OrderID, current.Status)
		r.logEvent(ctx, event, record.OrderID, models.WebhookOutcomeDuplicate)
		return &EventResult{
			Outcome:     OutcomeDuplicate,
			OrderID:     record.OrderID,
			EventType:   event.Type,
			FinalStatus: current.Status,
		}, nil
	}

	utils.LogInfo("Payment for order ID: %s transitioned to %s", record.OrderID, target)
	r.logEvent(ctx, event, record.OrderID, models.WebhookOutcomeApplied)
	r.notify(record, target == models.PaymentStatusPaid)

	return &EventResult{
		Outcome:     OutcomeApplied,
		OrderID:     record.OrderID,
		EventType:   event.Type,
		FinalStatus: target,
	}, nil
}

// notify is fire and forget: the payment's truth lives in the store, a
// notification failure must never roll back or fail the webhook.
func (r *Reconciler) notify(record *models.PaymentRecord, succeeded bool) {
	if r.notifier == nil {
		return
	}
	contact := notifier.Contact{Email: record.Email, Phone: record.Phone}
	outcome := notifier.Outcome{
		OrderID:     record.OrderID,
		ReferenceID: record.ReferenceID,
		Amount:      record.Amount,
		Currency:    record.Currency,
		Succeeded:   succeeded,
	}
	if err := r.notifier.NotifyOutcome(contact, outcome); err != nil {
		utils.LogError("Failed to notify customer for order ID: %s: %v", record.OrderID, err)
	}
}

// logEvent keeps the webhook audit trail; failures only get logged, the
// audit row is not part of the transition's correctness.
func (r *Reconciler) logEvent(ctx context.Context, event *gateway.Event, orderID, outcome string) {
	entry := &models.WebhookEventLog{
		EventID:        event.ID,
		EventType:      event.Type,
		GatewayOrderID: event.GatewayOrderID,
		OrderID:        orderID,
		Outcome:        outcome,
	}
	if err := r.store.RecordWebhookEvent(ctx, entry); err != nil {
		utils.LogError("Failed to record webhook audit entry for event %s: %v", event.ID, err)
	}
}
