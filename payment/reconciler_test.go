package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbite/payment-service/gateway"
	"github.com/quickbite/payment-service/models"
	"github.com/quickbite/payment-service/store"
)

func pendingRecord(t *testing.T, memStore *store.MemoryStore, orderID, gatewayOrderID string) *models.PaymentRecord {
	t.Helper()
	record := &models.PaymentRecord{
		ReferenceID:    "ref-" + orderID,
		OrderID:        orderID,
		UserID:         7,
		Amount:         1050,
		Currency:       "INR",
		Status:         models.PaymentStatusPending,
		GatewayOrderID: gatewayOrderID,
		GatewaySecret:  "secret-" + orderID,
		Email:          "customer@example.com",
	}
	require.NoError(t, memStore.Insert(context.Background(), record))
	return record
}

func succeededEvent(orderID, gatewayOrderID string) *gateway.Event {
	return &gateway.Event{
		ID:             "pay_1:payment.captured",
		Type:           gateway.EventPaymentSucceeded,
		GatewayOrderID: gatewayOrderID,
		PaymentID:      "pay_1",
		OrderID:        orderID,
		CreatedAt:      time.Now(),
	}
}

func TestHandleEvent_RejectsBadSignature(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A3", "order_rz_1")
	gw := &fakeGateway{verifyErr: gateway.ErrInvalidSignature}
	n := &fakeNotifier{}
	reconciler := NewReconciler(memStore, gw, n)

	_, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "bogus")

	assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
	record, lookupErr := memStore.FindByOrderID(context.Background(), "A3")
	require.NoError(t, lookupErr)
	assert.Equal(t, models.PaymentStatusPending, record.Status, "rejected webhook must not mutate state")
	assert.Empty(t, n.delivered())
}

func TestHandleEvent_AppliesSucceededTransition(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A3", "order_rz_1")
	gw := &fakeGateway{event: succeededEvent("A3", "order_rz_1")}
	n := &fakeNotifier{}
	reconciler := NewReconciler(memStore, gw, n)

	result, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, models.PaymentStatusPaid, result.FinalStatus)

	record, err := memStore.FindByOrderID(context.Background(), "A3")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, record.Status)

	delivered := n.delivered()
	require.Len(t, delivered, 1)
	assert.True(t, delivered[0].Succeeded)
	assert.Equal(t, "A3", delivered[0].OrderID)
}

func TestHandleEvent_DuplicateDeliveryIsHarmless(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A3", "order_rz_1")
	gw := &fakeGateway{event: succeededEvent("A3", "order_rz_1")}
	n := &fakeNotifier{}
	reconciler := NewReconciler(memStore, gw, n)

	first, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	second, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, first.Outcome)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Equal(t, models.PaymentStatusPaid, second.FinalStatus)
	assert.Len(t, n.delivered(), 1, "redelivery must notify exactly once in total")
}

func TestHandleEvent_FailedTransition(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A6", "order_rz_2")
	event := succeededEvent("A6", "order_rz_2")
	event.Type = gateway.EventPaymentFailed
	gw := &fakeGateway{event: event}
	n := &fakeNotifier{}
	reconciler := NewReconciler(memStore, gw, n)

	result, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	record, err := memStore.FindByOrderID(context.Background(), "A6")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, record.Status)

	delivered := n.delivered()
	require.Len(t, delivered, 1)
	assert.False(t, delivered[0].Succeeded)
}

func TestHandleEvent_UnknownOrder(t *testing.T) {
	memStore := store.NewMemoryStore()
	gw := &fakeGateway{event: succeededEvent("missing", "order_rz_9")}
	reconciler := NewReconciler(memStore, gw, &fakeNotifier{})

	_, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")

	assert.ErrorIs(t, err, ErrUnknownOrder)
	events := memStore.WebhookEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.WebhookOutcomeUnmatched, events[0].Outcome)
}

func TestHandleEvent_CorrelatesByGatewayOrderID(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A7", "order_rz_3")
	event := succeededEvent("", "order_rz_3") // no order_id note in the event
	gw := &fakeGateway{event: event}
	reconciler := NewReconciler(memStore, gw, &fakeNotifier{})

	result, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, "A7", result.OrderID)
	assert.Equal(t, OutcomeApplied, result.Outcome)
}

func TestHandleEvent_SupersededIntentCannotCompleteRetry(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A4", "order_rz_1")
	applied, err := memStore.TransitionStatus(context.Background(), "A4", models.PaymentStatusPending, models.PaymentStatusFailed)
	require.NoError(t, err)
	require.True(t, applied)
	applied, err = memStore.RenewForRetry(context.Background(), "A4", store.RetryUpdate{
		Amount:         1050,
		Currency:       "INR",
		GatewayOrderID: "order_rz_2",
		GatewaySecret:  "secret-new",
	})
	require.NoError(t, err)
	require.True(t, applied)

	// Late redelivery for the intent the retry replaced
	gw := &fakeGateway{event: succeededEvent("A4", "order_rz_1")}
	n := &fakeNotifier{}
	reconciler := NewReconciler(memStore, gw, n)

	result, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	record, err := memStore.FindByOrderID(context.Background(), "A4")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, record.Status, "an event for a superseded intent must not complete the fresh attempt")
	assert.Empty(t, n.delivered())

	events := memStore.WebhookEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.WebhookOutcomeIgnored, events[0].Outcome)
}

func TestHandleEvent_IgnoresUnhandledEventTypes(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A8", "order_rz_4")
	event := succeededEvent("A8", "order_rz_4")
	event.Type = gateway.EventUnhandled
	gw := &fakeGateway{event: event}
	n := &fakeNotifier{}
	reconciler := NewReconciler(memStore, gw, n)

	result, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	record, err := memStore.FindByOrderID(context.Background(), "A8")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, record.Status)
	assert.Empty(t, n.delivered())
}

func TestHandleEvent_NotifierFailureDoesNotFailWebhook(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A9", "order_rz_5")
	gw := &fakeGateway{event: succeededEvent("A9", "order_rz_5")}
	n := &fakeNotifier{err: errors.New("smtp down")}
	reconciler := NewReconciler(memStore, gw, n)

	result, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	record, err := memStore.FindByOrderID(context.Background(), "A9")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, record.Status, "transition survives a notifier failure")
}

func TestHandleEvent_RecordsAuditTrail(t *testing.T) {
	memStore := store.NewMemoryStore()
	pendingRecord(t, memStore, "A10", "order_rz_6")
	gw := &fakeGateway{event: succeededEvent("A10", "order_rz_6")}
	reconciler := NewReconciler(memStore, gw, &fakeNotifier{})

	_, err := reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	_, err = reconciler.HandleEvent(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	events := memStore.WebhookEvents()
	require.Len(t, events, 2)
	assert.Equal(t, models.WebhookOutcomeApplied, events[0].Outcome)
	assert.Equal(t, models.WebhookOutcomeDuplicate, events[1].Outcome)
}
