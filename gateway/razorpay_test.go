package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func capturedPayload(createdAt int64) []byte {
	return []byte(fmt.Sprintf(`{
		"entity": "event",
		"event": "payment.captured",
		"created_at": %d,
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_abc",
					"order_id": "order_xyz",
					"status": "captured",
					"notes": {"order_id": "A3", "reference_id": "ref-1"}
				}
			}
		}
	}`, createdAt))
}

func testGateway() *RazorpayGateway {
	return NewRazorpayGateway("rzp_test_key", "rzp_test_secret", testWebhookSecret, 10*time.Second, 5*time.Minute)
}

func TestCreateIntent_ExpiredContext(t *testing.T) {
	gw := testGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.CreateIntent(ctx, 1050, "INR", IntentMetadata{OrderID: "A1", ReferenceID: "ref-1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyAndParseEvent_ValidSignature(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Unix())

	event, err := gw.VerifyAndParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "order_xyz", event.GatewayOrderID)
	assert.Equal(t, "pay_abc", event.PaymentID)
	assert.Equal(t, "A3", event.OrderID)
}

func TestVerifyAndParseEvent_MissingSignature(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Unix())

	_, err := gw.VerifyAndParseEvent(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEvent_TamperedPayload(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Unix())
	signature := sign(payload, testWebhookSecret)

	tampered := []byte(string(payload[:len(payload)-2]) + " }")
	_, err := gw.VerifyAndParseEvent(tampered, signature)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEvent_WrongSecret(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Unix())

	_, err := gw.VerifyAndParseEvent(payload, sign(payload, "some-other-secret"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEvent_MalformedSignature(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Unix())

	_, err := gw.VerifyAndParseEvent(payload, "not-a-hex-signature")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEvent_StaleTimestamp(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Add(-time.Hour).Unix())

	_, err := gw.VerifyAndParseEvent(payload, sign(payload, testWebhookSecret))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEvent_FutureTimestamp(t *testing.T) {
	gw := testGateway()
	payload := capturedPayload(time.Now().Add(time.Hour).Unix())

	_, err := gw.VerifyAndParseEvent(payload, sign(payload, testWebhookSecret))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEvent_MalformedBody(t *testing.T) {
	gw := testGateway()
	payload := []byte(`{"event": "payment.captured", "created_at":`)

	_, err := gw.VerifyAndParseEvent(payload, sign(payload, testWebhookSecret))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestVerifyAndParseEvent_OrderPaidFallback(t *testing.T) {
	gw := testGateway()
	payload := []byte(fmt.Sprintf(`{
		"entity": "event",
		"event": "order.paid",
		"created_at": %d,
		"payload": {
			"order": {
				"entity": {
					"id": "order_fallback",
					"notes": {"order_id": "A7"}
				}
			}
		}
	}`, time.Now().Unix()))

	event, err := gw.VerifyAndParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "order_fallback", event.GatewayOrderID)
	assert.Equal(t, "A7", event.OrderID)
}

func TestNormalizeEventType(t *testing.T) {
	assert.Equal(t, EventPaymentSucceeded, normalizeEventType("payment.captured"))
	assert.Equal(t, EventPaymentSucceeded, normalizeEventType("order.paid"))
	assert.Equal(t, EventPaymentFailed, normalizeEventType("payment.failed"))
	assert.Equal(t, EventUnhandled, normalizeEventType("refund.processed"))
	assert.Equal(t, EventUnhandled, normalizeEventType(""))
}
