package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/quickbite/payment-service/utils"
)

// ErrMalformedEvent is returned when an authenticated webhook body cannot
// be decoded.
var ErrMalformedEvent = errors.New("malformed webhook payload")

// RazorpayGateway talks to Razorpay: orders are created through the
// official client and webhooks are authenticated with HMAC-SHA256 over
// the raw body, the scheme Razorpay signs X-Razorpay-Signature with.
type RazorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	webhookSecret string
	tolerance     time.Duration
	now           func() time.Time
}

// NewRazorpayGateway builds the adapter. timeout bounds each provider
// call; tolerance bounds how old an event timestamp may be before the
// webhook is rejected as stale.
func NewRazorpayGateway(keyID, keySecret, webhookSecret string, timeout, tolerance time.Duration) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	if timeout > 0 {
		// The client takes whole seconds; zero would mean unbounded.
		seconds := int16(timeout / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		client.SetTimeout(seconds)
	}
	return &RazorpayGateway{
		client:        client,
		keyID:         keyID,
		webhookSecret: webhookSecret,
		tolerance:     tolerance,
		now:           time.Now,
	}
}

func (g *RazorpayGateway) CreateIntent(ctx context.Context, amount int64, currency string, meta IntentMetadata) (*Intent, error) {
	orderData := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         "pay_rcpt_" + meta.OrderID,
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"order_id":     meta.OrderID,
			"reference_id": meta.ReferenceID,
		},
	}
	utils.LogDebug("Creating Razorpay order for order ID: %s, amount: %d %s", meta.OrderID, amount, currency)

	// The client has its own request timeout; an already-expired context
	// still must not open an order nobody is waiting for.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	rzOrder, err := g.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	intentID := fmt.Sprintf("%v", rzOrder["id"])
	status := fmt.Sprintf("%v", rzOrder["status"])
	utils.LogInfo("Created Razorpay order %s for order ID: %s", intentID, meta.OrderID)

	return &Intent{
		ID: intentID,
		// The checkout credential the paying client needs: our public key id
		// plus the Razorpay order id it may open checkout for.
		Secret: g.keyID + ":" + intentID,
		Status: status,
	}, nil
}

// webhookEnvelope mirrors the Razorpay webhook body shape.
type webhookEnvelope struct {
	Entity    string `json:"entity"`
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment struct {
			Entity struct {
				ID      string            `json:"id"`
				OrderID string            `json:"order_id"`
				Status  string            `json:"status"`
				Notes   map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID    string            `json:"id"`
				Notes map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

func (g *RazorpayGateway) VerifyAndParseEvent(payload []byte, signature string) (*Event, error) {
	if signature == "" {
		return nil, fmt.Errorf("missing signature header: %w", ErrInvalidSignature)
	}

	h := hmac.New(sha256.New, []byte(g.webhookSecret))
	h.Write(payload)
	expected := hex.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("signature mismatch: %w", ErrInvalidSignature)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	createdAt := time.Unix(envelope.CreatedAt, 0)
	if g.tolerance > 0 {
		age := g.now().Sub(createdAt)
		if age > g.tolerance || age < -g.tolerance {
			return nil, fmt.Errorf("event timestamp outside tolerance: %w", ErrInvalidSignature)
		}
	}

	entity := envelope.Payload.Payment.Entity
	gatewayOrderID := entity.OrderID
	orderID := entity.Notes["order_id"]
	if gatewayOrderID == "" {
		// order.paid carries the order entity instead of a payment entity.
		gatewayOrderID = envelope.Payload.Order.Entity.ID
	}
	if orderID == "" {
		orderID = envelope.Payload.Order.Entity.Notes["order_id"]
	}

	event := &Event{
		ID:             entity.ID + ":" + envelope.Event,
		Type:           normalizeEventType(envelope.Event),
		GatewayOrderID: gatewayOrderID,
		PaymentID:      entity.ID,
		OrderID:        orderID,
		CreatedAt:      createdAt,
	}
	return event, nil
}

func normalizeEventType(provider string) string {
	switch provider {
	case "payment.captured", "order.paid":
		return EventPaymentSucceeded
	case "payment.failed":
		return EventPaymentFailed
	default:
		return EventUnhandled
	}
}
