package gateway

import (
	"context"
	"errors"
	"time"
)

// Event types after normalizing the provider's event names.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
	EventUnhandled        = "unhandled"
)

var (
	// ErrInvalidSignature is returned when a webhook fails authenticity
	// checks: missing, malformed or mismatched signature, or an event
	// timestamp outside the tolerance window.
	ErrInvalidSignature = errors.New("webhook signature verification failed")
)

// Intent is a provider-side authorized-but-not-captured payment attempt.
// Secret is the client-usable checkout credential; it is handed to the
// paying client exactly once per pending attempt.
type Intent struct {
	ID     string
	Secret string
	Status string
}

// IntentMetadata is correlation data embedded in the gateway order so
// webhook events can be tied back to our records.
type IntentMetadata struct {
	OrderID     string
	ReferenceID string
}

// Event is a verified, normalized webhook notification.
type Event struct {
	ID             string
	Type           string
	GatewayOrderID string
	PaymentID      string
	OrderID        string // from correlation metadata; may be empty
	CreatedAt      time.Time
}

// Gateway abstracts the external payment provider so the core can be
// exercised against a fake in tests.
type Gateway interface {
	// CreateIntent opens a payment attempt for the given amount in the
	// smallest currency unit.
	CreateIntent(ctx context.Context, amount int64, currency string, meta IntentMetadata) (*Intent, error)

	// VerifyAndParseEvent authenticates a raw webhook payload against its
	// signature header and returns the normalized event. Returns
	// ErrInvalidSignature before any payload content is trusted.
	VerifyAndParseEvent(payload []byte, signature string) (*Event, error)
}
