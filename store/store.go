package store

import (
	"context"
	"errors"
	"time"

	"github.com/quickbite/payment-service/models"
)

var (
	// ErrRecordNotFound is returned when no payment record matches the lookup.
	ErrRecordNotFound = errors.New("payment record not found")
	// ErrDuplicateOrder is returned when an insert collides with an existing
	// record for the same order_id.
	ErrDuplicateOrder = errors.New("payment record already exists for order")
)

// RetryUpdate carries the fresh gateway intent written when a failed
// payment is retried.
type RetryUpdate struct {
	Amount         int64
	Currency       string
	GatewayOrderID string
	GatewaySecret  string
	Email          string
	Phone          string
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// PaymentStore is the single owner of payment records. It enforces the
// order_id and gateway_order_id uniqueness invariants, and every status
// transition is a guarded conditional write: callers learn from the
// returned bool whether their transition actually applied.
type PaymentStore interface {
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentRecord, error)

	// Insert persists a new pending record. Returns ErrDuplicateOrder when a
	// record for the same order_id already exists.
	Insert(ctx context.Context, record *models.PaymentRecord) error

	// RenewForRetry moves a failed record back to pending with a fresh
	// gateway intent. Applies only while the record is still failed; returns
	// false when another writer got there first.
	RenewForRetry(ctx context.Context, orderID string, update RetryUpdate) (bool, error)

	// TransitionStatus moves the record for orderID from one status to
	// another. Returns false without error when the record is no longer in
	// the from status.
	TransitionStatus(ctx context.Context, orderID, from, to string) (bool, error)

	RecordWebhookEvent(ctx context.Context, entry *models.WebhookEventLog) error

	List(ctx context.Context, filter ListFilter) ([]models.PaymentRecord, int64, error)
}
