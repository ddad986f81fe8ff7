package payment

import (
	"errors"
	"fmt"
)

// ErrUnknownOrder is returned when a webhook event cannot be tied to any
// payment record. Reportable but non-fatal: the gateway redelivers after
// a non-2xx response, by which time the record may exist.
var ErrUnknownOrder = errors.New("no payment record matches webhook event")

// GatewayError wraps a failure of the external payment provider. The
// client may retry; nothing was persisted.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
