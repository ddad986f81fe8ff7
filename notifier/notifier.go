package notifier

// Contact is where the customer can be reached, captured when the
// payment attempt was created.
type Contact struct {
	Email string
	Phone string
}

// Outcome describes a finished payment attempt.
type Outcome struct {
	OrderID     string
	ReferenceID string
	Amount      int64
	Currency    string
	Succeeded   bool
}

// Notifier delivers payment outcome messages to the customer. Delivery
// is best effort: callers log returned errors and move on, a failed
// notification never blocks a payment state transition.
type Notifier interface {
	NotifyOutcome(contact Contact, outcome Outcome) error
}
