package utils

// Application constants
const (
	// Application name
	AppName = "QuickBite Payments"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default database host
	DefaultDBHost = "localhost"

	// Default database port
	DefaultDBPort = "5432"

	// Default database name
	DefaultDBName = "quickbite_payments"

	// Default database user
	DefaultDBUser = "postgres"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Maximum order ID length
	MaxOrderIDLength = 64
)

// Error messages
const (
	// Client-facing payment errors. Internal reconciliation detail stays
	// in the server logs, never in these bodies.
	ErrInvalidPaymentRequest = "Invalid payment request"
	ErrPaymentAlreadyDone    = "Payment for this order has already been completed"
	ErrPaymentStartFailed    = "Payment could not be started, please retry"

	// Server errors
	ErrInternalServer = "Internal server error"
)
