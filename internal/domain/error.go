package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrIntentNotFound      = errors.New("payment intent not found")
	ErrNoActiveEntitlement = errors.New("no active entitlement")
	ErrInvalidArgument     = errors.New("invalid argument")

	// Gateway errors. Unavailable is retryable; rejected is not.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")

	// Persistence errors
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context for query")

	// Concurrency
	ErrLockNotAcquired       = errors.New("could not acquire lock")
	ErrDuplicateNotification = errors.New("notification already sent within dedup window")
)
