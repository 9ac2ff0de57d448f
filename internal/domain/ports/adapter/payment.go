package adapter

import "context"

// GatewayStatus is the normalized provider status. Any provider status
// string the adapter does not recognize maps to pending.
type GatewayStatus string

const (
	GatewayStatusApproved GatewayStatus = "approved"
	GatewayStatusRejected GatewayStatus = "rejected"
	GatewayStatusPending  GatewayStatus = "pending"
)

// PayerInfo carries the minimal payer identity the provider requires.
type PayerInfo struct {
	Email     string
	FirstName string
	LastName  string
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// CreateIntent mints a payable PIX-style code for the given amount.
	// externalRef is the locally generated intent id, echoed back by the
	// provider on notifications. Returns the provider's own payment id and
	// the payable code.
	CreateIntent(ctx context.Context, amountCents int64, description, externalRef string, payer PayerInfo) (gatewayRef string, pixCode string, err error)

	// GetStatus re-queries the provider for the authoritative payment
	// status. Notification payloads are never trusted directly; this call is
	// the single source of truth.
	GetStatus(ctx context.Context, gatewayRef string) (status GatewayStatus, amountCents int64, err error)
}
