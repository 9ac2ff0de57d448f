package payment

import (
	"context"
	"fmt"
	"sync/atomic"

	"telegram-group-subscription/internal/domain/ports/adapter"
)

// NoopGateway approves everything instantly. Dev mode only.
type NoopGateway struct {
	seq int64
}

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) CreateIntent(ctx context.Context, amountCents int64, description, externalRef string, payer adapter.PayerInfo) (string, string, error) {
	n := atomic.AddInt64(&g.seq, 1)
	return fmt.Sprintf("noop-%d", n), fmt.Sprintf("noop-pix-%d", n), nil
}

func (g *NoopGateway) GetStatus(ctx context.Context, gatewayRef string) (adapter.GatewayStatus, int64, error) {
	return adapter.GatewayStatusApproved, 0, nil
}
