package repository

import (
	"context"

	"telegram-group-subscription/internal/domain/model"
)

// PaymentIntentRepository is the port for payment intent persistence.
type PaymentIntentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentIntent) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentIntent, error)
	// FindByGatewayRef resolves the local intent for a provider payment id,
	// as stored at creation time. Used by webhook ingestion.
	FindByGatewayRef(ctx context.Context, tx Tx, ref string) (*model.PaymentIntent, error)
	// UpdateStatusIfPending atomically moves a pending intent to a terminal
	// status. Returns false when the intent was already terminal, so exactly
	// one caller wins a race.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.IntentStatus) (bool, error)
	// ApprovedTotals returns the count and summed amount of approved intents.
	ApprovedTotals(ctx context.Context, tx Tx) (count int64, revenueCents int64, err error)
}
