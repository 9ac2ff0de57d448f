package model

import (
	"time"

	"telegram-group-subscription/internal/domain"
)

// Plan is a purchasable access plan with a fixed duration and price.
// Plans are immutable configuration, not per-user state.
type Plan struct {
	ID           string
	Name         string
	PriceCents   int64 // stored in cents (integer), to avoid float errors
	DurationDays int
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// Duration returns the entitlement window granted by one purchase.
func (p *Plan) Duration() time.Duration {
	return time.Duration(p.DurationDays) * 24 * time.Hour
}

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, priceCents int64, durationDays int) (*Plan, error) {
	if id == "" || name == "" || priceCents <= 0 || durationDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		PriceCents:   priceCents,
		DurationDays: durationDays,
	}, nil
}
