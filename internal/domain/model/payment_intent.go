package model

import (
	"time"

	"telegram-group-subscription/internal/domain"
)

type IntentStatus string

const (
	IntentStatusPending  IntentStatus = "pending"  // payable code issued; awaiting gateway verification
	IntentStatusApproved IntentStatus = "approved" // verified paid at provider (terminal)
	IntentStatusRejected IntentStatus = "rejected" // verification failed at provider (terminal)
)

// PaymentIntent records one payment attempt against the external gateway.
// ID is generated locally and used as the gateway's external reference, so
// user retries never collide with the provider's own identifiers.
type PaymentIntent struct {
	ID          string // UUID, caller-visible
	UserID      int64  // Telegram user id
	PlanID      string
	AmountCents int64
	Status      IntentStatus
	GatewayRef  string // provider's payment id, set at creation
	PixCode     string // copy-and-paste PIX code shown to the user
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Terminal reports whether the intent reached a final state. Terminal
// intents never transition again.
func (p *PaymentIntent) Terminal() bool {
	return p.Status == IntentStatusApproved || p.Status == IntentStatusRejected
}

// NewPaymentIntent constructs a pending intent for one purchase attempt.
func NewPaymentIntent(id string, userID int64, plan *Plan, gatewayRef, pixCode string) (*PaymentIntent, error) {
	if id == "" || userID == 0 || plan.IsZero() || gatewayRef == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &PaymentIntent{
		ID:          id,
		UserID:      userID,
		PlanID:      plan.ID,
		AmountCents: plan.PriceCents,
		Status:      IntentStatusPending,
		GatewayRef:  gatewayRef,
		PixCode:     pixCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
