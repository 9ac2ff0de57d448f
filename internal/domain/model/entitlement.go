package model

import (
	"time"

	"telegram-group-subscription/internal/domain"
)

type EntitlementStatus string

const (
	EntitlementStatusActive  EntitlementStatus = "active"
	EntitlementStatusExpired EntitlementStatus = "expired" // terminal per row
)

// Entitlement is one granted access window for a user. Rows are historical:
// a user may hold many, but at most one with status active at any instant.
// A renewal always produces a fresh row rather than mutating the old one.
type Entitlement struct {
	ID             string // ULID, sortable by creation time
	UserID         int64
	PlanID         string
	ActivatedAt    time.Time
	ExpiresAt      time.Time
	Status         EntitlementStatus
	SourceIntentID string // PaymentIntent that granted this window
}

// Expired reports whether the window has passed at the given instant.
func (e *Entitlement) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// NewEntitlement creates an active entitlement starting now. The expiry is
// always now + plan duration; unused time on a previous window is not
// stacked.
func NewEntitlement(id string, userID int64, plan *Plan, sourceIntentID string, now time.Time) (*Entitlement, error) {
	if id == "" || userID == 0 || plan.IsZero() || sourceIntentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Entitlement{
		ID:             id,
		UserID:         userID,
		PlanID:         plan.ID,
		ActivatedAt:    now,
		ExpiresAt:      now.Add(plan.Duration()),
		Status:         EntitlementStatusActive,
		SourceIntentID: sourceIntentID,
	}, nil
}
