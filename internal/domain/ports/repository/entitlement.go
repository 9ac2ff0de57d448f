package repository

import (
	"context"
	"time"

	"telegram-group-subscription/internal/domain/model"
)

// EntitlementRepository is the port for entitlement persistence. Rows are
// never deleted; status moves active -> expired exactly once per row.
type EntitlementRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Entitlement) error
	// FindActiveByUser returns the user's current active row, or ErrNotFound.
	FindActiveByUser(ctx context.Context, tx Tx, userID int64) (*model.Entitlement, error)
	// MarkExpired transitions every active row with ExpiresAt < now to
	// expired and returns the transitioned set. Rows already expired are not
	// matched, which makes repeated sweeps no-ops.
	MarkExpired(ctx context.Context, tx Tx, now time.Time) ([]*model.Entitlement, error)
	// ExpireActiveByUser expires the user's active row, if any. Called when a
	// renewal approval replaces the current window with a fresh row.
	ExpireActiveByUser(ctx context.Context, tx Tx, userID int64, now time.Time) error
	// FindExpiringWithin returns active rows whose expiry falls in
	// [now, now + horizon].
	FindExpiringWithin(ctx context.Context, tx Tx, now time.Time, horizon time.Duration) ([]*model.Entitlement, error)
	// CountByStatus is a read-only statistics helper.
	CountByStatus(ctx context.Context, tx Tx) (map[model.EntitlementStatus]int, error)
}
