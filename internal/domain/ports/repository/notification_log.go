package repository

import (
	"context"
	"time"
)

// NotificationLogRepository is the dedup ledger for reminder delivery.
type NotificationLogRepository interface {
	// SaveUnique records that a notification was sent, unless a record for
	// the same (userID, kind) already exists within the dedup window. The
	// check-and-insert is atomic; returns false when deduplicated.
	SaveUnique(ctx context.Context, tx Tx, userID int64, kind string, sentAt time.Time, window time.Duration) (bool, error)
	// ExistsRecent checks for a record within the window without inserting.
	ExistsRecent(ctx context.Context, tx Tx, userID int64, kind string, since time.Time) (bool, error)
}
