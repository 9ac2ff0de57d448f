package model

import (
	"fmt"
	"time"
)

// NotificationRecord is the dedup ledger for reminder delivery. Rows are
// append-only; the reminder sweep refuses to send again while a record for
// the same (user, kind) exists inside the dedup window.
type NotificationRecord struct {
	ID     string
	UserID int64
	Kind   string
	SentAt time.Time
}

// RenewalWarningKind names the reminder sent N days before expiry,
// e.g. "renewal-warning-7d".
func RenewalWarningKind(days int) string {
	return fmt.Sprintf("renewal-warning-%dd", days)
}

// ExpiredNoticeKind is sent once when the expiration sweep revokes access.
const ExpiredNoticeKind = "expired-notice"
