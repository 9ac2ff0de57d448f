package adapter

import "context"

// GroupAccess is the port to the membership-management collaborator.
// All operations are best-effort side effects: callers log failures and
// never retry synchronously or roll back state because of them.
type GroupAccess interface {
	// RevokeAccess removes the user from the restricted group.
	RevokeAccess(ctx context.Context, userID int64) error
	// SendInviteLink delivers the group invite link after an approval.
	SendInviteLink(ctx context.Context, userID int64) error
	// NotifyUser sends a plain informational message to the user.
	NotifyUser(ctx context.Context, userID int64, text string) error
}
