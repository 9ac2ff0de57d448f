// File: internal/usecase/notification_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/adapter"
	"telegram-group-subscription/internal/domain/ports/repository"
	"telegram-group-subscription/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// RecordNotification atomically checks the dedup window and records the
	// send. Returns true exactly once per (user, kind) per window; callers
	// only deliver when it returns true.
	RecordNotification(ctx context.Context, userID int64, kind string) (bool, error)
	// SendRenewalReminders runs one reminder pass over all configured
	// warning thresholds. Returns how many reminders were delivered.
	SendRenewalReminders(ctx context.Context, now time.Time) (int, error)
}

type notificationUC struct {
	ents          repository.EntitlementRepository
	log           *zerolog.Logger
	notifLog      repository.NotificationLogRepository
	group         adapter.GroupAccess
	thresholdDays []int
	dedupWindow   time.Duration
}

func NewNotificationUseCase(
	ents repository.EntitlementRepository,
	notifLog repository.NotificationLogRepository,
	group adapter.GroupAccess,
	thresholdDays []int,
	dedupWindow time.Duration,
	logger *zerolog.Logger,
) *notificationUC {
	if len(thresholdDays) == 0 {
		thresholdDays = []int{7, 3, 1}
	}
	if dedupWindow <= 0 {
		dedupWindow = 24 * time.Hour
	}
	ucLog := logger.With().Str("component", "NotificationUC").Logger()
	return &notificationUC{
		ents:          ents,
		notifLog:      notifLog,
		group:         group,
		thresholdDays: thresholdDays,
		dedupWindow:   dedupWindow,
		log:           &ucLog,
	}
}

func (n *notificationUC) RecordNotification(ctx context.Context, userID int64, kind string) (bool, error) {
	return n.notifLog.SaveUnique(ctx, repository.NoTX, userID, kind, time.Now(), n.dedupWindow)
}

func (n *notificationUC) SendRenewalReminders(ctx context.Context, now time.Time) (int, error) {
	sent := 0
	for _, days := range n.thresholdDays {
		horizon := time.Duration(days) * 24 * time.Hour
		candidates, err := n.ents.FindExpiringWithin(ctx, repository.NoTX, now, horizon)
		if err != nil {
			return sent, err
		}
		kind := model.RenewalWarningKind(days)
		for _, ent := range candidates {
			ok, err := n.RecordNotification(ctx, ent.UserID, kind)
			if err != nil {
				n.log.Error().Err(err).Int64("user_id", ent.UserID).Str("kind", kind).Msg("record notification failed")
				continue
			}
			if !ok {
				metrics.IncReminderDeduped()
				continue
			}
			text := fmt.Sprintf(
				"Sua assinatura expira em %d dia(s), em %s. Renove para manter o acesso ao grupo.",
				days, ent.ExpiresAt.Format("02/01/2006"),
			)
			if err := n.group.NotifyUser(ctx, ent.UserID, text); err != nil {
				// The dedup record stays: a failed delivery is not retried
				// inside the window to avoid spamming on flaky sends.
				n.log.Warn().Err(err).Int64("user_id", ent.UserID).Str("kind", kind).Msg("reminder delivery failed")
				continue
			}
			metrics.IncReminderSent()
			sent++
		}
	}
	return sent, nil
}
