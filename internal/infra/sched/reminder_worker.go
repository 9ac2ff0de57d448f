package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/infra/metrics"
	"telegram-group-subscription/internal/usecase"
)

// ReminderWorker periodically sends deduplicated renewal reminders. It runs
// independently of the expiry worker: an error in one loop never halts the
// other.
type ReminderWorker struct {
	interval time.Duration
	notifUC  usecase.NotificationUseCase
	log      *zerolog.Logger
}

func NewReminderWorker(interval time.Duration, notifUC usecase.NotificationUseCase, logger *zerolog.Logger) *ReminderWorker {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		notifUC:  notifUC,
		log:      &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting reminder worker")
	// Run once on startup, then on every tick
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reminder pass.
func (w *ReminderWorker) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	sent, err := w.notifUC.SendRenewalReminders(runCtx, time.Now())
	if err != nil {
		metrics.IncSweepError("reminder")
		w.log.Error().Err(err).Msg("reminder sweep failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("renewal reminders sent")
	}
}
