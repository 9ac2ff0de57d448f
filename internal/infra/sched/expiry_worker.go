package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain/ports/adapter"
	"telegram-group-subscription/internal/infra/metrics"
	"telegram-group-subscription/internal/usecase"
)

// ExpiryWorker periodically expires due entitlements and revokes group
// access for the affected users. The state transition is authoritative; the
// revoke and the notice are advisory and never abort the sweep.
type ExpiryWorker struct {
	interval time.Duration
	entUC    usecase.EntitlementUseCase
	group    adapter.GroupAccess
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, entUC usecase.EntitlementUseCase, group adapter.GroupAccess, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	compLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		entUC:    entUC,
		group:    group,
		log:      &compLog,
	}
}

// Run loops until ctx is cancelled. Iteration errors are logged and the
// loop continues at the next tick; the worker never exits on its own.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep pass. Exposed so tests can drive one
// iteration deterministically.
func (w *ExpiryWorker) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	expired, err := w.entUC.ExpireDue(runCtx, time.Now())
	if err != nil {
		metrics.IncSweepError("expiry")
		w.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}

	for _, ent := range expired {
		if err := w.group.RevokeAccess(runCtx, ent.UserID); err != nil {
			w.log.Warn().Err(err).Int64("user_id", ent.UserID).Msg("revoke access failed")
		}
		notice := "Sua assinatura expirou e seu acesso ao grupo foi encerrado. Renove para voltar."
		if err := w.group.NotifyUser(runCtx, ent.UserID, notice); err != nil {
			w.log.Warn().Err(err).Int64("user_id", ent.UserID).Msg("expiry notice failed")
		}
	}
}
