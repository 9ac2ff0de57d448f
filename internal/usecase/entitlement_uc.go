// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/repository"
	"telegram-group-subscription/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

type EntitlementUseCase interface {
	// QueryEntitlement returns the user's current active entitlement, or
	// domain.ErrNotFound when none exists.
	QueryEntitlement(ctx context.Context, userID int64) (*model.Entitlement, error)
	// ExpireDue transitions every active entitlement past its expiry to
	// expired and returns the transitioned set. Safe to call repeatedly.
	ExpireDue(ctx context.Context, now time.Time) ([]*model.Entitlement, error)
	// FindExpiringWithin returns active entitlements expiring inside
	// [now, now + horizonDays].
	FindExpiringWithin(ctx context.Context, now time.Time, horizonDays int) ([]*model.Entitlement, error)
}

type entitlementUC struct {
	ents repository.EntitlementRepository
	log  *zerolog.Logger
}

func NewEntitlementUseCase(ents repository.EntitlementRepository, logger *zerolog.Logger) *entitlementUC {
	ucLog := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{ents: ents, log: &ucLog}
}

func (u *entitlementUC) QueryEntitlement(ctx context.Context, userID int64) (*model.Entitlement, error) {
	return u.ents.FindActiveByUser(ctx, repository.NoTX, userID)
}

func (u *entitlementUC) ExpireDue(ctx context.Context, now time.Time) ([]*model.Entitlement, error) {
	expired, err := u.ents.MarkExpired(ctx, repository.NoTX, now)
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		metrics.IncEntitlementsExpired(len(expired))
		u.log.Info().Int("count", len(expired)).Msg("entitlements expired")
	}
	return expired, nil
}

func (u *entitlementUC) FindExpiringWithin(ctx context.Context, now time.Time, horizonDays int) ([]*model.Entitlement, error) {
	horizon := time.Duration(horizonDays) * 24 * time.Hour
	return u.ents.FindExpiringWithin(ctx, repository.NoTX, now, horizon)
}
