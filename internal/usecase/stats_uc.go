// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// SalesSummary is the admin-facing sales overview.
type SalesSummary struct {
	ActiveEntitlements  int   `json:"active_entitlements"`
	ExpiredEntitlements int   `json:"expired_entitlements"`
	TotalSales          int64 `json:"total_sales"`
	TotalRevenueCents   int64 `json:"total_revenue_cents"`
}

type StatsUseCase interface {
	Summary(ctx context.Context) (*SalesSummary, error)
}

type statsUC struct {
	ents    repository.EntitlementRepository
	intents repository.PaymentIntentRepository
	log     *zerolog.Logger
}

func NewStatsUseCase(ents repository.EntitlementRepository, intents repository.PaymentIntentRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{ents: ents, intents: intents, log: logger}
}

func (s *statsUC) Summary(ctx context.Context) (*SalesSummary, error) {
	counts, err := s.ents.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	sales, revenue, err := s.intents.ApprovedTotals(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &SalesSummary{
		ActiveEntitlements:  counts[model.EntitlementStatusActive],
		ExpiredEntitlements: counts[model.EntitlementStatusExpired],
		TotalSales:          sales,
		TotalRevenueCents:   revenue,
	}, nil
}
