//go:build !integration

package catalog

import (
	"context"
	"errors"
	"testing"

	"telegram-group-subscription/internal/config"
	"telegram-group-subscription/internal/domain"
)

func TestStaticCatalog(t *testing.T) {
	ctx := context.Background()
	cfgPlans := []config.PlanConfig{
		{ID: "yearly", Name: "Plano Anual", PriceCents: 29990, DurationDays: 365},
		{ID: "monthly", Name: "Plano Mensal", PriceCents: 2990, DurationDays: 30},
	}

	t.Run("finds plans by id", func(t *testing.T) {
		cat, err := NewStaticCatalog(cfgPlans)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		plan, err := cat.FindByID(ctx, "monthly")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if plan.PriceCents != 2990 || plan.DurationDays != 30 {
			t.Errorf("unexpected plan: %+v", plan)
		}
		if _, err := cat.FindByID(ctx, "weekly"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("lists plans sorted by price", func(t *testing.T) {
		cat, _ := NewStaticCatalog(cfgPlans)
		plans, err := cat.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(plans) != 2 {
			t.Fatalf("expected 2 plans, got %d", len(plans))
		}
		if plans[0].ID != "monthly" || plans[1].ID != "yearly" {
			t.Errorf("plans not sorted by price: %s, %s", plans[0].ID, plans[1].ID)
		}
	})

	t.Run("callers cannot mutate catalog entries", func(t *testing.T) {
		cat, _ := NewStaticCatalog(cfgPlans)
		plan, _ := cat.FindByID(ctx, "monthly")
		plan.PriceCents = 1

		fresh, _ := cat.FindByID(ctx, "monthly")
		if fresh.PriceCents != 2990 {
			t.Errorf("catalog entry mutated: %d", fresh.PriceCents)
		}
	})

	t.Run("rejects invalid plan config", func(t *testing.T) {
		_, err := NewStaticCatalog([]config.PlanConfig{{ID: "bad", Name: "Bad", PriceCents: 0, DurationDays: 30}})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
