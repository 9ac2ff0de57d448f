package catalog

import (
	"context"
	"sort"

	"telegram-group-subscription/internal/config"
	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/model"
	"telegram-group-subscription/internal/domain/ports/repository"
)

// Ensure compile-time conformance
var _ repository.PlanCatalog = (*StaticCatalog)(nil)

// StaticCatalog serves the plan catalog from configuration. Plans never
// change at runtime, so there is no cache invalidation to worry about.
type StaticCatalog struct {
	byID  map[string]*model.Plan
	plans []*model.Plan
}

func NewStaticCatalog(cfgPlans []config.PlanConfig) (*StaticCatalog, error) {
	c := &StaticCatalog{byID: make(map[string]*model.Plan, len(cfgPlans))}
	for _, pc := range cfgPlans {
		p, err := model.NewPlan(pc.ID, pc.Name, pc.PriceCents, pc.DurationDays)
		if err != nil {
			return nil, err
		}
		c.byID[p.ID] = p
		c.plans = append(c.plans, p)
	}
	sort.Slice(c.plans, func(i, j int) bool { return c.plans[i].PriceCents < c.plans[j].PriceCents })
	return c, nil
}

func (c *StaticCatalog) FindByID(ctx context.Context, id string) (*model.Plan, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *StaticCatalog) ListAll(ctx context.Context) ([]*model.Plan, error) {
	out := make([]*model.Plan, len(c.plans))
	for i, p := range c.plans {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}
