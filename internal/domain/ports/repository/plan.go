package repository

import (
	"context"

	"telegram-group-subscription/internal/domain/model"
)

// PlanCatalog is the port for the static plan catalog. The catalog is
// immutable configuration; there is no write side.
type PlanCatalog interface {
	FindByID(ctx context.Context, id string) (*model.Plan, error)
	ListAll(ctx context.Context) ([]*model.Plan, error)
}
