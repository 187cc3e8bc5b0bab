package scenario

import (
	"context"
	"fmt"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	scenariostore "github.com/de-tools/cost-planner/pkg/store/sqlite/scenario"
)

type storeRepository struct {
	store scenariostore.Store
}

// NewRepository exposes a scenario store as a Repository of domain scenarios.
func NewRepository(store scenariostore.Store) (Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("scenario store is nil")
	}
	return &storeRepository{store: store}, nil
}

func (r *storeRepository) List(ctx context.Context) ([]domain.Scenario, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	scenarios := make([]domain.Scenario, 0, len(records))
	for _, record := range records {
		scenarios = append(scenarios, adapters.MapStoreScenarioToDomain(record))
	}
	return scenarios, nil
}

func (r *storeRepository) Add(ctx context.Context, scenario domain.Scenario) error {
	return r.store.Add(ctx, adapters.MapDomainScenarioToStore(scenario))
}

func (r *storeRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}
