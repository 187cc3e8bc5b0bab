package adapters

import (
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/models/store"
)

func MapStoreScenarioToDomain(s store.Scenario) domain.Scenario {
	resources := make([]domain.ScenarioResource, 0, len(s.Resources))
	for _, r := range s.Resources {
		resources = append(resources, domain.ScenarioResource{
			Name:         r.Name,
			ResourceType: r.ResourceType,
			MonthlyCost:  r.MonthlyCost,
			Index:        r.ResourceIndex,
			Adjustment:   r.Adjustment,
		})
	}

	return domain.Scenario{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Date:        s.CreatedAt,
		Resources:   resources,
		TotalCost:   s.TotalCost,
	}
}

func MapDomainScenarioToStore(s domain.Scenario) store.Scenario {
	resources := make([]store.ScenarioResource, 0, len(s.Resources))
	for i, r := range s.Resources {
		resources = append(resources, store.ScenarioResource{
			Position:      i,
			ResourceIndex: r.Index,
			Name:          r.Name,
			ResourceType:  r.ResourceType,
			MonthlyCost:   r.MonthlyCost,
			Adjustment:    r.Adjustment,
		})
	}

	return store.Scenario{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.Date,
		TotalCost:   s.TotalCost,
		Resources:   resources,
	}
}
